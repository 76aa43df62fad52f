package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
)

// Session token format: gh_{43 base64url chars} (32 random bytes).
const (
	tokenPrefix   = "gh_"
	tokenBytes    = 32
	TokenLen      = len(tokenPrefix) + 43
	csrfTokenSize = 32
)

var (
	// ErrInvalidTokenFormat indicates a session token is malformed.
	ErrInvalidTokenFormat = errors.New("invalid session token format")
	// tokenFormatRegex validates the session token format.
	tokenFormatRegex = regexp.MustCompile(`^gh_[A-Za-z0-9_-]{43}$`)
)

// GenerateSessionToken creates a new opaque session token.
// The plaintext goes into the signed cookie; only QuickHash(token) is stored.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return tokenPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// ValidateTokenFormat checks if the token matches the expected format.
// Used to reject tampered or legacy cookies before touching Redis.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}

// GenerateCSRFToken returns a random token for form submissions.
func GenerateCSRFToken() (string, error) {
	buf := make([]byte, csrfTokenSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
