package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/gatehouse/gatehouse/internal/model"
)

func TestGenerateSessionToken_Format(t *testing.T) {
	t.Parallel()

	token, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}

	if !strings.HasPrefix(token, "gh_") {
		t.Errorf("Token should start with gh_, got: %s", token)
	}
	if len(token) != TokenLen {
		t.Errorf("Token should be %d chars, got: %d", TokenLen, len(token))
	}
	if !ValidateTokenFormat(token) {
		t.Errorf("Generated token should pass format validation: %s", token)
	}
}

func TestGenerateSessionToken_Uniqueness(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateSessionToken()
		if err != nil {
			t.Fatalf("GenerateSessionToken failed: %v", err)
		}
		if seen[token] {
			t.Fatalf("Duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}

func TestValidateTokenFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"empty", "", false},
		{"missing prefix", strings.Repeat("a", 43), false},
		{"wrong prefix", "pk_" + strings.Repeat("a", 43), false},
		{"too short", "gh_" + strings.Repeat("a", 42), false},
		{"too long", "gh_" + strings.Repeat("a", 44), false},
		{"invalid chars", "gh_" + strings.Repeat("a", 42) + "!", false},
		{"valid", "gh_" + strings.Repeat("a", 43), true},
		{"valid url-safe chars", "gh_" + strings.Repeat("-_", 21) + "Z", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ValidateTokenFormat(tt.token); got != tt.want {
				t.Errorf("ValidateTokenFormat(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestGenerateCSRFToken(t *testing.T) {
	t.Parallel()

	a, err := GenerateCSRFToken()
	if err != nil {
		t.Fatalf("GenerateCSRFToken failed: %v", err)
	}
	b, err := GenerateCSRFToken()
	if err != nil {
		t.Fatalf("GenerateCSRFToken failed: %v", err)
	}

	if a == "" || a == b {
		t.Errorf("CSRF tokens should be non-empty and unique, got %q and %q", a, b)
	}
}

func TestSessionContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if SessionFromContext(ctx) != nil {
		t.Error("Empty context should have no session")
	}
	if UsernameFromContext(ctx) != "" || AccountIDFromContext(ctx) != "" {
		t.Error("Empty context should have no identity")
	}

	sess := &model.Session{AccountID: "01HZX", Username: "alice"}
	ctx = ContextWithSession(ctx, sess)

	if got := SessionFromContext(ctx); got != sess {
		t.Errorf("SessionFromContext = %v, want %v", got, sess)
	}
	if got := UsernameFromContext(ctx); got != "alice" {
		t.Errorf("UsernameFromContext = %q, want alice", got)
	}
	if got := AccountIDFromContext(ctx); got != "01HZX" {
		t.Errorf("AccountIDFromContext = %q, want 01HZX", got)
	}
}
