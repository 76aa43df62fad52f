package auth

import (
	"context"

	"github.com/gatehouse/gatehouse/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// sessionContextKey is the context key for storing the current session.
	sessionContextKey contextKey = "session"
)

// ContextWithSession adds the current session to the context.
func ContextWithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SessionFromContext retrieves the current session from the context.
// Returns nil for anonymous requests.
func SessionFromContext(ctx context.Context) *model.Session {
	sess, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok {
		return nil
	}
	return sess
}

// UsernameFromContext returns the signed-in username, or "" if anonymous.
func UsernameFromContext(ctx context.Context) string {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return ""
	}
	return sess.Username
}

// AccountIDFromContext returns the signed-in account ID, or "" if anonymous.
func AccountIDFromContext(ctx context.Context) string {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return ""
	}
	return sess.AccountID
}
