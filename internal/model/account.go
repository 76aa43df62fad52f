// Package model defines domain entities for the application.
package model

import "time"

// Account represents a registered user account.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the server-side record behind a session cookie.
// It is stored under a hash of the session token, never the token itself.
type Session struct {
	AccountID  string    `json:"account_id"`
	Username   string    `json:"username"`
	IssuedAt   time.Time `json:"issued_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// IsExpired reports whether the session is past its absolute lifetime or
// has been idle for longer than idleTimeout at the given time.
func (s *Session) IsExpired(now time.Time, maxAge, idleTimeout time.Duration) bool {
	if s.IssuedAt.IsZero() || now.Sub(s.IssuedAt) > maxAge {
		return true
	}
	return s.LastSeenAt.IsZero() || now.Sub(s.LastSeenAt) > idleTimeout
}
