// Package session manages browser sessions and one-shot flash messages.
//
// The browser holds a signed cookie (gorilla/sessions) carrying an opaque
// session token, a CSRF token and any pending flashes. The account bound to
// the token lives server-side in a TokenStore, keyed by a hash of the token.
package session

import (
	"context"
	"crypto/subtle"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/cache"
	"github.com/gatehouse/gatehouse/internal/model"
)

// CookieName is the name of the signed session cookie.
const CookieName = "gatehouse_session"

const (
	keyToken = "token"
	keyCSRF  = "csrf"
)

var (
	// ErrNoSession is returned by Current when the request is anonymous or
	// its session has expired.
	ErrNoSession = errors.New("no active session")
)

// TokenStore persists session records by token digest.
type TokenStore interface {
	SaveSession(ctx context.Context, tokenHash string, sess *model.Session, ttl time.Duration) error
	GetSession(ctx context.Context, tokenHash string) (*model.Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
}

// Options configures a Manager.
type Options struct {
	MaxAge      time.Duration
	IdleTimeout time.Duration
	Clock       clockwork.Clock
}

// Manager issues, loads and ends sessions.
type Manager struct {
	store       sessions.Store
	tokens      TokenStore
	maxAge      time.Duration
	idleTimeout time.Duration
	clock       clockwork.Clock
}

func init() {
	gob.Register(Flash{})
}

// NewCookieStore builds the signed cookie store used for sessions.
func NewCookieStore(secret string, maxAge time.Duration, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(maxAge.Seconds()))
	return store
}

// NewManager creates a Manager. A nil Clock means the real clock.
func NewManager(store sessions.Store, tokens TokenStore, opts Options) *Manager {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Manager{
		store:       store,
		tokens:      tokens,
		maxAge:      opts.MaxAge,
		idleTimeout: opts.IdleTimeout,
		clock:       clock,
	}
}

// cookie returns the request's cookie session. A cookie that fails
// signature verification is replaced with a fresh one.
func (m *Manager) cookie(r *http.Request) (*sessions.Session, error) {
	sess, err := m.store.Get(r, CookieName)
	if err == nil {
		return sess, nil
	}
	// Get still returns a usable new session on decode errors.
	if sess != nil {
		return sess, nil
	}
	return nil, fmt.Errorf("load session cookie: %w", err)
}

// Start binds a new session to account. Any token already in the cookie is
// revoked first, and the CSRF token is rotated along with it.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request, account *model.Account) (string, error) {
	sess, err := m.cookie(r)
	if err != nil {
		return "", err
	}

	if old, ok := sess.Values[keyToken].(string); ok && old != "" {
		if err := m.tokens.DeleteSession(r.Context(), auth.QuickHash(old)); err != nil {
			return "", fmt.Errorf("revoke previous session: %w", err)
		}
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", err
	}
	csrf, err := auth.GenerateCSRFToken()
	if err != nil {
		return "", err
	}

	now := m.clock.Now().UTC()
	record := &model.Session{
		AccountID:  account.ID,
		Username:   account.Username,
		IssuedAt:   now,
		LastSeenAt: now,
	}
	if err := m.tokens.SaveSession(r.Context(), auth.QuickHash(token), record, m.maxAge); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	sess.Values[keyToken] = token
	sess.Values[keyCSRF] = csrf
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("save session cookie: %w", err)
	}
	return token, nil
}

// Current returns the session bound to the request, sliding its idle
// window. It returns ErrNoSession for anonymous or expired sessions.
func (m *Manager) Current(r *http.Request) (*model.Session, error) {
	record, digest, err := m.lookup(r)
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	now := m.clock.Now().UTC()
	remaining := m.maxAge - now.Sub(record.IssuedAt)
	if remaining <= 0 || record.IsExpired(now, m.maxAge, m.idleTimeout) {
		if err := m.tokens.DeleteSession(ctx, digest); err != nil {
			return nil, fmt.Errorf("delete expired session: %w", err)
		}
		return nil, ErrNoSession
	}

	record.LastSeenAt = now
	if err := m.tokens.SaveSession(ctx, digest, record, remaining); err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}
	return record, nil
}

// Peek is Current without writes: the idle window is not slid and expired
// records are left for Redis to evict.
func (m *Manager) Peek(r *http.Request) (*model.Session, error) {
	record, _, err := m.lookup(r)
	if err != nil {
		return nil, err
	}
	now := m.clock.Now().UTC()
	if now.Sub(record.IssuedAt) >= m.maxAge || record.IsExpired(now, m.maxAge, m.idleTimeout) {
		return nil, ErrNoSession
	}
	return record, nil
}

// lookup resolves the cookie's token to its stored record and digest.
func (m *Manager) lookup(r *http.Request) (*model.Session, string, error) {
	sess, err := m.cookie(r)
	if err != nil {
		return nil, "", err
	}

	token, ok := sess.Values[keyToken].(string)
	if !ok || !auth.ValidateTokenFormat(token) {
		return nil, "", ErrNoSession
	}

	digest := auth.QuickHash(token)
	record, err := m.tokens.GetSession(r.Context(), digest)
	if err != nil {
		if errors.Is(err, cache.ErrSessionNotFound) {
			return nil, "", ErrNoSession
		}
		return nil, "", fmt.Errorf("load session: %w", err)
	}
	return record, digest, nil
}

// End revokes the request's session. Flashes and the cookie itself survive
// so the next page can report the logout.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.cookie(r)
	if err != nil {
		return err
	}

	if token, ok := sess.Values[keyToken].(string); ok && token != "" {
		if err := m.tokens.DeleteSession(r.Context(), auth.QuickHash(token)); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	delete(sess.Values, keyToken)
	delete(sess.Values, keyCSRF)

	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}

// CSRFToken returns the cookie's CSRF token, creating one if needed.
func (m *Manager) CSRFToken(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, err := m.cookie(r)
	if err != nil {
		return "", err
	}
	if token, ok := sess.Values[keyCSRF].(string); ok && token != "" {
		return token, nil
	}

	token, err := auth.GenerateCSRFToken()
	if err != nil {
		return "", err
	}
	sess.Values[keyCSRF] = token
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("save session cookie: %w", err)
	}
	return token, nil
}

// VerifyCSRF reports whether submitted matches the cookie's CSRF token.
func (m *Manager) VerifyCSRF(r *http.Request, submitted string) bool {
	if submitted == "" {
		return false
	}
	sess, err := m.cookie(r)
	if err != nil {
		return false
	}
	expected, ok := sess.Values[keyCSRF].(string)
	if !ok || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}
