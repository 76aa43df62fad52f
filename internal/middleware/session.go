package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/model"
	"github.com/gatehouse/gatehouse/internal/session"
)

// SessionLoader resolves the session behind a request. Current may refresh
// the stored record; Peek never writes.
type SessionLoader interface {
	Current(r *http.Request) (*model.Session, error)
	Peek(r *http.Request) (*model.Session, error)
}

// LoadSession attaches the caller's session to the request context and
// slides its idle window.
// Anonymous requests pass through untouched; so do requests whose session
// cannot be loaded, after logging the failure.
func LoadSession(loader SessionLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return attachSession(loader.Current, logger)
}

// PeekSession is LoadSession without side effects on the session store.
func PeekSession(loader SessionLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return attachSession(loader.Peek, logger)
}

func attachSession(resolve func(*http.Request) (*model.Session, error), logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := resolve(r)
			switch {
			case err == nil:
				r = r.WithContext(auth.ContextWithSession(r.Context(), sess))
			case errors.Is(err, session.ErrNoSession):
			default:
				logger.Warn("session load failed",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("error", err.Error()),
				)
			}

			next.ServeHTTP(w, r)
		})
	}
}
