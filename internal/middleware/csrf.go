package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gatehouse/gatehouse/internal/metrics"
)

// CSRF token transport.
const (
	CSRFFormField = "csrf_token"
	CSRFHeader    = "X-CSRF-Token"
)

// CSRFVerifier checks a submitted token against the caller's session.
type CSRFVerifier interface {
	VerifyCSRF(r *http.Request, submitted string) bool
}

// CSRF rejects unsafe requests whose token does not match the session
// cookie's token with 403 Forbidden. The token is read from the
// X-CSRF-Token header or, failing that, the csrf_token form field.
func CSRF(verifier CSRFVerifier, logger *slog.Logger, recorder metrics.Recorder) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get(CSRFHeader)
			if token == "" {
				token = r.PostFormValue(CSRFFormField)
			}

			if !verifier.VerifyCSRF(r, token) {
				logger.Warn("csrf token rejected",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Bool("token_present", token != ""),
				)
				recorder.IncCSRFRejected()
				http.Error(w, "invalid or missing CSRF token", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
