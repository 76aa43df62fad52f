package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gatehouse/gatehouse/internal/handler"
	"github.com/gatehouse/gatehouse/internal/metrics"
	"github.com/gatehouse/gatehouse/internal/middleware"
)

// defaultMaxRequestBody caps form posts when no limit is configured.
const defaultMaxRequestBody = 64 << 10

// SessionMiddleware is what the router needs from the session manager.
type SessionMiddleware interface {
	middleware.SessionLoader
	middleware.CSRFVerifier
}

// Routes lists everything the router mounts.
type Routes struct {
	Pages          *handler.Handler
	Health         *handler.HealthHandler
	Metrics        http.Handler
	Static         fs.FS
	Sessions       SessionMiddleware
	RateLimit      middleware.RateLimitConfig
	Recorder       metrics.Recorder
	IsDevelopment  bool
	MaxRequestBody int64
	Logger         *slog.Logger
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(rt Routes) *chi.Mux {
	recorder := rt.Recorder
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if rt.MaxRequestBody <= 0 {
		rt.MaxRequestBody = defaultMaxRequestBody
	}
	if rt.Logger == nil {
		rt.Logger = slog.Default()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(rt.Logger))
	r.Use(middleware.Recoverer(rt.Logger))
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: rt.IsDevelopment}))

	// Operational endpoints
	r.Get("/healthz", rt.Health.Healthz)
	r.Get("/readyz", rt.Health.Readyz)
	if rt.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.Metrics)
	}
	if rt.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(rt.Static))))
	}

	// Pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBodySize(rt.MaxRequestBody))
		r.Use(middleware.CSRF(rt.Sessions, rt.Logger, recorder))

		load := middleware.LoadSession(rt.Sessions, rt.Logger)
		// Viewing a form page leaves the session record untouched.
		peek := middleware.PeekSession(rt.Sessions, rt.Logger)

		r.With(load).Get("/", rt.Pages.Landing)
		r.With(load).Post("/logout", rt.Pages.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitAuth(rt.RateLimit))

			r.With(peek).Get("/signup", rt.Pages.SignupPage)
			r.With(load).Post("/signup", rt.Pages.Signup)
			r.With(peek).Get("/login", rt.Pages.LoginPage)
			r.With(load).Post("/login", rt.Pages.Login)
		})
	})

	r.NotFound(rt.Pages.NotFound)
	r.MethodNotAllowed(rt.Pages.MethodNotAllowed)

	return r
}
