// Package handler provides HTTP request handlers.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gatehouse/gatehouse/internal/metrics"
	"github.com/gatehouse/gatehouse/internal/middleware"
	"github.com/gatehouse/gatehouse/internal/model"
	"github.com/gatehouse/gatehouse/internal/service"
	"github.com/gatehouse/gatehouse/internal/session"
)

// Registrar creates accounts.
type Registrar interface {
	Register(ctx context.Context, input service.RegisterInput) (*model.Account, error)
}

// Authenticator checks credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*model.Account, error)
}

// SessionService starts and ends browser sessions.
type SessionService interface {
	Start(w http.ResponseWriter, r *http.Request, account *model.Account) (string, error)
	End(w http.ResponseWriter, r *http.Request) error
	CSRFToken(w http.ResponseWriter, r *http.Request) (string, error)
}

// FlashChannel carries one-shot messages to the next rendered page.
type FlashChannel interface {
	AddFlash(w http.ResponseWriter, r *http.Request, level session.Level, text string) error
	Flashes(w http.ResponseWriter, r *http.Request) ([]session.Flash, error)
}

// Renderer writes named page templates.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data any) error
}

// Deps lists the collaborators a Handler needs.
type Deps struct {
	Accounts Registrar
	Auth     Authenticator
	Sessions SessionService
	Flashes  FlashChannel
	Renderer Renderer
	Metrics  metrics.Recorder
	Logger   *slog.Logger
}

// Handler serves the landing, signup, login and logout pages.
type Handler struct {
	accounts Registrar
	auth     Authenticator
	sessions SessionService
	flashes  FlashChannel
	render   Renderer
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// New creates a new Handler instance.
func New(deps Deps) *Handler {
	recorder := deps.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		accounts: deps.Accounts,
		auth:     deps.Auth,
		sessions: deps.Sessions,
		flashes:  deps.Flashes,
		render:   deps.Renderer,
		metrics:  recorder,
		logger:   logger,
	}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "page not found", http.StatusNotFound)
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

// serverError logs err with the request id and answers 500.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
