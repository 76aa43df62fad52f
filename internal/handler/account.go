package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/handler/dto"
	"github.com/gatehouse/gatehouse/internal/middleware"
	"github.com/gatehouse/gatehouse/internal/render"
	"github.com/gatehouse/gatehouse/internal/service"
	"github.com/gatehouse/gatehouse/internal/session"
)

// Flash texts shown to users.
const (
	MsgAccountExists      = "Account already exists"
	MsgAccountCreated     = "Account created successfully"
	MsgPasswordMismatch   = "Passwords do not match"
	MsgMissingFields      = "Please fill in all required fields"
	MsgFieldTooLong       = "One or more fields are too long"
	MsgLoginSuccessful    = "Login successful"
	MsgInvalidCredentials = "Invalid username or password"
	MsgLoggedOut          = "You have been logged out"
)

// Template names.
const (
	pageLanding = "base.html"
	pageSignup  = "signup.html"
	pageLogin   = "login.html"
)

// Landing renders the base page.
// GET /
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, pageLanding, "")
}

// SignupPage renders the empty registration form.
// GET /signup
func (h *Handler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, pageSignup, "Sign up")
}

// Signup handles a registration submission.
// POST /signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	form, err := dto.ParseSignupForm(r)
	switch {
	case errors.Is(err, dto.ErrMissingField):
		h.redirectWithFlash(w, r, "/signup", session.LevelError, MsgMissingFields)
		return
	case errors.Is(err, dto.ErrFieldTooLong):
		h.redirectWithFlash(w, r, "/signup", session.LevelError, MsgFieldTooLong)
		return
	case err != nil:
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	account, err := h.accounts.Register(r.Context(), service.RegisterInput{
		FullName:        form.FullName,
		Email:           form.Email,
		Username:        form.Username,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	})
	switch {
	case errors.Is(err, service.ErrAccountExists):
		h.redirectWithFlash(w, r, "/signup", session.LevelWarning, MsgAccountExists)
		return
	case errors.Is(err, service.ErrPasswordMismatch):
		h.redirectWithFlash(w, r, "/signup", session.LevelError, MsgPasswordMismatch)
		return
	case errors.Is(err, service.ErrInvalidInput):
		h.redirectWithFlash(w, r, "/signup", session.LevelError, MsgMissingFields)
		return
	case errors.Is(err, service.ErrPasswordTooLong):
		h.redirectWithFlash(w, r, "/signup", session.LevelError, MsgFieldTooLong)
		return
	case err != nil:
		h.serverError(w, r, "signup failed", err)
		return
	}

	h.logger.Info("account_created",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("account_id", account.ID),
		slog.String("username", account.Username),
	)
	h.redirectWithFlash(w, r, "/login", session.LevelSuccess, MsgAccountCreated)
}

// LoginPage renders the login form.
// GET /login
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, pageLogin, "Log in")
}

// Login handles a login submission. Success and failure both land on /.
// POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	form, err := dto.ParseLoginForm(r)
	if err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	account, err := h.auth.Authenticate(r.Context(), form.Username, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.logger.Info("login_failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("ip", middleware.ClientIP(r)),
		)
		h.redirectWithFlash(w, r, "/", session.LevelError, MsgInvalidCredentials)
		return
	}
	if err != nil {
		h.serverError(w, r, "login failed", err)
		return
	}

	if _, err := h.sessions.Start(w, r, account); err != nil {
		h.serverError(w, r, "start session failed", err)
		return
	}

	h.logger.Info("login_succeeded",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("account_id", account.ID),
	)
	h.redirectWithFlash(w, r, "/", session.LevelSuccess, MsgLoginSuccessful)
}

// Logout ends the current session.
// POST /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(w, r); err != nil {
		h.serverError(w, r, "end session failed", err)
		return
	}
	h.metrics.IncLogout()
	h.redirectWithFlash(w, r, "/", session.LevelInfo, MsgLoggedOut)
}

// page renders a template with the pending flashes, the signed-in user and
// a CSRF token for any form on the page.
func (h *Handler) page(w http.ResponseWriter, r *http.Request, name, title string) {
	flashes, err := h.flashes.Flashes(w, r)
	if err != nil {
		h.serverError(w, r, "read flashes failed", err)
		return
	}
	csrf, err := h.sessions.CSRFToken(w, r)
	if err != nil {
		h.serverError(w, r, "csrf token failed", err)
		return
	}

	data := render.PageData{
		Title:     title,
		Username:  auth.UsernameFromContext(r.Context()),
		CSRFToken: csrf,
		Flashes:   flashes,
	}
	if err := h.render.Render(w, http.StatusOK, name, data); err != nil {
		h.logger.Error("render page failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, target string, level session.Level, text string) {
	if err := h.flashes.AddFlash(w, r, level, text); err != nil {
		h.serverError(w, r, "store flash failed", err)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
