// Package dto provides typed views of submitted forms.
package dto

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/gatehouse/gatehouse/internal/service"
)

// Form field limits.
const (
	MaxUsernameLength = 64
	MaxFullNameLength = 128
	MaxEmailLength    = 254
	MaxPasswordLength = service.MaxPasswordLength
)

// Form errors.
var (
	ErrMissingField = errors.New("required field is missing")
	ErrFieldTooLong = errors.New("field exceeds maximum length")
)

// SignupForm holds the fields posted to /signup.
type SignupForm struct {
	FullName        string
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

// LoginForm holds the fields posted to /login.
type LoginForm struct {
	Username string
	Password string
}

// ParseSignupForm reads and validates a signup submission. Values are kept
// exactly as submitted. Only the username is checked here; the password
// fields are left to the account service, which reports a taken username
// before looking at them.
func ParseSignupForm(r *http.Request) (SignupForm, error) {
	if err := r.ParseForm(); err != nil {
		return SignupForm{}, fmt.Errorf("parse form: %w", err)
	}

	form := SignupForm{
		FullName:        r.PostForm.Get("fullname"),
		Email:           r.PostForm.Get("email"),
		Username:        r.PostForm.Get("username"),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirm_password"),
	}
	return form, form.Validate()
}

// Validate checks the username is present and the identity fields fit.
func (f SignupForm) Validate() error {
	if f.Username == "" {
		return fmt.Errorf("%w: username", ErrMissingField)
	}

	if err := checkLength("username", f.Username, MaxUsernameLength); err != nil {
		return err
	}
	if err := checkLength("fullname", f.FullName, MaxFullNameLength); err != nil {
		return err
	}
	return checkLength("email", f.Email, MaxEmailLength)
}

// ParseLoginForm reads a login submission. Missing fields are not an
// error here; the authenticator rejects them like any bad credentials.
func ParseLoginForm(r *http.Request) (LoginForm, error) {
	if err := r.ParseForm(); err != nil {
		return LoginForm{}, fmt.Errorf("parse form: %w", err)
	}

	form := LoginForm{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}
	// Oversized input can never match a stored account.
	if utf8.RuneCountInString(form.Username) > MaxUsernameLength || len(form.Password) > MaxPasswordLength {
		form = LoginForm{}
	}
	return form, nil
}

func checkLength(name, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return fmt.Errorf("%w: %s", ErrFieldTooLong, name)
	}
	return nil
}
