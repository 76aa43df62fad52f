// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/metrics"
	"github.com/gatehouse/gatehouse/internal/model"
	"github.com/gatehouse/gatehouse/internal/repository"
)

// Service errors.
var (
	ErrAccountExists      = errors.New("account already exists")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidInput       = errors.New("username and password are required")
	ErrPasswordTooLong    = errors.New("password exceeds maximum length")
)

// MaxPasswordLength caps submitted passwords in bytes. Argon2id accepts any
// length; the cap keeps hashing cost bounded.
const MaxPasswordLength = 256

// AccountStore is the persistence the account service needs.
// *repository.Repository satisfies it.
type AccountStore interface {
	AccountExists(ctx context.Context, username string) (bool, error)
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
}

// AccountService handles registration and credential checks.
type AccountService struct {
	store   AccountStore
	metrics metrics.Recorder
	clock   clockwork.Clock
}

// NewAccountService creates a new AccountService.
func NewAccountService(store AccountStore, recorder metrics.Recorder, clock clockwork.Clock) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AccountService{
		store:   store,
		metrics: recorder,
		clock:   clock,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	FullName        string
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

// Register creates an account.
//
// Usernames are stored exactly as submitted. The existence check runs
// before any password check, so a taken username reports ErrAccountExists
// whatever the password fields hold.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*model.Account, error) {
	username := input.Username
	if username == "" {
		s.metrics.IncSignup(metrics.SignupInvalid)
		return nil, ErrInvalidInput
	}

	exists, err := s.store.AccountExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check account: %w", err)
	}
	if exists {
		s.metrics.IncSignup(metrics.SignupDuplicate)
		return nil, ErrAccountExists
	}

	switch {
	case input.Password == "" || input.ConfirmPassword == "":
		s.metrics.IncSignup(metrics.SignupInvalid)
		return nil, ErrInvalidInput
	case len(input.Password) > MaxPasswordLength || len(input.ConfirmPassword) > MaxPasswordLength:
		s.metrics.IncSignup(metrics.SignupInvalid)
		return nil, ErrPasswordTooLong
	}

	if input.Password != input.ConfirmPassword {
		s.metrics.IncSignup(metrics.SignupMismatch)
		return nil, ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{
		ID:           ulid.Make().String(),
		Username:     username,
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now().UTC(),
	}

	if err := s.store.CreateAccount(ctx, account); err != nil {
		// Lost the race against a concurrent signup for the same name.
		if errors.Is(err, repository.ErrUsernameExists) {
			s.metrics.IncSignup(metrics.SignupDuplicate)
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.metrics.IncSignup(metrics.SignupCreated)
	return account, nil
}

// Authenticate returns the account matching the credentials.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials,
// and both pay for one Argon2id verification.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*model.Account, error) {
	if username == "" || password == "" {
		auth.VerifyDummy(password)
		s.metrics.IncLogin(metrics.LoginFailure)
		return nil, ErrInvalidCredentials
	}

	account, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			auth.VerifyDummy(password)
			s.metrics.IncLogin(metrics.LoginFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	ok, err := auth.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.metrics.IncLogin(metrics.LoginFailure)
		return nil, ErrInvalidCredentials
	}

	s.metrics.IncLogin(metrics.LoginSuccess)
	return account, nil
}
