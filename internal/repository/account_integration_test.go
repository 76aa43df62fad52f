//go:build integration

package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gatehouse/gatehouse/internal/testutil"
)

func TestIntegrationAccount_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	account := testutil.NewTestAccount(t, "alice")
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("create account: %v", err)
	}

	got, err := repo.GetAccountByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}

	if got.ID != account.ID {
		t.Errorf("id mismatch: %q vs %q", got.ID, account.ID)
	}
	if got.FullName != account.FullName || got.Email != account.Email {
		t.Errorf("profile mismatch: %+v vs %+v", got, account)
	}
	if got.PasswordHash != account.PasswordHash {
		t.Errorf("password hash mismatch")
	}
	if diff := got.CreatedAt.Sub(account.CreatedAt); diff > time.Second || diff < -time.Second {
		t.Errorf("created_at mismatch: %v vs %v", got.CreatedAt, account.CreatedAt)
	}

	exists, err := repo.AccountExists(ctx, "alice")
	if err != nil {
		t.Fatalf("account exists: %v", err)
	}
	if !exists {
		t.Error("expected account to exist")
	}
}

func TestIntegrationAccount_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	if _, err := repo.GetAccountByUsername(ctx, "nobody"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	exists, err := repo.AccountExists(ctx, "nobody")
	if err != nil {
		t.Fatalf("account exists: %v", err)
	}
	if exists {
		t.Error("expected account not to exist")
	}
}

func TestIntegrationAccount_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	first := testutil.NewTestAccount(t, "bob")
	if err := repo.CreateAccount(ctx, first); err != nil {
		t.Fatalf("create account: %v", err)
	}

	second := testutil.NewTestAccount(t, "bob")
	second.ID = first.ID + "-2"
	if err := repo.CreateAccount(ctx, second); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}

	n, err := testutil.CountAccounts(ctx, repo.Pool(), "bob")
	if err != nil {
		t.Fatalf("count accounts: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 account, got %d", n)
	}
}

// TestIntegrationAccount_ConcurrentCreate verifies the unique index decides
// the race between concurrent registrations of the same username.
func TestIntegrationAccount_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	var created, duplicates int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			account := testutil.NewTestAccount(t, "racer")
			account.ID = testutil.UniqueUsername("acct")
			err := repo.CreateAccount(ctx, account)
			switch {
			case err == nil:
				atomic.AddInt64(&created, 1)
			case errors.Is(err, ErrUsernameExists):
				atomic.AddInt64(&duplicates, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("expected exactly 1 account created, got %d", created)
	}
	if duplicates != 9 {
		t.Errorf("expected 9 duplicate errors, got %d", duplicates)
	}
}

func TestIntegrationMigration_PasswordHashConstraint(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	_, err := repo.Pool().Exec(ctx, `
		INSERT INTO accounts (id, username, password_hash)
		VALUES ('plain-id', 'plain', 'hunter2')
	`)
	if err == nil {
		t.Error("expected check constraint violation for non-PHC password hash")
	}
}

func TestIntegrationMigration_Idempotent(t *testing.T) {
	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")
	_ = newTestRepository(t, ctx)

	// Second run must be a no-op
	if err := Migrate(ctx, dbURL); err != nil {
		t.Fatalf("second migrate should not fail: %v", err)
	}
}

func TestIntegrationMigration_DownUp(t *testing.T) {
	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")
	repo := newTestRepository(t, ctx)

	if err := MigrateDown(ctx, dbURL); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if _, err := repo.AccountExists(ctx, "anyone"); err == nil {
		t.Error("expected query to fail once accounts table is dropped")
	}

	if err := Migrate(ctx, dbURL); err != nil {
		t.Fatalf("migrate up again: %v", err)
	}
	exists, err := repo.AccountExists(ctx, "anyone")
	if err != nil {
		t.Fatalf("AccountExists after re-migrate: %v", err)
	}
	if exists {
		t.Error("fresh schema should be empty")
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newTestRepository(t *testing.T, ctx context.Context) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	dbURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")
	repo, err := New(ctx, dbURL, PoolOptions{})
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := Migrate(ctx, dbURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := testutil.TruncateAccounts(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return repo
}
