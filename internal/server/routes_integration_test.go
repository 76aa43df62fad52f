//go:build integration

package server

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/cache"
	"github.com/gatehouse/gatehouse/internal/handler"
	"github.com/gatehouse/gatehouse/internal/repository"
	"github.com/gatehouse/gatehouse/internal/testutil"
)

func newIntegrationApp(t *testing.T) (*app, *repository.Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	ctx := context.Background()

	dbURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")
	redisURL := testutil.RequireEnv(t, "TEST_REDIS_URL")

	require.NoError(t, repository.Migrate(ctx, dbURL))
	repo, err := repository.New(ctx, dbURL, repository.PoolOptions{})
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	require.NoError(t, err)
	t.Cleanup(func() { _ = unlock() })
	require.NoError(t, testutil.TruncateAccounts(ctx, repo.Pool()))

	cacheClient, err := cache.New(ctx, redisURL, cache.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cacheClient.Close() })
	require.NoError(t, testutil.FlushRedis(ctx, cacheClient.Client()))

	return newAppWith(t, repo, cacheClient, cacheClient), repo
}

func TestIntegrationRouter_SignupAndLogin(t *testing.T) {
	a, repo := newIntegrationApp(t)
	username := testutil.UniqueUsername("it")

	token := a.csrf(t, "/signup")
	resp := a.post(t, "/signup", url.Values{
		"csrf_token":       {token},
		"fullname":         {"Integration User"},
		"email":            {username + "@example.com"},
		"username":         {username},
		"password":         {"s3cret-pass"},
		"confirm_password": {"s3cret-pass"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	stored, err := repo.GetAccountByUsername(context.Background(), username)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.Equal(t, "Integration User", stored.FullName)

	_, loginPage := a.get(t, "/login")
	token = csrfPattern.FindStringSubmatch(loginPage)[1]
	resp = a.post(t, "/login", url.Values{
		"csrf_token": {token},
		"username":   {username},
		"password":   {"s3cret-pass"},
	})
	assert.Equal(t, "/", resp.Header.Get("Location"))

	_, landing := a.get(t, "/")
	assert.Contains(t, landing, handler.MsgLoginSuccessful)
	assert.Contains(t, landing, "Signed in as <strong>"+username+"</strong>")
}

func TestIntegrationRouter_WrongPassword(t *testing.T) {
	a, repo := newIntegrationApp(t)
	username := testutil.UniqueUsername("it")

	token := a.csrf(t, "/signup")
	a.post(t, "/signup", url.Values{
		"csrf_token":       {token},
		"username":         {username},
		"password":         {"right"},
		"confirm_password": {"right"},
	})

	count, err := testutil.CountAccounts(context.Background(), repo.Pool(), username)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	_, loginPage := a.get(t, "/login")
	token = csrfPattern.FindStringSubmatch(loginPage)[1]
	resp := a.post(t, "/login", url.Values{
		"csrf_token": {token},
		"username":   {username},
		"password":   {"wrong"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, landing := a.get(t, "/")
	assert.Contains(t, landing, handler.MsgInvalidCredentials)
	assert.NotContains(t, landing, "Signed in as")
}
