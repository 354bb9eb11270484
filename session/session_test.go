package session

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunyield/sunyield-go/api"
	"github.com/sunyield/sunyield-go/apitest"
	"github.com/sunyield/sunyield-go/config"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		APIBaseURL:      baseURL,
		AdminPathPrefix: "/admin",
		RequestTimeout:  5 * time.Second,
	}
}

func setup(t *testing.T) (*Session, *api.Client, *apitest.Server) {
	t.Helper()
	server, err := apitest.New()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := api.NewClient(testConfig(server.Start()), api.NewMemoryTokenStore())
	return New(client), client, server
}

func TestLoginWithCredentials(t *testing.T) {
	sess, _, server := setup(t)
	_, err := server.CreateUser("investor@example.com", "password123", 0)
	require.NoError(t, err)

	require.NoError(t, sess.LoginWithCredentials(context.Background(), "investor@example.com", "password123"))
	assert.Equal(t, Authenticated, sess.State())
	assert.Equal(t, "investor@example.com", sess.User().Email)
}

func TestLoginFailureLeavesSessionUnchanged(t *testing.T) {
	sess, client, server := setup(t)
	_, err := server.CreateUser("investor@example.com", "password123", 0)
	require.NoError(t, err)

	err = sess.LoginWithCredentials(context.Background(), "investor@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, Anonymous, sess.State())
	assert.Nil(t, sess.User())
	assert.Empty(t, client.Tokens().Token(api.ScopeUser))
}

func TestRegisterAndVerifyOTP(t *testing.T) {
	sess, _, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, sess.Register(ctx, "new@example.com", "password123", "New User", "9999999999"))
	assert.Equal(t, Anonymous, sess.State())

	// The stub accepts its fixed OTP.
	require.NoError(t, sess.VerifyOTP(ctx, "new@example.com", "123456"))
	assert.Equal(t, Authenticated, sess.State())
	assert.True(t, sess.User().IsVerified)
}

func TestRegisterValidation(t *testing.T) {
	sess, _, _ := setup(t)
	ctx := context.Background()

	// Weak password and bad email are rejected before any request is made.
	require.Error(t, sess.Register(ctx, "new@example.com", "short", "New User", "9999999999"))
	require.Error(t, sess.Register(ctx, "not-an-email", "password123", "New User", "9999999999"))
}

func TestLogoutIsIdempotent(t *testing.T) {
	sess, client, server := setup(t)
	_, err := server.CreateUser("investor@example.com", "password123", 0)
	require.NoError(t, err)
	require.NoError(t, sess.LoginWithCredentials(context.Background(), "investor@example.com", "password123"))

	sess.Logout()
	assert.Equal(t, Anonymous, sess.State())
	assert.Empty(t, client.Tokens().Token(api.ScopeUser))

	sess.Logout()
	assert.Equal(t, Anonymous, sess.State())
}

func TestRestore(t *testing.T) {
	sess, client, server := setup(t)
	user, err := server.CreateUser("investor@example.com", "password123", 0)
	require.NoError(t, err)
	token, err := server.IssueToken(user.ID, "USER")
	require.NoError(t, err)
	client.Tokens().SetToken(api.ScopeUser, token)

	require.NoError(t, sess.Restore(context.Background()))
	assert.Equal(t, Authenticated, sess.State())
	assert.Equal(t, "investor@example.com", sess.User().Email)
}

func TestRestoreWithoutToken(t *testing.T) {
	sess, _, _ := setup(t)
	require.NoError(t, sess.Restore(context.Background()))
	assert.Equal(t, Anonymous, sess.State())
}

func TestRestoreSkipsFetchForExpiredToken(t *testing.T) {
	var requests atomic.Int64
	countingClient := &http.Client{
		Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			requests.Add(1)
			return nil, context.DeadlineExceeded
		}),
	}

	client := api.NewClient(testConfig("http://stub.invalid"), api.NewMemoryTokenStore(),
		api.WithHTTPClient(countingClient))
	client.Tokens().SetToken(api.ScopeUser, expiredToken(t))

	sess := New(client)
	require.NoError(t, sess.Restore(context.Background()))
	assert.Equal(t, Anonymous, sess.State())
	assert.Empty(t, client.Tokens().Token(api.ScopeUser))
	// The doomed current-user fetch was never issued.
	assert.Equal(t, int64(0), requests.Load())
}

func TestRestoreClearsRejectedToken(t *testing.T) {
	sess, client, _ := setup(t)
	// Structurally invalid for the server, but carries no readable expiry, so
	// the client lets the server judge it.
	client.Tokens().SetToken(api.ScopeUser, "garbage-token")

	err := sess.Restore(context.Background())
	require.Error(t, err)
	assert.Equal(t, Anonymous, sess.State())
	assert.Empty(t, client.Tokens().Token(api.ScopeUser))
}

func expiredToken(t *testing.T) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key"))
	require.NoError(t, err)
	return token
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
