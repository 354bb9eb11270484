package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunyield/sunyield-go/config"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		APIBaseURL:      baseURL,
		AdminPathPrefix: "/admin",
		RequestTimeout:  5 * time.Second,
	}
}

func TestTokenRouting(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]string{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.URL.Path] = r.Header.Get("Authorization")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tokens := NewMemoryTokenStore()
	tokens.SetToken(ScopeUser, "user-token")
	tokens.SetToken(ScopeAdmin, "admin-token")
	client := NewClient(testConfig(server.URL), tokens)

	ctx := context.Background()
	require.NoError(t, client.do(ctx, http.MethodGet, "/api/wallet", nil, nil, nil))
	require.NoError(t, client.do(ctx, http.MethodGet, "/admin/users", nil, nil, nil))
	require.NoError(t, client.do(ctx, http.MethodGet, "/auth/me", nil, nil, nil))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Bearer user-token", seen["/api/wallet"])
	assert.Equal(t, "Bearer admin-token", seen["/admin/users"])
	assert.Equal(t, "Bearer user-token", seen["/auth/me"])
}

func TestScopeFor(t *testing.T) {
	client := NewClient(testConfig("http://localhost"), NewMemoryTokenStore())

	assert.Equal(t, ScopeAdmin, client.scopeFor("/admin/users"))
	assert.Equal(t, ScopeAdmin, client.scopeFor("/admin/config/monthly-withdrawal-cap"))
	assert.Equal(t, ScopeUser, client.scopeFor("/api/wallet"))
	assert.Equal(t, ScopeUser, client.scopeFor("/auth/login"))
}

func TestUnauthorizedClearsTokenAndFiresHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "Token has expired", "code": "ExpiredToken"}`))
	}))
	defer server.Close()

	tokens := NewMemoryTokenStore()
	tokens.SetToken(ScopeUser, "stale-token")
	tokens.SetToken(ScopeAdmin, "admin-token")
	client := NewClient(testConfig(server.URL), tokens)

	var firedScope TokenScope
	client.OnAuthExpired = func(scope TokenScope) { firedScope = scope }

	err := client.do(context.Background(), http.MethodGet, "/api/wallet", nil, nil, nil)
	require.Error(t, err)
	assert.True(t, IsAuthError(err))

	// Only the token in use is cleared.
	assert.Empty(t, tokens.Token(ScopeUser))
	assert.Equal(t, "admin-token", tokens.Token(ScopeAdmin))
	assert.Equal(t, ScopeUser, firedScope)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		code     string
		message  string
		expected ErrorKind
	}{
		{
			name:     "Unauthorized",
			status:   401,
			message:  "Token has expired",
			expected: KindAuth,
		},
		{
			name:     "Duplicate By Code",
			status:   400,
			code:     "DUPLICATE_SUBSCRIPTION",
			message:  "whatever",
			expected: KindDuplicateSubscription,
		},
		{
			name:     "Duplicate By Legacy Message",
			status:   400,
			message:  "You have already subscribed to this project",
			expected: KindDuplicateSubscription,
		},
		{
			name:     "Duplicate By Alternate Phrase",
			status:   400,
			message:  "You already have an active subscription for this project",
			expected: KindDuplicateSubscription,
		},
		{
			name:     "Business Error",
			status:   400,
			message:  "Insufficient wallet balance",
			expected: KindBusiness,
		},
		{
			name:     "Server Error",
			status:   500,
			message:  "internal error",
			expected: KindUnknown,
		},
		{
			name:     "Bad Request Without Message",
			status:   400,
			expected: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewError(tt.status, tt.code, tt.message)
			assert.Equal(t, tt.expected, err.Kind)
			assert.Equal(t, tt.expected, KindOf(err))
		})
	}
}

func TestDecodeErrorShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{name: "Message Field", body: `{"message": "Insufficient wallet balance"}`, expected: "Insufficient wallet balance"},
		{name: "Error Field", body: `{"error": "Invalid token"}`, expected: "Invalid token"},
		{name: "Bare String", body: `"You have already subscribed to this project"`, expected: "You have already subscribed to this project"},
		{name: "Plain Text", body: `service unavailable`, expected: "service unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(testConfig(server.URL), NewMemoryTokenStore())
			err := client.do(context.Background(), http.MethodGet, "/api/wallet", nil, nil, nil)
			require.Error(t, err)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestNetworkErrorKind(t *testing.T) {
	client := NewClient(testConfig("http://127.0.0.1:1"), NewMemoryTokenStore())
	err := client.do(context.Background(), http.MethodGet, "/api/wallet", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
}
