package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunyield/sunyield-go/models"
)

func TestHealthEndpoint(t *testing.T) {
	server, err := New()
	require.NoError(t, err)
	defer server.Close()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	server.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestAuthMiddleware(t *testing.T) {
	server, err := New()
	require.NoError(t, err)
	defer server.Close()

	user, err := server.CreateUser("investor@example.com", "password123", 0)
	require.NoError(t, err)

	validToken, err := server.IssueToken(user.ID, "USER")
	require.NoError(t, err)
	expiredToken, err := server.issueToken(user.ID, "USER", -time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Valid Token",
			authHeader:     "Bearer " + validToken,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing Header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Format",
			authHeader:     "Token " + validToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired Token",
			authHeader:     "Bearer " + expiredToken,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "ExpiredToken",
		},
		{
			name:           "Garbage Token",
			authHeader:     "Bearer not.a.token",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "InvalidToken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/api/wallet", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			server.Engine().ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Contains(t, w.Body.String(), tt.expectedCode)
			}
		})
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	server, err := New()
	require.NoError(t, err)
	defer server.Close()

	user, err := server.CreateUser("investor@example.com", "password123", 0)
	require.NoError(t, err)
	userToken, err := server.IssueToken(user.ID, "USER")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	server.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRejectedContributionKeepsCouponUnused(t *testing.T) {
	server, err := New()
	require.NoError(t, err)
	defer server.Close()

	user, err := server.CreateUser("investor@example.com", "password123", 100)
	require.NoError(t, err)
	token, err := server.IssueToken(user.ID, "USER")
	require.NoError(t, err)
	project, err := server.CreateProject("Thar Desert Solar Park", 500, 2500)
	require.NoError(t, err)
	coupon, err := server.CreateCoupon("SOLAR10", models.DiscountPercentage, 10, 500, 200)
	require.NoError(t, err)

	subscribe := func() *httptest.ResponseRecorder {
		body := strings.NewReader(`{"contributionAmount": 1000, "couponCode": "SOLAR10"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/subscriptions/%d", project.ID), body)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		server.Engine().ServeHTTP(w, req)
		return w
	}

	w := subscribe()
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Insufficient wallet balance")

	var reloaded Coupon
	require.NoError(t, server.DB.First(&reloaded, coupon.ID).Error)
	assert.Equal(t, 0, reloaded.CurrentUsage)

	// Once the wallet covers the discounted price the same coupon applies.
	require.NoError(t, server.DB.Model(&Wallet{}).Where("user_id = ?", user.ID).
		Update("balance", 2000).Error)

	w = subscribe()
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, server.DB.First(&reloaded, coupon.ID).Error)
	assert.Equal(t, 1, reloaded.CurrentUsage)
}

func TestServersAreIsolated(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	defer a.Close()
	b, err := New()
	require.NoError(t, err)
	defer b.Close()

	_, err = a.CreateUser("only-in-a@example.com", "password123", 0)
	require.NoError(t, err)

	var count int64
	require.NoError(t, b.DB.Model(&User{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
