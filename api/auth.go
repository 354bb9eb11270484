package api

import (
	"context"
	"net/http"

	"github.com/sunyield/sunyield-go/models"
)

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required"`
	Contact  string `json:"contact" validate:"required"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and triggers OTP dispatch. It does not
// authenticate; the caller must verify the OTP to obtain a token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", nil, req, nil)
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "otp": otp}
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/verify-otp", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ResendOTP(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/resend-otp", nil, map[string]string{"email": email}, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", nil, map[string]string{"email": email}, nil)
}

// CurrentUser fetches the user the bearer token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
