// Package session tracks the authenticated user for one client instance.
// Sessions are plain injectable objects: construct one per client (or per
// test) instead of sharing process-global state.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sunyield/sunyield-go/api"
	"github.com/sunyield/sunyield-go/models"
)

type State int

const (
	Anonymous State = iota
	Pending
	Authenticated
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

type Session struct {
	client   *api.Client
	validate *validator.Validate

	mu    sync.RWMutex
	state State
	user  *models.User
}

func New(client *api.Client) *Session {
	return &Session{
		client:   client,
		validate: validator.New(),
		state:    Anonymous,
	}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) IsAuthenticated() bool {
	return s.State() == Authenticated
}

func (s *Session) setState(state State, user *models.User) {
	s.mu.Lock()
	s.state = state
	s.user = user
	s.mu.Unlock()
}

// Login persists the token and installs the user. It never calls the network;
// a persistence failure is wrapped and returned with the session unchanged.
func (s *Session) Login(token string, user *models.User) error {
	if err := s.client.Tokens().SetToken(api.ScopeUser, token); err != nil {
		return fmt.Errorf("failed to persist session token: %w", err)
	}
	s.setState(Authenticated, user)
	return nil
}

// LoginWithCredentials exchanges credentials for a token. On failure the
// session state is left unchanged and the server's message is surfaced.
func (s *Session) LoginWithCredentials(ctx context.Context, email, password string) error {
	prevState, prevUser := s.State(), s.User()
	s.setState(Pending, prevUser)

	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.setState(prevState, prevUser)
		return err
	}
	return s.Login(resp.Token, resp.User)
}

// Register creates an account and triggers OTP dispatch. The session stays
// anonymous until the OTP is verified.
func (s *Session) Register(ctx context.Context, email, password, fullName, contact string) error {
	req := api.RegisterRequest{
		Email:    email,
		Password: password,
		FullName: fullName,
		Contact:  contact,
	}
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid registration details: %w", err)
	}
	return s.client.Register(ctx, req)
}

// VerifyOTP exchanges a one-time code for a session token and logs in.
func (s *Session) VerifyOTP(ctx context.Context, email, otp string) error {
	resp, err := s.client.VerifyOTP(ctx, email, otp)
	if err != nil {
		return err
	}
	return s.Login(resp.Token, resp.User)
}

func (s *Session) ResendOTP(ctx context.Context, email string) error {
	return s.client.ResendOTP(ctx, email)
}

// Logout clears the persisted token and in-memory user. Idempotent.
func (s *Session) Logout() {
	s.client.Tokens().ClearToken(api.ScopeUser)
	s.setState(Anonymous, nil)
}

// UpdateUser replaces the in-memory user, e.g. after a profile edit or a KYC
// status change.
func (s *Session) UpdateUser(user *models.User) {
	s.mu.Lock()
	if s.state == Authenticated {
		s.user = user
	}
	s.mu.Unlock()
}

// Restore rebuilds the session from a persisted token. A token that is absent,
// visibly expired or rejected by the server leaves the session anonymous with
// the token cleared; there is no retry.
func (s *Session) Restore(ctx context.Context) error {
	token := s.client.Tokens().Token(api.ScopeUser)
	if token == "" {
		s.setState(Anonymous, nil)
		return nil
	}

	if expired(token, time.Now()) {
		s.client.Tokens().ClearToken(api.ScopeUser)
		s.setState(Anonymous, nil)
		return nil
	}

	s.setState(Pending, nil)
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		s.client.Tokens().ClearToken(api.ScopeUser)
		s.setState(Anonymous, nil)
		return fmt.Errorf("failed to restore session: %w", err)
	}
	s.setState(Authenticated, user)
	return nil
}

// expired decodes the token without verifying its signature — the client has
// no key material — purely to skip a doomed current-user fetch. Tokens that
// don't parse are left for the server to judge.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
