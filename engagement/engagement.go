// Package engagement covers the reinvest, donate and gift actions performed
// against accrued credits, plus their stats/history views. The three actions
// share one validation and submission shape, differing only in target.
package engagement

import (
	"context"
	"errors"
	"strings"

	"github.com/sunyield/sunyield-go/api"
	"github.com/sunyield/sunyield-go/models"
	"github.com/sunyield/sunyield-go/wallet"
)

var (
	ErrAmountRequired    = errors.New("amount must be greater than 0")
	ErrProjectRequired   = errors.New("a project must be selected")
	ErrRecipientRequired = errors.New("recipient email is required")
	// ErrKYCRequired is the advisory client-side gate on gifting; the server
	// enforces the authoritative check.
	ErrKYCRequired = errors.New("KYC approval is required to send gifts")
)

// Service executes engagement actions and publishes resulting balances to the
// wallet store.
type Service struct {
	client *api.Client
	store  *wallet.Store
}

func NewService(client *api.Client, store *wallet.Store) *Service {
	return &Service{client: client, store: store}
}

func (s *Service) Stats(ctx context.Context) (*models.EngagementStats, error) {
	return s.client.EngagementStats(ctx)
}

func (s *Service) History(ctx context.Context) ([]models.EngagementTransaction, error) {
	return s.client.EngagementHistory(ctx)
}

// Reinvest puts credits back into a project, increasing invested capital.
func (s *Service) Reinvest(ctx context.Context, projectID uint, amount float64, couponCode string) (*api.EngagementResult, error) {
	if amount <= 0 {
		return nil, ErrAmountRequired
	}
	if projectID == 0 {
		return nil, ErrProjectRequired
	}
	result, err := s.client.Reinvest(ctx, projectID, amount, couponCode)
	if err != nil {
		return nil, err
	}
	s.store.SetBalance(result.NewBalance)
	return result, nil
}

// Donate gives credits to a project without increasing invested capital.
func (s *Service) Donate(ctx context.Context, projectID uint, amount float64, couponCode string) (*api.EngagementResult, error) {
	if amount <= 0 {
		return nil, ErrAmountRequired
	}
	if projectID == 0 {
		return nil, ErrProjectRequired
	}
	result, err := s.client.Donate(ctx, projectID, amount, couponCode)
	if err != nil {
		return nil, err
	}
	s.store.SetBalance(result.NewBalance)
	return result, nil
}

// CanGift is the advisory gate mirrored in the UI as a disabled button: the
// sender's KYC must be approved.
func CanGift(sender *models.User) bool {
	return sender != nil && sender.KYCStatus == models.KYCApproved
}

// Gift transfers credits to a peer user identified by email.
func (s *Service) Gift(ctx context.Context, sender *models.User, recipientEmail string, amount float64) (*api.EngagementResult, error) {
	if amount <= 0 {
		return nil, ErrAmountRequired
	}
	if strings.TrimSpace(recipientEmail) == "" {
		return nil, ErrRecipientRequired
	}
	if !CanGift(sender) {
		return nil, ErrKYCRequired
	}
	result, err := s.client.Gift(ctx, recipientEmail, amount)
	if err != nil {
		return nil, err
	}
	s.store.SetBalance(result.NewBalance)
	return result, nil
}
