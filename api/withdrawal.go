package api

import (
	"context"
	"net/http"

	"github.com/sunyield/sunyield-go/models"
)

type WithdrawalRequestData struct {
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	PayoutMethod string  `json:"payoutMethod" validate:"required"`
	UPIID        string  `json:"upiId" validate:"required"`
}

type WithdrawalResult struct {
	Success bool    `json:"success"`
	OrderID string  `json:"orderId"`
	Amount  float64 `json:"amount"`
	Message string  `json:"message,omitempty"`
	Status  string  `json:"status,omitempty"`
}

func (c *Client) RequestWithdrawal(ctx context.Context, req WithdrawalRequestData) (*WithdrawalResult, error) {
	var result WithdrawalResult
	if err := c.do(ctx, http.MethodPost, "/api/withdrawal/request", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) WithdrawalHistory(ctx context.Context) ([]models.WithdrawalRequest, error) {
	var reqs []models.WithdrawalRequest
	if err := c.do(ctx, http.MethodGet, "/api/withdrawal/history", nil, nil, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// WithdrawalCapInfo fetches the month's cap snapshot used for client-side
// pre-validation; the server re-checks on submission.
func (c *Client) WithdrawalCapInfo(ctx context.Context) (*models.WithdrawalCapInfo, error) {
	var info models.WithdrawalCapInfo
	if err := c.do(ctx, http.MethodGet, "/api/withdrawal/cap-info", nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
