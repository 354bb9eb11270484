package api

import (
	"context"
	"net/http"

	"github.com/sunyield/sunyield-go/models"
)

// EngagementResult is the shared success payload of reinvest, donate and gift.
type EngagementResult struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message,omitempty"`
	Amount     float64 `json:"amount"`
	NewBalance float64 `json:"newBalance"`
}

func (c *Client) EngagementStats(ctx context.Context) (*models.EngagementStats, error) {
	var stats models.EngagementStats
	if err := c.do(ctx, http.MethodGet, "/api/engagement/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) EngagementHistory(ctx context.Context) ([]models.EngagementTransaction, error) {
	var history []models.EngagementTransaction
	if err := c.do(ctx, http.MethodGet, "/api/engagement/history", nil, nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (c *Client) Reinvest(ctx context.Context, projectID uint, amount float64, couponCode string) (*EngagementResult, error) {
	body := map[string]any{"projectId": projectID, "amount": amount}
	if couponCode != "" {
		body["couponCode"] = couponCode
	}
	var result EngagementResult
	if err := c.do(ctx, http.MethodPost, "/api/engagement/reinvest", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Donate(ctx context.Context, projectID uint, amount float64, couponCode string) (*EngagementResult, error) {
	body := map[string]any{"projectId": projectID, "amount": amount}
	if couponCode != "" {
		body["couponCode"] = couponCode
	}
	var result EngagementResult
	if err := c.do(ctx, http.MethodPost, "/api/engagement/donate", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Gift(ctx context.Context, recipientEmail string, amount float64) (*EngagementResult, error) {
	body := map[string]any{"recipientEmail": recipientEmail, "amount": amount}
	var result EngagementResult
	if err := c.do(ctx, http.MethodPost, "/api/engagement/gift", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
