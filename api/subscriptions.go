package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sunyield/sunyield-go/models"
)

type SubscribeRequest struct {
	ContributionAmount float64 `json:"contributionAmount"`
	CouponCode         string  `json:"couponCode,omitempty"`
}

// SubscriptionResult is the structured success payload of a contribution.
type SubscriptionResult struct {
	Success          bool    `json:"success"`
	Message          string  `json:"message,omitempty"`
	ProjectName      string  `json:"projectName"`
	Amount           float64 `json:"amount"`
	OriginalAmount   float64 `json:"originalAmount"`
	DiscountAmount   float64 `json:"discountAmount"`
	ReservedCapacity float64 `json:"reservedCapacity"`
	NewBalance       float64 `json:"newBalance"`
}

// Subscribe contributes to a project, debiting the wallet. A duplicate
// subscription surfaces as an error with KindDuplicateSubscription.
func (c *Client) Subscribe(ctx context.Context, projectID uint, req SubscribeRequest) (*SubscriptionResult, error) {
	path := fmt.Sprintf("/api/subscriptions/%d", projectID)
	var result SubscriptionResult
	if err := c.do(ctx, http.MethodPost, path, nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SubscriptionHistory(ctx context.Context) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := c.do(ctx, http.MethodGet, "/api/subscriptions/history", nil, nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// SubscriptionWebhook reports a payment-gateway outcome for an order. Exposed
// for the simulated gateway; a real gateway calls it server-to-server.
func (c *Client) SubscriptionWebhook(ctx context.Context, orderID, status string) error {
	query := url.Values{"orderId": {orderID}, "status": {status}}
	return c.do(ctx, http.MethodPost, "/api/subscriptions/webhook", query, nil, nil)
}
