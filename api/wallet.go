package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sunyield/sunyield-go/models"
)

func (c *Client) Wallet(ctx context.Context) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := c.do(ctx, http.MethodGet, "/api/wallet", nil, nil, &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (c *Client) WalletTransactions(ctx context.Context) ([]models.WalletTransaction, error) {
	var txs []models.WalletTransaction
	if err := c.do(ctx, http.MethodGet, "/api/wallet/transactions", nil, nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// AddFundsOrder is phase one of the two-phase add-funds protocol: the backend
// has registered a payment order but no money has moved yet.
type AddFundsOrder struct {
	Success    bool    `json:"success"`
	OrderID    string  `json:"orderId"`
	Amount     float64 `json:"amount"`
	PaymentURL string  `json:"paymentUrl,omitempty"`
	Message    string  `json:"message,omitempty"`
}

func (c *Client) CreateAddFundsOrder(ctx context.Context, amount float64) (*AddFundsOrder, error) {
	body := map[string]float64{"amount": amount}
	var order AddFundsOrder
	if err := c.do(ctx, http.MethodPost, "/api/wallet/add-funds", nil, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// AddFundsResult is phase two: the gateway has settled and the backend reports
// the amount actually credited, which may differ from the amount the client
// computed.
type AddFundsResult struct {
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	Amount  float64 `json:"amount"`
	OrderID string  `json:"orderId"`
}

func (c *Client) ConfirmAddFunds(ctx context.Context, orderID string) (*AddFundsResult, error) {
	query := url.Values{"orderId": {orderID}}
	var result AddFundsResult
	if err := c.do(ctx, http.MethodPost, "/api/wallet/add-funds/process-payment", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
