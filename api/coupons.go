package api

import (
	"context"
	"net/http"

	"github.com/sunyield/sunyield-go/models"
)

// CouponValidation is the server's answer to a validate call. Valid false is
// not an error; the coupon is simply unusable for this amount.
type CouponValidation struct {
	Valid    bool    `json:"valid"`
	Discount float64 `json:"discount"`
	Message  string  `json:"message,omitempty"`
}

func (c *Client) ValidateCoupon(ctx context.Context, code string, amount float64) (*CouponValidation, error) {
	body := map[string]any{"code": code, "amount": amount}
	var result CouponValidation
	if err := c.do(ctx, http.MethodPost, "/api/coupons/validate", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ActiveCoupons(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := c.do(ctx, http.MethodGet, "/api/coupons/active", nil, nil, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}
