package models

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

type Coupon struct {
	ID            uint         `json:"id"`
	Code          string       `json:"code"`
	Name          string       `json:"name,omitempty"`
	Description   string       `json:"description,omitempty"`
	DiscountType  DiscountType `json:"discountType"`
	DiscountValue float64      `json:"discountValue"`
	MinAmount     float64      `json:"minAmount,omitempty"`
	MaxDiscount   float64      `json:"maxDiscount,omitempty"`
	MaxUsage      int          `json:"maxUsage,omitempty"`
	CurrentUsage  int          `json:"currentUsage"`
	IsActive      bool         `json:"isActive"`
	ValidFrom     *time.Time   `json:"validFrom,omitempty"`
	ValidUntil    *time.Time   `json:"validUntil,omitempty"`
}

// Usable reports whether the coupon can be applied to the given amount at the
// given instant: active, within its validity window, under its usage cap and
// over its minimum order amount.
func (c Coupon) Usable(amount float64, now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false
	}
	if c.MaxUsage > 0 && c.CurrentUsage >= c.MaxUsage {
		return false
	}
	return amount >= c.MinAmount
}

// Discount computes the monetary discount for the given amount. Percentage
// coupons are capped by MaxDiscount when set; the result never exceeds the
// amount itself.
func (c Coupon) Discount(amount float64) float64 {
	var discount float64
	switch c.DiscountType {
	case DiscountPercentage:
		discount = amount * c.DiscountValue / 100
		if c.MaxDiscount > 0 && discount > c.MaxDiscount {
			discount = c.MaxDiscount
		}
	case DiscountFixed:
		discount = c.DiscountValue
	}
	if discount > amount {
		discount = amount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
