package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sunyield/sunyield-go/models"
)

// Admin endpoints live under the admin path prefix and therefore carry the
// admin token (see Client token routing).

type DashboardStats struct {
	TotalUsers         int `json:"totalUsers"`
	TotalProjects      int `json:"totalProjects"`
	PendingKYC         int `json:"pendingKyc"`
	TotalSubscriptions int `json:"totalSubscriptions"`
}

func (c *Client) AdminDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.do(ctx, http.MethodGet, c.adminPrefix+"/dashboard/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) AdminUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, http.MethodGet, c.adminPrefix+"/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) AdminSetUserRole(ctx context.Context, userID uint, role models.Role) error {
	path := fmt.Sprintf("%s/users/%d/role", c.adminPrefix, userID)
	return c.do(ctx, http.MethodPost, path, nil, map[string]models.Role{"role": role}, nil)
}

// ---- projects ----

type ProjectInput struct {
	Name                    string               `json:"name" validate:"required"`
	Location                string               `json:"location" validate:"required"`
	EnergyCapacity          float64              `json:"energyCapacity" validate:"gt=0"`
	SubscriptionPrice       float64              `json:"subscriptionPrice" validate:"gte=0"`
	MinContribution         float64              `json:"minContribution" validate:"gte=0"`
	Efficiency              models.Efficiency    `json:"efficiency,omitempty"`
	OperationalValidityYear int                  `json:"operationalValidityYear,omitempty"`
	Status                  models.ProjectStatus `json:"status"`
	Description             string               `json:"description,omitempty"`
}

func (c *Client) AdminProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.do(ctx, http.MethodGet, c.adminPrefix+"/projects", nil, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) AdminCreateProject(ctx context.Context, input ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodPost, c.adminPrefix+"/projects", nil, input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) AdminUpdateProject(ctx context.Context, id uint, input ProjectInput) (*models.Project, error) {
	path := fmt.Sprintf("%s/projects/%d", c.adminPrefix, id)
	var project models.Project
	if err := c.do(ctx, http.MethodPut, path, nil, input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) AdminPauseProject(ctx context.Context, id uint) error {
	path := fmt.Sprintf("%s/projects/%d/pause", c.adminPrefix, id)
	return c.do(ctx, http.MethodPatch, path, nil, nil, nil)
}

func (c *Client) AdminDeleteProject(ctx context.Context, id uint) error {
	path := fmt.Sprintf("%s/projects/%d", c.adminPrefix, id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// ---- KYC ----

func (c *Client) AdminPendingKYC(ctx context.Context) ([]models.KYC, error) {
	var kycs []models.KYC
	if err := c.do(ctx, http.MethodGet, c.adminPrefix+"/kyc/pending", nil, nil, &kycs); err != nil {
		return nil, err
	}
	return kycs, nil
}

func (c *Client) AdminApproveKYC(ctx context.Context, id uint) error {
	path := fmt.Sprintf("%s/kyc/%d/approve", c.adminPrefix, id)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

func (c *Client) AdminRejectKYC(ctx context.Context, id uint) error {
	path := fmt.Sprintf("%s/kyc/%d/reject", c.adminPrefix, id)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

// ---- payments ----

func (c *Client) AdminPendingSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := c.do(ctx, http.MethodGet, c.adminPrefix+"/subscriptions/pending", nil, nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (c *Client) AdminApprovePayment(ctx context.Context, subscriptionID uint) error {
	path := fmt.Sprintf("%s/subscriptions/%d/approve", c.adminPrefix, subscriptionID)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

func (c *Client) AdminRejectPayment(ctx context.Context, subscriptionID uint) error {
	path := fmt.Sprintf("%s/subscriptions/%d/reject", c.adminPrefix, subscriptionID)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

// ---- withdrawals ----

func (c *Client) AdminApproveWithdrawal(ctx context.Context, id uint) error {
	path := fmt.Sprintf("%s/withdrawals/%d/approve", c.adminPrefix, id)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

func (c *Client) AdminRejectWithdrawal(ctx context.Context, id uint) error {
	path := fmt.Sprintf("%s/withdrawals/%d/reject", c.adminPrefix, id)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

// ---- coupons ----

type CouponInput struct {
	Code          string              `json:"code" validate:"required,alphanum,uppercase"`
	Name          string              `json:"name" validate:"required"`
	Description   string              `json:"description,omitempty"`
	DiscountType  models.DiscountType `json:"discountType" validate:"required,oneof=PERCENTAGE FIXED"`
	DiscountValue float64             `json:"discountValue" validate:"required,gt=0"`
	MinAmount     float64             `json:"minAmount" validate:"gte=0"`
	MaxDiscount   float64             `json:"maxDiscount" validate:"gte=0"`
	MaxUsage      int                 `json:"maxUsage" validate:"gte=0"`
	IsActive      bool                `json:"isActive"`
	ValidFrom     string              `json:"validFrom,omitempty"`
	ValidUntil    string              `json:"validUntil,omitempty"`
}

func (c *Client) AdminCoupons(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := c.do(ctx, http.MethodGet, c.adminPrefix+"/coupons", nil, nil, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

func (c *Client) AdminCreateCoupon(ctx context.Context, input CouponInput) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := c.do(ctx, http.MethodPost, c.adminPrefix+"/coupons", nil, input, &coupon); err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (c *Client) AdminUpdateCoupon(ctx context.Context, id uint, input CouponInput) (*models.Coupon, error) {
	path := fmt.Sprintf("%s/coupons/%d", c.adminPrefix, id)
	var coupon models.Coupon
	if err := c.do(ctx, http.MethodPut, path, nil, input, &coupon); err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (c *Client) AdminDeleteCoupon(ctx context.Context, id uint) error {
	path := fmt.Sprintf("%s/coupons/%d", c.adminPrefix, id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// ---- config ----

func (c *Client) AdminMonthlyWithdrawalCap(ctx context.Context) (float64, error) {
	var resp struct {
		Amount float64 `json:"amount"`
	}
	if err := c.do(ctx, http.MethodGet, c.adminPrefix+"/config/monthly-withdrawal-cap", nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Amount, nil
}

func (c *Client) AdminSetMonthlyWithdrawalCap(ctx context.Context, amount float64) error {
	body := map[string]float64{"amount": amount}
	return c.do(ctx, http.MethodPost, c.adminPrefix+"/config/monthly-withdrawal-cap", nil, body, nil)
}
