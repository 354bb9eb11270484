// Package admin drives the dashboard panels: users, projects, KYC, pending
// payments, coupons and platform config. Every panel is the same cycle —
// fetch a list, mutate a row, re-fetch the list. No optimistic updates and no
// version checks; concurrent admins race with last write winning, as the
// backend does.
package admin

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/sunyield/sunyield-go/api"
	"github.com/sunyield/sunyield-go/models"
)

type Panel struct {
	client   *api.Client
	validate *validator.Validate

	mu              sync.RWMutex
	stats           *api.DashboardStats
	users           []models.User
	projects        []models.Project
	pendingKYC      []models.KYC
	pendingPayments []models.Subscription
	coupons         []models.Coupon
	monthlyCap      float64
}

func NewPanel(client *api.Client) *Panel {
	return &Panel{
		client:   client,
		validate: validator.New(),
	}
}

// RefreshAll loads every tab's data. Individual fetch failures are collected
// so one broken tab doesn't blank the rest of the dashboard.
func (p *Panel) RefreshAll(ctx context.Context) error {
	var firstErr error
	for _, refresh := range []func(context.Context) error{
		p.RefreshStats,
		p.RefreshUsers,
		p.RefreshProjects,
		p.RefreshPendingKYC,
		p.RefreshPendingPayments,
		p.RefreshCoupons,
		p.RefreshMonthlyCap,
	} {
		if err := refresh(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ---- stats ----

func (p *Panel) RefreshStats(ctx context.Context) error {
	stats, err := p.client.AdminDashboardStats(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.stats = stats
	p.mu.Unlock()
	return nil
}

func (p *Panel) Stats() *api.DashboardStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

// ---- users ----

func (p *Panel) RefreshUsers(ctx context.Context) error {
	users, err := p.client.AdminUsers(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.users = users
	p.mu.Unlock()
	return nil
}

func (p *Panel) Users() []models.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.users
}

func (p *Panel) SetUserRole(ctx context.Context, userID uint, role models.Role) error {
	if err := p.client.AdminSetUserRole(ctx, userID, role); err != nil {
		return err
	}
	return p.RefreshUsers(ctx)
}

// ---- projects ----

func (p *Panel) RefreshProjects(ctx context.Context) error {
	projects, err := p.client.AdminProjects(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.projects = projects
	p.mu.Unlock()
	return nil
}

func (p *Panel) Projects() []models.Project {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.projects
}

func (p *Panel) CreateProject(ctx context.Context, input api.ProjectInput) error {
	if err := p.validate.Struct(input); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}
	if _, err := p.client.AdminCreateProject(ctx, input); err != nil {
		return err
	}
	return p.RefreshProjects(ctx)
}

func (p *Panel) UpdateProject(ctx context.Context, id uint, input api.ProjectInput) error {
	if err := p.validate.Struct(input); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}
	if _, err := p.client.AdminUpdateProject(ctx, id, input); err != nil {
		return err
	}
	return p.RefreshProjects(ctx)
}

func (p *Panel) PauseProject(ctx context.Context, id uint) error {
	if err := p.client.AdminPauseProject(ctx, id); err != nil {
		return err
	}
	return p.RefreshProjects(ctx)
}

func (p *Panel) DeleteProject(ctx context.Context, id uint) error {
	if err := p.client.AdminDeleteProject(ctx, id); err != nil {
		return err
	}
	return p.RefreshProjects(ctx)
}

// ---- KYC ----

func (p *Panel) RefreshPendingKYC(ctx context.Context) error {
	kycs, err := p.client.AdminPendingKYC(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.pendingKYC = kycs
	p.mu.Unlock()
	return nil
}

func (p *Panel) PendingKYC() []models.KYC {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pendingKYC
}

func (p *Panel) ApproveKYC(ctx context.Context, id uint) error {
	if err := p.client.AdminApproveKYC(ctx, id); err != nil {
		return err
	}
	return p.RefreshPendingKYC(ctx)
}

func (p *Panel) RejectKYC(ctx context.Context, id uint) error {
	if err := p.client.AdminRejectKYC(ctx, id); err != nil {
		return err
	}
	return p.RefreshPendingKYC(ctx)
}

// ---- payments ----

func (p *Panel) RefreshPendingPayments(ctx context.Context) error {
	subs, err := p.client.AdminPendingSubscriptions(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.pendingPayments = subs
	p.mu.Unlock()
	return nil
}

func (p *Panel) PendingPayments() []models.Subscription {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pendingPayments
}

func (p *Panel) ApprovePayment(ctx context.Context, subscriptionID uint) error {
	if err := p.client.AdminApprovePayment(ctx, subscriptionID); err != nil {
		return err
	}
	return p.RefreshPendingPayments(ctx)
}

func (p *Panel) RejectPayment(ctx context.Context, subscriptionID uint) error {
	if err := p.client.AdminRejectPayment(ctx, subscriptionID); err != nil {
		return err
	}
	return p.RefreshPendingPayments(ctx)
}

// ---- coupons ----

func (p *Panel) RefreshCoupons(ctx context.Context) error {
	coupons, err := p.client.AdminCoupons(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.coupons = coupons
	p.mu.Unlock()
	return nil
}

func (p *Panel) Coupons() []models.Coupon {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.coupons
}

func (p *Panel) CreateCoupon(ctx context.Context, input api.CouponInput) error {
	if err := p.validate.Struct(input); err != nil {
		return fmt.Errorf("invalid coupon: %w", err)
	}
	if _, err := p.client.AdminCreateCoupon(ctx, input); err != nil {
		return err
	}
	return p.RefreshCoupons(ctx)
}

func (p *Panel) UpdateCoupon(ctx context.Context, id uint, input api.CouponInput) error {
	if err := p.validate.Struct(input); err != nil {
		return fmt.Errorf("invalid coupon: %w", err)
	}
	if _, err := p.client.AdminUpdateCoupon(ctx, id, input); err != nil {
		return err
	}
	return p.RefreshCoupons(ctx)
}

func (p *Panel) DeleteCoupon(ctx context.Context, id uint) error {
	if err := p.client.AdminDeleteCoupon(ctx, id); err != nil {
		return err
	}
	return p.RefreshCoupons(ctx)
}

// ---- config ----

func (p *Panel) RefreshMonthlyCap(ctx context.Context) error {
	cap, err := p.client.AdminMonthlyWithdrawalCap(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.monthlyCap = cap
	p.mu.Unlock()
	return nil
}

func (p *Panel) MonthlyCap() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.monthlyCap
}

func (p *Panel) SetMonthlyCap(ctx context.Context, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("monthly cap must be greater than 0")
	}
	if err := p.client.AdminSetMonthlyWithdrawalCap(ctx, amount); err != nil {
		return err
	}
	return p.RefreshMonthlyCap(ctx)
}
