// Package contribution implements the project subscription workflow: amount
// and coupon entry against a selected project, a balance sufficiency gate,
// and distinct routing of the duplicate-subscription outcome.
package contribution

import (
	"context"
	"errors"
	"sync"

	"github.com/sunyield/sunyield-go/api"
	"github.com/sunyield/sunyield-go/models"
	"github.com/sunyield/sunyield-go/wallet"
)

// Outcome discriminates how a submission ended.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	// OutcomeDuplicate: the user already holds a subscription for this
	// project; callers should offer reinvestment instead of a generic error.
	OutcomeDuplicate
	OutcomeError
)

// Result is the terminal state of a submission.
type Result struct {
	Outcome          Outcome
	ProjectName      string
	Amount           float64
	OriginalAmount   float64
	DiscountAmount   float64
	ReservedCapacity float64
	NewBalance       float64
	Err              error
}

// ErrInsufficientBalance blocks submission before any network call when the
// final price exceeds the wallet balance.
var ErrInsufficientBalance = errors.New("insufficient wallet balance")

// Flow is one contribution attempt against a selected project.
type Flow struct {
	client *api.Client
	store  *wallet.Store

	mu       sync.Mutex
	project  models.Project
	amount   float64
	coupon   *appliedCoupon
	inFlight bool
}

type appliedCoupon struct {
	code     string
	discount float64
}

// NewFlow starts a contribution to project with the amount pre-filled to the
// project's minimum contribution.
func NewFlow(client *api.Client, store *wallet.Store, project models.Project) *Flow {
	return &Flow{
		client:  client,
		store:   store,
		project: project,
		amount:  project.MinimumContribution(),
	}
}

func (f *Flow) Project() models.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.project
}

func (f *Flow) SetAmount(amount float64) {
	f.mu.Lock()
	f.amount = amount
	f.mu.Unlock()
}

func (f *Flow) Amount() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.amount
}

// ApplyCoupon validates the code against the current contribution amount.
func (f *Flow) ApplyCoupon(ctx context.Context, code string) (float64, error) {
	if code == "" {
		return 0, errors.New("coupon code is required")
	}
	result, err := f.client.ValidateCoupon(ctx, code, f.Amount())
	if err != nil {
		return 0, err
	}
	if !result.Valid {
		msg := result.Message
		if msg == "" {
			msg = "invalid or expired coupon code"
		}
		return 0, &api.Error{Kind: api.KindBusiness, Message: msg}
	}
	f.mu.Lock()
	f.coupon = &appliedCoupon{code: code, discount: result.Discount}
	f.mu.Unlock()
	return result.Discount, nil
}

func (f *Flow) RemoveCoupon() {
	f.mu.Lock()
	f.coupon = nil
	f.mu.Unlock()
}

// FinalPrice is the contribution after the applied discount, never negative.
func (f *Flow) FinalPrice() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var discount float64
	if f.coupon != nil {
		discount = f.coupon.discount
	}
	return models.PayableAmount(f.amount, discount)
}

// ShortfallAmount is how much the wallet is missing for the current final
// price; zero when the balance suffices.
func (f *Flow) ShortfallAmount() float64 {
	balance, _ := f.store.Balance()
	if shortfall := f.FinalPrice() - balance; shortfall > 0 {
		return shortfall
	}
	return 0
}

// CanSubmit reports whether the wallet covers the final price.
func (f *Flow) CanSubmit() bool {
	balance, loaded := f.store.Balance()
	return loaded && f.FinalPrice() <= balance
}

// Submit sends the subscription. The balance gate runs first: an insufficient
// wallet returns ErrInsufficientBalance without touching the network. A
// duplicate subscription comes back as OutcomeDuplicate rather than an error
// toast-style result.
func (f *Flow) Submit(ctx context.Context) (*Result, error) {
	if !f.CanSubmit() {
		return nil, ErrInsufficientBalance
	}

	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return nil, errors.New("a subscription is already being submitted")
	}
	f.inFlight = true
	projectID := f.project.ID
	amount := f.amount
	var couponCode string
	if f.coupon != nil {
		couponCode = f.coupon.code
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight = false
		f.mu.Unlock()
	}()

	resp, err := f.client.Subscribe(ctx, projectID, api.SubscribeRequest{
		ContributionAmount: amount,
		CouponCode:         couponCode,
	})
	if err != nil {
		if api.IsDuplicateSubscription(err) {
			return &Result{Outcome: OutcomeDuplicate, Err: err}, nil
		}
		return &Result{Outcome: OutcomeError, Err: err}, err
	}
	if !resp.Success {
		// Some deployments report the failure inside a 200 body.
		failure := api.NewError(400, "", resp.Message)
		if failure.Message == "" {
			failure.Message = "failed to subscribe"
		}
		if api.IsDuplicateSubscription(failure) {
			return &Result{Outcome: OutcomeDuplicate, Err: failure}, nil
		}
		return &Result{Outcome: OutcomeError, Err: failure}, failure
	}

	// The server's newBalance is authoritative.
	f.store.SetBalance(resp.NewBalance)

	return &Result{
		Outcome:          OutcomeSuccess,
		ProjectName:      resp.ProjectName,
		Amount:           resp.Amount,
		OriginalAmount:   resp.OriginalAmount,
		DiscountAmount:   resp.DiscountAmount,
		ReservedCapacity: resp.ReservedCapacity,
		NewBalance:       resp.NewBalance,
	}, nil
}
