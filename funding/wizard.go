// Package funding implements the add-funds wizard: amount and coupon entry,
// payment-method selection, then a two-phase order create/confirm against the
// backend's simulated gateway.
package funding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sunyield/sunyield-go/api"
	"github.com/sunyield/sunyield-go/config"
	"github.com/sunyield/sunyield-go/models"
	"github.com/sunyield/sunyield-go/wallet"
)

type Step string

const (
	StepDetails Step = "details"
	StepPayment Step = "payment"
	StepSuccess Step = "success"
)

type PaymentMethod string

const (
	MethodCard       PaymentMethod = "card"
	MethodUPI        PaymentMethod = "upi"
	MethodNetBanking PaymentMethod = "netbanking"
)

type CardDetails struct {
	Number string `validate:"required,min=12,max=19"`
	Name   string `validate:"required"`
	Expiry string `validate:"required,len=5"`
	CVV    string `validate:"required,min=3,max=4"`
}

type UPIDetails struct {
	UPIID string `validate:"required"`
}

type NetBankingDetails struct {
	Bank string `validate:"required"`
}

// AppliedCoupon is the transient result of a coupon validation; it lives only
// for the duration of the wizard.
type AppliedCoupon struct {
	Code     string
	Discount float64
}

// Receipt describes a completed payment.
type Receipt struct {
	OrderID string
	Amount  float64
	Method  PaymentMethod
	Time    time.Time
}

// ErrConfirmPending means the payment order was created but its confirmation
// failed; the order may still settle. Resume with ConfirmPending rather than
// paying again.
var ErrConfirmPending = errors.New("payment order awaiting confirmation")

// ErrPaymentInFlight guards against double submission.
var ErrPaymentInFlight = errors.New("a payment is already being processed")

// Wizard walks details → payment → success, strictly forward/backward.
// Success is terminal and reachable only through a confirmed payment.
type Wizard struct {
	client   *api.Client
	store    *wallet.Store
	cfg      *config.Config
	validate *validator.Validate

	mu           sync.Mutex
	step         Step
	amount       float64
	coupon       *AppliedCoupon
	method       PaymentMethod
	card         CardDetails
	upi          UPIDetails
	netbanking   NetBankingDetails
	inFlight     bool
	pendingOrder string
	receipt      *Receipt
}

func NewWizard(client *api.Client, store *wallet.Store, cfg *config.Config) *Wizard {
	return &Wizard{
		client:   client,
		store:    store,
		cfg:      cfg,
		validate: validator.New(),
		step:     StepDetails,
		amount:   1000,
		method:   MethodCard,
	}
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) Receipt() *Receipt {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.receipt
}

// SetAmount accepts any value; out-of-range amounts are not rejected here,
// they only disable Proceed.
func (w *Wizard) SetAmount(amount float64) {
	w.mu.Lock()
	w.amount = amount
	w.mu.Unlock()
}

func (w *Wizard) Amount() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.amount
}

// CanProceed reports whether the amount is inside the permitted funding range.
func (w *Wizard) CanProceed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.amount >= w.cfg.MinFundingAmount && w.amount <= w.cfg.MaxFundingAmount
}

// Proceed advances details → payment.
func (w *Wizard) Proceed() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepDetails {
		return fmt.Errorf("cannot proceed from step %q", w.step)
	}
	if w.amount < w.cfg.MinFundingAmount || w.amount > w.cfg.MaxFundingAmount {
		return fmt.Errorf("amount must be between %.0f and %.0f", w.cfg.MinFundingAmount, w.cfg.MaxFundingAmount)
	}
	w.step = StepPayment
	return nil
}

// Back returns payment → details. Success cannot be left.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepPayment {
		return fmt.Errorf("cannot go back from step %q", w.step)
	}
	w.step = StepDetails
	return nil
}

// ApplyCoupon validates the code against the current amount. An unusable
// coupon is a business error carrying the server's message.
func (w *Wizard) ApplyCoupon(ctx context.Context, code string) (float64, error) {
	if code == "" {
		return 0, errors.New("coupon code is required")
	}
	amount := w.Amount()
	result, err := w.client.ValidateCoupon(ctx, code, amount)
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
	w.mu.Lock()
	w.coupon = &AppliedCoupon{Code: code, Discount: result.Discount}
	w.mu.Unlock()
	return result.Discount, nil
}

func (w *Wizard) RemoveCoupon() {
	w.mu.Lock()
	w.coupon = nil
	w.mu.Unlock()
}

func (w *Wizard) Coupon() *AppliedCoupon {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.coupon
}

// FinalAmount is the payable amount after the applied discount, never
// negative.
func (w *Wizard) FinalAmount() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	var discount float64
	if w.coupon != nil {
		discount = w.coupon.Discount
	}
	return models.PayableAmount(w.amount, discount)
}

func (w *Wizard) SelectMethod(method PaymentMethod) {
	w.mu.Lock()
	w.method = method
	w.mu.Unlock()
}

func (w *Wizard) SetCardDetails(d CardDetails) {
	w.mu.Lock()
	w.card = d
	w.mu.Unlock()
}

func (w *Wizard) SetUPIDetails(d UPIDetails) {
	w.mu.Lock()
	w.upi = d
	w.mu.Unlock()
}

func (w *Wizard) SetNetBankingDetails(d NetBankingDetails) {
	w.mu.Lock()
	w.netbanking = d
	w.mu.Unlock()
}

func (w *Wizard) validateMethodDetails() error {
	switch w.method {
	case MethodCard:
		if err := w.validate.Struct(w.card); err != nil {
			return fmt.Errorf("please fill in all card details: %w", err)
		}
	case MethodUPI:
		if err := w.validate.Struct(w.upi); err != nil {
			return fmt.Errorf("please enter a UPI id: %w", err)
		}
	case MethodNetBanking:
		if err := w.validate.Struct(w.netbanking); err != nil {
			return fmt.Errorf("please select a bank: %w", err)
		}
	default:
		return fmt.Errorf("unknown payment method %q", w.method)
	}
	return nil
}

// Pay runs the two-phase protocol: create an order for the final amount,
// wait out the simulated gateway, then confirm. The wallet store is updated
// with the amount the server actually credited. Failure at either phase
// leaves the wizard on the payment step; a phase-two failure additionally
// returns ErrConfirmPending so the order can be resumed.
func (w *Wizard) Pay(ctx context.Context) (*Receipt, error) {
	w.mu.Lock()
	if w.step != StepPayment {
		w.mu.Unlock()
		return nil, fmt.Errorf("cannot pay from step %q", w.step)
	}
	if w.inFlight {
		w.mu.Unlock()
		return nil, ErrPaymentInFlight
	}
	if err := w.validateMethodDetails(); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.inFlight = true
	method := w.method
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.inFlight = false
		w.mu.Unlock()
	}()

	order, err := w.client.CreateAddFundsOrder(ctx, w.FinalAmount())
	if err != nil {
		return nil, err
	}
	if !order.Success {
		msg := order.Message
		if msg == "" {
			msg = "failed to create payment order"
		}
		return nil, &api.Error{Kind: api.KindBusiness, Message: msg}
	}

	w.mu.Lock()
	w.pendingOrder = order.OrderID
	w.mu.Unlock()

	if err := sleepCtx(ctx, w.cfg.GatewayDelay); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfirmPending, order.OrderID)
	}

	return w.confirm(ctx, order.OrderID, method)
}

// ConfirmPending retries phase two for an order whose confirmation failed.
func (w *Wizard) ConfirmPending(ctx context.Context) (*Receipt, error) {
	w.mu.Lock()
	orderID := w.pendingOrder
	method := w.method
	w.mu.Unlock()
	if orderID == "" {
		return nil, errors.New("no payment order awaiting confirmation")
	}
	return w.confirm(ctx, orderID, method)
}

func (w *Wizard) confirm(ctx context.Context, orderID string, method PaymentMethod) (*Receipt, error) {
	result, err := w.client.ConfirmAddFunds(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfirmPending, orderID)
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "payment processing failed"
		}
		return nil, &api.Error{Kind: api.KindBusiness, Message: msg}
	}

	// The server-reported amount wins over the client's computed final
	// amount.
	w.store.ApplyDelta(result.Amount)

	if result.OrderID == "" {
		result.OrderID = orderID
	}
	receipt := &Receipt{
		OrderID: result.OrderID,
		Amount:  result.Amount,
		Method:  method,
		Time:    time.Now(),
	}
	w.mu.Lock()
	w.pendingOrder = ""
	w.receipt = receipt
	w.step = StepSuccess
	w.mu.Unlock()
	return receipt, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
