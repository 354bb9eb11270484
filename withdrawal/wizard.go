// Package withdrawal implements the wallet withdrawal wizard: a details step
// with validation recomputed on every change, and a terminal success step
// latched against late-arriving background updates.
package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sunyield/sunyield-go/api"
	"github.com/sunyield/sunyield-go/config"
	"github.com/sunyield/sunyield-go/models"
	"github.com/sunyield/sunyield-go/wallet"
)

type Step string

const (
	StepDetails Step = "details"
	StepSuccess Step = "success"
)

// Receipt describes a submitted withdrawal request.
type Receipt struct {
	OrderID string
	Amount  float64
	UPIID   string
	Time    time.Time
}

var ErrSubmitInFlight = errors.New("a withdrawal is already being submitted")

// Wizard holds the withdrawal form state. Once a submission succeeds the
// wizard is latched: cap-info refreshes and any other late completions cannot
// move it off the success step. The latch matters because the cap-info fetch
// runs concurrently with user input and may resolve after submission.
type Wizard struct {
	client *api.Client
	store  *wallet.Store
	cfg    *config.Config

	mu        sync.Mutex
	step      Step
	amount    float64
	upiID     string
	capInfo   *models.WithdrawalCapInfo
	completed bool
	inFlight  bool
	receipt   *Receipt
}

func NewWizard(client *api.Client, store *wallet.Store, cfg *config.Config) *Wizard {
	return &Wizard{
		client: client,
		store:  store,
		cfg:    cfg,
		step:   StepDetails,
		amount: 1000,
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

func (w *Wizard) SetAmount(amount float64) {
	w.mu.Lock()
	w.amount = amount
	w.mu.Unlock()
}

func (w *Wizard) SetUPIID(upiID string) {
	w.mu.Lock()
	w.upiID = upiID
	w.mu.Unlock()
}

// RefreshCapInfo fetches the monthly cap snapshot. After completion the
// result is discarded so a slow response cannot disturb the success step.
func (w *Wizard) RefreshCapInfo(ctx context.Context) error {
	w.mu.Lock()
	if w.completed {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	info, err := w.client.WithdrawalCapInfo(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	if !w.completed {
		w.capInfo = info
	}
	w.mu.Unlock()
	return nil
}

func (w *Wizard) CapInfo() *models.WithdrawalCapInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.capInfo
}

// Validate recomputes the per-field errors from the current form state and
// the last observed balance.
func (w *Wizard) Validate() Errors {
	balance, _ := w.store.Balance()
	w.mu.Lock()
	defer w.mu.Unlock()
	return Validate(w.amount, w.cfg.MinWithdrawalAmount, balance, w.capInfo, w.upiID)
}

// CanSubmit reports whether the form currently has no validation errors.
func (w *Wizard) CanSubmit() bool {
	return w.Validate().OK()
}

// Submit sends the withdrawal request. Blocked while any validation error is
// present; never issues a network call in that case. On success the wizard
// latches on the success step and the wallet store records the negative
// balance delta.
func (w *Wizard) Submit(ctx context.Context) (*Receipt, error) {
	if errs := w.Validate(); !errs.OK() {
		if errs.Amount != "" {
			return nil, fmt.Errorf("invalid withdrawal: %s", errs.Amount)
		}
		return nil, fmt.Errorf("invalid withdrawal: %s", errs.UPIID)
	}

	w.mu.Lock()
	if w.step != StepDetails {
		w.mu.Unlock()
		return nil, fmt.Errorf("cannot submit from step %q", w.step)
	}
	if w.inFlight {
		w.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	w.inFlight = true
	amount := w.amount
	upiID := w.upiID
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.inFlight = false
		w.mu.Unlock()
	}()

	result, err := w.client.RequestWithdrawal(ctx, api.WithdrawalRequestData{
		Amount:       amount,
		PayoutMethod: "UPI",
		UPIID:        upiID,
	})
	if err != nil {
		return nil, err
	}
	if !result.Success && result.OrderID == "" && result.Status != "SUCCESS" {
		msg := result.Message
		if msg == "" {
			msg = "failed to create withdrawal request"
		}
		return nil, &api.Error{Kind: api.KindBusiness, Message: msg}
	}

	// Funds leave the wallet.
	w.store.ApplyDelta(-amount)

	receipt := &Receipt{
		OrderID: result.OrderID,
		Amount:  amount,
		UPIID:   upiID,
		Time:    time.Now(),
	}
	w.mu.Lock()
	w.completed = true
	w.step = StepSuccess
	w.receipt = receipt
	w.mu.Unlock()
	return receipt, nil
}
