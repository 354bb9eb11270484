package funding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunyield/sunyield-go/api"
	"github.com/sunyield/sunyield-go/apitest"
	"github.com/sunyield/sunyield-go/config"
	"github.com/sunyield/sunyield-go/models"
	"github.com/sunyield/sunyield-go/wallet"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		APIBaseURL:       baseURL,
		AdminPathPrefix:  "/admin",
		MinFundingAmount: 100,
		MaxFundingAmount: 100000,
		GatewayDelay:     10 * time.Millisecond,
		RequestTimeout:   5 * time.Second,
	}
}

func setup(t *testing.T, balance float64) (*Wizard, *wallet.Store, *apitest.Server) {
	t.Helper()

	server, err := apitest.New()
	require.NoError(t, err)
	t.Cleanup(server.Close)
	cfg := testConfig(server.Start())

	user, err := server.CreateUser("investor@example.com", "password123", balance)
	require.NoError(t, err)
	token, err := server.IssueToken(user.ID, "USER")
	require.NoError(t, err)

	tokens := api.NewMemoryTokenStore()
	tokens.SetToken(api.ScopeUser, token)
	client := api.NewClient(cfg, tokens)

	store := wallet.NewStore(client)
	_, err = store.Refresh(context.Background())
	require.NoError(t, err)

	return NewWizard(client, store, cfg), store, server
}

func demoCard() CardDetails {
	return CardDetails{Number: "4111111111111111", Name: "Test User", Expiry: "12/30", CVV: "123"}
}

func TestStepTransitions(t *testing.T) {
	wiz, _, _ := setup(t, 0)

	assert.Equal(t, StepDetails, wiz.Step())

	// Payment is unreachable before proceeding.
	_, err := wiz.Pay(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot pay")

	// Back has nowhere to go from details.
	require.Error(t, wiz.Back())

	require.NoError(t, wiz.Proceed())
	assert.Equal(t, StepPayment, wiz.Step())

	// Proceed only moves details → payment.
	require.Error(t, wiz.Proceed())

	require.NoError(t, wiz.Back())
	assert.Equal(t, StepDetails, wiz.Step())
}

func TestAmountBounds(t *testing.T) {
	wiz, _, _ := setup(t, 0)

	wiz.SetAmount(50)
	assert.False(t, wiz.CanProceed())
	require.Error(t, wiz.Proceed())
	assert.Equal(t, StepDetails, wiz.Step())

	wiz.SetAmount(200000)
	assert.False(t, wiz.CanProceed())
	require.Error(t, wiz.Proceed())

	wiz.SetAmount(100)
	assert.True(t, wiz.CanProceed())
	wiz.SetAmount(100000)
	assert.True(t, wiz.CanProceed())
}

func TestPayCreditsWallet(t *testing.T) {
	wiz, store, _ := setup(t, 250)
	ctx := context.Background()

	wiz.SetAmount(1500)
	require.NoError(t, wiz.Proceed())
	wiz.SelectMethod(MethodCard)
	wiz.SetCardDetails(demoCard())

	receipt, err := wiz.Pay(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.OrderID)
	assert.Equal(t, 1500.0, receipt.Amount)
	assert.Equal(t, MethodCard, receipt.Method)
	assert.Equal(t, StepSuccess, wiz.Step())

	balance, loaded := store.Balance()
	assert.True(t, loaded)
	assert.Equal(t, 1750.0, balance)

	// Success is terminal.
	require.Error(t, wiz.Back())
	_, err = wiz.Pay(ctx)
	require.Error(t, err)
}

func TestPayRequiresMethodDetails(t *testing.T) {
	wiz, _, _ := setup(t, 0)

	wiz.SetAmount(500)
	require.NoError(t, wiz.Proceed())

	wiz.SelectMethod(MethodUPI) // no UPI id entered
	_, err := wiz.Pay(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPI")
	assert.Equal(t, StepPayment, wiz.Step())

	wiz.SetUPIDetails(UPIDetails{UPIID: "investor@okaxis"})
	_, err = wiz.Pay(context.Background())
	require.NoError(t, err)
}

func TestCancelledConfirmationCanBeResumed(t *testing.T) {
	wiz, store, _ := setup(t, 0)
	wiz.cfg.GatewayDelay = time.Second

	wiz.SetAmount(500)
	require.NoError(t, wiz.Proceed())
	wiz.SelectMethod(MethodCard)
	wiz.SetCardDetails(demoCard())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := wiz.Pay(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfirmPending))
	assert.Equal(t, StepPayment, wiz.Step())

	// The order was created; confirming it now settles the payment.
	receipt, err := wiz.ConfirmPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 500.0, receipt.Amount)
	assert.Equal(t, StepSuccess, wiz.Step())

	balance, _ := store.Balance()
	assert.Equal(t, 500.0, balance)
}

func TestApplyCoupon(t *testing.T) {
	wiz, _, server := setup(t, 0)
	ctx := context.Background()

	_, err := server.CreateCoupon("SOLAR10", models.DiscountPercentage, 10, 500, 200)
	require.NoError(t, err)

	wiz.SetAmount(1000)
	discount, err := wiz.ApplyCoupon(ctx, "SOLAR10")
	require.NoError(t, err)
	assert.Equal(t, 100.0, discount)
	assert.Equal(t, 900.0, wiz.FinalAmount())

	wiz.RemoveCoupon()
	assert.Equal(t, 1000.0, wiz.FinalAmount())

	_, err = wiz.ApplyCoupon(ctx, "NOPE")
	require.Error(t, err)
	assert.Equal(t, api.KindBusiness, api.KindOf(err))
}
