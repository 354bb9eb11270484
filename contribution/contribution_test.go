package contribution

import (
	"context"
	"net/http"
	"sync/atomic"
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
		APIBaseURL:      baseURL,
		AdminPathPrefix: "/admin",
		RequestTimeout:  5 * time.Second,
	}
}

type env struct {
	client  *api.Client
	store   *wallet.Store
	server  *apitest.Server
	project models.Project
}

func setup(t *testing.T, balance float64) env {
	t.Helper()

	server, err := apitest.New()
	require.NoError(t, err)
	t.Cleanup(server.Close)
	cfg := testConfig(server.Start())

	user, err := server.CreateUser("investor@example.com", "password123", balance)
	require.NoError(t, err)
	token, err := server.IssueToken(user.ID, "USER")
	require.NoError(t, err)

	project, err := server.CreateProject("Thar Desert Solar Park", 500, 2500)
	require.NoError(t, err)

	tokens := api.NewMemoryTokenStore()
	tokens.SetToken(api.ScopeUser, token)
	client := api.NewClient(cfg, tokens)

	store := wallet.NewStore(client)
	_, err = store.Refresh(context.Background())
	require.NoError(t, err)

	return env{
		client: client,
		store:  store,
		server: server,
		project: models.Project{
			ID:              project.ID,
			Name:            project.Name,
			MinContribution: project.MinContribution,
			Status:          models.ProjectActive,
		},
	}
}

func TestSubmitSuccess(t *testing.T) {
	e := setup(t, 5000)
	flow := NewFlow(e.client, e.store, e.project)

	// Amount is pre-filled with the project minimum.
	assert.Equal(t, 500.0, flow.Amount())
	flow.SetAmount(1000)
	require.True(t, flow.CanSubmit())

	result, err := flow.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "Thar Desert Solar Park", result.ProjectName)
	assert.Equal(t, 1000.0, result.Amount)
	assert.Equal(t, 1000.0, result.OriginalAmount)
	assert.Equal(t, 0.0, result.DiscountAmount)
	assert.Equal(t, 20.0, result.ReservedCapacity) // ₹50 per watt
	assert.Equal(t, 4000.0, result.NewBalance)

	// The server-reported balance is what the store publishes.
	balance, loaded := e.store.Balance()
	assert.True(t, loaded)
	assert.Equal(t, 4000.0, balance)
}

func TestSubmitFlexibleAmountAboveMinimum(t *testing.T) {
	e := setup(t, 5000)
	project, err := e.server.CreateProject("Kutch Rooftop Collective", 999, 1200)
	require.NoError(t, err)

	flow := NewFlow(e.client, e.store, models.Project{
		ID:              project.ID,
		Name:            project.Name,
		MinContribution: 999,
	})
	flow.SetAmount(1500)

	result, err := flow.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 1500.0, result.Amount)
	assert.Equal(t, 3500.0, result.NewBalance)

	balance, _ := e.store.Balance()
	assert.Equal(t, 3500.0, balance)
}

func TestSubmitWithCoupon(t *testing.T) {
	e := setup(t, 5000)
	_, err := e.server.CreateCoupon("SOLAR10", models.DiscountPercentage, 10, 500, 200)
	require.NoError(t, err)

	flow := NewFlow(e.client, e.store, e.project)
	flow.SetAmount(1000)

	discount, err := flow.ApplyCoupon(context.Background(), "SOLAR10")
	require.NoError(t, err)
	assert.Equal(t, 100.0, discount)
	assert.Equal(t, 900.0, flow.FinalPrice())

	result, err := flow.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 900.0, result.Amount)
	assert.Equal(t, 1000.0, result.OriginalAmount)
	assert.Equal(t, 100.0, result.DiscountAmount)
	assert.Equal(t, 4100.0, result.NewBalance)
}

func TestDuplicateSubscriptionOutcome(t *testing.T) {
	e := setup(t, 5000)
	ctx := context.Background()

	first := NewFlow(e.client, e.store, e.project)
	result, err := first.Submit(ctx)
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, result.Outcome)

	// A second contribution to the same project is a distinct outcome, not a
	// generic error: Submit returns nil error so callers route it to the
	// reinvest suggestion.
	second := NewFlow(e.client, e.store, e.project)
	result, err = second.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, result.Outcome)
	assert.True(t, api.IsDuplicateSubscription(result.Err))
}

func TestInsufficientBalanceBlocksWithoutNetwork(t *testing.T) {
	var requests atomic.Int64
	countingClient := &http.Client{
		Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			requests.Add(1)
			return nil, context.DeadlineExceeded
		}),
	}

	cfg := testConfig("http://stub.invalid")
	client := api.NewClient(cfg, api.NewMemoryTokenStore(), api.WithHTTPClient(countingClient))
	store := wallet.NewStore(client)
	store.SetBalance(100)

	flow := NewFlow(client, store, models.Project{ID: 1, MinContribution: 500})
	assert.False(t, flow.CanSubmit())
	assert.Equal(t, 400.0, flow.ShortfallAmount())

	_, err := flow.Submit(context.Background())
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(0), requests.Load())
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestSubmitBlockedUntilBalanceKnown(t *testing.T) {
	e := setup(t, 5000)

	// A store that has never observed a snapshot cannot vouch for the
	// balance.
	freshStore := wallet.NewStore(e.client)
	flow := NewFlow(e.client, freshStore, e.project)
	assert.False(t, flow.CanSubmit())

	_, err := flow.Submit(context.Background())
	require.ErrorIs(t, err, ErrInsufficientBalance)
}
