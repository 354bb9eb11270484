package engagement

import (
	"context"
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

type env struct {
	service *Service
	store   *wallet.Store
	server  *apitest.Server
	user    *apitest.User
}

func setup(t *testing.T, balance float64) env {
	t.Helper()

	server, err := apitest.New()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		APIBaseURL:      server.Start(),
		AdminPathPrefix: "/admin",
		RequestTimeout:  5 * time.Second,
	}

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

	return env{service: NewService(client, store), store: store, server: server, user: user}
}

func TestReinvest(t *testing.T) {
	e := setup(t, 2000)
	project, err := e.server.CreateProject("Thar Desert Solar Park", 500, 2500)
	require.NoError(t, err)

	result, err := e.service.Reinvest(context.Background(), project.ID, 600, "")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 600.0, result.Amount)
	assert.Equal(t, 1400.0, result.NewBalance)

	balance, _ := e.store.Balance()
	assert.Equal(t, 1400.0, balance)
}

func TestDonate(t *testing.T) {
	e := setup(t, 2000)
	project, err := e.server.CreateProject("Kutch Rooftop Collective", 500, 1200)
	require.NoError(t, err)

	result, err := e.service.Donate(context.Background(), project.ID, 300, "")
	require.NoError(t, err)
	assert.Equal(t, 1700.0, result.NewBalance)
}

func TestProjectActionValidation(t *testing.T) {
	e := setup(t, 2000)
	ctx := context.Background()

	_, err := e.service.Reinvest(ctx, 1, 0, "")
	assert.ErrorIs(t, err, ErrAmountRequired)
	_, err = e.service.Reinvest(ctx, 0, 100, "")
	assert.ErrorIs(t, err, ErrProjectRequired)
	_, err = e.service.Donate(ctx, 0, 100, "")
	assert.ErrorIs(t, err, ErrProjectRequired)
}

func TestGiftRequiresApprovedKYC(t *testing.T) {
	e := setup(t, 2000)
	sender := &models.User{KYCStatus: models.KYCPending}

	assert.False(t, CanGift(sender))
	_, err := e.service.Gift(context.Background(), sender, "friend@example.com", 100)
	assert.ErrorIs(t, err, ErrKYCRequired)
}

func TestGift(t *testing.T) {
	e := setup(t, 2000)
	require.NoError(t, e.server.ApproveKYCFor(e.user.ID))

	recipient, err := e.server.CreateUser("friend@example.com", "password123", 0)
	require.NoError(t, err)

	sender := &models.User{ID: e.user.ID, KYCStatus: models.KYCApproved}
	result, err := e.service.Gift(context.Background(), sender, "friend@example.com", 250)
	require.NoError(t, err)
	assert.Equal(t, 1750.0, result.NewBalance)

	balance, _ := e.store.Balance()
	assert.Equal(t, 1750.0, balance)

	recipientBalance, err := e.server.Balance(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, recipientBalance)
}

func TestGiftValidation(t *testing.T) {
	e := setup(t, 2000)
	sender := &models.User{KYCStatus: models.KYCApproved}
	ctx := context.Background()

	_, err := e.service.Gift(ctx, sender, "friend@example.com", 0)
	assert.ErrorIs(t, err, ErrAmountRequired)
	_, err = e.service.Gift(ctx, sender, "   ", 100)
	assert.ErrorIs(t, err, ErrRecipientRequired)
}

func TestStatsAndHistory(t *testing.T) {
	e := setup(t, 2000)
	project, err := e.server.CreateProject("Thar Desert Solar Park", 500, 2500)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = e.service.Reinvest(ctx, project.ID, 600, "")
	require.NoError(t, err)
	_, err = e.service.Donate(ctx, project.ID, 100, "")
	require.NoError(t, err)

	stats, err := e.service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 600.0, stats.TotalReinvested)
	assert.Equal(t, 100.0, stats.TotalDonated)
	assert.Equal(t, 2, stats.TotalTransactions)
	assert.Equal(t, 1300.0, stats.AvailableCredits)

	history, err := e.service.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Newest first.
	assert.Equal(t, models.EngagementDonate, history[0].Type)
	assert.Equal(t, "Donation", history[0].Label())
	assert.Equal(t, models.EngagementReinvest, history[1].Type)
}
