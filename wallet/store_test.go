package wallet

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
)

func TestStorePublishesToSubscribers(t *testing.T) {
	store := NewStore(nil)

	var observed []float64
	cancel := store.Subscribe(func(w models.Wallet) {
		observed = append(observed, w.Balance)
	})

	store.SetBalance(1000)
	store.ApplyDelta(500)
	store.ApplyDelta(-200)

	cancel()
	store.SetBalance(9999) // not observed after cancel

	assert.Equal(t, []float64{1000, 1500, 1300}, observed)

	balance, loaded := store.Balance()
	assert.True(t, loaded)
	assert.Equal(t, 9999.0, balance)
}

func TestStoreUnloadedUntilFirstSnapshot(t *testing.T) {
	store := NewStore(nil)
	_, loaded := store.Balance()
	assert.False(t, loaded)
	_, loaded = store.Wallet()
	assert.False(t, loaded)
}

func TestRefreshFetchesServerSnapshot(t *testing.T) {
	server, err := apitest.New()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		APIBaseURL:      server.Start(),
		AdminPathPrefix: "/admin",
		RequestTimeout:  5 * time.Second,
	}

	user, err := server.CreateUser("investor@example.com", "password123", 2500)
	require.NoError(t, err)
	token, err := server.IssueToken(user.ID, "USER")
	require.NoError(t, err)

	tokens := api.NewMemoryTokenStore()
	tokens.SetToken(api.ScopeUser, token)
	store := NewStore(api.NewClient(cfg, tokens))

	var published float64
	store.Subscribe(func(w models.Wallet) { published = w.Balance })

	w, err := store.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2500.0, w.Balance)
	assert.Equal(t, 2500.0, published)

	balance, loaded := store.Balance()
	assert.True(t, loaded)
	assert.Equal(t, 2500.0, balance)
}
