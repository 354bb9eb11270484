// Package wallet is the single source of truth for the wallet balance within
// a client process. Workflows publish server-reported balances here instead of
// holding private optimistic copies, so every view observes the same number.
package wallet

import (
	"context"
	"sync"

	"github.com/sunyield/sunyield-go/api"
	"github.com/sunyield/sunyield-go/models"
)

// Store caches the current wallet snapshot and fans out changes to
// subscribers. Server responses are the only mutation trigger: Refresh pulls
// the authoritative snapshot, SetBalance and ApplyDelta record what a server
// response reported.
type Store struct {
	client *api.Client

	mu      sync.RWMutex
	wallet  models.Wallet
	loaded  bool
	nextSub int
	subs    map[int]func(models.Wallet)
}

func NewStore(client *api.Client) *Store {
	return &Store{
		client: client,
		subs:   make(map[int]func(models.Wallet)),
	}
}

// Refresh fetches the wallet from the server and publishes it.
func (s *Store) Refresh(ctx context.Context) (models.Wallet, error) {
	w, err := s.client.Wallet(ctx)
	if err != nil {
		return models.Wallet{}, err
	}
	s.publish(*w)
	return *w, nil
}

// Balance returns the last observed balance, and whether any snapshot has
// been observed at all.
func (s *Store) Balance() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallet.Balance, s.loaded
}

func (s *Store) Wallet() (models.Wallet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallet, s.loaded
}

// SetBalance records a balance a server response reported outright (e.g. the
// newBalance field of a subscription result).
func (s *Store) SetBalance(balance float64) {
	s.mu.Lock()
	w := s.wallet
	w.Balance = balance
	s.mu.Unlock()
	s.publish(w)
}

// ApplyDelta records a server-confirmed balance change: positive for funds
// added, negative for funds leaving the wallet.
func (s *Store) ApplyDelta(delta float64) {
	s.mu.Lock()
	w := s.wallet
	w.Balance += delta
	s.mu.Unlock()
	s.publish(w)
}

// Subscribe registers fn to run on every published snapshot. The returned
// function cancels the subscription.
func (s *Store) Subscribe(fn func(models.Wallet)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) publish(w models.Wallet) {
	s.mu.Lock()
	s.wallet = w
	s.loaded = true
	fns := make([]func(models.Wallet), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(w)
	}
}
