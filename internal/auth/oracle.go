package auth

import (
	"context"
	"sync"

	"github.com/coachkit/livechat/internal/domain"
)

// OwnershipOracle answers whether a coach manages a given client. It
// is consulted on every join and results are never cached here, so a
// revocation takes effect on the next join attempt, not retroactively
// for already-joined connections.
type OwnershipOracle interface {
	OwnsClient(ctx context.Context, coach domain.UserID, client domain.ClientID) (bool, error)
}

// StaticOracle is a fixed ownership table for development and tests.
type StaticOracle struct {
	mu    sync.RWMutex
	owned map[domain.UserID]map[domain.ClientID]struct{}
}

func NewStaticOracle() *StaticOracle {
	return &StaticOracle{owned: make(map[domain.UserID]map[domain.ClientID]struct{})}
}

func (o *StaticOracle) Grant(coach domain.UserID, client domain.ClientID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.owned[coach] == nil {
		o.owned[coach] = make(map[domain.ClientID]struct{})
	}
	o.owned[coach][client] = struct{}{}
}

func (o *StaticOracle) Revoke(coach domain.UserID, client domain.ClientID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.owned[coach], client)
}

func (o *StaticOracle) OwnsClient(_ context.Context, coach domain.UserID, client domain.ClientID) (bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.owned[coach][client]
	return ok, nil
}
