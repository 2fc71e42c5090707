package cartsync

import (
	"context"
	"sync"
	"time"

	"github.com/vitrine/checkout-service/internal/application/ports"
	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

// Registry hands out one Manager per (store, session) pair. Each
// browser session owns its cart exclusively, so managers are never
// shared across visitors.
type Registry struct {
	mu       sync.Mutex
	managers map[string]*Manager

	carts    ports.CartRepository
	sessions ports.SessionStore
	stores   ports.StoreRepository
	log      *logger.Logger
	delay    time.Duration

	onSyncResult func(err error, itemCount int)
}

func NewRegistry(
	carts ports.CartRepository,
	sessions ports.SessionStore,
	stores ports.StoreRepository,
	log *logger.Logger,
	delay time.Duration,
) *Registry {
	return &Registry{
		managers: make(map[string]*Manager),
		carts:    carts,
		sessions: sessions,
		stores:   stores,
		log:      log,
		delay:    delay,
	}
}

// OnSyncResult sets the callback installed on every manager the
// registry creates.
func (r *Registry) OnSyncResult(fn func(err error, itemCount int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onSyncResult = fn
}

// Get returns the manager for the session, creating and hydrating it
// on first use.
func (r *Registry) Get(ctx context.Context, storeID, sessionID string) (*Manager, error) {
	key := storeID + ":" + sessionID

	r.mu.Lock()
	mgr, ok := r.managers[key]
	if !ok {
		mgr = NewManager(storeID, sessionID, r.carts, r.sessions, r.stores, r.log, r.delay)
		if r.onSyncResult != nil {
			mgr.OnSyncResult(r.onSyncResult)
		}
		r.managers[key] = mgr
	}
	r.mu.Unlock()

	if err := mgr.Hydrate(ctx); err != nil {
		return nil, err
	}
	return mgr, nil
}
