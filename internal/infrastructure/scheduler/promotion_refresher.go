package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/vitrine/checkout-service/internal/application/ports"
	"github.com/vitrine/checkout-service/internal/domain/promotion"
	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

// PromotionRefresher keeps an in-memory copy of every store's active
// promotions so quote recomputation does not hit the record store on
// each render. Promotions are normalized at load; the refresher
// satisfies ports.PromotionSource.
type PromotionRefresher struct {
	stores ports.StoreRepository
	logger *logger.Logger

	mu    sync.RWMutex
	cache map[string][]promotion.Promotion

	interval time.Duration
	stopChan chan struct{}
}

func NewPromotionRefresher(stores ports.StoreRepository, log *logger.Logger, interval time.Duration) *PromotionRefresher {
	return &PromotionRefresher{
		stores:   stores,
		logger:   log,
		cache:    make(map[string][]promotion.Promotion),
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (r *PromotionRefresher) Start(ctx context.Context) {
	r.logger.Info("Starting promotion refresher", "interval", r.interval.String())

	if err := r.refresh(ctx); err != nil {
		r.logger.Error("Initial promotion refresh failed", "error", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Promotion refresher stopped")
			return
		case <-r.stopChan:
			r.logger.Info("Promotion refresher stopped")
			return
		case <-ticker.C:
			if err := r.refresh(ctx); err != nil {
				r.logger.Error("Promotion refresh failed", "error", err)
			}
		}
	}
}

func (r *PromotionRefresher) Stop() {
	close(r.stopChan)
}

func (r *PromotionRefresher) refresh(ctx context.Context) error {
	storeIDs, err := r.stores.ListStoreIDs(ctx)
	if err != nil {
		return err
	}

	fresh := make(map[string][]promotion.Promotion, len(storeIDs))
	for _, storeID := range storeIDs {
		promotions, err := r.stores.GetActivePromotions(ctx, storeID)
		if err != nil {
			r.logger.Error("Failed to load promotions", "error", err, "store_id", storeID)
			continue
		}
		fresh[storeID] = promotions
	}

	r.mu.Lock()
	for storeID, promotions := range fresh {
		r.cache[storeID] = promotions
	}
	r.mu.Unlock()

	r.logger.Debug("Promotions refreshed", "stores", len(fresh))
	return nil
}

// GetActivePromotions serves from cache, falling back to the record
// store for a context not loaded yet.
func (r *PromotionRefresher) GetActivePromotions(ctx context.Context, storeID string) ([]promotion.Promotion, error) {
	r.mu.RLock()
	cached, ok := r.cache[storeID]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	promotions, err := r.stores.GetActivePromotions(ctx, storeID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[storeID] = promotions
	r.mu.Unlock()

	return promotions, nil
}
