package ports

import (
	"context"

	"github.com/vitrine/checkout-service/internal/domain/promotion"
)

// PromotionSource serves the active promotions for a store. Satisfied
// by StoreRepository directly and by the in-memory promotion cache the
// refresher keeps warm.
type PromotionSource interface {
	GetActivePromotions(ctx context.Context, storeID string) ([]promotion.Promotion, error)
}
