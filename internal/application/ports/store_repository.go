package ports

import (
	"context"

	"github.com/vitrine/checkout-service/internal/domain/catalog"
	"github.com/vitrine/checkout-service/internal/domain/promotion"
	"github.com/vitrine/checkout-service/internal/domain/shipping"
)

// StoreRepository reads the per-store records the engine consumes:
// settings, catalog, stock, promotions and the delivery-fee table.
type StoreRepository interface {
	GetStore(ctx context.Context, storeID string) (*catalog.Store, error)
	ListStoreIDs(ctx context.Context) ([]string, error)

	GetProduct(ctx context.Context, storeID, productID string) (*catalog.Product, error)
	GetProducts(ctx context.Context, storeID string) ([]catalog.Product, error)

	// GetStock returns the units available for the exact attribute
	// combination; a negative count means stock is not tracked.
	GetStock(ctx context.Context, storeID, productID, attributeKey string) (int, error)

	GetActivePromotions(ctx context.Context, storeID string) ([]promotion.Promotion, error)

	GetDeliveryFees(ctx context.Context, storeID string) ([]shipping.DeliveryFee, error)
}
