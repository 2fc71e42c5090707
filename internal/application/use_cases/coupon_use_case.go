package use_cases

import (
	"context"

	"github.com/vitrine/checkout-service/internal/application/ports"
	"github.com/vitrine/checkout-service/internal/domain/cart"
	"github.com/vitrine/checkout-service/internal/domain/promotion"
	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

type CouponUseCase struct {
	promos ports.PromotionSource
	log    *logger.Logger
}

func NewCouponUseCase(promos ports.PromotionSource, log *logger.Logger) *CouponUseCase {
	return &CouponUseCase{
		promos: promos,
		log:    log,
	}
}

// Apply validates the code against the store's active promotions and
// computes its discount against the cart's eligible total.
func (uc *CouponUseCase) Apply(ctx context.Context, storeID, code string, items []cart.Item) (*promotion.AppliedCoupon, error) {
	promotions, err := uc.promos.GetActivePromotions(ctx, storeID)
	if err != nil {
		uc.log.Error("Failed to load promotions for coupon", "error", err, "store_id", storeID)
		return nil, err
	}

	var subtotal float64
	for _, item := range items {
		subtotal += item.LineTotal()
	}

	applied, err := promotion.ApplyCoupon(code, promotions, items, subtotal)
	if err != nil {
		return nil, err
	}

	uc.log.Info("Coupon applied",
		"store_id", storeID,
		"code", applied.Code,
		"discount", applied.Discount,
		"free_shipping", applied.FreeShipping,
	)
	return applied, nil
}
