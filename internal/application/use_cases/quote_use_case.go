package use_cases

import (
	"context"

	"github.com/vitrine/checkout-service/internal/application/ports"
	"github.com/vitrine/checkout-service/internal/domain/cart"
	"github.com/vitrine/checkout-service/internal/domain/errors"
	"github.com/vitrine/checkout-service/internal/domain/promotion"
	"github.com/vitrine/checkout-service/internal/domain/shipping"
	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

// Quote is everything the checkout screen derives from the cart on
// each recomputation.
type Quote struct {
	Subtotal float64 `json:"subtotal"`

	FreeShippingName      string  `json:"free_shipping_name,omitempty"`
	FreeShippingRemaining float64 `json:"free_shipping_remaining,omitempty"`

	ShippingCost    float64 `json:"shipping_cost"`
	ShippingMethod  string  `json:"shipping_method,omitempty"`
	ShippingError   string  `json:"shipping_error,omitempty"`
	CheckoutBlocked bool    `json:"checkout_blocked"`

	CouponCode string  `json:"coupon_code,omitempty"`
	Discount   float64 `json:"discount"`

	Total float64 `json:"total"`
}

type QuoteUseCase struct {
	stores   ports.StoreRepository
	promos   ports.PromotionSource
	resolver *ShippingResolver
	log      *logger.Logger
}

func NewQuoteUseCase(stores ports.StoreRepository, promos ports.PromotionSource, resolver *ShippingResolver, log *logger.Logger) *QuoteUseCase {
	return &QuoteUseCase{
		stores:   stores,
		promos:   promos,
		resolver: resolver,
		log:      log,
	}
}

type resolveFunc func(ctx context.Context, key string, req ShippingRequest) (*shipping.Quote, error)

// Build recomputes the derived totals for the given cart state,
// resolving shipping immediately. Used where the caller needs the
// final answer now, such as checkout submission.
func (uc *QuoteUseCase) Build(ctx context.Context, storeID, sessionID string, items []cart.Item, addr shipping.Address, coupon *promotion.AppliedCoupon) (*Quote, error) {
	return uc.build(ctx, storeID, sessionID, items, addr, coupon, uc.resolver.Resolve)
}

// BuildDebounced recomputes the totals through the debounced shipping
// path, waiting out the session's quiet window so a burst of
// recomputations collapses into a single geocoder round trip. Returns
// ErrResolutionSuperseded when a newer recomputation for the same
// session replaces this one.
func (uc *QuoteUseCase) BuildDebounced(ctx context.Context, storeID, sessionID string, items []cart.Item, addr shipping.Address, coupon *promotion.AppliedCoupon) (*Quote, error) {
	return uc.build(ctx, storeID, sessionID, items, addr, coupon, uc.resolveDebounced)
}

func (uc *QuoteUseCase) resolveDebounced(ctx context.Context, key string, req ShippingRequest) (*shipping.Quote, error) {
	type outcome struct {
		quote *shipping.Quote
		err   error
	}
	results := make(chan outcome, 1)
	uc.resolver.ResolveDebounced(ctx, key, req, func(quote *shipping.Quote, err error) {
		results <- outcome{quote: quote, err: err}
	})

	select {
	case o := <-results:
		return o.quote, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (uc *QuoteUseCase) build(ctx context.Context, storeID, sessionID string, items []cart.Item, addr shipping.Address, coupon *promotion.AppliedCoupon, resolve resolveFunc) (*Quote, error) {
	store, err := uc.stores.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	promotions, err := uc.promos.GetActivePromotions(ctx, storeID)
	if err != nil {
		uc.log.Error("Failed to load promotions", "error", err, "store_id", storeID)
		return nil, err
	}

	fees, err := uc.stores.GetDeliveryFees(ctx, storeID)
	if err != nil {
		uc.log.Error("Failed to load delivery fees", "error", err, "store_id", storeID)
		return nil, err
	}

	var subtotal float64
	for _, item := range items {
		subtotal += item.LineTotal()
	}

	quote := &Quote{Subtotal: subtotal}

	if offer := promotion.SelectFreeShipping(promotions, items, subtotal); offer != nil {
		quote.FreeShippingName = offer.Promotion.Name
		quote.FreeShippingRemaining = offer.Remaining
	}

	if coupon != nil {
		quote.CouponCode = coupon.Code
		quote.Discount = coupon.Discount
	}

	result, shipErr := resolve(ctx, storeID+":"+sessionID, ShippingRequest{
		Address:    addr,
		Items:      items,
		CartTotal:  subtotal,
		Promotions: promotions,
		Coupon:     coupon,
		Settings:   store.Shipping,
		Fees:       fees,
	})

	switch {
	case shipErr == nil:
		quote.ShippingCost = result.Cost
		quote.ShippingMethod = result.Method
	case shipErr == errors.ErrResolutionSuperseded:
		return nil, shipErr
	case shipErr == errors.ErrAddressIncomplete:
		// Not calculated yet; advisory only.
	default:
		quote.ShippingError = shipErr.Error()
		quote.CheckoutBlocked = errors.Blocking(shipErr)
	}

	quote.Total = subtotal + quote.ShippingCost - quote.Discount
	if quote.Total < 0 {
		quote.Total = 0
	}

	return quote, nil
}
