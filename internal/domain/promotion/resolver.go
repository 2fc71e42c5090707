package promotion

import (
	"github.com/vitrine/checkout-service/internal/domain/catalog"
)

// BestPromotion picks the automatic promotion that takes the most off
// the product's price. Only active, coupon-less, non-shipping
// promotions whose scope covers the product compete. Ties keep the
// first promotion in input order.
func BestPromotion(product catalog.Product, promotions []Promotion) *Promotion {
	var best *Promotion
	var bestDiscount float64

	for idx := range promotions {
		p := &promotions[idx]
		if !p.Active || !p.Automatic() || p.Kind == KindFreeShipping {
			continue
		}
		if !p.Matches(product.ID, product.Category) {
			continue
		}

		discount := p.DiscountAmount(product.Price)
		if best == nil || discount > bestDiscount {
			best = p
			bestDiscount = discount
		}
	}

	return best
}

// DiscountedPrice returns the product price after the best automatic
// promotion, never below zero.
func DiscountedPrice(product catalog.Product, promotions []Promotion) float64 {
	best := BestPromotion(product, promotions)
	if best == nil {
		return product.Price
	}

	price := product.Price - best.DiscountAmount(product.Price)
	if price < 0 {
		return 0
	}
	return price
}
