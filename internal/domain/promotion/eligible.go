package promotion

import (
	"github.com/vitrine/checkout-service/internal/domain/cart"
)

// EligibleTotal computes the portion of the cart subtotal that counts
// toward the promotion's minimum-value rule. A wildcard (or absent)
// category scope makes the whole subtotal eligible; otherwise only
// lines in the scoped categories count.
//
// Free-shipping progress, the checkout free-shipping detector and
// coupon minimum validation all go through this function so their
// totals never diverge.
func EligibleTotal(p *Promotion, items []cart.Item, cartTotal float64) float64 {
	if p.AppliesToAll() {
		return cartTotal
	}

	var total float64
	for _, item := range items {
		if p.matchesCategory(item.Category) {
			total += item.LineTotal()
		}
	}
	return total
}
