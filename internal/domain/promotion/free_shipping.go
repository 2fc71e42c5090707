package promotion

import (
	"math"
	"sort"

	"github.com/vitrine/checkout-service/internal/domain/cart"
)

// remainingEpsilon is the band, in currency units, within which two
// unachieved free-shipping promotions count as equally close. Inside
// it the general-scope promotion wins, so the cart banner does not ask
// for a specific category when a blanket offer is nearly as close.
const remainingEpsilon = 50.0

// FreeShippingOffer is a free-shipping promotion candidate with its
// progress against the cart.
type FreeShippingOffer struct {
	Promotion *Promotion
	// Remaining is how much eligible total is still missing; zero
	// means the threshold is already met.
	Remaining float64
	General   bool
}

func (o FreeShippingOffer) Achieved() bool {
	return o.Remaining == 0
}

// SelectFreeShipping picks the free-shipping promotion worth showing
// for this cart: achieved ones first, then the closest, preferring a
// general-scope offer when the distances are within the epsilon.
// Returns nil when no active automatic free-shipping promotion exists.
func SelectFreeShipping(promotions []Promotion, items []cart.Item, cartTotal float64) *FreeShippingOffer {
	offers := make([]FreeShippingOffer, 0, len(promotions))
	for idx := range promotions {
		p := &promotions[idx]
		if !p.Active || !p.Automatic() || p.Kind != KindFreeShipping {
			continue
		}

		remaining := p.MinimumTotal - EligibleTotal(p, items, cartTotal)
		if remaining < 0 {
			remaining = 0
		}

		offers = append(offers, FreeShippingOffer{
			Promotion: p,
			Remaining: remaining,
			General:   p.AppliesToAll(),
		})
	}

	if len(offers) == 0 {
		return nil
	}

	sort.SliceStable(offers, func(i, j int) bool {
		a, b := offers[i], offers[j]
		if a.Achieved() != b.Achieved() {
			return a.Achieved()
		}
		if !a.Achieved() && !b.Achieved() &&
			math.Abs(a.Remaining-b.Remaining) < remainingEpsilon &&
			a.General != b.General {
			return a.General
		}
		return a.Remaining < b.Remaining
	})

	return &offers[0]
}
