package promotion

import (
	"fmt"
	"strings"

	"github.com/vitrine/checkout-service/internal/domain/cart"
	"github.com/vitrine/checkout-service/internal/domain/errors"
)

// AppliedCoupon is the single coupon active on a cart. FreeShipping
// coupons carry no product discount; they zero the delivery cost in
// the shipping resolution instead.
type AppliedCoupon struct {
	Code         string    `json:"code"`
	Promotion    Promotion `json:"-"`
	Discount     float64   `json:"discount"`
	FreeShipping bool      `json:"free_shipping"`
}

// ApplyCoupon validates a user-entered code against the promotion
// records and computes its discount. Codes are compared upper-cased.
func ApplyCoupon(code string, promotions []Promotion, items []cart.Item, cartTotal float64) (*AppliedCoupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, errors.ErrCouponNotFound
	}

	var match *Promotion
	for idx := range promotions {
		p := &promotions[idx]
		if p.Active && p.MatchesCoupon(code) {
			match = p
			break
		}
	}
	if match == nil {
		return nil, errors.ErrCouponNotFound
	}

	eligible := EligibleTotal(match, items, cartTotal)
	if match.MinimumTotal > 0 && eligible < match.MinimumTotal {
		if match.AppliesToAll() {
			return nil, fmt.Errorf("%w: mínimo de %.2f em compras", errors.ErrCouponBelowMinimum, match.MinimumTotal)
		}
		return nil, fmt.Errorf("%w: mínimo de %.2f em %s", errors.ErrCouponBelowMinimum,
			match.MinimumTotal, strings.Join(match.Categories, ", "))
	}

	applied := &AppliedCoupon{
		Code:      code,
		Promotion: *match,
	}

	switch match.Kind {
	case KindFreeShipping:
		applied.FreeShipping = true
	case KindPercent:
		applied.Discount = eligible * match.Value / 100
	case KindFixed:
		// Fixed coupons never exceed the eligible amount.
		applied.Discount = match.Value
		if applied.Discount > eligible {
			applied.Discount = eligible
		}
	}

	return applied, nil
}
