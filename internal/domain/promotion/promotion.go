package promotion

import (
	"strings"
)

type DiscountKind int

const (
	KindUnknown DiscountKind = iota
	KindPercent
	KindFixed
	KindFreeShipping
)

// ParseDiscountKind collapses the loose type strings found in stored
// promotion records ("percentual", "fixo", "frete_gratis", "shipping",
// "frete", ...) into a single tagged variant at the loading boundary.
func ParseDiscountKind(s string) DiscountKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "percentual", "percent", "percentage":
		return KindPercent
	case "fixo", "fixed":
		return KindFixed
	case "frete_gratis", "frete", "shipping", "free_shipping":
		return KindFreeShipping
	default:
		return KindUnknown
	}
}

func (k DiscountKind) String() string {
	switch k {
	case KindPercent:
		return "percentual"
	case KindFixed:
		return "fixed"
	case KindFreeShipping:
		return "free_shipping"
	default:
		return "unknown"
	}
}

// ScopeAll is the wildcard category scope sentinel.
const ScopeAll = "all"

type Promotion struct {
	ID    string
	Name  string
	Kind  DiscountKind
	Value float64
	// MinimumTotal is the eligible-total threshold; zero means no
	// minimum.
	MinimumTotal float64
	// Categories scopes the promotion; empty or containing ScopeAll
	// means it applies to the whole catalog.
	Categories []string
	ProductIDs []string
	// CouponCode, when non-empty, means the promotion is never applied
	// automatically and only activates through explicit coupon entry.
	CouponCode string
	Active     bool
}

// Automatic reports whether the promotion applies without a coupon.
func (p *Promotion) Automatic() bool {
	return p.CouponCode == ""
}

// AppliesToAll reports whether the category scope is the wildcard.
func (p *Promotion) AppliesToAll() bool {
	if len(p.Categories) == 0 {
		return true
	}
	for _, c := range p.Categories {
		if strings.EqualFold(strings.TrimSpace(c), ScopeAll) {
			return true
		}
	}
	return false
}

func (p *Promotion) matchesCategory(category string) bool {
	if category == "" {
		return false
	}
	for _, c := range p.Categories {
		if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(category)) {
			return true
		}
	}
	return false
}

func (p *Promotion) matchesProduct(productID string) bool {
	for _, id := range p.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// Matches reports whether the promotion's scope covers the given
// product: wildcard scope, a scoped category hit, or an explicit
// product-id hit.
func (p *Promotion) Matches(productID, category string) bool {
	if p.AppliesToAll() {
		return true
	}
	if p.matchesCategory(category) {
		return true
	}
	return p.matchesProduct(productID)
}

// DiscountAmount computes the absolute discount the promotion takes
// off the given price. Shipping promotions never discount the price.
func (p *Promotion) DiscountAmount(price float64) float64 {
	switch p.Kind {
	case KindPercent:
		return price * p.Value / 100
	case KindFixed:
		return p.Value
	default:
		return 0
	}
}

func (p *Promotion) MatchesCoupon(code string) bool {
	return p.CouponCode != "" && strings.ToUpper(p.CouponCode) == strings.ToUpper(strings.TrimSpace(code))
}
