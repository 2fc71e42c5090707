package promotion

import (
	"testing"

	"github.com/vitrine/checkout-service/internal/domain/cart"
)

func TestSelectFreeShippingPrefersAchieved(t *testing.T) {
	promotions := []Promotion{
		{ID: "far", Kind: KindFreeShipping, MinimumTotal: 500, Active: true},
		{ID: "met", Kind: KindFreeShipping, MinimumTotal: 100, Active: true},
	}

	offer := SelectFreeShipping(promotions, nil, 150)
	if offer == nil {
		t.Fatal("expected an offer, got nil")
	}
	if offer.Promotion.ID != "met" || !offer.Achieved() {
		t.Errorf("expected achieved offer met, got %s remaining %.2f", offer.Promotion.ID, offer.Remaining)
	}
}

func TestSelectFreeShippingClosestWins(t *testing.T) {
	promotions := []Promotion{
		{ID: "far", Kind: KindFreeShipping, MinimumTotal: 500, Categories: []string{"shoes"}, Active: true},
		{ID: "near", Kind: KindFreeShipping, MinimumTotal: 300, Categories: []string{"hats"}, Active: true},
	}
	items := []cart.Item{
		{ProductID: "p1", Quantity: 1, UnitPrice: 100, Category: "shoes"},
		{ProductID: "p2", Quantity: 1, UnitPrice: 100, Category: "hats"},
	}

	offer := SelectFreeShipping(promotions, items, 200)
	if offer == nil || offer.Promotion.ID != "near" {
		t.Fatalf("expected near, got %+v", offer)
	}
	if offer.Remaining != 200 {
		t.Errorf("expected remaining 200, got %.2f", offer.Remaining)
	}
}

func TestSelectFreeShippingGeneralWinsInsideEpsilon(t *testing.T) {
	// The scoped offer is 30 closer, inside the 50 epsilon, so the
	// general-scope one is still shown.
	promotions := []Promotion{
		{ID: "scoped", Kind: KindFreeShipping, MinimumTotal: 100, Categories: []string{"shoes"}, Active: true},
		{ID: "general", Kind: KindFreeShipping, MinimumTotal: 180, Active: true},
	}
	items := []cart.Item{
		{ProductID: "p1", Quantity: 1, UnitPrice: 50, Category: "shoes"},
	}

	offer := SelectFreeShipping(promotions, items, 100)
	if offer == nil || offer.Promotion.ID != "general" {
		t.Fatalf("expected general, got %+v", offer)
	}
}

func TestSelectFreeShippingScopedWinsOutsideEpsilon(t *testing.T) {
	promotions := []Promotion{
		{ID: "scoped", Kind: KindFreeShipping, MinimumTotal: 100, Categories: []string{"shoes"}, Active: true},
		{ID: "general", Kind: KindFreeShipping, MinimumTotal: 400, Active: true},
	}
	items := []cart.Item{
		{ProductID: "p1", Quantity: 1, UnitPrice: 50, Category: "shoes"},
	}

	offer := SelectFreeShipping(promotions, items, 100)
	if offer == nil || offer.Promotion.ID != "scoped" {
		t.Fatalf("expected scoped, got %+v", offer)
	}
}

func TestSelectFreeShippingIgnoresCouponsAndOtherKinds(t *testing.T) {
	promotions := []Promotion{
		{ID: "coupon", Kind: KindFreeShipping, MinimumTotal: 10, CouponCode: "FRETE10", Active: true},
		{ID: "percent", Kind: KindPercent, Value: 10, Active: true},
		{ID: "inactive", Kind: KindFreeShipping, MinimumTotal: 10, Active: false},
	}

	if offer := SelectFreeShipping(promotions, nil, 1000); offer != nil {
		t.Errorf("expected nil, got %+v", offer)
	}
}
