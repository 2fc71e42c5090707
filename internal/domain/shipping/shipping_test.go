package shipping

import (
	"testing"
)

func TestMatchDeliveryFeeNeighborhoodBeforeCity(t *testing.T) {
	fees := []DeliveryFee{
		{Region: "Centro", Cost: 5},
		{Region: "Campinas", Cost: 12},
	}
	addr := Address{Neighborhood: "centro", City: "Campinas"}

	fee, ok := MatchDeliveryFee(fees, addr)
	if !ok {
		t.Fatal("expected a match")
	}
	if fee.Cost != 5 {
		t.Errorf("expected neighborhood fee 5, got %.2f", fee.Cost)
	}
}

func TestMatchDeliveryFeeFallsBackToCity(t *testing.T) {
	fees := []DeliveryFee{
		{Region: "Campinas", Cost: 12},
	}
	addr := Address{Neighborhood: "Taquaral", City: " campinas "}

	fee, ok := MatchDeliveryFee(fees, addr)
	if !ok || fee.Cost != 12 {
		t.Errorf("expected city fee 12, got %+v ok=%v", fee, ok)
	}
}

func TestMatchDeliveryFeeNoMatch(t *testing.T) {
	fees := []DeliveryFee{{Region: "Centro", Cost: 5}}
	if _, ok := MatchDeliveryFee(fees, Address{Neighborhood: "Longe", City: "Outra"}); ok {
		t.Error("expected no match")
	}
}

func TestDistancePriceAppliesFloor(t *testing.T) {
	s := Settings{PerKmRate: 2, MinimumCharge: 10}

	if got := DistancePrice(3, s); got != 10 {
		t.Errorf("expected floor 10, got %.2f", got)
	}
	if got := DistancePrice(8, s); got != 16 {
		t.Errorf("expected 16, got %.2f", got)
	}
}

func TestAddressCompleteness(t *testing.T) {
	incomplete := Address{City: "Campinas"}
	if incomplete.CanCalculate() {
		t.Error("expected incomplete address")
	}

	calculable := Address{Neighborhood: "Centro", City: "Campinas"}
	if !calculable.CanCalculate() || calculable.CanGeocode() {
		t.Error("expected calculable but not geocodable")
	}

	geocodable := Address{Neighborhood: "Centro", City: "Campinas", State: "SP"}
	if !geocodable.CanGeocode() {
		t.Error("expected geocodable address")
	}
}

func TestAddressFreeText(t *testing.T) {
	addr := Address{Street: "Rua A", Number: "12", Neighborhood: "Centro", City: "Campinas", State: "SP"}
	want := "Rua A, 12, Centro, Campinas, SP"
	if got := addr.FreeText(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMethodLabels(t *testing.T) {
	if got := CouponMethod("frete10"); got != "Frete grátis (cupom FRETE10)" {
		t.Errorf("unexpected coupon label %q", got)
	}
	if got := PromotionMethod("Acima de 200"); got != "Frete grátis (Acima de 200)" {
		t.Errorf("unexpected promotion label %q", got)
	}
	if got := DistanceMethod(7.4); got != "Entrega (7 km)" {
		t.Errorf("unexpected distance label %q", got)
	}
}
