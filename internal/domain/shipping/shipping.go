package shipping

import (
	"fmt"
	"math"
	"strings"
)

type Mode string

const (
	// ModeDistance prices delivery by road-less distance between the
	// store and the customer.
	ModeDistance Mode = "distance"
	// ModeTable prices delivery from the store's per-region fee table.
	ModeTable Mode = "table"
)

// Settings is the per-store shipping configuration loaded from the
// record store.
type Settings struct {
	Mode          Mode
	PerKmRate     float64
	MinimumCharge float64
	// MaxRadiusKm limits the delivery area; zero means unlimited.
	MaxRadiusKm  float64
	StoreAddress Address
}

// DeliveryFee is one row of the fixed lookup table. Region is free
// text matched case-insensitively against neighborhood then city.
type DeliveryFee struct {
	Region string
	Cost   float64
}

// Quote is the outcome of a successful shipping resolution.
type Quote struct {
	Cost   float64 `json:"cost"`
	Method string  `json:"method"`
}

const (
	MethodLocalDelivery = "Entrega Local"
	MethodArrange       = "A combinar / Retirada"
)

func CouponMethod(code string) string {
	return fmt.Sprintf("Frete grátis (cupom %s)", strings.ToUpper(code))
}

func PromotionMethod(name string) string {
	return fmt.Sprintf("Frete grátis (%s)", name)
}

func DistanceMethod(distanceKm float64) string {
	return fmt.Sprintf("Entrega (%.0f km)", distanceKm)
}

// MatchDeliveryFee looks the address up in the fee table, neighborhood
// first, city as fallback.
func MatchDeliveryFee(fees []DeliveryFee, addr Address) (DeliveryFee, bool) {
	neighborhood := strings.TrimSpace(addr.Neighborhood)
	city := strings.TrimSpace(addr.City)

	for _, fee := range fees {
		if neighborhood != "" && strings.EqualFold(strings.TrimSpace(fee.Region), neighborhood) {
			return fee, true
		}
	}

	for _, fee := range fees {
		if city != "" && strings.EqualFold(strings.TrimSpace(fee.Region), city) {
			return fee, true
		}
	}

	return DeliveryFee{}, false
}

// DistancePrice applies the per-km rate with the configured floor.
func DistancePrice(distanceKm float64, s Settings) float64 {
	return math.Max(distanceKm*s.PerKmRate, s.MinimumCharge)
}
