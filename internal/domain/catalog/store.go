package catalog

import (
	"github.com/vitrine/checkout-service/internal/domain/shipping"
)

// Store is the storefront context every cart, product and promotion
// belongs to.
type Store struct {
	ID       string
	Name     string
	Shipping shipping.Settings
}
