package ports

import (
	"context"

	"github.com/vitrine/checkout-service/internal/pkg/geo"
)

// Geocoder maps a free-text address to coordinates. A nil point with a
// nil error means the address could not be located; errors are
// reserved for transport failures.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*geo.Point, error)
}

// PostalLookup resolves a postal code into address fields for form
// prefill. Failure degrades to manual entry, never to an error page.
type PostalLookup interface {
	Lookup(ctx context.Context, postalCode string) (*PostalAddress, error)
}

type PostalAddress struct {
	PostalCode   string `json:"postal_code"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}
