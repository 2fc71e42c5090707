package shipping

import (
	"strings"
)

type Address struct {
	PostalCode   string
	Street       string
	Number       string
	Neighborhood string
	City         string
	State        string
	Complement   string
}

// CanCalculate reports whether the address carries the minimum fields
// any shipping calculation needs.
func (a Address) CanCalculate() bool {
	return strings.TrimSpace(a.Neighborhood) != "" && strings.TrimSpace(a.City) != ""
}

// CanGeocode reports whether the address is complete enough for the
// distance-based calculation, which additionally requires the state.
func (a Address) CanGeocode() bool {
	return a.CanCalculate() && strings.TrimSpace(a.State) != ""
}

// FreeText renders the address the way the geocoding collaborator
// expects it.
func (a Address) FreeText() string {
	parts := make([]string, 0, 5)
	if a.Street != "" {
		street := a.Street
		if a.Number != "" {
			street += ", " + a.Number
		}
		parts = append(parts, street)
	}
	if a.Neighborhood != "" {
		parts = append(parts, a.Neighborhood)
	}
	if a.City != "" {
		parts = append(parts, a.City)
	}
	if a.State != "" {
		parts = append(parts, a.State)
	}
	return strings.Join(parts, ", ")
}
