package catalog

import (
	"errors"
)

// Product is a priced storefront item. Category is empty when the
// product is uncategorized.
type Product struct {
	ID       string
	StoreID  string
	Name     string
	Price    float64
	Category string
	Active   bool
	Featured bool
}

func NewProduct(id, storeID, name string, price float64) (*Product, error) {
	if id == "" {
		return nil, errors.New("product id cannot be empty")
	}

	if storeID == "" {
		return nil, errors.New("store id cannot be empty")
	}

	if price < 0 {
		return nil, errors.New("price cannot be negative")
	}

	return &Product{
		ID:      id,
		StoreID: storeID,
		Name:    name,
		Price:   price,
		Active:  true,
	}, nil
}
