package ports

import (
	"context"

	"github.com/vitrine/checkout-service/internal/domain/cart"
)

// CartRepository is the remote record-store side of the cart. Created
// carts stay "active" forever; abandonment never deletes them.
type CartRepository interface {
	GetCart(ctx context.Context, externalID string) (*cart.Cart, error)

	// CreateCart persists a new cart record and returns its generated
	// external identifier plus the numeric display identifier.
	CreateCart(ctx context.Context, c *cart.Cart, total float64) (externalID string, displayID int64, err error)

	UpdateCart(ctx context.Context, externalID string, items []cart.Item, total float64) error
}

// SessionStore is the durable per-visitor storage mapping a store
// context to the visitor's cart external id, used to re-hydrate a
// returning visitor's cart.
type SessionStore interface {
	GetCartID(ctx context.Context, storeID, sessionID string) (string, error)
	SaveCartID(ctx context.Context, storeID, sessionID, cartID string) error
	RemoveCartID(ctx context.Context, storeID, sessionID string) error
}
