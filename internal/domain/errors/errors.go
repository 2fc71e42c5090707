package errors

import (
	"errors"
)

var (
	ErrStoreNotFound   = errors.New("store not found")
	ErrProductNotFound = errors.New("product not found")

	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartSyncFailed   = errors.New("cart sync failed")

	ErrCouponNotFound     = errors.New("coupon not found")
	ErrCouponBelowMinimum = errors.New("cart total below coupon minimum")

	// ErrAddressIncomplete means shipping simply cannot be calculated
	// yet. It never blocks checkout by itself.
	ErrAddressIncomplete   = errors.New("address incomplete")
	ErrGeocodeFailed       = errors.New("address could not be located")
	ErrOutsideDeliveryArea = errors.New("address outside delivery area")

	// ErrResolutionSuperseded marks a shipping resolution that lost to
	// a newer one and whose result must be discarded.
	ErrResolutionSuperseded = errors.New("shipping resolution superseded")

	ErrCheckoutBlocked = errors.New("checkout blocked by shipping error")
)

// Blocking reports whether err must disable the pay action.
func Blocking(err error) bool {
	return errors.Is(err, ErrGeocodeFailed) || errors.Is(err, ErrOutsideDeliveryArea)
}
