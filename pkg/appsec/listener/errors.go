package listener

import (
	"errors"
	"fmt"

	"bastion-hq/rampart/pkg/appsec/addresses"
)

// Common sentinel errors.
var (
	// ErrNoAddresses indicates a subscription with an empty address set.
	ErrNoAddresses = errors.New("subscription requires at least one address")

	// ErrNilCallback indicates a subscription without a callback.
	ErrNilCallback = errors.New("subscription callback cannot be nil")
)

// InvalidAddressError indicates a subscription referenced an address name
// that is not recognized. It is fatal to that registration call.
type InvalidAddressError struct {
	Address addresses.Address
}

// Error returns the error message.
func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address %q", e.Address)
}
