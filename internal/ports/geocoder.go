package ports

import (
	"context"

	"dispatch-service/internal/domain"
)

// ForwardResult is the outcome of resolving an address to a coordinate.
type ForwardResult struct {
	Coordinate       domain.Coordinate
	NormalizedAddress string
	Confidence       float64
}

// Geocoder resolves addresses to coordinates and back. It is an external
// collaborator: the core only consumes this narrow interface, never the
// concrete upstream provider.
type Geocoder interface {
	// Forward resolves addr to a coordinate. An address no provider can
	// resolve is reported as ErrAddressNotFound; transport and decode
	// failures come back as other errors. It never panics.
	Forward(ctx context.Context, addr domain.AddressInput) (ForwardResult, error)

	// Reverse resolves a coordinate to a structured address, populated
	// with up to two nearest cross-streets when available.
	Reverse(ctx context.Context, c domain.Coordinate) (domain.Address, error)
}

// ErrAddressNotFound is returned by Geocoder.Forward when no upstream
// provider could resolve the address.
var ErrAddressNotFound = geocoderError("address-not-found")

type geocoderError string

func (e geocoderError) Error() string { return string(e) }
