package geocode

import (
	"context"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/ports"
)

// Mock is a fixture-driven ports.Geocoder for tests, grounded on the
// teacher's MockDistanceProvider pattern: a fixed lookup table plus an
// optional forced error.
type Mock struct {
	Forwards map[string]ports.ForwardResult
	Reverses map[domain.Coordinate]domain.Address
	Err      error
}

// Forward implements ports.Geocoder.
func (m *Mock) Forward(ctx context.Context, addr domain.AddressInput) (ports.ForwardResult, error) {
	if m.Err != nil {
		return ports.ForwardResult{}, m.Err
	}
	if addr.Structured != nil && addr.Structured.Coordinate != nil {
		return ports.ForwardResult{Coordinate: *addr.Structured.Coordinate, Confidence: 1}, nil
	}
	key := normalizeKey(addressText(addr))
	if r, ok := m.Forwards[key]; ok {
		return r, nil
	}
	return ports.ForwardResult{}, ports.ErrAddressNotFound
}

// Reverse implements ports.Geocoder.
func (m *Mock) Reverse(ctx context.Context, c domain.Coordinate) (domain.Address, error) {
	if m.Err != nil {
		return domain.Address{}, m.Err
	}
	if a, ok := m.Reverses[c]; ok {
		return a, nil
	}
	return domain.Address{}, ports.ErrAddressNotFound
}
