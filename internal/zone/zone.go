// Package zone implements the geographic pre-filter that discards vehicles
// demonstrably far from an order before any scoring work runs (spec §4.4).
package zone

import "dispatch-service/internal/domain"

// Filter narrows candidates to vehicles whose zone is the order's zone or
// adjacent to it. If orderLoc falls outside every defined zone, or no zones
// are configured, the filter is disabled and every candidate passes
// through unchanged.
func Filter(zones []domain.Zone, orderLoc domain.Coordinate, vehicles []domain.Vehicle) []domain.Vehicle {
	orderZone, ok := zoneFor(zones, orderLoc)
	if !ok {
		return vehicles
	}

	out := make([]domain.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		vehicleZone, ok := zoneFor(zones, v.Location)
		if !ok {
			// A vehicle outside every configured zone has no adjacency
			// evidence against it; keep it rather than silently dropping
			// a candidate the partition simply doesn't cover.
			out = append(out, v)
			continue
		}
		if orderZone.IsAdjacentOrSelf(vehicleZone.Name) {
			out = append(out, v)
		}
	}
	return out
}

func zoneFor(zones []domain.Zone, c domain.Coordinate) (domain.Zone, bool) {
	for _, z := range zones {
		if z.Contains(c) {
			return z, true
		}
	}
	return domain.Zone{}, false
}
