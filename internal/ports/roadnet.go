package ports

import (
	"context"

	"dispatch-service/internal/domain"
)

// TravelTimeResult is the outcome of one travel-time query.
type TravelTimeResult struct {
	Minutes     float64
	Approximate bool
}

// BBox is a bounding box over the drive-network graph: (north, south,
// east, west), in decimal degrees.
type BBox struct {
	North, South, East, West float64
}

// Contains reports whether c falls inside the box.
func (b BBox) Contains(c domain.Coordinate) bool {
	return c.Lat <= b.North && c.Lat >= b.South && c.Lon <= b.East && c.Lon >= b.West
}

// RoadNetworkProvider offers travel time between coordinates over a
// directed, weighted street graph, honoring one-way streets.
type RoadNetworkProvider interface {
	// TravelTime returns the shortest-path travel time, in minutes,
	// between from and to. On failure (no path, or either endpoint
	// outside coverage) it returns a great-circle estimate flagged
	// Approximate, never an error.
	TravelTime(ctx context.Context, from, to domain.Coordinate) (TravelTimeResult, error)

	// TravelTimeMatrix returns TravelTime(origin, d) for every d in
	// destinations, batched where the implementation can do so more
	// cheaply than one-at-a-time.
	TravelTimeMatrix(ctx context.Context, origin domain.Coordinate, destinations []domain.Coordinate) ([]TravelTimeResult, error)

	// Preload constructs and retains a drive-network graph spanning bbox.
	// Idempotent; non-fatal on failure (the provider degrades to
	// on-demand mode).
	Preload(ctx context.Context, bbox BBox) error
}
