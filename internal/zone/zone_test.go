package zone

import (
	"testing"

	"dispatch-service/internal/domain"
)

func fixtureZones() []domain.Zone {
	return []domain.Zone{
		{
			Name: "centro", North: 1, South: -1, East: 1, West: -1,
			Adjacent: map[string]struct{}{"norte": {}},
		},
		{
			Name: "norte", North: 2, South: 1, East: 1, West: -1,
			Adjacent: map[string]struct{}{"centro": {}},
		},
		{
			Name:     "suburbio",
			North:    -5, South: -10, East: 10, West: 5,
			Adjacent: map[string]struct{}{},
		},
	}
}

func TestFilterKeepsSameAndAdjacentZone(t *testing.T) {
	zones := fixtureZones()
	order := domain.Coordinate{Lat: 0, Lon: 0} // centro
	vehicles := []domain.Vehicle{
		{VehicleID: "v-centro", Location: domain.Coordinate{Lat: 0.1, Lon: 0.1}},
		{VehicleID: "v-norte", Location: domain.Coordinate{Lat: 1.5, Lon: 0}},
		{VehicleID: "v-suburbio", Location: domain.Coordinate{Lat: -7, Lon: 7}},
	}

	kept := Filter(zones, order, vehicles)
	ids := make(map[string]bool)
	for _, v := range kept {
		ids[v.VehicleID] = true
	}

	if !ids["v-centro"] || !ids["v-norte"] {
		t.Fatalf("expected same-zone and adjacent-zone vehicles kept, got %v", ids)
	}
	if ids["v-suburbio"] {
		t.Fatalf("expected non-adjacent zone vehicle filtered out, got %v", ids)
	}
}

func TestFilterIsAdjacencyClosed(t *testing.T) {
	zones := fixtureZones()
	vehicle := []domain.Vehicle{{VehicleID: "v1", Location: domain.Coordinate{Lat: 0.5, Lon: 0}}} // centro

	centroOrder := domain.Coordinate{Lat: 0, Lon: 0}
	norteOrder := domain.Coordinate{Lat: 1.5, Lon: 0}

	keptForCentro := Filter(zones, centroOrder, vehicle)
	keptForNorte := Filter(zones, norteOrder, vehicle)

	if len(keptForCentro) != 1 {
		t.Fatalf("expected vehicle kept for its own zone")
	}
	if len(keptForNorte) != 1 {
		t.Fatalf("expected vehicle kept for the adjacent zone too (adjacency-closed)")
	}
}

func TestFilterDisabledWhenOrderOutsideEveryZone(t *testing.T) {
	zones := fixtureZones()
	order := domain.Coordinate{Lat: 50, Lon: 50} // outside every zone
	vehicles := []domain.Vehicle{
		{VehicleID: "v1", Location: domain.Coordinate{Lat: 0, Lon: 0}},
		{VehicleID: "v2", Location: domain.Coordinate{Lat: -7, Lon: 7}},
	}

	kept := Filter(zones, order, vehicles)
	if len(kept) != len(vehicles) {
		t.Fatalf("expected filter disabled (all vehicles kept) when order is outside every zone, got %d", len(kept))
	}
}
