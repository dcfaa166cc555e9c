package feasibility

import (
	"context"
	"testing"
	"time"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/ports"
)

type straightLineProvider struct{ speedKPH float64 }

func (p straightLineProvider) TravelTime(ctx context.Context, from, to domain.Coordinate) (ports.TravelTimeResult, error) {
	meters := from.GreatCircleMeters(to)
	minutes := (meters / 1000) / p.speedKPH * 60
	return ports.TravelTimeResult{Minutes: minutes}, nil
}

func (p straightLineProvider) TravelTimeMatrix(ctx context.Context, origin domain.Coordinate, destinations []domain.Coordinate) ([]ports.TravelTimeResult, error) {
	out := make([]ports.TravelTimeResult, len(destinations))
	for i, d := range destinations {
		out[i], _ = p.TravelTime(ctx, origin, d)
	}
	return out, nil
}

func (p straightLineProvider) Preload(ctx context.Context, bbox ports.BBox) error { return nil }

func orderAt(id string, lat, lon float64, deadline time.Time) domain.Order {
	c := domain.Coordinate{Lat: lat, Lon: lon}
	return domain.Order{OrderID: id, Deadline: deadline, ResolvedLocation: &c}
}

func TestEvaluateEmptyFleetSingleLeg(t *testing.T) {
	now := time.Now()
	v := domain.Vehicle{VehicleID: "v1", Location: domain.Coordinate{Lat: 0, Lon: 0}, Capacity: 4, MaxWeightKg: 100}
	newOrder := orderAt("new", 0, 0.01, now.Add(time.Hour))

	result, err := Evaluate(context.Background(), straightLineProvider{speedKPH: 30}, v, newOrder, now, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Feasible {
		t.Fatalf("expected feasible single-leg insertion, got %+v", result)
	}
	if result.BaselineDurationMin != 0 {
		t.Fatalf("expected zero baseline duration for an empty fleet, got %f", result.BaselineDurationMin)
	}
}

func TestEvaluateRejectsTightDeadline(t *testing.T) {
	now := time.Now()
	v := domain.Vehicle{
		VehicleID:   "v1",
		Location:    domain.Coordinate{Lat: 0, Lon: 0},
		Capacity:    4,
		MaxWeightKg: 100,
		CurrentOrders: []domain.Order{
			orderAt("committed", 0, 0.02, now.Add(30*time.Minute)),
		},
	}
	newOrder := orderAt("new", 0, 0.2, now.Add(25*time.Minute))

	result, err := Evaluate(context.Background(), straightLineProvider{speedKPH: 10}, v, newOrder, now, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Feasible {
		t.Fatalf("expected infeasible result for an unreachable deadline, got %+v", result)
	}
	if result.ViolatingOrderID == "" {
		t.Fatalf("expected a violating order id to be reported")
	}
}

func TestEvaluateAcceptsAlreadyBrokenBaseline(t *testing.T) {
	now := time.Now()
	v := domain.Vehicle{
		VehicleID:   "v1",
		Location:    domain.Coordinate{Lat: 0, Lon: 0},
		Capacity:    4,
		MaxWeightKg: 100,
		CurrentOrders: []domain.Order{
			// Deadline already in the past: baseline is infeasible before the
			// new order is even considered.
			orderAt("committed", 0, 0.01, now.Add(-time.Hour)),
		},
	}
	newOrder := orderAt("new", 0, 0.01, now.Add(3*time.Hour))

	result, err := Evaluate(context.Background(), straightLineProvider{speedKPH: 30}, v, newOrder, now, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Feasible {
		t.Fatalf("expected the already-broken baseline edge case to be accepted, got %+v", result)
	}
}
