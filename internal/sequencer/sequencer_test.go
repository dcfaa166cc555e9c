package sequencer

import (
	"context"
	"testing"
	"time"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/ports"
)

// straightLineProvider answers travel time as great-circle distance over a
// fixed speed, enough to exercise the sequencer without roadnet.
type straightLineProvider struct {
	speedKPH float64
}

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
	return domain.Order{
		OrderID:          id,
		Destination:      domain.AddressInput{Structured: &domain.Address{Coordinate: &c}},
		Deadline:         deadline,
		Priority:         domain.PriorityNormal,
		ResolvedLocation: &c,
	}
}

func TestSequenceExactPreservesStopMultiset(t *testing.T) {
	now := time.Now()
	in := Input{
		Start:     domain.Coordinate{Lat: 0, Lon: 0},
		StartTime: now,
		Orders: []domain.Order{
			orderAt("a", 0, 0.05, now.Add(2*time.Hour)),
			orderAt("b", 0, 0.02, now.Add(2*time.Hour)),
			orderAt("c", 0, 0.08, now.Add(2*time.Hour)),
		},
	}

	result, err := Sequence(context.Background(), straightLineProvider{speedKPH: 30}, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[string]bool{}
	for _, s := range result.Stops {
		if !s.IsStart {
			seen[s.OrderID] = true
		}
	}
	for _, id := range []string{"a", "b", "c"} {
		if !seen[id] {
			t.Fatalf("expected stop %q in result, got %+v", id, result.Stops)
		}
	}
	if len(result.Stops) != 4 {
		t.Fatalf("expected start stop plus 3 delivery stops, got %d", len(result.Stops))
	}
}

func TestSequenceExactDetectsInfeasibility(t *testing.T) {
	now := time.Now()
	in := Input{
		Start:     domain.Coordinate{Lat: 0, Lon: 0},
		StartTime: now,
		Orders: []domain.Order{
			orderAt("far", 0, 1.0, now.Add(time.Minute)),
		},
	}

	result, err := Sequence(context.Background(), straightLineProvider{speedKPH: 30}, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Feasible {
		t.Fatalf("expected infeasible result for an unreachable deadline")
	}
	if result.ViolatingOrderID != "far" {
		t.Fatalf("expected violating order %q, got %q", "far", result.ViolatingOrderID)
	}
}

func TestSequenceETAMonotonicity(t *testing.T) {
	now := time.Now()
	in := Input{
		Start:     domain.Coordinate{Lat: 0, Lon: 0},
		StartTime: now,
		Orders: []domain.Order{
			orderAt("a", 0, 0.01, now.Add(time.Hour)),
			orderAt("b", 0, 0.02, now.Add(time.Hour)),
		},
	}

	result, err := Sequence(context.Background(), straightLineProvider{speedKPH: 30}, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(result.Stops); i++ {
		minGap := time.Duration(domain.ServiceTimeMin * float64(time.Minute))
		if result.Stops[i].ETA.Before(result.Stops[i-1].ETA.Add(minGap)) {
			t.Fatalf("ETA monotonicity violated at stop %d: %v then %v", i, result.Stops[i-1].ETA, result.Stops[i].ETA)
		}
	}
}

func TestSequenceHeuristicHandlesLargeStopCounts(t *testing.T) {
	now := time.Now()
	orders := make([]domain.Order, 0, 12)
	for i := 0; i < 12; i++ {
		orders = append(orders, orderAt(
			string(rune('a'+i)),
			0,
			0.01*float64(i+1),
			now.Add(3*time.Hour),
		))
	}
	in := Input{
		Start:     domain.Coordinate{Lat: 0, Lon: 0},
		StartTime: now,
		Orders:    orders,
		Budget:    200 * time.Millisecond,
	}

	result, err := Sequence(context.Background(), straightLineProvider{speedKPH: 30}, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Stops) != len(orders)+1 {
		t.Fatalf("expected %d stops, got %d", len(orders)+1, len(result.Stops))
	}
	if !result.Feasible {
		t.Fatalf("expected a feasible sequence for generously-spaced deadlines")
	}
}
