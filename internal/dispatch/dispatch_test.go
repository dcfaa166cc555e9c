package dispatch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"dispatch-service/internal/config"
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

type noopGeocoder struct{}

func (noopGeocoder) Forward(ctx context.Context, addr domain.AddressInput) (ports.ForwardResult, error) {
	return ports.ForwardResult{}, ports.ErrAddressNotFound
}

func (noopGeocoder) Reverse(ctx context.Context, c domain.Coordinate) (domain.Address, error) {
	return domain.Address{}, ports.ErrAddressNotFound
}

func resolvedOrder(id string, lat, lon float64, deadline time.Time, weight float64) domain.Order {
	c := domain.Coordinate{Lat: lat, Lon: lon}
	return domain.Order{
		OrderID:          id,
		Destination:      domain.AddressInput{Structured: &domain.Address{Coordinate: &c}},
		Deadline:         deadline,
		Priority:         domain.PriorityNormal,
		WeightKg:         weight,
		ResolvedLocation: &c,
	}
}

// TestDispatchEmptyFleetVehicleWinsOnInterference mirrors spec scenario S1:
// a vehicle with no committed orders should beat a busy vehicle whose
// interference sub-score is dragged down by existing deadline pressure.
func TestDispatchEmptyFleetVehicleWinsOnInterference(t *testing.T) {
	now := time.Now()
	order := resolvedOrder("order-1", -34.60, -58.38, now.Add(2*time.Hour), 2.8)

	v1 := domain.Vehicle{
		VehicleID: "v1", Location: domain.Coordinate{Lat: -34.59, Lon: -58.37},
		Capacity: 6, MaxWeightKg: 30, PerformanceScore: 0.92,
	}
	v2 := domain.Vehicle{
		VehicleID: "v2", Location: domain.Coordinate{Lat: -34.60, Lon: -58.38},
		Capacity: 8, MaxWeightKg: 150, PerformanceScore: 0.88,
		CurrentOrders: []domain.Order{
			resolvedOrder("committed-1", -34.55, -58.33, now.Add(30*time.Minute), 1),
			resolvedOrder("committed-2", -34.50, -58.28, now.Add(60*time.Minute), 1),
			resolvedOrder("committed-3", -34.45, -58.23, now.Add(105*time.Minute), 1),
		},
	}

	d := New(straightLineProvider{speedKPH: 30}, noopGeocoder{}, config.Default())
	verdict, err := d.Dispatch(context.Background(), order, []domain.Vehicle{v1, v2}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.Assigned() {
		t.Fatalf("expected an assignment, got rejection %+v", verdict.Rejection)
	}
	if verdict.VehicleID != "v1" {
		t.Fatalf("expected v1 to win on interference, got %q", verdict.VehicleID)
	}
}

// TestDispatchRejectsWhenAllInfeasible mirrors spec scenario S2.
func TestDispatchRejectsWhenAllInfeasible(t *testing.T) {
	now := time.Now()
	order := resolvedOrder("order-1", 0, 0.2, now.Add(25*time.Minute), 1)

	v := domain.Vehicle{
		VehicleID: "v1", Location: domain.Coordinate{Lat: 0, Lon: 0},
		Capacity: 4, MaxWeightKg: 100,
		CurrentOrders: []domain.Order{
			resolvedOrder("committed-1", 0, 0.02, now.Add(30*time.Minute), 1),
		},
	}

	d := New(straightLineProvider{speedKPH: 10}, noopGeocoder{}, config.Default())
	verdict, err := d.Dispatch(context.Background(), order, []domain.Vehicle{v}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Assigned() {
		t.Fatalf("expected a rejection, got assignment to %q", verdict.VehicleID)
	}
	if verdict.Rejection.Kind != RejectionInfeasibleAll {
		t.Fatalf("expected infeasible-all, got %q", verdict.Rejection.Kind)
	}
}

// TestDispatchZoneFilterExcludesFarVehicle mirrors spec scenario S3.
func TestDispatchZoneFilterExcludesFarVehicle(t *testing.T) {
	now := time.Now()
	order := resolvedOrder("order-1", 0, 0, now.Add(2*time.Hour), 1)

	v1 := domain.Vehicle{VehicleID: "v1", Location: domain.Coordinate{Lat: 0.1, Lon: 0.1}, Capacity: 4, MaxWeightKg: 100}
	v2 := domain.Vehicle{VehicleID: "v2", Location: domain.Coordinate{Lat: -7, Lon: 7}, Capacity: 4, MaxWeightKg: 100}

	cfg := config.Default()
	cfg.ZoneDefs = []config.ZoneDef{
		{Name: "centro", North: 1, South: -1, East: 1, West: -1, Adjacent: []string{}},
		{Name: "suburbio", North: -5, South: -10, East: 10, West: 5, Adjacent: []string{}},
	}

	d := New(straightLineProvider{speedKPH: 30}, noopGeocoder{}, cfg)
	verdict, err := d.Dispatch(context.Background(), order, []domain.Vehicle{v1, v2}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range verdict.AllScores {
		if s.VehicleID == "v2" {
			t.Fatalf("expected v2 to be filtered out by zone, found it in %+v", verdict.AllScores)
		}
	}
}

func TestDispatchFailsWithNoCapacity(t *testing.T) {
	now := time.Now()
	order := resolvedOrder("order-1", 0, 0.01, now.Add(time.Hour), 1)
	v := domain.Vehicle{VehicleID: "v1", Location: domain.Coordinate{Lat: 0, Lon: 0}, Capacity: 1, MaxWeightKg: 100,
		CurrentOrders: []domain.Order{resolvedOrder("committed", 0, 0.01, now.Add(time.Hour), 1)},
	}

	d := New(straightLineProvider{speedKPH: 30}, noopGeocoder{}, config.Default())
	verdict, err := d.Dispatch(context.Background(), order, []domain.Vehicle{v}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Rejection == nil || verdict.Rejection.Kind != RejectionNoCapacity {
		t.Fatalf("expected no-capacity rejection, got %+v", verdict)
	}
}

// TestDispatchFastModeMatchesFullModeWhenWinnerInTopK mirrors spec scenario
// S4: with ten capacity-feasible candidates, fast-mode (K=3) must pick the
// same winner as full-mode whenever that winner falls inside the fast-mode
// top-3 by distance.
func TestDispatchFastModeMatchesFullModeWhenWinnerInTopK(t *testing.T) {
	now := time.Now()
	order := resolvedOrder("order-1", 0, 0, now.Add(2*time.Hour), 1)

	vehicles := make([]domain.Vehicle, 10)
	for i := range vehicles {
		vehicles[i] = domain.Vehicle{
			VehicleID:        fmt.Sprintf("v%d", i+1),
			Location:         domain.Coordinate{Lat: 0, Lon: 0.01 * float64(i+1)},
			Capacity:         4,
			MaxWeightKg:      100,
			PerformanceScore: 0.8,
		}
	}

	cfg := config.Default()
	cfg.FastModeK = 3
	d := New(straightLineProvider{speedKPH: 40}, noopGeocoder{}, cfg)

	full, err := d.Dispatch(context.Background(), order, vehicles, Options{})
	if err != nil {
		t.Fatalf("unexpected error (full mode): %v", err)
	}
	if !full.Assigned() {
		t.Fatalf("expected full-mode assignment, got rejection %+v", full.Rejection)
	}

	fast, err := d.Dispatch(context.Background(), order, vehicles, Options{FastMode: true, MaxCandidates: 3})
	if err != nil {
		t.Fatalf("unexpected error (fast mode): %v", err)
	}
	if !fast.Assigned() {
		t.Fatalf("expected fast-mode assignment, got rejection %+v", fast.Rejection)
	}

	if full.VehicleID != "v1" {
		t.Fatalf("expected the nearest vehicle v1 to win full-mode (sanity check on fixture), got %q", full.VehicleID)
	}
	if fast.VehicleID != full.VehicleID {
		t.Fatalf("fast-mode winner %q diverged from full-mode winner %q despite the winner being in the top-3 by distance", fast.VehicleID, full.VehicleID)
	}
	if fast.Score.Total != full.Score.Total {
		t.Fatalf("fast-mode and full-mode scores diverged for the same winner: %v vs %v", fast.Score.Total, full.Score.Total)
	}
}

// TestDispatchFastModeFallsBackToApproximateCandidate exercises the branch
// of pickWinner that only ever fires in fast mode: every top-K candidate is
// infeasible, so the winner comes from the approximate shortlist and must
// be re-evaluated with a full feasibility and scoring pass before it is
// returned (dispatch.go's route.Stops == nil branch).
func TestDispatchFastModeFallsBackToApproximateCandidate(t *testing.T) {
	now := time.Now()
	order := resolvedOrder("order-1", 0, 0.01, now.Add(2*time.Hour), 1)

	v1 := domain.Vehicle{
		VehicleID: "v1", Location: domain.Coordinate{Lat: 0, Lon: 0},
		Capacity: 4, MaxWeightKg: 100,
		CurrentOrders: []domain.Order{
			resolvedOrder("committed-1", 0, 5.0, now.Add(5*time.Minute), 1),
		},
	}
	v2 := domain.Vehicle{
		VehicleID: "v2", Location: domain.Coordinate{Lat: 0, Lon: 0.5},
		Capacity: 4, MaxWeightKg: 100,
	}

	d := New(straightLineProvider{speedKPH: 60}, noopGeocoder{}, config.Default())
	verdict, err := d.Dispatch(context.Background(), order, []domain.Vehicle{v1, v2}, Options{FastMode: true, MaxCandidates: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.Assigned() {
		t.Fatalf("expected an assignment, got rejection %+v", verdict.Rejection)
	}
	if verdict.VehicleID != "v2" {
		t.Fatalf("expected the approximate-shortlist candidate v2 to win once v1 (top-K) proved infeasible, got %q", verdict.VehicleID)
	}
	if verdict.Score.Approximate {
		t.Fatalf("winning score must be re-verified in full mode before being returned, got an approximate score")
	}
	if verdict.Route.Stops == nil {
		t.Fatalf("winning route must be recomputed with the real sequencer, got a nil route")
	}
}

func TestDispatchTieBreakIsDeterministic(t *testing.T) {
	now := time.Now()
	order := resolvedOrder("order-1", 0, 0.01, now.Add(2*time.Hour), 1)
	v1 := domain.Vehicle{VehicleID: "v1", Location: domain.Coordinate{Lat: 0, Lon: 0}, Capacity: 4, MaxWeightKg: 100, PerformanceScore: 0.7}
	v2 := domain.Vehicle{VehicleID: "v2", Location: domain.Coordinate{Lat: 0, Lon: 0}, Capacity: 4, MaxWeightKg: 100, PerformanceScore: 0.7}

	d := New(straightLineProvider{speedKPH: 30}, noopGeocoder{}, config.Default())

	var first string
	for i := 0; i < 20; i++ {
		verdict, err := d.Dispatch(context.Background(), order, []domain.Vehicle{v1, v2}, Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if i == 0 {
			first = verdict.VehicleID
		} else if verdict.VehicleID != first {
			t.Fatalf("tie-break nondeterministic: got %q then %q", first, verdict.VehicleID)
		}
	}
	if first != "v1" {
		t.Fatalf("expected lexicographically smaller vehicle-id v1 to win the tie, got %q", first)
	}
}
