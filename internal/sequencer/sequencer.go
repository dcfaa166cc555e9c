// Package sequencer orders a vehicle's stops (committed orders plus,
// optionally, one candidate new order) into the delivery sequence that
// minimizes total route duration subject to each stop's deadline.
package sequencer

import (
	"context"
	"fmt"
	"time"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/ports"
)

// exactSearchLimit is the largest stop count the exact permutation search
// handles; above it, Sequence falls back to the heuristic.
const exactSearchLimit = 8

// defaultBudget is used when the caller supplies no wall-clock budget for
// the heuristic path.
const defaultBudget = 5 * time.Second

// Input describes one sequencing request.
type Input struct {
	Start     domain.Coordinate
	StartTime time.Time
	Orders    []domain.Order
	Budget    time.Duration
}

// Result is the outcome of sequencing Input.Orders.
type Result struct {
	Stops               []domain.Stop
	TotalDurationMin    float64
	TotalDistanceMeters float64
	AllOnTime           bool
	Feasible            bool
	ViolatingOrderID    string
}

// Sequence returns the best stop ordering found for in, using exact search
// for small stop counts and a time-bounded heuristic otherwise (spec §4.5).
func Sequence(ctx context.Context, rn ports.RoadNetworkProvider, in Input) (Result, error) {
	if len(in.Orders) == 0 {
		return Result{
			Stops:     []domain.Stop{{IsStart: true, Location: in.Start, ETA: in.StartTime, OnTime: true}},
			Feasible:  true,
			AllOnTime: true,
		}, nil
	}

	for _, o := range in.Orders {
		if _, ok := o.Location(); !ok {
			return Result{}, fmt.Errorf("sequencer: order %s has no resolved location", o.OrderID)
		}
	}

	if len(in.Orders) <= exactSearchLimit {
		return exactSequence(ctx, rn, in)
	}

	budget := in.Budget
	if budget <= 0 {
		budget = defaultBudget
	}
	return heuristicSequence(ctx, rn, in, budget)
}

// evaluate computes cumulative ETAs for orders visited in the given order,
// starting from in.Start at in.StartTime.
func evaluate(ctx context.Context, rn ports.RoadNetworkProvider, in Input, order []domain.Order) (Result, error) {
	stops := make([]domain.Stop, 0, len(order)+1)
	stops = append(stops, domain.Stop{IsStart: true, Location: in.Start, ETA: in.StartTime, OnTime: true})

	current := in.Start
	t := in.StartTime
	distance := 0.0
	violations := 0
	violatingID := ""

	for _, o := range order {
		loc, _ := o.Location()
		tt, err := rn.TravelTime(ctx, current, loc)
		if err != nil {
			return Result{}, fmt.Errorf("sequencer: travel time: %w", err)
		}
		distance += current.GreatCircleMeters(loc)

		t = t.Add(time.Duration(tt.Minutes*float64(time.Minute)) +
			time.Duration(domain.ServiceTimeMin*float64(time.Minute)) +
			time.Duration(o.DurationMin*float64(time.Minute)))

		onTime := !t.After(o.Deadline)
		if !onTime {
			violations++
			if violatingID == "" {
				violatingID = o.OrderID
			}
		}

		stops = append(stops, domain.Stop{OrderID: o.OrderID, Location: loc, ETA: t, OnTime: onTime})
		current = loc
	}

	return Result{
		Stops:               stops,
		TotalDurationMin:    t.Sub(in.StartTime).Minutes(),
		TotalDistanceMeters: distance,
		AllOnTime:           violations == 0,
		Feasible:            violations == 0,
		ViolatingOrderID:    violatingID,
	}, nil
}

// exactSequence enumerates every permutation of in.Orders (Heap's
// algorithm) and keeps the minimum-duration fully feasible one, degrading
// to the fewest-violations permutation when none is fully feasible.
func exactSequence(ctx context.Context, rn ports.RoadNetworkProvider, in Input) (Result, error) {
	orders := append([]domain.Order(nil), in.Orders...)
	n := len(orders)

	var best Result
	haveFeasible := false
	haveAny := false
	bestViolations := n + 1

	evalCurrent := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, err := evaluate(ctx, rn, in, orders)
		if err != nil {
			return err
		}
		violations := countViolations(r)
		switch {
		case r.Feasible && (!haveFeasible || r.TotalDurationMin < best.TotalDurationMin):
			best = r
			haveFeasible = true
			haveAny = true
		case !haveFeasible && (!haveAny || violations < bestViolations):
			best = r
			bestViolations = violations
			haveAny = true
		}
		return nil
	}

	var permute func(k int) error
	permute = func(k int) error {
		if k == 1 {
			return evalCurrent()
		}
		if err := permute(k - 1); err != nil {
			return err
		}
		for i := 0; i < k-1; i++ {
			if k%2 == 0 {
				orders[i], orders[k-1] = orders[k-1], orders[i]
			} else {
				orders[0], orders[k-1] = orders[k-1], orders[0]
			}
			if err := permute(k - 1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := permute(n); err != nil {
		return Result{}, err
	}
	return best, nil
}

func countViolations(r Result) int {
	n := 0
	for _, s := range r.Stops {
		if !s.IsStart && !s.OnTime {
			n++
		}
	}
	return n
}
