// Package feasibility decides whether inserting a new order into a
// vehicle's committed route keeps every deadline satisfied, and reports the
// two route durations the scorer's interference sub-score needs.
package feasibility

import (
	"context"
	"fmt"
	"time"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/ports"
	"dispatch-service/internal/sequencer"
)

// Result is the outcome of one feasibility evaluation (spec §4.2).
type Result struct {
	Feasible            bool
	BaselineDurationMin float64
	WithNewDurationMin  float64
	ViolatingOrderID    string
	Route               sequencer.Result
	Reasoning           []string
}

// Evaluate runs the feasibility algorithm for inserting newOrder into
// vehicle's committed work, evaluated as of clock.
func Evaluate(ctx context.Context, rn ports.RoadNetworkProvider, vehicle domain.Vehicle, newOrder domain.Order, clock time.Time, sequencerBudget time.Duration) (Result, error) {
	newLoc, ok := newOrder.Location()
	if !ok {
		return Result{}, fmt.Errorf("feasibility: order %s has no resolved location", newOrder.OrderID)
	}

	if len(vehicle.CurrentOrders) == 0 {
		tt, err := rn.TravelTime(ctx, vehicle.Location, newLoc)
		if err != nil {
			return Result{}, fmt.Errorf("feasibility: travel time: %w", err)
		}
		eta := clock.Add(time.Duration(tt.Minutes*float64(time.Minute)) +
			time.Duration(newOrder.DurationMin*float64(time.Minute)))
		feasible := !eta.After(newOrder.Deadline)

		durationMin := eta.Sub(clock).Minutes()
		result := Result{
			Feasible:            feasible,
			BaselineDurationMin: 0,
			WithNewDurationMin:  durationMin,
			Route: sequencer.Result{
				Stops: []domain.Stop{
					{IsStart: true, Location: vehicle.Location, ETA: clock, OnTime: true},
					{OrderID: newOrder.OrderID, Location: newLoc, ETA: eta, OnTime: feasible},
				},
				TotalDurationMin: durationMin,
				AllOnTime:        feasible,
				Feasible:         feasible,
			},
		}
		if !feasible {
			result.ViolatingOrderID = newOrder.OrderID
			result.Reasoning = append(result.Reasoning, fmt.Sprintf("order %s would miss its deadline with ETA %s", newOrder.OrderID, eta.Format(time.RFC3339)))
		}
		return result, nil
	}

	withNew, err := sequencer.Sequence(ctx, rn, sequencer.Input{
		Start:     vehicle.Location,
		StartTime: clock,
		Orders:    append(append([]domain.Order(nil), vehicle.CurrentOrders...), newOrder),
		Budget:    sequencerBudget,
	})
	if err != nil {
		return Result{}, fmt.Errorf("feasibility: sequence with new order: %w", err)
	}

	baseline, err := sequencer.Sequence(ctx, rn, sequencer.Input{
		Start:     vehicle.Location,
		StartTime: clock,
		Orders:    vehicle.CurrentOrders,
		Budget:    sequencerBudget,
	})
	if err != nil {
		return Result{}, fmt.Errorf("feasibility: sequence baseline: %w", err)
	}

	result := Result{
		Feasible:            withNew.Feasible,
		BaselineDurationMin: baseline.TotalDurationMin,
		WithNewDurationMin:  withNew.TotalDurationMin,
		Route:               withNew,
	}

	if !withNew.Feasible {
		result.ViolatingOrderID = withNew.ViolatingOrderID
		result.Reasoning = append(result.Reasoning, fmt.Sprintf("order %s would miss its deadline", withNew.ViolatingOrderID))
		return result, nil
	}

	if !baseline.Feasible {
		// The committed route was already broken before this order arrived;
		// inserting the new order did not make things worse (spec §4.2 step 4).
		result.Reasoning = append(result.Reasoning, "baseline route was already infeasible; new order does not worsen it")
	}

	return result, nil
}
