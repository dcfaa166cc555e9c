package dispatch

import (
	"context"
	"sort"
	"time"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/sequencer"
)

// BatchOptions tunes one batch dispatch call (spec §4.7).
type BatchOptions struct {
	PrioritySort  bool
	FastMode      bool
	MaxCandidates int
	TimeBudget    time.Duration
}

// BatchItem is the per-order outcome of one batch dispatch call.
type BatchItem struct {
	OrderID string
	Verdict Verdict
}

// BatchResult is the full outcome of one batch dispatch call.
type BatchResult struct {
	Items           []BatchItem
	AssignedCount   int
	UnassignedCount int
	TotalDuration   time.Duration
}

// Batch applies Dispatch to each order in turn against a shared, mutating
// fleet (spec §4.7). The outer loop is sequential because each successful
// assignment changes the fleet state later orders see; within one order's
// Dispatch call, candidate evaluation may still be parallel.
func (d *Dispatcher) Batch(ctx context.Context, orders []domain.Order, vehicles []domain.Vehicle, opts BatchOptions) (BatchResult, error) {
	start := time.Now()

	budget := opts.TimeBudget
	if budget <= 0 {
		budget = time.Duration(d.Config.BatchOrderBudgetS * float64(time.Second))
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	deadline := start.Add(budget)

	ordered := orders
	if opts.PrioritySort {
		ordered = append([]domain.Order(nil), orders...)
		sort.SliceStable(ordered, func(i, j int) bool {
			if ordered[i].Priority.Rank() != ordered[j].Priority.Rank() {
				return ordered[i].Priority.Rank() < ordered[j].Priority.Rank()
			}
			return ordered[i].Deadline.Before(ordered[j].Deadline)
		})
	}

	fleet := append([]domain.Vehicle(nil), vehicles...)
	items := make([]BatchItem, len(ordered))
	assigned, unassigned := 0, 0

	for i, order := range ordered {
		if time.Now().After(deadline) || ctx.Err() != nil {
			items[i] = BatchItem{OrderID: order.OrderID, Verdict: Verdict{
				Rejection: &Rejection{Kind: RejectionTimeBudgetExceeded},
			}}
			unassigned++
			continue
		}

		remaining := time.Until(deadline)
		verdict, err := d.Dispatch(ctx, order, fleet, Options{
			FastMode:      opts.FastMode,
			MaxCandidates: opts.MaxCandidates,
			TimeBudget:    remaining,
		})
		if err != nil {
			return BatchResult{}, err
		}
		items[i] = BatchItem{OrderID: order.OrderID, Verdict: verdict}

		if verdict.Assigned() {
			assigned++
			fleet = applyAssignment(fleet, verdict, order)
		} else {
			unassigned++
		}
	}

	return BatchResult{
		Items:           items,
		AssignedCount:   assigned,
		UnassignedCount: unassigned,
		TotalDuration:   time.Since(start),
	}, nil
}

// applyAssignment appends order (resolved, marked assigned) to the winning
// vehicle's committed orders, leaving every other vehicle untouched (spec
// §3 "Lifecycle").
func applyAssignment(fleet []domain.Vehicle, verdict Verdict, order domain.Order) []domain.Vehicle {
	resolved := order
	resolved.Status = domain.OrderAssigned
	if loc, ok := locationFromRoute(verdict.Route, order.OrderID); ok {
		resolved.ResolvedLocation = &loc
	}

	next := make([]domain.Vehicle, len(fleet))
	copy(next, fleet)
	for i, v := range next {
		if v.VehicleID == verdict.VehicleID {
			next[i] = v.WithOrder(resolved)
			break
		}
	}
	return next
}

func locationFromRoute(route sequencer.Result, orderID string) (domain.Coordinate, bool) {
	for _, s := range route.Stops {
		if !s.IsStart && s.OrderID == orderID {
			return s.Location, true
		}
	}
	return domain.Coordinate{}, false
}
