// Package scoring turns a feasible (vehicle, order) pairing into the
// comparable real-valued score the dispatcher sorts candidates by (spec
// §4.3): six weighted sub-scores, deterministic given identical inputs.
package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"dispatch-service/internal/config"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/feasibility"
	"dispatch-service/internal/ports"
)

// Score evaluates one (vehicle, order) pair given its precomputed
// feasibility result. Infeasible candidates short-circuit to total 0.0
// (spec §4.3 "Total").
func Score(ctx context.Context, rn ports.RoadNetworkProvider, weights config.Weights, vehicle domain.Vehicle, order domain.Order, feas feasibility.Result, now time.Time) (domain.AssignmentScore, error) {
	if !feas.Feasible {
		reasoning := feas.Reasoning
		if len(reasoning) == 0 && feas.ViolatingOrderID != "" {
			reasoning = []string{fmt.Sprintf("order %s would miss its deadline", feas.ViolatingOrderID)}
		}
		return domain.AssignmentScore{
			VehicleID: vehicle.VehicleID,
			Feasible:  false,
			Total:     0,
			Reasoning: reasoning,
		}, nil
	}

	orderLoc, ok := order.Location()
	if !ok {
		return domain.AssignmentScore{}, fmt.Errorf("scoring: order %s has no resolved location", order.OrderID)
	}

	tt, err := rn.TravelTime(ctx, vehicle.Location, orderLoc)
	if err != nil {
		return domain.AssignmentScore{}, fmt.Errorf("scoring: travel time: %w", err)
	}

	etaMin := estimatedArrivalMin(feas, order, tt.Minutes)
	eta := now.Add(time.Duration(etaMin * float64(time.Minute)))

	sub := domain.SubScores{
		Distance:      distanceScore(tt.Minutes),
		Capacity:      capacityScore(vehicle),
		Urgency:       urgencyScore(order, eta, now),
		Compatibility: compatibilityScore(vehicle, orderLoc),
		Performance:   clip01(vehicle.NormalizedPerformanceScore()),
		Interference:  interferenceScore(feas.WithNewDurationMin - feas.BaselineDurationMin),
	}

	total := weights.Distance*sub.Distance +
		weights.Capacity*sub.Capacity +
		weights.Urgency*sub.Urgency +
		weights.Compatibility*sub.Compatibility +
		weights.Performance*sub.Performance +
		weights.Interference*sub.Interference

	return domain.AssignmentScore{
		VehicleID:           vehicle.VehicleID,
		SubScores:           sub,
		Total:               total,
		Feasible:            true,
		Reasoning:           feas.Reasoning,
		EstimatedArrivalMin: etaMin,
		InterferenceMin:     feas.WithNewDurationMin - feas.BaselineDurationMin,
	}, nil
}

// ApproxScore computes a fast-mode approximation for a candidate that fell
// outside the top-K distance shortlist (spec §4.3 "Fast-mode
// approximation"): feasibility is a single-leg optimistic check rather than
// a full sequencer run, and the interference sub-score is derived from the
// direct travel time instead of a real baseline/with-new duration delta.
// The result is always flagged Approximate and must not be compared
// against a full-mode score.
func ApproxScore(ctx context.Context, rn ports.RoadNetworkProvider, weights config.Weights, vehicle domain.Vehicle, order domain.Order, now time.Time) (domain.AssignmentScore, error) {
	orderLoc, ok := order.Location()
	if !ok {
		return domain.AssignmentScore{}, fmt.Errorf("scoring: order %s has no resolved location", order.OrderID)
	}

	tt, err := rn.TravelTime(ctx, vehicle.Location, orderLoc)
	if err != nil {
		return domain.AssignmentScore{}, fmt.Errorf("scoring: travel time: %w", err)
	}

	etaMin := tt.Minutes + order.DurationMin + domain.ServiceTimeMin
	eta := now.Add(time.Duration(etaMin * float64(time.Minute)))
	feasible := !eta.After(order.Deadline)

	if !feasible {
		return domain.AssignmentScore{
			VehicleID:   vehicle.VehicleID,
			Feasible:    false,
			Total:       0,
			Approximate: true,
			Reasoning:   []string{fmt.Sprintf("order %s would miss its deadline on an optimistic single-leg estimate", order.OrderID)},
		}, nil
	}

	sub := domain.SubScores{
		Distance:      distanceScore(tt.Minutes),
		Capacity:      capacityScore(vehicle),
		Urgency:       urgencyScore(order, eta, now),
		Compatibility: compatibilityScore(vehicle, orderLoc),
		Performance:   clip01(vehicle.NormalizedPerformanceScore()),
		Interference:  interferenceScore(tt.Minutes),
	}

	total := weights.Distance*sub.Distance +
		weights.Capacity*sub.Capacity +
		weights.Urgency*sub.Urgency +
		weights.Compatibility*sub.Compatibility +
		weights.Performance*sub.Performance +
		weights.Interference*sub.Interference

	return domain.AssignmentScore{
		VehicleID:           vehicle.VehicleID,
		SubScores:           sub,
		Total:               total,
		Feasible:            true,
		Approximate:         true,
		EstimatedArrivalMin: etaMin,
		InterferenceMin:     tt.Minutes,
	}, nil
}

func estimatedArrivalMin(feas feasibility.Result, order domain.Order, directTravelMin float64) float64 {
	for _, s := range feas.Route.Stops {
		if s.OrderID == order.OrderID {
			return s.ETA.Sub(feas.Route.Stops[0].ETA).Minutes()
		}
	}
	return directTravelMin + order.DurationMin
}

func distanceScore(travelTimeMin float64) float64 {
	return 1 / (1 + travelTimeMin/30)
}

func capacityScore(v domain.Vehicle) float64 {
	if v.Capacity <= 0 {
		return 0
	}
	score := float64(v.Capacity-len(v.CurrentOrders)) / float64(v.Capacity)
	if score < 0 {
		return 0
	}
	return score
}

func urgencyScore(order domain.Order, eta, now time.Time) float64 {
	etaMin := eta.Sub(now).Minutes()
	slackMin := order.Deadline.Sub(now).Minutes() - etaMin

	var base float64
	switch {
	case slackMin >= 60:
		base = 1.0
	case slackMin >= 30:
		base = 0.85
	case slackMin >= 10:
		base = 0.6
	case slackMin >= 0:
		base = 0.3
	default:
		base = 0.0
	}

	score := base + order.Priority.UrgencyBump()
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func compatibilityScore(vehicle domain.Vehicle, newLoc domain.Coordinate) float64 {
	if len(vehicle.CurrentOrders) == 0 {
		return 0.50
	}

	newBearing := vehicle.Location.BearingDegrees(newLoc)
	sum := 0.0
	count := 0
	for _, o := range vehicle.CurrentOrders {
		loc, ok := o.Location()
		if !ok {
			continue
		}
		bearing := vehicle.Location.BearingDegrees(loc)
		delta := (bearing - newBearing) * math.Pi / 180
		sum += math.Cos(delta)
		count++
	}
	if count == 0 {
		return 0.50
	}
	mean := sum / float64(count)
	return (mean + 1) / 2
}

func interferenceScore(delta float64) float64 {
	switch {
	case delta <= 0:
		return 1.0
	case delta <= 30:
		return 1 - delta/60
	default:
		v := 0.5 - (delta-30)/120
		if v < 0 {
			return 0
		}
		return v
	}
}

func clip01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
