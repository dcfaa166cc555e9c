package sequencer

import (
	"context"
	"math"
	"math/rand"
	"time"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/ports"
)

// heuristicSequence is an adaptive large-neighborhood search scaled down to
// this package's single-vehicle, single-route objective: minimize total
// duration subject to per-stop deadlines. The overall remove/reinsert/
// accept-or-reject loop is modeled on the multi-vehicle ALNS engine used
// elsewhere in the retrieved pack, with removal and insertion operators
// pared back to the one-route case and the acceptance criterion kept as
// simulated annealing over a duration-plus-violations objective.
func heuristicSequence(ctx context.Context, rn ports.RoadNetworkProvider, in Input, budget time.Duration) (Result, error) {
	deadline := time.Now().Add(budget)
	rng := rand.New(rand.NewSource(1))

	current := append([]domain.Order(nil), in.Orders...)
	currentResult, err := evaluate(ctx, rn, in, current)
	if err != nil {
		return Result{}, err
	}

	best := current
	bestResult := currentResult

	temperature := 1.0
	const coolingRate = 0.97

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			break
		}

		candidate := perturb(current, rng)
		candidate = localImprove(ctx, rn, in, candidate, rng)

		candidateResult, err := evaluate(ctx, rn, in, candidate)
		if err != nil {
			continue
		}

		if acceptCandidate(currentResult, candidateResult, temperature, rng) {
			current = candidate
			currentResult = candidateResult
		}

		if isBetter(candidateResult, bestResult) {
			best = candidate
			bestResult = candidateResult
		}

		temperature *= coolingRate
		if temperature < 0.01 {
			temperature = 0.01
		}
	}

	_ = best
	return bestResult, nil
}

// perturb applies a random-removal-and-reinsertion move: pull a handful of
// stops out and reinsert each at a random position. Insertion cost is not
// consulted; localImprove and the acceptance rule judge the result.
func perturb(orders []domain.Order, rng *rand.Rand) []domain.Order {
	n := len(orders)
	if n < 2 {
		return append([]domain.Order(nil), orders...)
	}

	removeCount := 1 + rng.Intn(max(1, n/4))
	if removeCount >= n {
		removeCount = n - 1
	}

	remaining := append([]domain.Order(nil), orders...)
	removed := make([]domain.Order, 0, removeCount)
	for i := 0; i < removeCount; i++ {
		idx := rng.Intn(len(remaining))
		removed = append(removed, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}

	for _, o := range removed {
		pos := rng.Intn(len(remaining) + 1)
		remaining = insertAt(remaining, pos, o)
	}
	return remaining
}

func insertAt(orders []domain.Order, pos int, o domain.Order) []domain.Order {
	out := make([]domain.Order, 0, len(orders)+1)
	out = append(out, orders[:pos]...)
	out = append(out, o)
	out = append(out, orders[pos:]...)
	return out
}

// localImprove tries a bounded number of random pairwise stop swaps,
// keeping each swap that improves the evaluated route.
func localImprove(ctx context.Context, rn ports.RoadNetworkProvider, in Input, orders []domain.Order, rng *rand.Rand) []domain.Order {
	n := len(orders)
	if n < 3 {
		return orders
	}

	best := orders
	bestResult, err := evaluate(ctx, rn, in, best)
	if err != nil {
		return orders
	}

	attempts := n
	for i := 0; i < attempts; i++ {
		a := rng.Intn(n)
		b := rng.Intn(n)
		if a == b {
			continue
		}
		swapped := append([]domain.Order(nil), best...)
		swapped[a], swapped[b] = swapped[b], swapped[a]

		result, err := evaluate(ctx, rn, in, swapped)
		if err != nil {
			continue
		}
		if isBetter(result, bestResult) {
			best = swapped
			bestResult = result
		}
	}
	return best
}

// isBetter compares two candidate results by feasibility first, then by
// violation count, then by total duration.
func isBetter(a, b Result) bool {
	av, bv := countViolations(a), countViolations(b)
	if av != bv {
		return av < bv
	}
	return a.TotalDurationMin < b.TotalDurationMin
}

// acceptCandidate implements the simulated-annealing acceptance rule: always
// accept improvements, sometimes accept a worse candidate, with probability
// decaying as temperature cools.
func acceptCandidate(current, candidate Result, temperature float64, rng *rand.Rand) bool {
	if isBetter(candidate, current) {
		return true
	}
	delta := objective(candidate) - objective(current)
	if delta <= 0 {
		return true
	}
	p := math.Exp(-delta / temperature)
	return rng.Float64() < p
}

func objective(r Result) float64 {
	return float64(countViolations(r))*1000 + r.TotalDurationMin
}
