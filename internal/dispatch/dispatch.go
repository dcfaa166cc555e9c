// Package dispatch orchestrates the end-to-end assignment pipeline (spec
// §4.6): resolve → zone filter → hard filters → parallel scoring → pick or
// fail. Batch dispatch (spec §4.7) lives alongside it in batch.go.
package dispatch

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"dispatch-service/internal/concurrency/pool"
	"dispatch-service/internal/config"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/feasibility"
	"dispatch-service/internal/ports"
	"dispatch-service/internal/scoring"
	"dispatch-service/internal/sequencer"
	"dispatch-service/internal/zone"

	"golang.org/x/sync/errgroup"
)

// RejectionKind enumerates the four failure reasons a dispatch call can
// surface (spec §7).
type RejectionKind string

const (
	RejectionUnresolvedAddress  RejectionKind = "unresolved-address"
	RejectionNoCapacity         RejectionKind = "no-capacity"
	RejectionInfeasibleAll      RejectionKind = "infeasible-all"
	RejectionTimeBudgetExceeded RejectionKind = "time-budget-exceeded"
)

// Rejection carries a failed assignment's reason and any diagnostic detail.
// Infeasibility is data, not an error (spec §9 "Deep exception chains").
type Rejection struct {
	Kind   RejectionKind
	Detail string
}

func (r Rejection) Error() string { return fmt.Sprintf("%s: %s", r.Kind, r.Detail) }

// Verdict is the outcome of one single-order dispatch call: either a
// committed assignment, or a Rejection.
type Verdict struct {
	VehicleID string
	Score     domain.AssignmentScore
	Route     sequencer.Result
	AllScores []domain.AssignmentScore
	Rejection *Rejection
}

// Assigned reports whether the verdict committed an assignment.
func (v Verdict) Assigned() bool { return v.Rejection == nil }

// Options tunes one dispatch call.
type Options struct {
	FastMode      bool
	MaxCandidates int
	TimeBudget    time.Duration
}

// Dispatcher holds the collaborators a dispatch call needs: the road
// network, the geocoder, and the active configuration.
type Dispatcher struct {
	RoadNetwork     ports.RoadNetworkProvider
	Geocoder        ports.Geocoder
	Config          config.Config
	CandidatePool   int
	SequencerBudget time.Duration
}

// New builds a Dispatcher. CandidatePool, which bounds per-candidate
// concurrency, starts at the number of available cores; a value of 0 or
// less set later also means the number of available cores.
func New(rn ports.RoadNetworkProvider, geocoder ports.Geocoder, cfg config.Config) *Dispatcher {
	return &Dispatcher{
		RoadNetwork:     rn,
		Geocoder:        geocoder,
		Config:          cfg,
		CandidatePool:   runtime.NumCPU(),
		SequencerBudget: time.Duration(cfg.SequencerBudgetS * float64(time.Second)),
	}
}

type candidateResult struct {
	vehicle domain.Vehicle
	score   domain.AssignmentScore
	route   sequencer.Result
}

// Dispatch runs the pipeline in spec §4.6 for one order against one fleet
// snapshot. It never mutates vehicles; the caller decides whether to
// commit the winning assignment.
func (d *Dispatcher) Dispatch(ctx context.Context, order domain.Order, vehicles []domain.Vehicle, opts Options) (Verdict, error) {
	budget := opts.TimeBudget
	if budget <= 0 {
		budget = time.Duration(d.Config.SingleOrderBudgetS * float64(time.Second))
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	now := time.Now()

	resolved := order
	if _, ok := resolved.Location(); !ok {
		fwd, err := d.Geocoder.Forward(ctx, resolved.Destination)
		if err != nil {
			return Verdict{Rejection: &Rejection{Kind: RejectionUnresolvedAddress, Detail: err.Error()}}, nil
		}
		loc := fwd.Coordinate
		resolved.ResolvedLocation = &loc
	}
	orderLoc, _ := resolved.Location()

	candidates := zone.Filter(d.Config.Zones(), orderLoc, vehicles)

	hard := make([]domain.Vehicle, 0, len(candidates))
	for _, v := range candidates {
		if v.AvailableCapacity() > 0 && v.CanAccept(resolved.WeightKg) {
			hard = append(hard, v)
		}
	}
	if len(hard) == 0 {
		return Verdict{Rejection: &Rejection{Kind: RejectionNoCapacity}}, nil
	}

	topK, rest := d.splitCandidates(hard, orderLoc, opts)

	full, approx, err := d.evaluateCandidates(ctx, topK, rest, resolved, now)
	if err != nil {
		if ctx.Err() != nil {
			return Verdict{Rejection: &Rejection{Kind: RejectionTimeBudgetExceeded, Detail: err.Error()}}, nil
		}
		return Verdict{}, err
	}

	all := make([]domain.AssignmentScore, 0, len(full)+len(approx))
	for _, r := range full {
		all = append(all, r.score)
	}
	for _, r := range approx {
		all = append(all, r.score)
	}
	sortScores(all)

	winner := pickWinner(full, approx)
	if winner == nil {
		return Verdict{
			Rejection: &Rejection{Kind: RejectionInfeasibleAll, Detail: topReasoning(all)},
			AllScores: all,
		}, nil
	}

	route := winner.route
	score := winner.score
	if route.Stops == nil {
		// The winner came from the approximate shortlist (only possible
		// when every top-K candidate was infeasible); recompute its real
		// route and score now that it has been chosen.
		feas, err := feasibility.Evaluate(ctx, d.RoadNetwork, winner.vehicle, resolved, now, d.SequencerBudget)
		if err != nil {
			return Verdict{}, fmt.Errorf("dispatch: recompute winner route: %w", err)
		}
		score, err = scoring.Score(ctx, d.RoadNetwork, d.Config.Weights, winner.vehicle, resolved, feas, now)
		if err != nil {
			return Verdict{}, fmt.Errorf("dispatch: recompute winner score: %w", err)
		}
		route = feas.Route
	}

	return Verdict{
		VehicleID: winner.vehicle.VehicleID,
		Score:     score,
		Route:     route,
		AllScores: all,
	}, nil
}

func (d *Dispatcher) splitCandidates(hard []domain.Vehicle, orderLoc domain.Coordinate, opts Options) (topK, rest []domain.Vehicle) {
	if !opts.FastMode {
		return hard, nil
	}
	k := opts.MaxCandidates
	if k <= 0 {
		k = d.Config.FastModeK
	}
	if k <= 0 || k >= len(hard) {
		return hard, nil
	}

	sorted := append([]domain.Vehicle(nil), hard...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Location.GreatCircleMeters(orderLoc) < sorted[j].Location.GreatCircleMeters(orderLoc)
	})
	return sorted[:k], sorted[k:]
}

func (d *Dispatcher) evaluateCandidates(ctx context.Context, topK, rest []domain.Vehicle, order domain.Order, now time.Time) ([]candidateResult, []candidateResult, error) {
	p := pool.New(d.poolSize())
	g, gctx := errgroup.WithContext(ctx)

	full := make([]candidateResult, len(topK))
	for i, v := range topK {
		i, v := i, v
		g.Go(func() error {
			if err := p.Acquire(gctx); err != nil {
				return err
			}
			defer p.Release()

			feas, err := feasibility.Evaluate(gctx, d.RoadNetwork, v, order, now, d.SequencerBudget)
			if err != nil {
				return err
			}
			score, err := scoring.Score(gctx, d.RoadNetwork, d.Config.Weights, v, order, feas, now)
			if err != nil {
				return err
			}
			full[i] = candidateResult{vehicle: v, score: score, route: feas.Route}
			return nil
		})
	}

	approx := make([]candidateResult, len(rest))
	for i, v := range rest {
		i, v := i, v
		g.Go(func() error {
			if err := p.Acquire(gctx); err != nil {
				return err
			}
			defer p.Release()

			score, err := scoring.ApproxScore(gctx, d.RoadNetwork, d.Config.Weights, v, order, now)
			if err != nil {
				return err
			}
			approx[i] = candidateResult{vehicle: v, score: score}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return full, approx, nil
}

func (d *Dispatcher) poolSize() int {
	if d.CandidatePool > 0 {
		return d.CandidatePool
	}
	return runtime.NumCPU()
}

// pickWinner applies the fast-mode constraint from spec §4.3: an
// approximate (non-top-K) candidate only wins when every top-K candidate
// is infeasible.
func pickWinner(full, approx []candidateResult) *candidateResult {
	if best := bestFeasible(full); best != nil {
		return best
	}
	return bestFeasible(approx)
}

func bestFeasible(candidates []candidateResult) *candidateResult {
	var best *candidateResult
	for i := range candidates {
		c := &candidates[i]
		if c.score.Total <= 0 || !c.score.Feasible {
			continue
		}
		if best == nil ||
			c.score.Total > best.score.Total ||
			(c.score.Total == best.score.Total && c.vehicle.VehicleID < best.vehicle.VehicleID) {
			best = c
		}
	}
	return best
}

// sortScores orders a score table by total descending, ties broken by
// vehicle-id ascending (spec §4.3 "Determinism").
func sortScores(scores []domain.AssignmentScore) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Total != scores[j].Total {
			return scores[i].Total > scores[j].Total
		}
		return scores[i].VehicleID < scores[j].VehicleID
	})
}

func topReasoning(scores []domain.AssignmentScore) string {
	const maxReasons = 3
	detail := ""
	for i, s := range scores {
		if i >= maxReasons {
			break
		}
		for _, r := range s.Reasoning {
			if detail != "" {
				detail += "; "
			}
			detail += fmt.Sprintf("%s: %s", s.VehicleID, r)
		}
	}
	return detail
}
