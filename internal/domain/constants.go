package domain

// Model-level constants shared by the feasibility evaluator, scorer, and
// sequencer. Implementers must not inline these.
const (
	// ServiceTimeMin is the fixed per-stop overhead applied at every
	// delivery stop, independent of the order's own handling time.
	ServiceTimeMin = 5.0

	// DefaultSearchRadiusM is the radius used when constructing an
	// on-demand road graph for a point outside the preloaded bounding box.
	DefaultSearchRadiusM = 5000.0

	// DefaultAvgSpeedKPH is used only when a shortest-path query fails and
	// the provider falls back to a great-circle distance estimate.
	DefaultAvgSpeedKPH = 30.0
)
