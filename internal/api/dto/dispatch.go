package dto

// DispatchOptions tunes one single-order dispatch call.
type DispatchOptions struct {
	FastMode      bool    `json:"fast_mode,omitempty"`
	MaxCandidates int     `json:"max_candidates,omitempty"`
	TimeBudgetS   float64 `json:"time_budget_s,omitempty"`
}

// DispatchRequest is the body of POST /dispatch.
type DispatchRequest struct {
	Order    OrderRequest     `json:"order"`
	Vehicles []VehicleRequest `json:"vehicles"`
	Options  *DispatchOptions `json:"options,omitempty"`
}

// DispatchResponse is the body returned by POST /dispatch. Exactly one of
// AssignedVehicleID or FailureReason is set.
type DispatchResponse struct {
	AssignedVehicleID *string           `json:"assigned_vehicle_id"`
	Score             *AssignmentScore  `json:"score,omitempty"`
	Route             *Route            `json:"route,omitempty"`
	AllVehicleScores  []AssignmentScore `json:"all_vehicle_scores,omitempty"`
	FailureReason     *string           `json:"failure_reason,omitempty"`
	FailureDetail     string            `json:"failure_detail,omitempty"`
}

// BatchDispatchRequest is the body of POST /dispatch/batch.
type BatchDispatchRequest struct {
	Orders   []OrderRequest   `json:"orders"`
	Vehicles []VehicleRequest `json:"vehicles"`
	Options  *BatchOptions    `json:"options,omitempty"`
}

// BatchOptions tunes one batch dispatch call.
type BatchOptions struct {
	PrioritySort  bool    `json:"priority_sort,omitempty"`
	FastMode      bool    `json:"fast_mode,omitempty"`
	MaxCandidates int     `json:"max_candidates,omitempty"`
	TimeBudgetS   float64 `json:"time_budget_s,omitempty"`
}

// BatchItemResponse is one order's outcome within a batch response.
type BatchItemResponse struct {
	OrderID           string  `json:"order_id"`
	AssignedVehicleID *string `json:"assigned_vehicle_id"`
	FailureReason     *string `json:"failure_reason,omitempty"`
}

// BatchDispatchResponse is the body returned by POST /dispatch/batch.
type BatchDispatchResponse struct {
	Items           []BatchItemResponse `json:"items"`
	AssignedCount   int                 `json:"assigned_count"`
	UnassignedCount int                 `json:"unassigned_count"`
	TotalDurationMs int64               `json:"total_duration_ms"`
}

// ResequenceRequest is the body of POST /resequence: re-plan one vehicle's
// committed stops, optionally inserting a trial order.
type ResequenceRequest struct {
	Vehicle      VehicleRequest `json:"vehicle"`
	TrialOrder   *OrderRequest  `json:"trial_order,omitempty"`
	StartTimeRFC *string        `json:"start_time,omitempty"`
	TimeBudgetS  float64        `json:"time_budget_s,omitempty"`
}

// ResequenceResponse is the body returned by POST /resequence.
type ResequenceResponse struct {
	Route     Route  `json:"route"`
	AllOnTime bool   `json:"all_on_time"`
	Feasible  bool   `json:"feasible"`
	Violation string `json:"violating_order_id,omitempty"`
}
