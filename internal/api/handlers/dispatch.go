package handlers

import (
	"net/http"
	"time"

	"dispatch-service/internal/api/dto"
	"dispatch-service/internal/dispatch"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/platform/metrics"
)

// DispatchHandler serves single-order and batch dispatch requests.
type DispatchHandler struct {
	Dispatcher *dispatch.Dispatcher
}

// Dispatch serves POST /dispatch: assign one order to the best available
// vehicle in the submitted fleet snapshot.
func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.DispatchRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Order.OrderID == "" {
		writeError(w, r, http.StatusBadRequest, "order.order_id is required")
		return
	}
	if len(req.Vehicles) == 0 {
		writeError(w, r, http.StatusBadRequest, "vehicles must not be empty")
		return
	}

	order := orderFromDTO(req.Order)
	vehicles := vehiclesFromDTO(req.Vehicles)

	opts := dispatch.Options{}
	if req.Options != nil {
		opts.FastMode = req.Options.FastMode
		opts.MaxCandidates = req.Options.MaxCandidates
		if req.Options.TimeBudgetS > 0 {
			opts.TimeBudget = time.Duration(req.Options.TimeBudgetS * float64(time.Second))
		}
	}

	verdict, err := h.Dispatcher.Dispatch(r.Context(), order, vehicles, opts)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	if verdict.Assigned() {
		metrics.DispatchOutcomes.WithLabelValues("assigned").Inc()
	} else {
		metrics.DispatchOutcomes.WithLabelValues(string(verdict.Rejection.Kind)).Inc()
	}

	writeJSON(w, r, http.StatusOK, verdictToDTO(verdict))
}

// Batch serves POST /dispatch/batch: assign a list of orders sequentially
// against one shared fleet snapshot.
func (h *DispatchHandler) Batch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.BatchDispatchRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Orders) == 0 {
		writeError(w, r, http.StatusBadRequest, "orders must not be empty")
		return
	}
	if len(req.Vehicles) == 0 {
		writeError(w, r, http.StatusBadRequest, "vehicles must not be empty")
		return
	}

	orders := make([]domain.Order, len(req.Orders))
	for i, o := range req.Orders {
		orders[i] = orderFromDTO(o)
	}
	vehicles := vehiclesFromDTO(req.Vehicles)

	opts := dispatch.BatchOptions{}
	if req.Options != nil {
		opts.PrioritySort = req.Options.PrioritySort
		opts.FastMode = req.Options.FastMode
		opts.MaxCandidates = req.Options.MaxCandidates
		if req.Options.TimeBudgetS > 0 {
			opts.TimeBudget = time.Duration(req.Options.TimeBudgetS * float64(time.Second))
		}
	}

	result, err := h.Dispatcher.Batch(r.Context(), orders, vehicles, opts)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]dto.BatchItemResponse, len(result.Items))
	for i, item := range result.Items {
		metrics.BatchAssigned.WithLabelValues(batchStatus(item.Verdict)).Inc()
		resp := dto.BatchItemResponse{OrderID: item.OrderID}
		if item.Verdict.Assigned() {
			vid := item.Verdict.VehicleID
			resp.AssignedVehicleID = &vid
		} else {
			kind := string(item.Verdict.Rejection.Kind)
			resp.FailureReason = &kind
		}
		items[i] = resp
	}

	writeJSON(w, r, http.StatusOK, dto.BatchDispatchResponse{
		Items:           items,
		AssignedCount:   result.AssignedCount,
		UnassignedCount: result.UnassignedCount,
		TotalDurationMs: result.TotalDuration.Milliseconds(),
	})
}

func batchStatus(v dispatch.Verdict) string {
	if v.Assigned() {
		return "assigned"
	}
	return "unassigned"
}
