package handlers

import (
	"net/http"
	"time"

	"dispatch-service/internal/api/dto"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/ports"
	"dispatch-service/internal/sequencer"
)

// ResequenceHandler serves on-demand route re-sequencing for one vehicle,
// optionally with a trial order inserted, without committing an assignment.
type ResequenceHandler struct {
	RoadNetwork ports.RoadNetworkProvider
	Budget      time.Duration
}

// Resequence serves POST /resequence.
func (h *ResequenceHandler) Resequence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ResequenceRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Vehicle.VehicleID == "" {
		writeError(w, r, http.StatusBadRequest, "vehicle.vehicle_id is required")
		return
	}

	vehicle := vehicleFromDTO(req.Vehicle)
	orders := append([]domain.Order(nil), vehicle.CurrentOrders...)
	if req.TrialOrder != nil {
		orders = append(orders, orderFromDTO(*req.TrialOrder))
	}

	startTime := time.Now()
	if req.StartTimeRFC != nil {
		if t, err := time.Parse(time.RFC3339, *req.StartTimeRFC); err == nil {
			startTime = t
		}
	}

	budget := h.Budget
	if req.TimeBudgetS > 0 {
		budget = time.Duration(req.TimeBudgetS * float64(time.Second))
	}

	result, err := sequencer.Sequence(r.Context(), h.RoadNetwork, sequencer.Input{
		Start:     vehicle.Location,
		StartTime: startTime,
		Orders:    orders,
		Budget:    budget,
	})
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	resp := dto.ResequenceResponse{
		Route:     routeToDTO(result, vehicle.VehicleID),
		AllOnTime: result.AllOnTime,
		Feasible:  result.Feasible,
		Violation: result.ViolatingOrderID,
	}
	writeJSON(w, r, http.StatusOK, resp)
}
