package handlers

import (
	"time"

	"dispatch-service/internal/api/dto"
	"dispatch-service/internal/dispatch"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/sequencer"
)

func coordinateFromDTO(lat, lon float64) domain.Coordinate {
	return domain.Coordinate{Lat: lat, Lon: lon}
}

func addressInputFromDTO(a dto.AddressInput) domain.AddressInput {
	if a.Structured == nil {
		return domain.AddressInput{FreeText: a.FreeText}
	}
	s := a.Structured
	addr := domain.Address{
		Street:     s.Street,
		Number:     s.Number,
		Corner1:    s.Corner1,
		Corner2:    s.Corner2,
		City:       s.City,
		Country:    s.Country,
		PostalCode: s.PostalCode,
	}
	if s.Lat != nil && s.Lon != nil {
		addr.Coordinate = &domain.Coordinate{Lat: *s.Lat, Lon: *s.Lon}
	}
	return domain.AddressInput{Structured: &addr}
}

func priorityFromDTO(p string) domain.Priority {
	switch domain.Priority(p) {
	case domain.PriorityLow, domain.PriorityNormal, domain.PriorityHigh, domain.PriorityUrgent:
		return domain.Priority(p)
	default:
		return domain.PriorityNormal
	}
}

func orderFromDTO(o dto.OrderRequest) domain.Order {
	createdAt := time.Now()
	if o.CreatedAt != nil {
		createdAt = *o.CreatedAt
	}
	return domain.Order{
		OrderID:     o.OrderID,
		Destination: addressInputFromDTO(o.Address),
		Deadline:    o.Deadline,
		Priority:    priorityFromDTO(o.Priority),
		WeightKg:    o.WeightKg,
		DurationMin: o.DurationMin,
		CreatedAt:   createdAt,
		Status:      domain.OrderPending,
	}
}

func vehicleFromDTO(v dto.VehicleRequest) domain.Vehicle {
	orders := make([]domain.Order, len(v.CurrentOrders))
	for i, o := range v.CurrentOrders {
		orders[i] = orderFromDTO(o)
	}
	return domain.Vehicle{
		VehicleID:        v.VehicleID,
		DriverName:       v.DriverName,
		Location:         domain.Coordinate{Lat: v.Lat, Lon: v.Lon},
		Capacity:         v.Capacity,
		MaxWeightKg:      v.MaxWeightKg,
		PerformanceScore: v.PerformanceScore,
		Zone:             v.Zone,
		CurrentOrders:    orders,
	}
}

func vehiclesFromDTO(vs []dto.VehicleRequest) []domain.Vehicle {
	out := make([]domain.Vehicle, len(vs))
	for i, v := range vs {
		out[i] = vehicleFromDTO(v)
	}
	return out
}

func subScoresToDTO(s domain.SubScores) dto.SubScores {
	return dto.SubScores{
		Distance:      s.Distance,
		Capacity:      s.Capacity,
		Urgency:       s.Urgency,
		Compatibility: s.Compatibility,
		Performance:   s.Performance,
		Interference:  s.Interference,
	}
}

func scoreToDTO(s domain.AssignmentScore) dto.AssignmentScore {
	return dto.AssignmentScore{
		VehicleID:           s.VehicleID,
		SubScores:           subScoresToDTO(s.SubScores),
		Total:               s.Total,
		Feasible:            s.Feasible,
		Approximate:         s.Approximate,
		Reasoning:           s.Reasoning,
		EstimatedArrivalMin: s.EstimatedArrivalMin,
		InterferenceMin:     s.InterferenceMin,
	}
}

func scoresToDTO(scores []domain.AssignmentScore) []dto.AssignmentScore {
	out := make([]dto.AssignmentScore, len(scores))
	for i, s := range scores {
		out[i] = scoreToDTO(s)
	}
	return out
}

func routeToDTO(r sequencer.Result, vehicleID string) dto.Route {
	stops := make([]dto.Stop, len(r.Stops))
	for i, s := range r.Stops {
		stops[i] = dto.Stop{
			OrderID: s.OrderID,
			Lat:     s.Location.Lat,
			Lon:     s.Location.Lon,
			ETA:     s.ETA,
			OnTime:  s.OnTime,
			IsStart: s.IsStart,
		}
	}
	return dto.Route{
		VehicleID:           vehicleID,
		Stops:               stops,
		TotalDistanceMeters: r.TotalDistanceMeters,
		TotalDurationMin:    r.TotalDurationMin,
		AllOnTime:           r.AllOnTime,
	}
}

func verdictToDTO(v dispatch.Verdict) dto.DispatchResponse {
	if !v.Assigned() {
		kind := string(v.Rejection.Kind)
		return dto.DispatchResponse{
			AssignedVehicleID: nil,
			AllVehicleScores:  scoresToDTO(v.AllScores),
			FailureReason:     &kind,
			FailureDetail:     v.Rejection.Detail,
		}
	}
	vehicleID := v.VehicleID
	score := scoreToDTO(v.Score)
	route := routeToDTO(v.Route, v.VehicleID)
	return dto.DispatchResponse{
		AssignedVehicleID: &vehicleID,
		Score:             &score,
		Route:             &route,
		AllVehicleScores:  scoresToDTO(v.AllScores),
	}
}
