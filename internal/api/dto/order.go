package dto

import "time"

// Address is the wire form of a structured delivery location.
type Address struct {
	Street     string   `json:"street,omitempty"`
	Number     string   `json:"number,omitempty"`
	Corner1    string   `json:"corner1,omitempty"`
	Corner2    string   `json:"corner2,omitempty"`
	City       string   `json:"city,omitempty"`
	Country    string   `json:"country,omitempty"`
	PostalCode string   `json:"postal_code,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
}

// AddressInput is the wire sum type for an order's destination: callers
// send either free_text or structured, never both.
type AddressInput struct {
	FreeText   string   `json:"free_text,omitempty"`
	Structured *Address `json:"structured,omitempty"`
}

// OrderRequest is one delivery request as received over the wire.
type OrderRequest struct {
	OrderID     string       `json:"order_id"`
	Address     AddressInput `json:"address"`
	Deadline    time.Time    `json:"deadline"`
	Priority    string       `json:"priority,omitempty"`
	WeightKg    float64      `json:"weight_kg"`
	DurationMin float64      `json:"estimated_duration_min,omitempty"`
	CreatedAt   *time.Time   `json:"created_at,omitempty"`
}

// VehicleRequest is one candidate carrier as received over the wire.
type VehicleRequest struct {
	VehicleID        string         `json:"vehicle_id"`
	DriverName       string         `json:"driver_name,omitempty"`
	Lat              float64        `json:"lat"`
	Lon              float64        `json:"lon"`
	Capacity         int            `json:"capacity"`
	MaxWeightKg      float64        `json:"max_weight_kg"`
	PerformanceScore float64        `json:"performance_score,omitempty"`
	Zone             string         `json:"zone,omitempty"`
	CurrentOrders    []OrderRequest `json:"current_orders,omitempty"`
}

// Stop is one visit in a wire-form route.
type Stop struct {
	OrderID string    `json:"order_id,omitempty"`
	Lat     float64   `json:"lat"`
	Lon     float64   `json:"lon"`
	ETA     time.Time `json:"eta"`
	OnTime  bool      `json:"on_time"`
	IsStart bool      `json:"is_start,omitempty"`
}

// Route is the wire form of a planned sequence of stops.
type Route struct {
	VehicleID           string  `json:"vehicle_id,omitempty"`
	Stops               []Stop  `json:"stops"`
	TotalDistanceMeters float64 `json:"total_distance_meters"`
	TotalDurationMin    float64 `json:"total_duration_min"`
	AllOnTime           bool    `json:"all_on_time"`
}

// SubScores is the wire form of the six scorer components.
type SubScores struct {
	Distance      float64 `json:"distance"`
	Capacity      float64 `json:"capacity"`
	Urgency       float64 `json:"urgency"`
	Compatibility float64 `json:"compatibility"`
	Performance   float64 `json:"performance"`
	Interference  float64 `json:"interference"`
}

// AssignmentScore is the wire form of one (vehicle, order) evaluation.
type AssignmentScore struct {
	VehicleID           string    `json:"vehicle_id"`
	SubScores           SubScores `json:"sub_scores"`
	Total               float64   `json:"total"`
	Feasible            bool      `json:"feasible"`
	Approximate         bool      `json:"approximate,omitempty"`
	Reasoning           []string  `json:"reasoning,omitempty"`
	EstimatedArrivalMin float64   `json:"estimated_arrival_min"`
	InterferenceMin     float64   `json:"interference_min"`
}
