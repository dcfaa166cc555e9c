package dto

// GeocodeForwardRequest is the body of POST /geocode.
type GeocodeForwardRequest struct {
	Address AddressInput `json:"address"`
}

// GeocodeForwardResponse is the body returned by POST /geocode.
type GeocodeForwardResponse struct {
	Lat               float64 `json:"lat"`
	Lon               float64 `json:"lon"`
	NormalizedAddress string  `json:"normalized_address"`
	Confidence        float64 `json:"confidence"`
}

// GeocodeReverseRequest is the body of POST /geocode/reverse.
type GeocodeReverseRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeocodeReverseResponse is the body returned by POST /geocode/reverse.
type GeocodeReverseResponse struct {
	Street     string `json:"street,omitempty"`
	Number     string `json:"number,omitempty"`
	Corner1    string `json:"corner1,omitempty"`
	Corner2    string `json:"corner2,omitempty"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}
