package api

import (
	"net/http"
	"time"

	"dispatch-service/internal/api/handlers"
	"dispatch-service/internal/dispatch"
	"dispatch-service/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware of
// concrete adapters).
func NewRouter(d *dispatch.Dispatcher, geocoder ports.Geocoder, sequencerBudget time.Duration) http.Handler {
	mux := http.NewServeMux()

	dispatchHandler := &handlers.DispatchHandler{Dispatcher: d}
	resequenceHandler := &handlers.ResequenceHandler{RoadNetwork: d.RoadNetwork, Budget: sequencerBudget}
	geocodeHandler := &handlers.GeocodeHandler{Geocoder: geocoder}

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", handlers.Metrics())
	mux.HandleFunc("/dispatch", dispatchHandler.Dispatch)
	mux.HandleFunc("/dispatch/batch", dispatchHandler.Batch)
	mux.HandleFunc("/resequence", resequenceHandler.Resequence)
	mux.HandleFunc("/geocode", geocodeHandler.Forward)
	mux.HandleFunc("/geocode/reverse", geocodeHandler.Reverse)

	return requestIDMiddleware(loggingMiddleware(mux))
}
