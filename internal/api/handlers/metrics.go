package handlers

import (
	"net/http"

	"dispatch-service/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics serves GET /metrics for Prometheus scraping.
func Metrics() http.Handler {
	return promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})
}
