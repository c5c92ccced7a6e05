package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	ws "cordexplorer/internal/websocket"
)

// HubStatsProvider reports websocket hub counters.
type HubStatsProvider interface {
	Stats() ws.HubStats
}

// MetricsHandler exposes Prometheus metrics and websocket counters
type MetricsHandler struct {
	prometheus http.Handler
	hub        HubStatsProvider
}

// NewMetricsHandler creates a new metrics handler. A nil prometheus handler
// answers 404 on the scrape route.
func NewMetricsHandler(prometheus http.Handler, hub HubStatsProvider) *MetricsHandler {
	return &MetricsHandler{prometheus: prometheus, hub: hub}
}

// Routes sets up the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Scrape)
	r.Get("/websocket", h.WebSocketStats)
	return r
}

// Scrape serves the Prometheus exposition format
func (h *MetricsHandler) Scrape(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		http.NotFound(w, r)
		return
	}
	h.prometheus.ServeHTTP(w, r)
}

// WebSocketStats returns the hub counters as JSON
func (h *MetricsHandler) WebSocketStats(w http.ResponseWriter, r *http.Request) {
	var stats ws.HubStats
	if h.hub != nil {
		stats = h.hub.Stats()
	}
	render.JSON(w, r, stats)
}
