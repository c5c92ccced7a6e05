package http

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"cordexplorer/pkg/contracts"
	"cordexplorer/pkg/contracts/domain"
)

// Dashboard page copy.
const (
	DashboardTitle    = "CORD-19 Data Explorer"
	DashboardSubtitle = "Simple exploration of COVID-19 research papers"
)

//go:embed templates/dashboard.html
var dashboardHTML string

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

// BoundsProvider supplies the slider bounds rendered into the page.
type BoundsProvider interface {
	Bounds() domain.SliderBounds
}

type dashboardData struct {
	Title      string
	Subtitle   string
	Version    string
	Bounds     domain.SliderBounds
	BoundsJSON template.JS
}

// DashboardHandler serves the single-page explorer
type DashboardHandler struct {
	bounds BoundsProvider
	logger *slog.Logger
}

// NewDashboardHandler creates the dashboard page handler
func NewDashboardHandler(bounds BoundsProvider, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		bounds: bounds,
		logger: logger.With(slog.String("handler", "dashboard")),
	}
}

// ServeHTTP renders the page with the slider bounds baked in.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b := h.bounds.Bounds()
	boundsJSON, err := json.Marshal(b)
	if err != nil {
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	err = dashboardTemplate.Execute(&buf, dashboardData{
		Title:      DashboardTitle,
		Subtitle:   DashboardSubtitle,
		Version:    contracts.Version,
		Bounds:     b,
		BoundsJSON: template.JS(boundsJSON),
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dashboard template failed",
			slog.String("error", err.Error()))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}
