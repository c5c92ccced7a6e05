package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "cordexplorer/internal/errors"
	"cordexplorer/internal/exporter"
	"cordexplorer/internal/middleware"
	api "cordexplorer/pkg/contracts/api/v1"
)

// TransportName labels view renders requested over HTTP.
const TransportName = "http"

// ExplorerHandler serves the year-range explorer over REST
type ExplorerHandler struct {
	service      ExplorerServiceInterface
	validator    *middleware.ValidationMiddleware
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewExplorerHandler creates a new explorer handler with RFC 7807 error handling
func NewExplorerHandler(service ExplorerServiceInterface, validator *middleware.ValidationMiddleware, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ExplorerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	if validator == nil {
		validator = middleware.NewValidationMiddleware(logger, errorHandler)
	}
	return &ExplorerHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "explorer_handler")),
	}
}

// Routes returns the explorer routes
func (h *ExplorerHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/bounds", h.GetBounds)
		r.Get("/view", h.GetView)
		r.With(h.validator.LimitBody).Post("/view", h.PostView)
	})
	r.Get("/charts/{chart}.png", h.GetChart)
	r.Get("/export.csv", h.ExportCSV)

	return r
}

// GetBounds handles GET /api/explorer/bounds
func (h *ExplorerHandler) GetBounds(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.Success(api.BoundsResponse{Bounds: h.service.Bounds()}))
}

// GetView handles GET /api/explorer/view?from=&to=
func (h *ExplorerHandler) GetView(w http.ResponseWriter, r *http.Request) {
	req, err := h.queryRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respondView(w, r, req)
}

// PostView handles POST /api/explorer/view with a JSON ViewRequest body
func (h *ExplorerHandler) PostView(w http.ResponseWriter, r *http.Request) {
	var req api.ViewRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respondView(w, r, req)
}

func (h *ExplorerHandler) respondView(w http.ResponseWriter, r *http.Request, req api.ViewRequest) {
	yr := h.service.ResolveRange(req.From, req.To)

	view, err := h.service.View(r.Context(), yr, TransportName)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "view served",
		slog.Int("from", yr.From),
		slog.Int("to", yr.To),
		slog.Int("matched", view.Matched),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	render.JSON(w, r, api.Success(view))
}

// GetChart handles GET /api/explorer/charts/{chart}.png
func (h *ExplorerHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	view, err := h.queryRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	req := api.ChartRequest{ViewRequest: view, Chart: chi.URLParam(r, "chart")}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data, err := h.service.RenderChart(r.Context(), req.Chart, h.service.ResolveRange(req.From, req.To))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(data)
}

// ExportCSV handles GET /api/explorer/export.csv, streaming the cleaned
// papers in the selected range.
func (h *ExplorerHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	req, err := h.queryRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	yr := h.service.ResolveRange(req.From, req.To)

	papers, err := h.service.Papers(yr)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="papers_%d_%d.csv"`, yr.From, yr.To))
	if err := exporter.WritePapers(w, papers); err != nil {
		// headers are gone; log only
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	}
}

func (h *ExplorerHandler) queryRange(r *http.Request) (api.ViewRequest, error) {
	from, err := middleware.QueryInt(r, "from", 0)
	if err != nil {
		return api.ViewRequest{}, err
	}
	to, err := middleware.QueryInt(r, "to", 0)
	if err != nil {
		return api.ViewRequest{}, err
	}

	req := api.ViewRequest{From: from, To: to}
	if err := h.validator.ValidateStruct(req); err != nil {
		return api.ViewRequest{}, err
	}
	return req, nil
}
