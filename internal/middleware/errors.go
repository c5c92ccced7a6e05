package middleware

import (
	"net/http"

	apperrors "cordexplorer/internal/errors"
	"cordexplorer/internal/infrastructure"
)

// ProblemFromStatus builds the problem document middlewares answer with
// when they short-circuit a request.
func ProblemFromStatus(r *http.Request, status int, detail string) *apperrors.ProblemDetails {
	var problemType string

	switch status {
	case http.StatusBadRequest:
		problemType = apperrors.TypeValidation
	case http.StatusNotFound:
		problemType = apperrors.TypeNotFound
	case http.StatusMethodNotAllowed:
		problemType = apperrors.TypeMethod
	case http.StatusTooManyRequests:
		problemType = apperrors.TypeRateLimit
	case http.StatusServiceUnavailable:
		problemType = apperrors.TypeServiceDown
	case http.StatusGatewayTimeout:
		problemType = apperrors.TypeTimeout
	default:
		problemType = apperrors.TypeInternal
	}

	problem := apperrors.NewProblemDetails(status, problemType, http.StatusText(status), detail, r.URL.Path)
	if traceID := traceIDFor(r); traceID != "" {
		problem.WithExtension("trace_id", traceID)
	}
	return problem
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	apperrors.WriteProblem(w, ProblemFromStatus(r, status, detail))
}

func traceIDFor(r *http.Request) string {
	if traceID := infrastructure.GetTraceID(r.Context()); traceID != "" {
		return traceID
	}
	return GetReqID(r.Context())
}
