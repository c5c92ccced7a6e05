// Package api contains the HTTP API contracts of the CORD-19 explorer.
// Version v1 represents the current stable API version.
package api

import "cordexplorer/pkg/contracts/domain"

// ViewRequest selects an inclusive year range. Zero values fall back to the
// dashboard's default range.
type ViewRequest struct {
	From int `json:"from" query:"from" validate:"omitempty,min=1000,max=9999"`
	To   int `json:"to" query:"to" validate:"omitempty,min=1000,max=9999"`
}

// ChartRequest names one of the explorer charts.
type ChartRequest struct {
	ViewRequest
	Chart string `json:"chart" validate:"required,oneof=years journals wordcloud"`
}

// BoundsResponse carries the slider bounds.
type BoundsResponse struct {
	Bounds domain.SliderBounds `json:"bounds"`
}

// Response is the success envelope used by every JSON endpoint.
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// Success wraps data in the success envelope.
func Success(data interface{}) Response {
	return Response{Status: "success", Data: data}
}

// ClientLogRequest is a log entry posted by the dashboard page.
type ClientLogRequest struct {
	Level   string                 `json:"level" validate:"oneof=debug info warn error"`
	Message string                 `json:"message" validate:"required,max=2000"`
	Source  string                 `json:"source,omitempty" validate:"max=200"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
