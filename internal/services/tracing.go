package services

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"cordexplorer/internal/infrastructure"
)

func defaultTracer() trace.Tracer {
	return otel.Tracer(infrastructure.InstrumentationName)
}
