package infrastructure

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOTelConfig() *OTelConfig {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.EnableMetrics = true
	cfg.TraceWriter = io.Discard
	return cfg
}

func TestOTelInitialization(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	providers, err := InitializeOTel(testOTelConfig(), logger)
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelInitialization_Disabled(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = false
	cfg.EnableMetrics = false

	providers, err := InitializeOTel(cfg, nil)
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)

	// no-op instruments still work
	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	RecordPipelineRun(context.Background(), metrics, 10, 2, time.Second, nil)
}

func TestTraceCorrelation(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig(), nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "test-operation")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)
	assert.Equal(t, traceID, GetTraceID(ctx))
}

func TestBusinessMetrics_ExposedOnPrometheus(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig(), nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordPipelineRun(ctx, metrics, 100, 7, 2*time.Second, nil)
	RecordChartRender(ctx, metrics, "years", 10*time.Millisecond, nil)
	RecordWordCloudSkipped(ctx, metrics)
	RecordViewRender(ctx, metrics, "websocket", 5*time.Millisecond, nil)
	RecordHTTPRequest(ctx, metrics, http.MethodGet, "/api/explorer/view", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "pipeline_runs_total")
	assert.Contains(t, body, "dataset_rows_dropped_total")
	assert.Contains(t, body, "charts_rendered_total")
	assert.Contains(t, body, "explorer_view_renders_total")
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordPipelineRun(ctx, nil, 1, 0, time.Second, nil)
		RecordChartRender(ctx, nil, "years", time.Second, nil)
		RecordWordCloudSkipped(ctx, nil)
		RecordViewRender(ctx, nil, "http", time.Second, nil)
		RecordHTTPRequest(ctx, nil, "GET", "/", 200, time.Second)
	})
}

func TestTracing_WritesSpans(t *testing.T) {
	var buf bytes.Buffer
	cfg := testOTelConfig()
	cfg.TraceWriter = &buf
	cfg.EnableMetrics = false

	providers, err := InitializeOTel(cfg, nil)
	require.NoError(t, err)

	_, span := providers.Tracer.Start(context.Background(), "load")
	span.End()
	require.NoError(t, providers.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "\"Name\":\"load\"")
}
