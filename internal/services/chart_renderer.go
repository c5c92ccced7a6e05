package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cordexplorer/internal/charts"
	"cordexplorer/internal/config"
	"cordexplorer/internal/infrastructure"
	"cordexplorer/pkg/contracts/domain"
)

// ChartRenderer renders the explorer figures with tracing and metrics. The
// batch pipeline and the dashboard share one instance.
type ChartRenderer struct {
	wordCloud *charts.WordCloud
	tracer    trace.Tracer
	metrics   *infrastructure.BusinessMetrics
}

// WordCloudConfigFrom maps the charts section of the configuration.
func WordCloudConfigFrom(cfg config.ChartsConfig) charts.WordCloudConfig {
	return charts.WordCloudConfig{
		Width:    cfg.WordCloudWidth,
		Height:   cfg.WordCloudHeight,
		MaxWords: cfg.MaxWords,
	}
}

// NewChartRenderer prepares the word cloud font. metrics may be nil.
func NewChartRenderer(cfg config.ChartsConfig, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics) (*ChartRenderer, error) {
	wc, err := charts.NewWordCloud(WordCloudConfigFrom(cfg))
	if err != nil {
		return nil, err
	}
	if tracer == nil {
		tracer = defaultTracer()
	}
	return &ChartRenderer{wordCloud: wc, tracer: tracer, metrics: metrics}, nil
}

// Years renders the year histogram.
func (r *ChartRenderer) Years(ctx context.Context, hist []domain.YearCount) ([]byte, error) {
	return r.render(ctx, charts.NameYears, func() ([]byte, error) {
		return charts.YearBarChart(hist)
	})
}

// Journals renders the top journals table.
func (r *ChartRenderer) Journals(ctx context.Context, counts []domain.ValueCount) ([]byte, error) {
	return r.render(ctx, charts.NameJournals, func() ([]byte, error) {
		return charts.JournalsChart(counts)
	})
}

// Sources renders the top sources table.
func (r *ChartRenderer) Sources(ctx context.Context, counts []domain.ValueCount) ([]byte, error) {
	return r.render(ctx, charts.NameSources, func() ([]byte, error) {
		return charts.SourcesChart(counts)
	})
}

// WordCloud renders the title corpus. skipped is true, with no data and no
// error, when the corpus has nothing to draw; a blank corpus never reaches
// the word cloud renderer.
func (r *ChartRenderer) WordCloud(ctx context.Context, corpus string) (data []byte, skipped bool, err error) {
	if strings.TrimSpace(corpus) == "" {
		infrastructure.RecordWordCloudSkipped(ctx, r.metrics)
		return nil, true, nil
	}

	data, err = r.render(ctx, charts.NameWordCloud, func() ([]byte, error) {
		return r.wordCloud.Render(corpus)
	})
	if errors.Is(err, charts.ErrEmptyCorpus) {
		infrastructure.RecordWordCloudSkipped(ctx, r.metrics)
		return nil, true, nil
	}
	return data, false, err
}

// TopWords returns the word cloud vocabulary of corpus.
func (r *ChartRenderer) TopWords(corpus string) []charts.WordFrequency {
	return charts.Frequencies(corpus)
}

func (r *ChartRenderer) render(ctx context.Context, name string, fn func() ([]byte, error)) ([]byte, error) {
	ctx, span := r.tracer.Start(ctx, "chart.render", trace.WithAttributes(attribute.String("chart", name)))
	defer span.End()

	start := time.Now()
	data, err := fn()
	infrastructure.RecordChartRender(ctx, r.metrics, name, time.Since(start), err)
	if err != nil && !errors.Is(err, charts.ErrEmptyCorpus) {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("bytes", len(data)))
	return data, err
}
