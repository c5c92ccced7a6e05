package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cordexplorer/internal/charts"
	"cordexplorer/internal/config"
	"cordexplorer/internal/dataprocessing"
	apperrors "cordexplorer/internal/errors"
	"cordexplorer/internal/exporter"
	"cordexplorer/internal/infrastructure"
)

// AnalysisOptions selects the input, the output directory and extras.
type AnalysisOptions struct {
	InputFile string
	OutputDir string
	Reports   bool
}

// AnalysisResult describes a finished batch run.
type AnalysisResult struct {
	Dataset          *Dataset
	Aggregates       dataprocessing.Aggregates
	Artifacts        []string
	Reports          []string
	WordCloudSkipped bool
}

// AnalysisService runs the batch pipeline: load, summarize, clean,
// aggregate, render and save.
type AnalysisService struct {
	datasets *DatasetLoader
	renderer *ChartRenderer
	topN     int
	tracer   trace.Tracer
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger
}

// NewAnalysisService wires the pipeline from configuration. tracer and
// metrics may be nil.
func NewAnalysisService(cfg *config.Config, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) (*AnalysisService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = defaultTracer()
	}
	renderer, err := NewChartRenderer(cfg.Charts, tracer, metrics)
	if err != nil {
		return nil, err
	}
	return &AnalysisService{
		datasets: NewDatasetLoader(cfg.Dataset, tracer, logger),
		renderer: renderer,
		topN:     cfg.Dashboard.TopN,
		tracer:   tracer,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "analysis_service")),
	}, nil
}

// renderedChart is one figure produced by the render stage.
type renderedChart struct {
	name string
	data []byte
}

// Run executes the pipeline and writes the console summary to out. Output
// written to out is deterministic for a given input.
func (s *AnalysisService) Run(ctx context.Context, opts AnalysisOptions, out io.Writer) (result *AnalysisResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "analysis.run", trace.WithAttributes(
		attribute.String("input", opts.InputFile),
		attribute.String("output_dir", opts.OutputDir)))
	defer span.End()

	var loaded, dropped int
	defer func() {
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
		infrastructure.RecordPipelineRun(ctx, s.metrics, loaded, dropped, time.Since(start), err)
	}()

	if err := dataprocessing.EnsureOutputDir(opts.OutputDir); err != nil {
		return nil, err
	}

	ds, err := s.datasets.Read(ctx, opts.InputFile)
	if err != nil {
		return nil, err
	}
	loaded = len(ds.Frame.Rows)

	if err := s.datasets.Summarizer().WriteConsole(out, ds.Summary); err != nil {
		return nil, apperrors.NewStorageError("write console summary", err)
	}

	if err := s.datasets.Clean(ctx, ds); err != nil {
		return nil, err
	}
	dropped = ds.Clean.Dropped()
	fmt.Fprintf(out, "Cleaned data dimensions: (%d, %d)\n", len(ds.Clean.Papers), ds.Clean.Columns)

	agg := dataprocessing.Aggregate(ds.Clean.Papers, s.topN)
	rendered, skipped, err := s.renderAll(ctx, agg)
	if err != nil {
		return nil, err
	}

	result = &AnalysisResult{Dataset: ds, Aggregates: agg, WordCloudSkipped: skipped}

	artifacts := exporter.NewArtifactWriter(opts.OutputDir, s.logger)
	for _, rc := range rendered {
		path, err := artifacts.WriteChart(rc.name, rc.data)
		if err != nil {
			return nil, err
		}
		result.Artifacts = append(result.Artifacts, path)
	}
	if skipped {
		fmt.Fprintln(out, charts.EmptyCorpusMessage)
	}

	if opts.Reports {
		report := &exporter.Report{
			Input:      opts.InputFile,
			Dataset:    ds.Summary,
			CleanRows:  len(ds.Clean.Papers),
			CleanCols:  ds.Clean.Columns,
			Dropped:    exporter.DroppedRows{MissingTitle: ds.Clean.DroppedMissingTitle, MissingDate: ds.Clean.DroppedMissingDate},
			Aggregates: agg,
			TopWords:   s.renderer.TopWords(agg.TitleCorpus),
		}
		for _, a := range result.Artifacts {
			report.Artifacts = append(report.Artifacts, filepath.Base(a))
		}
		result.Reports, err = exporter.NewReportWriter(opts.OutputDir, s.logger).WriteAll(report)
		if err != nil {
			return nil, err
		}
	}

	fmt.Fprintf(out, "Analysis complete. Visualizations saved in '%s/' folder.\n", strings.TrimRight(opts.OutputDir, `/\`))

	s.logger.InfoContext(ctx, "analysis complete",
		slog.Int("rows_loaded", loaded),
		slog.Int("rows_clean", len(ds.Clean.Papers)),
		slog.Int("artifacts", len(result.Artifacts)),
		slog.Bool("wordcloud_skipped", skipped),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

// renderAll renders the figures one after another in artifact order:
// years, journals, word cloud, sources. The first failure stops the stage.
func (s *AnalysisService) renderAll(ctx context.Context, agg dataprocessing.Aggregates) ([]renderedChart, bool, error) {
	slots := []renderedChart{
		{name: charts.NameYears},
		{name: charts.NameJournals},
		{name: charts.NameWordCloud},
		{name: charts.NameSources},
	}
	var (
		skipped bool
		err     error
	)

	if slots[0].data, err = s.renderer.Years(ctx, agg.Years); err != nil {
		return nil, false, err
	}
	if slots[1].data, err = s.renderer.Journals(ctx, agg.TopJournals); err != nil {
		return nil, false, err
	}
	if slots[2].data, skipped, err = s.renderer.WordCloud(ctx, agg.TitleCorpus); err != nil {
		return nil, false, err
	}
	if slots[3].data, err = s.renderer.Sources(ctx, agg.TopSources); err != nil {
		return nil, false, err
	}

	rendered := make([]renderedChart, 0, len(slots))
	for _, rc := range slots {
		if rc.data != nil {
			rendered = append(rendered, rc)
		}
	}
	return rendered, skipped, nil
}
