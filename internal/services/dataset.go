package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cordexplorer/internal/config"
	"cordexplorer/internal/dataprocessing"
	"cordexplorer/internal/infrastructure"
)

// Dataset is a loaded and cleaned metadata file.
type Dataset struct {
	Path    string
	Frame   *dataprocessing.Frame
	Summary *dataprocessing.DatasetSummary
	Clean   *dataprocessing.CleanResult
}

// DatasetLoader runs Loader, Summarizer and Cleaner in order.
type DatasetLoader struct {
	loader     *dataprocessing.Loader
	summarizer *dataprocessing.Summarizer
	cleaner    *dataprocessing.Cleaner
	tracer     trace.Tracer
	logger     *slog.Logger
}

// CleanerConfigFrom maps the dataset section of the configuration.
func CleanerConfigFrom(cfg config.DatasetConfig) dataprocessing.CleanerConfig {
	return dataprocessing.CleanerConfig{
		IDColumn:          cfg.IDColumn,
		TitleColumn:       cfg.TitleColumn,
		PublishTimeColumn: cfg.PublishTimeColumn,
		JournalColumn:     cfg.JournalColumn,
		SourceColumn:      cfg.SourceColumn,
		AbstractColumn:    cfg.AbstractColumn,
	}
}

// NewDatasetLoader creates a loader for the configured columns. A nil tracer
// uses the global provider.
func NewDatasetLoader(cfg config.DatasetConfig, tracer trace.Tracer, logger *slog.Logger) *DatasetLoader {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = defaultTracer()
	}
	return &DatasetLoader{
		loader:     dataprocessing.NewLoader(logger),
		summarizer: dataprocessing.NewSummarizer(logger, dataprocessing.DefaultSummarizerConfig()),
		cleaner:    dataprocessing.NewCleaner(logger, CleanerConfigFrom(cfg)),
		tracer:     tracer,
		logger:     logger,
	}
}

// Summarizer exposes the summarizer for console output.
func (d *DatasetLoader) Summarizer() *dataprocessing.Summarizer {
	return d.summarizer
}

// Load reads, summarizes and cleans the file at path.
func (d *DatasetLoader) Load(ctx context.Context, path string) (*Dataset, error) {
	ds, err := d.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := d.Clean(ctx, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// Read loads and summarizes the raw file without cleaning it.
func (d *DatasetLoader) Read(ctx context.Context, path string) (*Dataset, error) {
	ctx, span := d.tracer.Start(ctx, "dataset.read", trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	frame, err := d.loader.Load(ctx, path)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows.loaded", len(frame.Rows)))

	return &Dataset{Path: path, Frame: frame, Summary: d.summarizer.Summarize(ctx, frame)}, nil
}

// Clean derives the cleaned table of ds.
func (d *DatasetLoader) Clean(ctx context.Context, ds *Dataset) error {
	ctx, span := d.tracer.Start(ctx, "dataset.clean")
	defer span.End()

	clean, err := d.cleaner.Clean(ctx, ds.Frame)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return err
	}
	span.SetAttributes(
		attribute.Int("rows.clean", len(clean.Papers)),
		attribute.Int("rows.dropped", clean.Dropped()))

	ds.Clean = clean
	return nil
}
