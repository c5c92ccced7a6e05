package services

import (
	"context"
	"encoding/base64"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cordexplorer/internal/charts"
	"cordexplorer/internal/config"
	"cordexplorer/internal/dataprocessing"
	apperrors "cordexplorer/internal/errors"
	"cordexplorer/internal/infrastructure"
	"cordexplorer/pkg/contracts/domain"
)

const mimePNG = "image/png"

// ExplorerService serves year-range views of the cleaned table. The table is
// read-only after construction, so calls are safe from many goroutines.
type ExplorerService struct {
	papers     []domain.Paper
	bounds     domain.SliderBounds
	sampleRows int
	topN       int
	renderer   *ChartRenderer
	tracer     trace.Tracer
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger
}

// NewExplorerService computes the slider bounds over papers. It fails when
// no paper has a year.
func NewExplorerService(papers []domain.Paper, cfg config.DashboardConfig, renderer *ChartRenderer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) (*ExplorerService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	minYear, maxYear, ok := dataprocessing.YearBounds(papers)
	if !ok {
		return nil, apperrors.NewAppError(apperrors.ErrTypeValidation, "year column has no values", ErrNoPublicationYears).
			WithContext("rows", len(papers))
	}

	bounds := domain.SliderBounds{
		Min: minYear,
		Max: maxYear,
		Default: domain.YearRange{
			From: clamp(cfg.DefaultYearFrom, minYear, maxYear),
			To:   clamp(cfg.DefaultYearTo, minYear, maxYear),
		},
	}

	sampleRows := cfg.SampleRows
	if sampleRows <= 0 {
		sampleRows = config.Default().Dashboard.SampleRows
	}
	topN := cfg.TopN
	if topN <= 0 {
		topN = dataprocessing.DefaultTopN
	}

	logger.Info("explorer ready",
		slog.Int("papers", len(papers)),
		slog.Int("min_year", bounds.Min),
		slog.Int("max_year", bounds.Max),
		slog.Int("default_from", bounds.Default.From),
		slog.Int("default_to", bounds.Default.To))

	return &ExplorerService{
		papers:     papers,
		bounds:     bounds,
		sampleRows: sampleRows,
		topN:       topN,
		renderer:   renderer,
		tracer:     renderer.tracer,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "explorer_service")),
	}, nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Bounds returns the slider bounds and the default range.
func (s *ExplorerService) Bounds() domain.SliderBounds {
	return s.bounds
}

// PaperCount returns the size of the cleaned table.
func (s *ExplorerService) PaperCount() int {
	return len(s.papers)
}

// ResolveRange fills unset ends (zero) with the default range.
func (s *ExplorerService) ResolveRange(from, to int) domain.YearRange {
	r := s.bounds.Default
	if from != 0 {
		r.From = from
	}
	if to != 0 {
		r.To = to
	}
	return r
}

// ValidateRange checks that r is ordered and inside the slider bounds.
func (s *ExplorerService) ValidateRange(r domain.YearRange) error {
	if r.From > r.To || r.From < s.bounds.Min || r.To > s.bounds.Max {
		return apperrors.InvalidRange(r.From, r.To, s.bounds.Min, s.bounds.Max)
	}
	return nil
}

// Papers returns the cleaned papers in r.
func (s *ExplorerService) Papers(r domain.YearRange) ([]domain.Paper, error) {
	if err := s.ValidateRange(r); err != nil {
		return nil, err
	}
	return dataprocessing.FilterYearRange(s.papers, r.From, r.To), nil
}

// View recomputes everything the dashboard shows for r. transport labels
// the caller in metrics, for example "http" or "websocket".
func (s *ExplorerService) View(ctx context.Context, r domain.YearRange, transport string) (view *domain.ExplorerView, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "explorer.view", trace.WithAttributes(
		attribute.Int("year.from", r.From),
		attribute.Int("year.to", r.To),
		attribute.String("transport", transport)))
	defer span.End()
	defer func() {
		infrastructure.RecordViewRender(ctx, s.metrics, transport, time.Since(start), err)
	}()

	filtered, err := s.Papers(r)
	if err != nil {
		return nil, err
	}

	view = &domain.ExplorerView{
		Range:       r,
		Matched:     len(filtered),
		Sample:      s.sample(filtered),
		YearCounts:  dataprocessing.YearHistogram(filtered),
		TopJournals: dataprocessing.TopN(filtered, domain.FieldJournal, s.topN),
	}

	yearPNG, err := s.renderer.Years(ctx, view.YearCounts)
	if err != nil {
		return nil, err
	}
	view.YearChart = encodeChart(charts.NameYears, charts.YearsTitle, yearPNG)

	journalPNG, err := s.renderer.Journals(ctx, view.TopJournals)
	if err != nil {
		return nil, err
	}
	view.JournalChart = encodeChart(charts.NameJournals, charts.JournalsTitle, journalPNG)

	cloudPNG, skipped, err := s.renderer.WordCloud(ctx, dataprocessing.TitleCorpus(filtered))
	if err != nil {
		return nil, err
	}
	if skipped {
		view.WordCloudNotice = charts.EmptyCorpusMessage
	} else {
		view.WordCloud = encodeChart(charts.NameWordCloud, charts.WordCloudTitle, cloudPNG)
	}

	s.logger.DebugContext(ctx, "view rendered",
		slog.Int("from", r.From),
		slog.Int("to", r.To),
		slog.Int("matched", view.Matched),
		slog.Bool("wordcloud_skipped", skipped),
		slog.String("transport", transport))

	return view, nil
}

// RenderChart renders one dashboard chart for r as PNG bytes. The word
// cloud of an empty selection is NOT_FOUND.
func (s *ExplorerService) RenderChart(ctx context.Context, name string, r domain.YearRange) ([]byte, error) {
	filtered, err := s.Papers(r)
	if err != nil {
		return nil, err
	}

	switch name {
	case charts.NameYears:
		return s.renderer.Years(ctx, dataprocessing.YearHistogram(filtered))
	case charts.NameJournals:
		return s.renderer.Journals(ctx, dataprocessing.TopN(filtered, domain.FieldJournal, s.topN))
	case charts.NameWordCloud:
		data, skipped, err := s.renderer.WordCloud(ctx, dataprocessing.TitleCorpus(filtered))
		if err != nil {
			return nil, err
		}
		if skipped {
			return nil, apperrors.NewAppError(apperrors.ErrTypeNotFound, charts.EmptyCorpusMessage, charts.ErrEmptyCorpus).
				WithContext("from", r.From).
				WithContext("to", r.To)
		}
		return data, nil
	default:
		return nil, apperrors.ErrUnknownChart
	}
}

func (s *ExplorerService) sample(papers []domain.Paper) []domain.SampleRow {
	n := min(len(papers), s.sampleRows)
	rows := make([]domain.SampleRow, n)
	for i, p := range papers[:n] {
		rows[i] = domain.SampleRow{
			ID:                p.ID,
			Title:             p.Title,
			Journal:           p.Journal,
			Source:            p.Source,
			AbstractWordCount: p.AbstractWordCount,
		}
		if p.PublishTime != nil {
			rows[i].PublishTime = p.PublishTime.Format(time.DateOnly)
		}
		if p.Year != nil {
			rows[i].Year = *p.Year
		}
	}
	return rows
}

func encodeChart(name, title string, data []byte) *domain.Chart {
	return &domain.Chart{
		Name:     name,
		Title:    title,
		MimeType: mimePNG,
		Data:     base64.StdEncoding.EncodeToString(data),
	}
}
