package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "cordexplorer/internal/errors"
	"cordexplorer/pkg/contracts/domain"
)

// missingAbstractText is what a missing abstract becomes before counting
// words, so an absent abstract counts as one word.
const missingAbstractText = "nan"

// Derived column names appended by the cleaner.
const (
	ColumnYear              = "year"
	ColumnAbstractWordCount = "abstract_word_count"
)

// publishTimeLayouts are tried in order; the first successful parse wins.
var publishTimeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"2006-01",
	"2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"January 2 2006",
}

// ParsePublishTime parses a publish date, returning nil when the text does
// not match any supported layout.
func ParsePublishTime(raw string) *time.Time {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	for _, layout := range publishTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

// CountWords counts whitespace-delimited tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CleanerConfig names the columns the cleaner reads.
type CleanerConfig struct {
	IDColumn          string
	TitleColumn       string
	PublishTimeColumn string
	JournalColumn     string
	SourceColumn      string
	AbstractColumn    string
}

// DefaultCleanerConfig returns the CORD-19 metadata.csv column names.
func DefaultCleanerConfig() CleanerConfig {
	return CleanerConfig{
		IDColumn:          "cord_uid",
		TitleColumn:       "title",
		PublishTimeColumn: "publish_time",
		JournalColumn:     "journal",
		SourceColumn:      "source_x",
		AbstractColumn:    "abstract",
	}
}

// CleanResult is the outcome of cleaning a frame.
type CleanResult struct {
	// All holds every input row with derived fields, before dropping.
	All []domain.Paper
	// Papers is the cleaned table: every row has a title and a publish time.
	Papers []domain.Paper
	// Columns is the column count of the cleaned table including derived columns.
	Columns int

	DroppedMissingTitle int
	DroppedMissingDate  int
}

// Dropped returns the number of rows removed by cleaning.
func (r *CleanResult) Dropped() int {
	return len(r.All) - len(r.Papers)
}

// Cleaner derives typed fields and removes incomplete rows.
type Cleaner struct {
	logger *slog.Logger
	cfg    CleanerConfig
}

// NewCleaner creates a cleaner. Empty column names fall back to the defaults.
func NewCleaner(logger *slog.Logger, cfg CleanerConfig) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultCleanerConfig()
	if cfg.TitleColumn == "" {
		cfg.TitleColumn = def.TitleColumn
	}
	if cfg.PublishTimeColumn == "" {
		cfg.PublishTimeColumn = def.PublishTimeColumn
	}
	if cfg.JournalColumn == "" {
		cfg.JournalColumn = def.JournalColumn
	}
	if cfg.SourceColumn == "" {
		cfg.SourceColumn = def.SourceColumn
	}
	if cfg.AbstractColumn == "" {
		cfg.AbstractColumn = def.AbstractColumn
	}
	return &Cleaner{
		logger: logger.With(slog.String("component", "cleaner")),
		cfg:    cfg,
	}
}

// Clean parses dates, derives year and abstract word count, then drops rows
// missing a title or a parsed date. The title and publish time columns are
// required; the others are treated as all-missing when absent.
func (c *Cleaner) Clean(ctx context.Context, frame *Frame) (*CleanResult, error) {
	titleIdx := frame.ColumnIndex(c.cfg.TitleColumn)
	dateIdx := frame.ColumnIndex(c.cfg.PublishTimeColumn)

	var missing []string
	if titleIdx < 0 {
		missing = append(missing, c.cfg.TitleColumn)
	}
	if dateIdx < 0 {
		missing = append(missing, c.cfg.PublishTimeColumn)
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("required columns missing: %s", strings.Join(missing, ", "))).
			WithContext("columns", missing)
	}

	idIdx := frame.ColumnIndex(c.cfg.IDColumn)
	journalIdx := frame.ColumnIndex(c.cfg.JournalColumn)
	sourceIdx := frame.ColumnIndex(c.cfg.SourceColumn)
	abstractIdx := frame.ColumnIndex(c.cfg.AbstractColumn)

	result := &CleanResult{
		All:     make([]domain.Paper, 0, len(frame.Rows)),
		Papers:  make([]domain.Paper, 0, len(frame.Rows)),
		Columns: len(frame.Columns) + c.derivedColumns(frame),
	}

	for _, row := range frame.Rows {
		p := domain.Paper{
			ID:       cellText(row, idIdx),
			Title:    cellText(row, titleIdx),
			Journal:  cellText(row, journalIdx),
			Source:   cellText(row, sourceIdx),
			Abstract: cellText(row, abstractIdx),
		}

		if !row[dateIdx].Null {
			p.PublishTime = ParsePublishTime(row[dateIdx].Value)
		}
		if p.PublishTime != nil {
			year := p.PublishTime.Year()
			p.Year = &year
		}

		abstract := p.Abstract
		if abstract == "" {
			abstract = missingAbstractText
		}
		p.AbstractWordCount = CountWords(abstract)

		result.All = append(result.All, p)

		switch {
		case p.Title == "":
			result.DroppedMissingTitle++
		case p.PublishTime == nil:
			result.DroppedMissingDate++
		default:
			result.Papers = append(result.Papers, p)
		}
	}

	c.logger.InfoContext(ctx, "dataset cleaned",
		slog.Int("input_rows", len(result.All)),
		slog.Int("clean_rows", len(result.Papers)),
		slog.Int("dropped_missing_title", result.DroppedMissingTitle),
		slog.Int("dropped_missing_date", result.DroppedMissingDate))

	return result, nil
}

// derivedColumns counts the derived columns not already present in frame.
func (c *Cleaner) derivedColumns(frame *Frame) int {
	n := 0
	for _, name := range []string{ColumnYear, ColumnAbstractWordCount} {
		if frame.ColumnIndex(name) < 0 {
			n++
		}
	}
	return n
}

func cellText(row []Cell, idx int) string {
	if idx < 0 || row[idx].Null {
		return ""
	}
	return row[idx].Value
}
