package exporter

import (
	"log/slog"
	"os"
	"path/filepath"

	"cordexplorer/internal/charts"
	"cordexplorer/internal/dataprocessing"
	apperrors "cordexplorer/internal/errors"
)

// Report filenames written next to the charts when reports are enabled.
const (
	FileSummaryXLSX     = "summary.xlsx"
	FileSummaryMarkdown = "summary.md"
	FileYearCountsCSV   = "year_counts.csv"
	FileTopJournalsCSV  = "top_journals.csv"
	FileTopSourcesCSV   = "top_sources.csv"
)

// Report gathers everything the summary reports describe.
type Report struct {
	Input      string
	Dataset    *dataprocessing.DatasetSummary
	CleanRows  int
	CleanCols  int
	Dropped    DroppedRows
	Aggregates dataprocessing.Aggregates
	TopWords   []charts.WordFrequency
	Artifacts  []string
}

// DroppedRows counts rows removed by cleaning.
type DroppedRows struct {
	MissingTitle int
	MissingDate  int
}

// Total returns all dropped rows.
func (d DroppedRows) Total() int {
	return d.MissingTitle + d.MissingDate
}

// ReportWriter writes the optional summary reports.
type ReportWriter struct {
	dir    string
	csv    *CSVWriter
	logger *slog.Logger
}

// NewReportWriter creates a report writer for dir.
func NewReportWriter(dir string, logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{
		dir:    dir,
		csv:    NewCSVWriter(dir),
		logger: logger.With(slog.String("component", "reports")),
	}
}

// WriteAll writes the spreadsheet, the markdown summary and the CSV tables.
// It returns the written paths in a stable order.
func (w *ReportWriter) WriteAll(report *Report) ([]string, error) {
	var written []string

	xlsxPath := filepath.Join(w.dir, FileSummaryXLSX)
	if err := WriteSummaryXLSX(xlsxPath, report); err != nil {
		return written, err
	}
	written = append(written, xlsxPath)

	mdPath := filepath.Join(w.dir, FileSummaryMarkdown)
	f, err := os.Create(mdPath)
	if err != nil {
		return written, apperrors.NewStorageError("create markdown report", err).WithContext("path", mdPath)
	}
	if err := WriteSummaryMarkdown(f, report); err != nil {
		f.Close()
		return written, err
	}
	if err := f.Close(); err != nil {
		return written, apperrors.NewStorageError("close markdown report", err).WithContext("path", mdPath)
	}
	written = append(written, mdPath)

	tables := []struct {
		name    string
		headers []string
		rows    [][]string
	}{
		{FileYearCountsCSV, []string{"year", "count"}, YearCountRecords(report.Aggregates.Years)},
		{FileTopJournalsCSV, []string{"journal", "count"}, ValueCountRecords(report.Aggregates.TopJournals)},
		{FileTopSourcesCSV, []string{"source_x", "count"}, ValueCountRecords(report.Aggregates.TopSources)},
	}
	for _, t := range tables {
		if err := w.csv.WriteSimpleCSV(t.name, t.headers, t.rows); err != nil {
			return written, apperrors.NewStorageError("write csv table", err).WithContext("file", t.name)
		}
		written = append(written, filepath.Join(w.dir, t.name))
	}

	w.logger.Info("reports written", slog.Int("files", len(written)), slog.String("dir", w.dir))
	return written, nil
}
