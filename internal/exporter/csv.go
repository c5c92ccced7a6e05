package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"cordexplorer/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// PaperHeaders is the column layout of exported papers.
var PaperHeaders = []string{"cord_uid", "title", "publish_time", "year", "journal", "source_x", "abstract_word_count"}

// CSVWriter writes CSV files into an output directory
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates a new CSV writer rooted at dir
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file. Relative paths resolve against the
// writer's directory.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Debug("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	sw, err := NewStreamWriter(file, options.Headers, options.BOMPrefix)
	if err != nil {
		file.Close()
		return err
	}
	for i, record := range options.Records {
		if err := sw.WriteRecord(record); err != nil {
			file.Close()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	if err := sw.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteSimpleCSV writes a simple CSV file with headers and records
func (w *CSVWriter) WriteSimpleCSV(filePath string, headers []string, records [][]string) error {
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return filepath.Join(w.dir, filePath)
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	writer *csv.Writer
}

// NewStreamWriter writes the optional BOM and the header row to out.
func NewStreamWriter(out io.Writer, headers []string, bom bool) (*StreamWriter, error) {
	if bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Flush writes buffered records and reports any write error
func (s *StreamWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}

// PaperRecord converts a paper to a CSV row matching PaperHeaders.
func PaperRecord(p domain.Paper) []string {
	return []string{
		p.ID,
		p.Title,
		formatDate(p.PublishTime),
		formatYear(p.Year),
		p.Journal,
		p.Source,
		formatInt(p.AbstractWordCount),
	}
}

// WritePapers streams papers as CSV with a header row.
func WritePapers(out io.Writer, papers []domain.Paper) error {
	sw, err := NewStreamWriter(out, PaperHeaders, false)
	if err != nil {
		return err
	}
	for i, p := range papers {
		if err := sw.WriteRecord(PaperRecord(p)); err != nil {
			return fmt.Errorf("failed to write paper %d: %w", i, err)
		}
	}
	return sw.Flush()
}

// YearCountRecords converts a histogram to CSV rows.
func YearCountRecords(hist []domain.YearCount) [][]string {
	rows := make([][]string, len(hist))
	for i, h := range hist {
		rows[i] = []string{formatInt(h.Year), formatInt(h.Count)}
	}
	return rows
}

// ValueCountRecords converts a top-N table to CSV rows.
func ValueCountRecords(counts []domain.ValueCount) [][]string {
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.Value, formatInt(c.Count)}
	}
	return rows
}
