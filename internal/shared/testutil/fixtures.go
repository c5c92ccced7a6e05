package testutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// MetadataHeader is the column layout used by generated fixtures.
var MetadataHeader = []string{"cord_uid", "title", "publish_time", "journal", "source_x", "abstract"}

// MetadataRow is one fixture paper. Empty strings become empty CSV cells,
// which the loader treats as missing.
type MetadataRow struct {
	ID          string
	Title       string
	PublishTime string
	Journal     string
	Source      string
	Abstract    string
}

// MetadataCSV renders rows as a metadata.csv document.
func MetadataCSV(rows ...MetadataRow) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(MetadataHeader)
	for i, r := range rows {
		id := r.ID
		if id == "" {
			id = fmt.Sprintf("uid%04d", i+1)
		}
		_ = w.Write([]string{id, r.Title, r.PublishTime, r.Journal, r.Source, r.Abstract})
	}
	w.Flush()
	return b.String()
}

// WriteMetadataCSV writes rows to metadata.csv inside a fresh temp dir and
// returns the file path.
func WriteMetadataCSV(t *testing.T, rows ...MetadataRow) string {
	t.Helper()
	return WriteFile(t, "metadata.csv", MetadataCSV(rows...))
}

// WriteFile writes content to name inside a fresh temp dir.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// SamplePapers is a small corpus spanning 2019 to 2021 with a few rows the
// cleaner must drop.
func SamplePapers() []MetadataRow {
	return []MetadataRow{
		{Title: "Coronavirus spike protein structure", PublishTime: "2020-01-15", Journal: "Nature", Source: "PMC", Abstract: "We resolve the spike protein."},
		{Title: "Transmission dynamics of SARS-CoV-2", PublishTime: "2020-03-02", Journal: "Lancet", Source: "Medline", Abstract: "Modelling transmission."},
		{Title: "Vaccine candidates review", PublishTime: "2021-06-30", Journal: "Nature", Source: "PMC"},
		{Title: "Bat coronavirus survey", PublishTime: "2019", Journal: "Virology", Source: "Elsevier", Abstract: "Field survey results here"},
		{Title: "", PublishTime: "2020-02-01", Journal: "Nature", Source: "PMC"},
		{Title: "Undated preprint", PublishTime: "not a date", Journal: "bioRxiv", Source: "biorxiv"},
		{Title: "Hospital outcomes in Wuhan", PublishTime: "2020-04-10", Source: "WHO", Abstract: "Retrospective cohort"},
	}
}
