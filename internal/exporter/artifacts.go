package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cordexplorer/internal/charts"
	apperrors "cordexplorer/internal/errors"
)

// Artifact filenames written by the batch pipeline.
const (
	FileYearChart     = "publications_by_year.png"
	FileJournalsChart = "top_journals.png"
	FileWordCloud     = "title_wordcloud.png"
	FileSourcesChart  = "top_sources.png"
)

// ChartFile maps a chart name to its artifact filename.
func ChartFile(chart string) (string, bool) {
	switch chart {
	case charts.NameYears:
		return FileYearChart, true
	case charts.NameJournals:
		return FileJournalsChart, true
	case charts.NameWordCloud:
		return FileWordCloud, true
	case charts.NameSources:
		return FileSourcesChart, true
	}
	return "", false
}

// ArtifactWriter saves rendered charts into the output directory.
type ArtifactWriter struct {
	dir    string
	logger *slog.Logger
}

// NewArtifactWriter creates a writer for dir. The directory must exist.
func NewArtifactWriter(dir string, logger *slog.Logger) *ArtifactWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactWriter{dir: dir, logger: logger.With(slog.String("component", "artifacts"))}
}

// Dir returns the output directory.
func (a *ArtifactWriter) Dir() string {
	return a.dir
}

// WriteChart saves data under the fixed filename for chart and returns the
// written path. The file is replaced atomically.
func (a *ArtifactWriter) WriteChart(chart string, data []byte) (string, error) {
	name, ok := ChartFile(chart)
	if !ok {
		return "", apperrors.NewValidationError(fmt.Sprintf("unknown chart %q", chart))
	}
	return a.WriteFile(name, data)
}

// WriteFile writes data to name inside the output directory through a
// temporary file and rename.
func (a *ArtifactWriter) WriteFile(name string, data []byte) (string, error) {
	path := filepath.Join(a.dir, name)

	tmp, err := os.CreateTemp(a.dir, "."+name+".*")
	if err != nil {
		return "", apperrors.NewStorageError("create temporary file", err).WithContext("path", path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", apperrors.NewStorageError("write artifact", err).WithContext("path", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", apperrors.NewStorageError("close artifact", err).WithContext("path", path)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", apperrors.NewStorageError("chmod artifact", err).WithContext("path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", apperrors.NewStorageError("rename artifact", err).WithContext("path", path)
	}

	a.logger.Debug("artifact written", slog.String("path", path), slog.Int("bytes", len(data)))
	return path, nil
}
