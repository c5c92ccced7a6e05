package dataprocessing

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cordexplorer/internal/shared/testutil"
)

func parseFrame(t *testing.T, content string) *Frame {
	t.Helper()
	frame, err := NewLoader(nil).Parse(context.Background(), strings.NewReader(content))
	require.NoError(t, err)
	return frame
}

func TestNewSummarizer(t *testing.T) {
	tests := []struct {
		name     string
		logger   *slog.Logger
		config   SummarizerConfig
		wantCols int
	}{
		{
			name:     "default config",
			logger:   slog.Default(),
			config:   DefaultSummarizerConfig(),
			wantCols: 20,
		},
		{
			name:     "custom config",
			logger:   slog.Default(),
			config:   SummarizerConfig{MaxNullColumns: 3},
			wantCols: 3,
		},
		{
			name:     "zero falls back to default",
			logger:   slog.Default(),
			config:   SummarizerConfig{},
			wantCols: 20,
		},
		{
			name:     "nil logger uses default",
			logger:   nil,
			config:   DefaultSummarizerConfig(),
			wantCols: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSummarizer(tt.logger, tt.config)
			require.NotNil(t, s)
			assert.NotNil(t, s.logger)
			assert.Equal(t, tt.wantCols, s.maxNullColumns)
		})
	}
}

func TestSummarize_NumericColumns(t *testing.T) {
	frame := parseFrame(t, "a,b,c\n1,x,1.5\n2,y,\n3,x,2.5\n")
	s := NewSummarizer(nil, DefaultSummarizerConfig())

	summary := s.Summarize(context.Background(), frame)

	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, 3, summary.Cols)
	assert.Equal(t, []ColumnInfo{
		{Name: "a", DType: DTypeInt64, Nulls: 0},
		{Name: "b", DType: DTypeObject, Nulls: 0},
		{Name: "c", DType: DTypeFloat64, Nulls: 1},
	}, summary.Columns)
	assert.Empty(t, summary.Object)
	require.Len(t, summary.Numeric, 2)

	a := summary.Numeric[0]
	assert.Equal(t, "a", a.Column)
	assert.Equal(t, 3, a.Count)
	assert.InDelta(t, 2.0, a.Mean, 1e-9)
	assert.InDelta(t, 1.0, a.Std, 1e-9)
	assert.InDelta(t, 1.0, a.Min, 1e-9)
	assert.InDelta(t, 1.5, a.Q25, 1e-9)
	assert.InDelta(t, 2.0, a.Q50, 1e-9)
	assert.InDelta(t, 2.5, a.Q75, 1e-9)
	assert.InDelta(t, 3.0, a.Max, 1e-9)

	c := summary.Numeric[1]
	assert.Equal(t, 2, c.Count)
	assert.InDelta(t, 2.0, c.Mean, 1e-9)
}

func TestSummarize_SingleValueStdIsNaN(t *testing.T) {
	frame := parseFrame(t, "a\n7\n")
	summary := NewSummarizer(nil, DefaultSummarizerConfig()).Summarize(context.Background(), frame)

	require.Len(t, summary.Numeric, 1)
	assert.True(t, math.IsNaN(summary.Numeric[0].Std))
	assert.Equal(t, 7.0, summary.Numeric[0].Q75)
}

func TestSummarize_ObjectOnly(t *testing.T) {
	path := testutil.WriteMetadataCSV(t, testutil.SamplePapers()...)
	frame, err := NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	summary := NewSummarizer(nil, DefaultSummarizerConfig()).Summarize(context.Background(), frame)

	assert.Empty(t, summary.Numeric)
	require.Len(t, summary.Object, 6)

	journal := summary.Object[3]
	assert.Equal(t, "journal", journal.Column)
	assert.Equal(t, 6, journal.Count)
	assert.Equal(t, 4, journal.Unique)
	assert.Equal(t, "Nature", journal.Top)
	assert.Equal(t, 3, journal.Freq)
}

func TestSummarize_HeaderOnly(t *testing.T) {
	frame := parseFrame(t, "title,publish_time\n")
	summary := NewSummarizer(nil, DefaultSummarizerConfig()).Summarize(context.Background(), frame)

	assert.Empty(t, summary.Numeric)
	require.Len(t, summary.Object, 2)
	assert.Equal(t, "title", summary.Object[0].Column)
	assert.Zero(t, summary.Object[0].Count)
	assert.Zero(t, summary.Object[0].Unique)
}

func TestSummarize_NullColumnsCapped(t *testing.T) {
	frame := parseFrame(t, "a,b,c,d\n1,,,\n")
	summary := NewSummarizer(nil, SummarizerConfig{MaxNullColumns: 2}).Summarize(context.Background(), frame)
	assert.Equal(t, 2, summary.NullColumns)

	var buf bytes.Buffer
	require.NoError(t, NewSummarizer(nil, SummarizerConfig{MaxNullColumns: 2}).WriteConsole(&buf, summary))

	missing := buf.String()[strings.Index(buf.String(), "Missing values:"):strings.Index(buf.String(), "Basic statistics:")]
	assert.Contains(t, missing, "b")
	assert.NotContains(t, missing, "c ")
	assert.NotContains(t, missing, "d ")
}

func TestWriteConsole(t *testing.T) {
	path := testutil.WriteMetadataCSV(t, testutil.SamplePapers()...)
	frame, err := NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	s := NewSummarizer(nil, DefaultSummarizerConfig())
	summary := s.Summarize(context.Background(), frame)

	var first, second bytes.Buffer
	require.NoError(t, s.WriteConsole(&first, summary))
	require.NoError(t, s.WriteConsole(&second, summary))

	out := first.String()
	assert.Equal(t, out, second.String(), "output must be deterministic")
	assert.True(t, strings.HasPrefix(out, "Data dimensions: (7, 6)\n"))
	assert.Contains(t, out, "Data types:")
	assert.Contains(t, out, "dtype: object")
	assert.Contains(t, out, "Missing values:")
	assert.Contains(t, out, "dtype: int64")
	assert.Contains(t, out, "Basic statistics:")
	assert.Contains(t, out, "unique")
	assert.Contains(t, out, "Nature")

	lines := strings.Split(out, "\n")
	var abstractNulls string
	inMissing := false
	for _, line := range lines {
		if line == "Missing values:" {
			inMissing = true
			continue
		}
		if inMissing && strings.HasPrefix(line, "abstract") {
			abstractNulls = strings.TrimSpace(strings.TrimPrefix(line, "abstract"))
		}
	}
	assert.Equal(t, "3", abstractNulls)
}

func TestWriteConsole_NumericLayout(t *testing.T) {
	frame := parseFrame(t, "n\n1\n2\n3\n")
	s := NewSummarizer(nil, DefaultSummarizerConfig())

	var buf bytes.Buffer
	require.NoError(t, s.WriteConsole(&buf, s.Summarize(context.Background(), frame)))

	out := buf.String()
	assert.Contains(t, out, "3.000000")
	assert.Contains(t, out, "1.500000")
	assert.Contains(t, out, "2.500000")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteConsole_WriteError(t *testing.T) {
	frame := parseFrame(t, "n\n1\n")
	s := NewSummarizer(nil, DefaultSummarizerConfig())

	err := s.WriteConsole(failingWriter{}, s.Summarize(context.Background(), frame))
	assert.EqualError(t, err, "disk full")
}

func TestFormatStat(t *testing.T) {
	assert.Equal(t, "NaN", FormatStat(math.NaN()))
	assert.Equal(t, "2.000000", FormatStat(2))
	assert.Equal(t, "0.333333", FormatStat(1.0/3))
}

func TestQuantile(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, quantile(values, 0.25), 1e-9)
	assert.InDelta(t, 2.5, quantile(values, 0.5), 1e-9)
	assert.InDelta(t, 3.25, quantile(values, 0.75), 1e-9)
}
