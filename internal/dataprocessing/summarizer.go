package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"text/tabwriter"
)

// Summarizer computes the dataset overview printed by the batch path:
// shape, column types, missing counts and describe-style statistics.
type Summarizer struct {
	logger         *slog.Logger
	maxNullColumns int
}

// SummarizerConfig holds configuration options for the Summarizer.
type SummarizerConfig struct {
	MaxNullColumns int // Columns listed in the missing values section
}

// DefaultSummarizerConfig lists missing values for the first 20 columns.
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{MaxNullColumns: 20}
}

// NewSummarizer creates a new dataset summarizer.
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxNullColumns <= 0 {
		config.MaxNullColumns = DefaultSummarizerConfig().MaxNullColumns
	}
	return &Summarizer{
		logger:         logger.With(slog.String("component", "summarizer")),
		maxNullColumns: config.MaxNullColumns,
	}
}

// ColumnInfo describes one raw column.
type ColumnInfo struct {
	Name  string `json:"name"`
	DType DType  `json:"dtype"`
	Nulls int    `json:"nulls"`
}

// NumericStats are describe statistics for a numeric column. Undefined values
// (empty column, std of fewer than two values) are NaN.
type NumericStats struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Q50    float64
	Q75    float64
	Max    float64
}

// ObjectStats are describe statistics for a text column.
type ObjectStats struct {
	Column string
	Count  int
	Unique int
	Top    string
	Freq   int
}

// DatasetSummary is the overview of a raw frame.
type DatasetSummary struct {
	Rows    int
	Cols    int
	Columns []ColumnInfo
	// NullColumns is how many leading columns the missing values listing shows
	NullColumns int
	// Exactly one of Numeric and Object is populated, following describe():
	// numeric columns when any exist, otherwise text columns.
	Numeric []NumericStats
	Object  []ObjectStats
}

// Summarize builds the overview of frame.
func (s *Summarizer) Summarize(ctx context.Context, frame *Frame) *DatasetSummary {
	rows, cols := frame.Shape()
	dtypes := frame.DTypes()
	nulls := frame.NullCounts()

	summary := &DatasetSummary{
		Rows:        rows,
		Cols:        cols,
		Columns:     make([]ColumnInfo, cols),
		NullColumns: min(cols, s.maxNullColumns),
	}
	for i, name := range frame.Columns {
		summary.Columns[i] = ColumnInfo{Name: name, DType: dtypes[i], Nulls: nulls[i]}
	}

	for i, dt := range dtypes {
		if dt.IsNumeric() {
			summary.Numeric = append(summary.Numeric, describeNumeric(frame.Columns[i], frame.Column(i)))
		}
	}
	if len(summary.Numeric) == 0 {
		describeAll := allObjectFallback(dtypes)
		for i, dt := range dtypes {
			if dt == DTypeObject || describeAll {
				summary.Object = append(summary.Object, describeObject(frame.Columns[i], frame.Column(i)))
			}
		}
	}

	s.logger.DebugContext(ctx, "dataset summarized",
		slog.Int("rows", rows),
		slog.Int("columns", cols),
		slog.Int("numeric_columns", len(summary.Numeric)),
		slog.Int("object_columns", len(summary.Object)))

	return summary
}

// allObjectFallback is true when no column is numeric or object, in which
// case every column is described as text.
func allObjectFallback(dtypes []DType) bool {
	for _, dt := range dtypes {
		if dt.IsNumeric() || dt == DTypeObject {
			return false
		}
	}
	return true
}

func describeNumeric(name string, cells []Cell) NumericStats {
	values := make([]float64, 0, len(cells))
	for _, c := range cells {
		if c.Null {
			continue
		}
		if v, err := strconv.ParseFloat(c.Value, 64); err == nil {
			values = append(values, v)
		}
	}

	nan := math.NaN()
	st := NumericStats{Column: name, Count: len(values), Mean: nan, Std: nan, Min: nan, Q25: nan, Q50: nan, Q75: nan, Max: nan}
	if len(values) == 0 {
		return st
	}

	sort.Float64s(values)
	var sum float64
	for _, v := range values {
		sum += v
	}
	st.Mean = sum / float64(len(values))
	if len(values) > 1 {
		var ss float64
		for _, v := range values {
			d := v - st.Mean
			ss += d * d
		}
		st.Std = math.Sqrt(ss / float64(len(values)-1))
	}
	st.Min = values[0]
	st.Max = values[len(values)-1]
	st.Q25 = quantile(values, 0.25)
	st.Q50 = quantile(values, 0.50)
	st.Q75 = quantile(values, 0.75)
	return st
}

// quantile uses linear interpolation between closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func describeObject(name string, cells []Cell) ObjectStats {
	st := ObjectStats{Column: name}
	counts := make(map[string]int)
	for _, c := range cells {
		if c.Null {
			continue
		}
		st.Count++
		counts[c.Value]++
		// first value to reach the highest count wins ties
		if counts[c.Value] > st.Freq {
			st.Top, st.Freq = c.Value, counts[c.Value]
		}
	}
	st.Unique = len(counts)
	return st
}

// WriteConsole prints the summary in a stable plain-text layout.
func (s *Summarizer) WriteConsole(w io.Writer, summary *DatasetSummary) error {
	ew := &errWriter{w: w}

	ew.printf("Data dimensions: (%d, %d)\n", summary.Rows, summary.Cols)

	ew.printf("\nData types:\n")
	tw := tabwriter.NewWriter(ew, 0, 0, 4, ' ', 0)
	for _, c := range summary.Columns {
		fmt.Fprintf(tw, "%s\t%s\n", c.Name, c.DType)
	}
	tw.Flush()
	ew.printf("dtype: object\n")

	ew.printf("\nMissing values:\n")
	tw = tabwriter.NewWriter(ew, 0, 0, 4, ' ', 0)
	for _, c := range summary.Columns[:summary.NullColumns] {
		fmt.Fprintf(tw, "%s\t%d\n", c.Name, c.Nulls)
	}
	tw.Flush()
	ew.printf("dtype: int64\n")

	ew.printf("\nBasic statistics:\n")
	tw = tabwriter.NewWriter(ew, 0, 0, 2, ' ', tabwriter.AlignRight)
	switch {
	case len(summary.Numeric) > 0:
		writeNumericTable(tw, summary.Numeric)
	case len(summary.Object) > 0:
		writeObjectTable(tw, summary.Object)
	default:
		fmt.Fprintf(tw, "Empty DataFrame\t\n")
	}
	tw.Flush()

	return ew.err
}

func writeNumericTable(w io.Writer, stats []NumericStats) {
	fmt.Fprint(w, "\t")
	for _, st := range stats {
		fmt.Fprintf(w, "%s\t", st.Column)
	}
	fmt.Fprintln(w)

	rows := []struct {
		label string
		value func(NumericStats) float64
	}{
		{"count", func(s NumericStats) float64 { return float64(s.Count) }},
		{"mean", func(s NumericStats) float64 { return s.Mean }},
		{"std", func(s NumericStats) float64 { return s.Std }},
		{"min", func(s NumericStats) float64 { return s.Min }},
		{"25%", func(s NumericStats) float64 { return s.Q25 }},
		{"50%", func(s NumericStats) float64 { return s.Q50 }},
		{"75%", func(s NumericStats) float64 { return s.Q75 }},
		{"max", func(s NumericStats) float64 { return s.Max }},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t", row.label)
		for _, st := range stats {
			fmt.Fprintf(w, "%s\t", FormatStat(row.value(st)))
		}
		fmt.Fprintln(w)
	}
}

func writeObjectTable(w io.Writer, stats []ObjectStats) {
	fmt.Fprint(w, "\t")
	for _, st := range stats {
		fmt.Fprintf(w, "%s\t", st.Column)
	}
	fmt.Fprintln(w)

	cells := []struct {
		label string
		value func(ObjectStats) string
	}{
		{"count", func(s ObjectStats) string { return strconv.Itoa(s.Count) }},
		{"unique", func(s ObjectStats) string { return strconv.Itoa(s.Unique) }},
		{"top", func(s ObjectStats) string { return truncate(s.Top, 40) }},
		{"freq", func(s ObjectStats) string { return strconv.Itoa(s.Freq) }},
	}
	for _, row := range cells {
		fmt.Fprintf(w, "%s\t", row.label)
		for _, st := range stats {
			fmt.Fprintf(w, "%s\t", row.value(st))
		}
		fmt.Fprintln(w)
	}
}

// FormatStat renders a statistic with six decimals, or NaN.
func FormatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// errWriter remembers the first write error so callers check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	fmt.Fprintf(e, format, args...)
}
