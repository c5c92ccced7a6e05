package dataprocessing

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	apperrors "cordexplorer/internal/errors"
)

// missingMarkers are the cell texts treated as missing values.
var missingMarkers = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether raw cell text denotes a missing value.
func IsMissing(raw string) bool {
	_, ok := missingMarkers[raw]
	return ok
}

// Cell is one nullable value of the raw table.
type Cell struct {
	Value string
	Null  bool
}

// NewCell builds a cell from raw CSV text.
func NewCell(raw string) Cell {
	if IsMissing(raw) {
		return Cell{Null: true}
	}
	return Cell{Value: raw}
}

// DType is the inferred storage type of a column.
type DType string

const (
	DTypeInt64   DType = "int64"
	DTypeFloat64 DType = "float64"
	DTypeBool    DType = "bool"
	DTypeObject  DType = "object"
)

// IsNumeric reports whether describe statistics apply to the type.
func (d DType) IsNumeric() bool {
	return d == DTypeInt64 || d == DTypeFloat64
}

// Frame is the raw table produced by the Loader: ordered columns and rows
// of nullable text cells. Rows always have len(Columns) cells.
type Frame struct {
	Columns []string
	Rows    [][]Cell
}

// Shape returns the row and column counts.
func (f *Frame) Shape() (rows, cols int) {
	return len(f.Rows), len(f.Columns)
}

// ColumnIndex returns the position of name, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns the cells of column i.
func (f *Frame) Column(i int) []Cell {
	out := make([]Cell, len(f.Rows))
	for r, row := range f.Rows {
		out[r] = row[i]
	}
	return out
}

// NullCounts returns the number of missing cells per column.
func (f *Frame) NullCounts() []int {
	counts := make([]int, len(f.Columns))
	for _, row := range f.Rows {
		for i, c := range row {
			if c.Null {
				counts[i]++
			}
		}
	}
	return counts
}

// DTypes infers the type of every column.
func (f *Frame) DTypes() []DType {
	types := make([]DType, len(f.Columns))
	for i := range f.Columns {
		types[i] = InferDType(f.Column(i))
	}
	return types
}

// InferDType picks the narrowest type that holds every non-null cell.
// Integers with missing values widen to float64 and booleans with missing
// values fall back to object; an all-missing column is float64 and a
// column with no rows is object.
func InferDType(cells []Cell) DType {
	if len(cells) == 0 {
		return DTypeObject
	}
	var nonNull, ints, floats, bools int
	for _, c := range cells {
		if c.Null {
			continue
		}
		nonNull++
		v := strings.TrimSpace(c.Value)
		if _, err := strconv.ParseInt(v, 10, 64); err == nil {
			ints++
			floats++
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			floats++
			continue
		}
		if _, ok := parseBool(v); ok {
			bools++
		}
	}

	hasNull := nonNull < len(cells)
	switch {
	case nonNull == 0:
		return DTypeFloat64
	case ints == nonNull && !hasNull:
		return DTypeInt64
	case floats == nonNull:
		return DTypeFloat64
	case bools == nonNull && !hasNull:
		return DTypeBool
	default:
		return DTypeObject
	}
}

func parseBool(v string) (bool, bool) {
	switch v {
	case "True", "TRUE", "true":
		return true, true
	case "False", "FALSE", "false":
		return false, true
	}
	return false, false
}

// Loader reads metadata files into a Frame.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger uses slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "loader"))}
}

// Load reads the comma-delimited file at path. A missing or unreadable file
// is a LOAD error; malformed content is a PARSING error. Nothing is returned
// on failure.
func (l *Loader) Load(ctx context.Context, path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		msg := "cannot open input file"
		if errors.Is(err, fs.ErrNotExist) {
			msg = "input file does not exist"
		}
		return nil, apperrors.NewLoadError(msg, err).WithContext("path", path)
	}
	defer f.Close()

	frame, err := l.Parse(ctx, f)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("path", path)
		}
		return nil, err
	}

	rows, cols := frame.Shape()
	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", path),
		slog.Int("rows", rows),
		slog.Int("columns", cols))
	return frame, nil
}

// Parse reads CSV content with a header row. Short rows are padded with
// missing cells; rows longer than the header are rejected.
func (l *Loader) Parse(ctx context.Context, r io.Reader) (*Frame, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewParsingError("no columns to parse from file", nil)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("malformed header", err)
	}

	frame := &Frame{Columns: normalizeHeader(header)}
	ncol := len(frame.Columns)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("malformed row", err)
		}
		if len(record) > ncol {
			line, _ := cr.FieldPos(0)
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("expected %d fields in line %d, saw %d", ncol, line, len(record)), nil).
				WithContext("line", line)
		}

		row := make([]Cell, ncol)
		for i := range row {
			if i < len(record) {
				row[i] = NewCell(record[i])
			} else {
				row[i] = Cell{Null: true}
			}
		}
		frame.Rows = append(frame.Rows, row)
	}

	return frame, nil
}

// normalizeHeader strips a UTF-8 BOM and suffixes duplicate names with .1, .2, ...
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	dupes := make(map[string]int)
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		name := h
		for used[name] {
			dupes[h]++
			name = fmt.Sprintf("%s.%d", h, dupes[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// EnsureOutputDir creates dir and its parents. It is a no-op when dir exists.
func EnsureOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewStorageError("cannot create output directory", err).WithContext("dir", dir)
	}
	return nil
}
