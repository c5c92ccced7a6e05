package charts

import (
	"bytes"
	"fmt"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cordexplorer/pkg/contracts/domain"
)

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestYearBarChart(t *testing.T) {
	tests := []struct {
		name string
		hist []domain.YearCount
	}{
		{"empty", nil},
		{"single year", []domain.YearCount{{Year: 2020, Count: 1}}},
		{"several years", []domain.YearCount{{Year: 2019, Count: 1}, {Year: 2020, Count: 3}, {Year: 2021, Count: 1}}},
		{"zero counts", []domain.YearCount{{Year: 2020, Count: 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := YearBarChart(tt.hist)
			require.NoError(t, err)
			w, h := decodeSize(t, data)
			assert.Equal(t, YearChartWidth, w)
			assert.Equal(t, YearChartHeight, h)
		})
	}
}

func TestYearBarChart_ManyYears(t *testing.T) {
	var hist []domain.YearCount
	for y := 1870; y <= 2022; y++ {
		hist = append(hist, domain.YearCount{Year: y, Count: (y % 7) * 1000})
	}
	data, err := YearBarChart(hist)
	require.NoError(t, err)
	w, h := decodeSize(t, data)
	assert.Equal(t, YearChartWidth, w)
	assert.Equal(t, YearChartHeight, h)
}

func TestHorizontalBarChart(t *testing.T) {
	counts := []domain.ValueCount{
		{Value: "Nature", Count: 12},
		{Value: "A journal with an extraordinarily long name that must be shortened", Count: 7},
		{Value: "Lancet", Count: 3},
	}

	for _, fn := range []func([]domain.ValueCount) ([]byte, error){JournalsChart, SourcesChart} {
		data, err := fn(counts)
		require.NoError(t, err)
		w, h := decodeSize(t, data)
		assert.Equal(t, HBarChartWidth, w)
		assert.Equal(t, HBarChartHeight, h)
	}

	data, err := HorizontalBarChart("empty", "x", "y", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestHorizontalBarChart_Deterministic(t *testing.T) {
	counts := []domain.ValueCount{{Value: "PMC", Count: 2}, {Value: "WHO", Count: 1}}
	first, err := SourcesChart(counts)
	require.NoError(t, err)
	second, err := SourcesChart(counts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNiceScale(t *testing.T) {
	tests := []struct {
		max      float64
		target   int
		wantTop  float64
		wantStep float64
	}{
		{0, 5, 1, 1},
		{1, 5, 1, 1},
		{3, 5, 3, 1},
		{47, 5, 50, 10},
		{1234, 5, 1500, 500},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.max), func(t *testing.T) {
			top, step := niceScale(tt.max, tt.target)
			assert.Equal(t, tt.wantTop, top)
			assert.Equal(t, tt.wantStep, step)
		})
	}
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "short", shorten("short", 10))
	assert.Equal(t, "abcdefg...", shorten("abcdefghijklmnop", 10))
}
