package charts

import (
	"github.com/wcharczuk/go-chart/v2"

	"cordexplorer/pkg/contracts/domain"
)

// Chart names used in URLs, filenames and metrics.
const (
	NameYears     = "years"
	NameJournals  = "journals"
	NameSources   = "sources"
	NameWordCloud = "wordcloud"
)

// Figure titles and axis labels.
const (
	YearsTitle  = "Publications by Year"
	YearsXLabel = "Year"
	YearsYLabel = "Number of Publications"

	JournalsTitle  = "Top Journals Publishing COVID-19 Research"
	JournalsXLabel = "Number of Publications"
	JournalsYLabel = "Journal"

	SourcesTitle  = "Distribution of Paper Counts by Source"
	SourcesXLabel = "Number of Papers"
	SourcesYLabel = "Source"

	WordCloudTitle = "Word Cloud of Paper Titles"
)

// Figure sizes in pixels.
const (
	YearChartWidth  = 800
	YearChartHeight = 500
	HBarChartWidth  = 1000
	HBarChartHeight = 600
)

const maxCategoryLabel = 40

// YearBarChart renders the year histogram as vertical bars, one per year in
// ascending order. An empty histogram renders the empty frame.
func YearBarChart(hist []domain.YearCount) ([]byte, error) {
	c, err := newCanvas(YearChartWidth, YearChartHeight, chart.Box{Top: 50, Left: 80, Right: 30, Bottom: 60})
	if err != nil {
		return nil, err
	}

	maxCount := 0
	for _, h := range hist {
		maxCount = max(maxCount, h.Count)
	}
	top, step := niceScale(float64(maxCount), 5)

	// horizontal grid with count ticks
	for v := 0.0; v <= top; v += step {
		y := c.plot.Bottom - int(v/top*float64(c.plot.Height()))
		if v > 0 {
			c.line(c.plot.Left, y, c.plot.Right, y, colorGrid, 1)
		}
		c.textRight(formatTick(v), c.plot.Left-6, y, tickFontSize)
	}

	if n := len(hist); n > 0 {
		slot := float64(c.plot.Width()) / float64(n)
		barWidth := max(int(slot*0.8), 1)
		labelEvery := max(1, (n+19)/20)

		for i, h := range hist {
			cx := c.plot.Left + int(slot*(float64(i)+0.5))
			barTop := c.plot.Bottom - int(float64(h.Count)/top*float64(c.plot.Height()))
			c.fillRect(chart.Box{Top: barTop, Left: cx - barWidth/2, Right: cx + barWidth/2, Bottom: c.plot.Bottom}, colorBar)
			if i%labelEvery == 0 {
				c.textCentered(formatTick(float64(h.Year)), cx, c.plot.Bottom+16, tickFontSize)
			}
		}
	}

	c.frame(YearsTitle, YearsXLabel, YearsYLabel)
	return c.png()
}

// HorizontalBarChart renders counts as horizontal bars with the first entry
// on top. Category labels longer than 40 characters are shortened.
func HorizontalBarChart(title, xLabel, yLabel string, counts []domain.ValueCount) ([]byte, error) {
	c, err := newCanvas(HBarChartWidth, HBarChartHeight, chart.Box{Top: 50, Left: 120, Right: 40, Bottom: 60})
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(counts))
	widest := 0
	maxCount := 0
	for i, vc := range counts {
		labels[i] = shorten(vc.Value, maxCategoryLabel)
		widest = max(widest, c.measure(labels[i], tickFontSize).Width())
		maxCount = max(maxCount, vc.Count)
	}
	c.plot.Left = min(max(c.plot.Left, widest+50), c.width/2)

	top, step := niceScale(float64(maxCount), 6)

	// vertical grid with count ticks
	for v := 0.0; v <= top; v += step {
		x := c.plot.Left + int(v/top*float64(c.plot.Width()))
		if v > 0 {
			c.line(x, c.plot.Top, x, c.plot.Bottom, colorGrid, 1)
		}
		c.textCentered(formatTick(v), x, c.plot.Bottom+16, tickFontSize)
	}

	if n := len(counts); n > 0 {
		slot := float64(c.plot.Height()) / float64(n)
		barHeight := max(int(slot*0.8), 1)

		for i, vc := range counts {
			cy := c.plot.Top + int(slot*(float64(i)+0.5))
			barRight := c.plot.Left + int(float64(vc.Count)/top*float64(c.plot.Width()))
			c.fillRect(chart.Box{Top: cy - barHeight/2, Left: c.plot.Left, Right: barRight, Bottom: cy + barHeight/2}, colorBar)
			c.textRight(labels[i], c.plot.Left-6, cy, tickFontSize)
		}
	}

	c.frame(title, xLabel, yLabel)
	return c.png()
}

// JournalsChart renders the top journals table.
func JournalsChart(counts []domain.ValueCount) ([]byte, error) {
	return HorizontalBarChart(JournalsTitle, JournalsXLabel, JournalsYLabel, counts)
}

// SourcesChart renders the top sources table.
func SourcesChart(counts []domain.ValueCount) ([]byte, error) {
	return HorizontalBarChart(SourcesTitle, SourcesXLabel, SourcesYLabel, counts)
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
