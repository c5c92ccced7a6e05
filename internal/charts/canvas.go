package charts

import (
	"bytes"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	apperrors "cordexplorer/internal/errors"
)

var (
	colorBackground = drawing.ColorWhite
	colorText       = drawing.ColorFromHex("262626")
	colorAxis       = drawing.ColorFromHex("595959")
	colorGrid       = drawing.ColorFromHex("E5E5E5")
	colorBar        = drawing.ColorFromHex("4C72B0")
)

const (
	titleFontSize = 14
	labelFontSize = 11
	tickFontSize  = 9
)

// canvas wraps a go-chart raster renderer with the frame shared by the bar
// charts: background, title, axis labels and the plot box.
type canvas struct {
	r      chart.Renderer
	width  int
	height int
	plot   chart.Box
}

func newCanvas(width, height int, margins chart.Box) (*canvas, error) {
	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, apperrors.NewRenderError("create renderer", err)
	}
	f, err := chart.GetDefaultFont()
	if err != nil {
		return nil, apperrors.NewRenderError("load default font", err)
	}
	r.SetFont(f)

	c := &canvas{
		r:      r,
		width:  width,
		height: height,
		plot: chart.Box{
			Top:    margins.Top,
			Left:   margins.Left,
			Right:  width - margins.Right,
			Bottom: height - margins.Bottom,
		},
	}
	c.fillRect(chart.Box{Top: 0, Left: 0, Right: width, Bottom: height}, colorBackground)
	return c, nil
}

func (c *canvas) fillRect(b chart.Box, color drawing.Color) {
	c.r.SetFillColor(color)
	c.r.SetStrokeWidth(0)
	c.r.MoveTo(b.Left, b.Top)
	c.r.LineTo(b.Right, b.Top)
	c.r.LineTo(b.Right, b.Bottom)
	c.r.LineTo(b.Left, b.Bottom)
	c.r.Close()
	c.r.Fill()
}

func (c *canvas) line(x1, y1, x2, y2 int, color drawing.Color, width float64) {
	c.r.SetStrokeColor(color)
	c.r.SetStrokeWidth(width)
	c.r.MoveTo(x1, y1)
	c.r.LineTo(x2, y2)
	c.r.Stroke()
}

func (c *canvas) textStyle(size float64) {
	c.r.SetFontSize(size)
	c.r.SetFontColor(colorText)
}

func (c *canvas) measure(text string, size float64) chart.Box {
	c.textStyle(size)
	return c.r.MeasureText(text)
}

// textCentered draws text horizontally centred on x with its baseline at y.
func (c *canvas) textCentered(text string, x, y int, size float64) {
	w := c.measure(text, size).Width()
	c.r.Text(text, x-w/2, y)
}

// textRight draws text ending at x, vertically centred on y.
func (c *canvas) textRight(text string, x, y int, size float64) {
	b := c.measure(text, size)
	c.r.Text(text, x-b.Width(), y+b.Height()/2)
}

// textVertical draws text rotated to read bottom to top, centred on y.
func (c *canvas) textVertical(text string, x, y int, size float64) {
	w := c.measure(text, size).Width()
	c.r.SetTextRotation(chart.DegreesToRadians(270))
	c.r.Text(text, x, y+w/2)
	c.r.ClearTextRotation()
}

// frame draws the title, the axis labels and the plot axes.
func (c *canvas) frame(title, xLabel, yLabel string) {
	c.textCentered(title, c.width/2, c.plot.Top/2+titleFontSize/2, titleFontSize)
	c.textCentered(xLabel, c.plot.Left+c.plot.Width()/2, c.height-12, labelFontSize)
	c.textVertical(yLabel, 18, c.plot.Top+c.plot.Height()/2, labelFontSize)

	c.line(c.plot.Left, c.plot.Top, c.plot.Left, c.plot.Bottom, colorAxis, 1)
	c.line(c.plot.Left, c.plot.Bottom, c.plot.Right, c.plot.Bottom, colorAxis, 1)
}

func (c *canvas) png() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.r.Save(&buf); err != nil {
		return nil, apperrors.NewRenderError("encode png", err)
	}
	return buf.Bytes(), nil
}

// niceScale returns an axis maximum at or above max and a tick step giving
// roughly target intervals. Counts are integers so the step is at least 1.
func niceScale(max float64, target int) (top, step float64) {
	if max <= 0 {
		return 1, 1
	}
	raw := max / float64(target)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch norm := raw / mag; {
	case norm <= 1:
		step = mag
	case norm <= 2:
		step = 2 * mag
	case norm <= 5:
		step = 5 * mag
	default:
		step = 10 * mag
	}
	if step < 1 {
		step = 1
	}
	return math.Ceil(max/step) * step, step
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
