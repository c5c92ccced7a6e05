package charts

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	apperrors "cordexplorer/internal/errors"
)

// ErrEmptyCorpus is returned when there are no words left to draw.
var ErrEmptyCorpus = errors.New("no words to render")

// EmptyCorpusMessage is shown in place of the word cloud.
const EmptyCorpusMessage = "No titles available for the selected range."

var wordPattern = regexp.MustCompile(`\w[\w']+`)

// cloudPalette is sampled from viridis, darkest first.
var cloudPalette = []color.RGBA{
	{68, 1, 84, 255},
	{72, 40, 120, 255},
	{62, 74, 137, 255},
	{49, 104, 142, 255},
	{38, 130, 142, 255},
	{31, 158, 137, 255},
	{53, 183, 121, 255},
	{109, 205, 89, 255},
	{180, 222, 44, 255},
}

// WordCloudConfig controls the word cloud canvas.
type WordCloudConfig struct {
	Width    int
	Height   int
	MaxWords int
	// MinFontSize and MaxFontSize bound the point size; zero picks a size
	// from the canvas height.
	MinFontSize float64
	MaxFontSize float64
}

// DefaultWordCloudConfig returns an 800x400 canvas with up to 200 words.
func DefaultWordCloudConfig() WordCloudConfig {
	return WordCloudConfig{Width: 800, Height: 400, MaxWords: 200}
}

// WordFrequency is one entry of the word cloud's vocabulary.
type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordCloud lays out frequent words of a corpus on a white canvas. Rendering
// is deterministic: the same corpus always produces the same image.
type WordCloud struct {
	cfg  WordCloudConfig
	font *opentype.Font
}

// NewWordCloud parses the embedded font and applies defaults to cfg.
func NewWordCloud(cfg WordCloudConfig) (*WordCloud, error) {
	def := DefaultWordCloudConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = def.MaxWords
	}
	if cfg.MaxFontSize <= 0 {
		cfg.MaxFontSize = float64(cfg.Height) / 4
	}
	if cfg.MinFontSize <= 0 {
		cfg.MinFontSize = 8
	}
	if cfg.MinFontSize > cfg.MaxFontSize {
		cfg.MinFontSize = cfg.MaxFontSize
	}

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, apperrors.NewRenderError("parse word cloud font", err)
	}
	return &WordCloud{cfg: cfg, font: f}, nil
}

// Frequencies tokenizes corpus, drops stopwords and pure numbers, and
// returns word counts ordered by count descending then word ascending.
func Frequencies(corpus string) []WordFrequency {
	counts := make(map[string]int)
	for _, tok := range wordPattern.FindAllString(strings.ToLower(corpus), -1) {
		tok = strings.TrimSuffix(strings.Trim(tok, "'"), "'s")
		if len(tok) < 2 || IsStopword(tok) || isNumber(tok) {
			continue
		}
		counts[tok]++
	}

	freqs := make([]WordFrequency, 0, len(counts))
	for w, n := range counts {
		freqs = append(freqs, WordFrequency{Word: w, Count: n})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Count != freqs[j].Count {
			return freqs[i].Count > freqs[j].Count
		}
		return freqs[i].Word < freqs[j].Word
	})
	return freqs
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// Render draws the corpus as a PNG. It returns ErrEmptyCorpus when the
// corpus holds no drawable words.
func (wc *WordCloud) Render(corpus string) ([]byte, error) {
	freqs := Frequencies(corpus)
	if len(freqs) == 0 {
		return nil, ErrEmptyCorpus
	}
	if len(freqs) > wc.cfg.MaxWords {
		freqs = freqs[:wc.cfg.MaxWords]
	}

	img := image.NewRGBA(image.Rect(0, 0, wc.cfg.Width, wc.cfg.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	l := &layout{bounds: img.Bounds()}
	top := float64(freqs[0].Count)
	placed := 0

	for i, f := range freqs {
		size := wc.cfg.MinFontSize + (wc.cfg.MaxFontSize-wc.cfg.MinFontSize)*float64(f.Count)/top
		col := cloudPalette[i%len(cloudPalette)]

		fitted := false
		for ; size >= wc.cfg.MinFontSize && !fitted; size *= 0.8 {
			ok, err := wc.place(img, l, f.Word, size, col)
			if err != nil {
				return nil, err
			}
			fitted = ok
		}
		// less frequent words are no larger, so the canvas is full
		if !fitted {
			break
		}
		placed++
	}
	if placed == 0 {
		return nil, apperrors.NewRenderError("word cloud canvas too small", nil).
			WithContext("width", wc.cfg.Width).
			WithContext("height", wc.cfg.Height)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperrors.NewRenderError("encode word cloud", err)
	}
	return buf.Bytes(), nil
}

// place draws word at the first free spot along the spiral. It reports
// false when the word does not fit at this size.
func (wc *WordCloud) place(img *image.RGBA, l *layout, word string, size float64, col color.RGBA) (bool, error) {
	face, err := opentype.NewFace(wc.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return false, apperrors.NewRenderError("create font face", err)
	}
	defer face.Close()

	bounds, advance := font.BoundString(face, word)
	w := advance.Ceil()
	h := (bounds.Max.Y - bounds.Min.Y).Ceil()
	if w <= 0 || h <= 0 {
		return false, nil
	}

	rect, ok := l.find(w, h)
	if !ok {
		return false, nil
	}
	l.add(rect)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(rect.Min.X), Y: fixed.I(rect.Min.Y) - bounds.Min.Y},
	}
	d.DrawString(word)
	return true, nil
}

const wordPadding = 2

// layout tracks occupied rectangles on the canvas.
type layout struct {
	bounds image.Rectangle
	used   []image.Rectangle
}

// find walks an Archimedean spiral out from the canvas centre and returns
// the first w x h rectangle inside the canvas that overlaps nothing placed.
func (l *layout) find(w, h int) (image.Rectangle, bool) {
	if w > l.bounds.Dx() || h > l.bounds.Dy() {
		return image.Rectangle{}, false
	}

	cx, cy := l.bounds.Dx()/2, l.bounds.Dy()/2
	aspect := float64(l.bounds.Dx()) / float64(l.bounds.Dy())
	limit := math.Hypot(float64(l.bounds.Dx()), float64(l.bounds.Dy()))

	for t := 0.0; ; t += 0.1 {
		r := 2 * t
		if r > limit {
			return image.Rectangle{}, false
		}
		x := cx + int(r*aspect*math.Cos(t)) - w/2
		y := cy + int(r*math.Sin(t)) - h/2
		rect := image.Rect(x, y, x+w, y+h)
		if !rect.In(l.bounds) {
			continue
		}
		if !l.overlaps(rect) {
			return rect, true
		}
	}
}

func (l *layout) overlaps(rect image.Rectangle) bool {
	padded := rect.Inset(-wordPadding)
	for _, u := range l.used {
		if padded.Overlaps(u) {
			return true
		}
	}
	return false
}

func (l *layout) add(rect image.Rectangle) {
	l.used = append(l.used, rect)
}
