// Package extract turns a color-enhanced chart snapshot into an indexed
// candle sequence.
package extract

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	apperrors "chartline-trader/internal/errors"
	"chartline-trader/internal/models"
)

// Config holds the extraction settings.
type Config struct {
	Red         color.RGBA
	Green       color.RGBA
	Tolerance   int
	MinArea     int
	Crop        image.Rectangle // empty means the whole image
	StartNumber int
	Finder      string
}

// DefaultConfig returns settings for a chart rendered in pure red and green.
func DefaultConfig() Config {
	return Config{
		Red:         color.RGBA{R: 0xff, A: 0xff},
		Green:       color.RGBA{G: 0xff, A: 0xff},
		Tolerance:   60,
		MinArea:     6,
		StartNumber: 1,
		Finder:      "label",
	}
}

// Extractor locates candles on chart images.
type Extractor struct {
	cfg    Config
	finder RegionFinder
	logger zerolog.Logger
}

// NewExtractor creates an extractor. Unknown finder names fall back to the
// pure-Go labeler.
func NewExtractor(cfg Config, logger zerolog.Logger) *Extractor {
	finder, ok := Finder(cfg.Finder)
	if !ok {
		logger.Warn().Str("finder", cfg.Finder).Strs("available", FinderNames()).
			Msg("Unknown region finder, using label")
		finder = LabelFinder{}
	}
	if cfg.StartNumber < 1 {
		cfg.StartNumber = 1
	}
	return &Extractor{cfg: cfg, finder: finder, logger: logger}
}

func (e *Extractor) Name() string {
	return "CandleExtractor"
}

// Extract locates candles on an already decoded image. Coordinates are
// relative to the (cropped) image origin.
func (e *Extractor) Extract(img image.Image) models.Chart {
	img = Crop(img, e.cfg.Crop)
	b := img.Bounds()

	var candles []models.Candle
	targets := []struct {
		color  models.Color
		target ColorTarget
	}{
		{models.ColorRed, ColorTarget{RGB: e.cfg.Red, Tolerance: e.cfg.Tolerance}},
		{models.ColorGreen, ColorTarget{RGB: e.cfg.Green, Tolerance: e.cfg.Tolerance}},
	}
	for _, t := range targets {
		for _, r := range e.finder.FindRegions(img, t.target) {
			if r.Area < e.cfg.MinArea {
				continue
			}
			candles = append(candles, candleFromRegion(r, t.color))
		}
	}

	chart := BuildChart(candles, e.cfg.StartNumber)
	chart.Width = b.Dx()

	e.logger.Debug().
		Int("regions", len(candles)).
		Int("indexed", len(chart.Candles)).
		Int("width", chart.Width).
		Msg("Candle extraction completed")

	return chart
}

// ExtractFile loads a snapshot from disk. Images are decoded and extracted;
// .csv files are read as an already extracted candle list.
func (e *Extractor) ExtractFile(path string) (models.Chart, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && !IsImageFile(path) {
		return models.Chart{}, apperrors.NewDataError("snapshot", path, "unknown extension", apperrors.ErrUnsupportedFile)
	}

	f, err := os.Open(path)
	if err != nil {
		return models.Chart{}, apperrors.NewDataError("snapshot", path, "open failed", err)
	}
	defer f.Close()

	if ext == ".csv" {
		chart, err := ReadCandlesCSV(f, e.cfg.StartNumber)
		if err != nil {
			return models.Chart{}, apperrors.NewDataError("csv", path, "parse failed", err)
		}
		return chart, nil
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return models.Chart{}, apperrors.NewDataError("image", path, "decode failed", err)
	}
	e.logger.Debug().Str("source", path).Str("format", format).Msg("Snapshot decoded")
	return e.Extract(img), nil
}

func candleFromRegion(r Region, c models.Color) models.Candle {
	return models.Candle{
		X:       (r.Bounds.Min.X + r.Bounds.Max.X - 1) / 2,
		TopY:    r.Bounds.Min.Y,
		BottomY: r.Bounds.Max.Y - 1,
		Color:   c,
		Area:    r.Area,
	}
}

// Dedupe keeps one candle per x, preferring the larger area; the earlier
// candle wins a tie. The result is sorted by x.
func Dedupe(candles []models.Candle) []models.Candle {
	byX := make(map[int]models.Candle, len(candles))
	for _, c := range candles {
		if prev, ok := byX[c.X]; ok && prev.Area >= c.Area {
			continue
		}
		byX[c.X] = c
	}
	out := make([]models.Candle, 0, len(byX))
	for _, c := range byX {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}

// BuildChart de-duplicates, sorts and indexes raw candles.
func BuildChart(candles []models.Candle, startNumber int) models.Chart {
	indexed, current := models.IndexCandles(Dedupe(candles), startNumber)
	return models.Chart{Candles: indexed, Current: current}
}
