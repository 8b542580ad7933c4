// Package swing detects parent highs and parent lows on an indexed candle
// sequence using a two-level fractal filter.
package swing

import (
	"github.com/rs/zerolog"

	apperrors "chartline-trader/internal/errors"
	"chartline-trader/internal/models"
)

// Stage is the diagnostic stage name for swing rejections.
const Stage = "swing"

// Detector classifies candles as PH and/or PL.
type Detector struct {
	leftRequired  int
	rightRequired int
	logger        zerolog.Logger
}

// NewDetector creates a detector requiring the given number of older (left)
// and newer (right) less extreme neighbors.
func NewDetector(leftRequired, rightRequired int, logger zerolog.Logger) *Detector {
	if leftRequired < 0 {
		leftRequired = 0
	}
	if rightRequired < 0 {
		rightRequired = 0
	}
	return &Detector{
		leftRequired:  leftRequired,
		rightRequired: rightRequired,
		logger:        logger,
	}
}

func (d *Detector) Name() string {
	return "SwingDetector"
}

// Result holds the x-ordered parent extrema of one chart.
type Result struct {
	Highs       []models.ParentExtremum
	Lows        []models.ParentExtremum
	Diagnostics []models.Diagnostic
}

// Combined returns highs and lows merged in x order. A candle that is both
// PH and PL contributes the PH first.
func (r Result) Combined() []models.ParentExtremum {
	out := make([]models.ParentExtremum, 0, len(r.Highs)+len(r.Lows))
	i, j := 0, 0
	for i < len(r.Highs) || j < len(r.Lows) {
		switch {
		case j >= len(r.Lows):
			out = append(out, r.Highs[i])
			i++
		case i >= len(r.Highs):
			out = append(out, r.Lows[j])
			j++
		case r.Highs[i].X() <= r.Lows[j].X():
			out = append(out, r.Highs[i])
			i++
		default:
			out = append(out, r.Lows[j])
			j++
		}
	}
	return out
}

// Of returns the list for one kind.
func (r Result) Of(kind models.ExtremumKind) []models.ParentExtremum {
	if kind == models.ExtremumHigh {
		return r.Highs
	}
	return r.Lows
}

// Detect runs stages A, B and C independently for highs and lows.
func (d *Detector) Detect(candles []models.IndexedCandle) Result {
	var result Result
	if len(candles) == 0 {
		return result
	}
	if len(candles) < d.leftRequired+d.rightRequired+1 {
		result.Diagnostics = append(result.Diagnostics,
			models.NewDiagnostic(Stage, "", apperrors.ErrInputTooSmall))
		return result
	}

	var diags []models.Diagnostic
	result.Highs, diags = d.detectKind(candles, models.ExtremumHigh)
	result.Diagnostics = append(result.Diagnostics, diags...)
	result.Lows, diags = d.detectKind(candles, models.ExtremumLow)
	result.Diagnostics = append(result.Diagnostics, diags...)

	if len(result.Highs) == 0 && len(result.Lows) == 0 {
		result.Diagnostics = append(result.Diagnostics,
			models.NewDiagnostic(Stage, "", apperrors.ErrNoExtremaFound))
	}

	d.logger.Debug().
		Int("candles", len(candles)).
		Int("highs", len(result.Highs)).
		Int("lows", len(result.Lows)).
		Msg("Swing detection completed")

	return result
}

func (d *Detector) detectKind(candles []models.IndexedCandle, kind models.ExtremumKind) ([]models.ParentExtremum, []models.Diagnostic) {
	values := edgeValues(candles, kind)
	var diags []models.Diagnostic

	// Stage A and B over raw candles.
	var candidates []int
	for i := range candles {
		if !Dominant(values, i, kind) {
			continue
		}
		if !WindowHolds(values, i, d.leftRequired, d.rightRequired, kind) {
			diags = append(diags, models.NewDiagnostic(Stage,
				models.NewExtremum(kind, candles[i]).Label(),
				errCandleWindow))
			continue
		}
		candidates = append(candidates, i)
	}

	// Stage C over the candidate-only sequence.
	swingValues := make([]int, len(candidates))
	for j, i := range candidates {
		swingValues[j] = values[i]
	}
	out := make([]models.ParentExtremum, 0, len(candidates))
	for j, i := range candidates {
		e := models.NewExtremum(kind, candles[i])
		if !SwingWindowHolds(swingValues, j, d.leftRequired, d.rightRequired, kind) {
			diags = append(diags, models.NewDiagnostic(Stage, e.Label(), errSwingWindow))
			continue
		}
		out = append(out, e)
	}
	return out, diags
}

func edgeValues(candles []models.IndexedCandle, kind models.ExtremumKind) []int {
	values := make([]int, len(candles))
	for i, c := range candles {
		if kind == models.ExtremumHigh {
			values[i] = c.TopY
		} else {
			values[i] = c.BottomY
		}
	}
	return values
}

// Dominant reports whether values[i] is strictly more extreme than its
// immediate neighbors. Boundary entries compare against their single
// neighbor; a lone entry is never dominant.
func Dominant(values []int, i int, kind models.ExtremumKind) bool {
	n := len(values)
	if n < 2 || i < 0 || i >= n {
		return false
	}
	if i > 0 && !kind.MoreExtreme(values[i], values[i-1]) {
		return false
	}
	if i < n-1 && !kind.MoreExtreme(values[i], values[i+1]) {
		return false
	}
	return true
}

// WindowHolds scans outward from i on each side, counting neighbors that
// are strictly less extreme until the first one that is not. Both counts
// must reach their requirement; sequence edges cut the scan short.
func WindowHolds(values []int, i, left, right int, kind models.ExtremumKind) bool {
	count := 0
	for j := i - 1; j >= 0 && count < left; j-- {
		if !kind.MoreExtreme(values[i], values[j]) {
			break
		}
		count++
	}
	if count < left {
		return false
	}

	count = 0
	for j := i + 1; j < len(values) && count < right; j++ {
		if !kind.MoreExtreme(values[i], values[j]) {
			break
		}
		count++
	}
	return count >= right
}

var (
	errCandleWindow = apperrors.Wrap(apperrors.ErrNoExtremaFound, "candle window not satisfied")
	errSwingWindow  = apperrors.Wrap(apperrors.ErrNoExtremaFound, "swing window not satisfied")
)

// SwingWindowHolds is the swing-level variant of WindowHolds: equal values
// are skipped rather than ending the scan, which stops only at a strictly
// more extreme value. Double tops and bottoms both survive.
func SwingWindowHolds(values []int, i, left, right int, kind models.ExtremumKind) bool {
	return swingCount(values, i, -1, left, kind) >= left &&
		swingCount(values, i, 1, right, kind) >= right
}

func swingCount(values []int, i, step, required int, kind models.ExtremumKind) int {
	count := 0
	for j := i + step; j >= 0 && j < len(values) && count < required; j += step {
		if values[j] == values[i] {
			continue
		}
		if kind.MoreExtreme(values[j], values[i]) {
			break
		}
		count++
	}
	return count
}
