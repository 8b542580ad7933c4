// Package models provides domain models for the chart-to-contract pipeline.
package models

import (
	"fmt"
	"strings"
)

// Color represents the body color of a candle on the chart.
type Color string

const (
	ColorRed   Color = "red"
	ColorGreen Color = "green"
)

// ParseColor converts a case-insensitive color name.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "r":
		return ColorRed, nil
	case "green", "g":
		return ColorGreen, nil
	}
	return "", fmt.Errorf("unknown candle color %q", s)
}

// Candle is one candle body as located on a chart snapshot, in pixel
// coordinates. Y grows downward, so TopY <= BottomY.
type Candle struct {
	X       int
	TopY    int
	BottomY int
	Color   Color
	Area    int // pixel count of the detected region
}

// IndexedCandle is a completed candle with its recency indices.
// PositionNumber 1 is the most recent completed candle.
type IndexedCandle struct {
	Candle
	PositionNumber int
	ArrowNumber    int
}

// Chart is the immutable snapshot produced by candle extraction.
type Chart struct {
	Candles []IndexedCandle // oldest to newest
	Current *Candle         // incomplete candle, never indexed
	Width   int             // right edge in pixels; 0 means unknown
}

// RightEdge returns the x coordinate trendlines are extended to.
func (c Chart) RightEdge() int {
	if c.Width > 0 {
		return c.Width
	}
	edge := 0
	if n := len(c.Candles); n > 0 {
		edge = c.Candles[n-1].X
	}
	if c.Current != nil && c.Current.X > edge {
		edge = c.Current.X
	}
	return edge
}

// ByPosition returns the indexed candle with the given position number.
func (c Chart) ByPosition(pos int) (IndexedCandle, bool) {
	// Candles are stored oldest first, so position p lives at len-p.
	idx := len(c.Candles) - pos
	if pos < 1 || idx < 0 {
		return IndexedCandle{}, false
	}
	return c.Candles[idx], true
}

// IndexCandles assigns position and arrow numbers to candles already sorted
// oldest to newest. The rightmost candle is the incomplete one and is
// returned separately.
func IndexCandles(sorted []Candle, startNumber int) ([]IndexedCandle, *Candle) {
	if len(sorted) == 0 {
		return nil, nil
	}
	current := sorted[len(sorted)-1]
	completed := sorted[:len(sorted)-1]

	out := make([]IndexedCandle, len(completed))
	for i, c := range completed {
		pos := len(completed) - i
		out[i] = IndexedCandle{
			Candle:         c,
			PositionNumber: pos,
			ArrowNumber:    startNumber + pos - 1,
		}
	}
	return out, &current
}
