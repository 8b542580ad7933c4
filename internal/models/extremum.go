package models

import "strconv"

// ExtremumKind distinguishes parent highs from parent lows.
type ExtremumKind string

const (
	ExtremumHigh ExtremumKind = "HIGH"
	ExtremumLow  ExtremumKind = "LOW"
)

// Prefix returns the label prefix for the kind.
func (k ExtremumKind) Prefix() string {
	if k == ExtremumHigh {
		return "PH"
	}
	return "PL"
}

// Opposite returns the other kind.
func (k ExtremumKind) Opposite() ExtremumKind {
	if k == ExtremumHigh {
		return ExtremumLow
	}
	return ExtremumHigh
}

// MoreExtreme reports whether y is strictly more extreme than ref for the
// kind. Highs are more extreme upward (smaller y), lows downward.
func (k ExtremumKind) MoreExtreme(y, ref int) bool {
	if k == ExtremumHigh {
		return y < ref
	}
	return y > ref
}

// ParentExtremum is a swing point (PH or PL) anchored to one indexed candle.
type ParentExtremum struct {
	Kind   ExtremumKind
	Candle IndexedCandle
}

// NewExtremum builds an extremum of the given kind on a candle.
func NewExtremum(kind ExtremumKind, c IndexedCandle) ParentExtremum {
	return ParentExtremum{Kind: kind, Candle: c}
}

// X returns the candle center.
func (e ParentExtremum) X() int { return e.Candle.X }

// Y returns the candle edge the extremum refers to.
func (e ParentExtremum) Y() int {
	if e.Kind == ExtremumHigh {
		return e.Candle.TopY
	}
	return e.Candle.BottomY
}

func (e ParentExtremum) PositionNumber() int { return e.Candle.PositionNumber }

func (e ParentExtremum) ArrowNumber() int { return e.Candle.ArrowNumber }

// Label returns the display label, e.g. "PH12".
func (e ParentExtremum) Label() string {
	return e.Kind.Prefix() + strconv.Itoa(e.Candle.ArrowNumber)
}

// MoreExtremeThan reports whether e lies strictly beyond o in e's direction.
func (e ParentExtremum) MoreExtremeThan(o ParentExtremum) bool {
	return e.Kind.MoreExtreme(e.Y(), o.Y())
}

// Same reports whether both refer to the same kind on the same candle.
func (e ParentExtremum) Same(o ParentExtremum) bool {
	return e.Kind == o.Kind && e.Candle.PositionNumber == o.Candle.PositionNumber
}

// LabelOf renders a label for an optional extremum.
func LabelOf(e *ParentExtremum) string {
	if e == nil {
		return InvalidLabel
	}
	return e.Label()
}

// InvalidLabel marks a missing breakout or order parent in exports.
const InvalidLabel = "invalid"
