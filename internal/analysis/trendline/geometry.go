package trendline

import (
	"math"

	"chartline-trader/internal/models"
)

// Point is a pixel coordinate on the chart.
type Point struct {
	X, Y float64
}

func pointOf(e models.ParentExtremum) Point {
	return Point{X: float64(e.X()), Y: float64(e.Y())}
}

// Extend returns the point on the line through a and b at x = edge. If the
// edge lies left of b the segment is not extended.
func Extend(a, b Point, edge float64) Point {
	if edge <= b.X || a.X == b.X {
		return b
	}
	slope := (b.Y - a.Y) / (b.X - a.X)
	return Point{X: edge, Y: a.Y + slope*(edge-a.X)}
}

// DistanceToSegment returns the Euclidean distance from p to segment ab.
func DistanceToSegment(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// Crosses reports whether the segment from sender through receiver,
// extended to the right edge, passes within tolerance of any extremum that
// does not share an x with either end.
func Crosses(sender, receiver models.ParentExtremum, others []models.ParentExtremum, rightEdge int, tolerance float64) bool {
	a := pointOf(sender)
	b := Extend(a, pointOf(receiver), float64(rightEdge))
	for _, e := range others {
		if e.X() == sender.X() || e.X() == receiver.X() {
			continue
		}
		if DistanceToSegment(pointOf(e), a, b) <= tolerance {
			return true
		}
	}
	return false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
