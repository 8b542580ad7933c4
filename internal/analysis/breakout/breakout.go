// Package breakout resolves breakout and order-parent levels for trendline
// receivers and classifies the resulting synthetic orders.
package breakout

import (
	"github.com/rs/zerolog"

	"chartline-trader/internal/analysis/swing"
	apperrors "chartline-trader/internal/errors"
	"chartline-trader/internal/models"
)

// Stage is the diagnostic stage name for resolver rejections.
const Stage = "breakout"

// Resolver turns trendlines into contracts.
type Resolver struct {
	logger zerolog.Logger
}

// NewResolver creates a new breakout resolver.
func NewResolver(logger zerolog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

func (r *Resolver) Name() string {
	return "BreakoutResolver"
}

// Resolve evaluates one trendline. The contract is always returned; a
// missing breakout or order parent leaves it INVALID with a diagnostic.
func (r *Resolver) Resolve(chart models.Chart, swings swing.Result, t models.Trendline) (models.Contract, *models.Diagnostic) {
	contract := models.Contract{
		Trendline:   t,
		OrderType:   t.Kind.OrderType(),
		OrderStatus: models.OrderInvalid,
	}
	subject := t.Sender.Label() + "->" + t.Receiver.Label()

	brk, ok := FindBreakout(swings.Of(t.Kind.ExtremumKind()), t.Receiver)
	if !ok {
		d := models.NewDiagnostic(Stage, subject, apperrors.ErrNoBreakoutFound)
		return contract, &d
	}
	contract.Breakout = &brk

	state := ResolveOrderParent(swings, t.Receiver, brk)
	if state.Current == nil {
		d := models.NewDiagnostic(Stage, subject, apperrors.ErrNoOrderParentFound)
		return contract, &d
	}
	contract.OrderParent = state.Current
	contract.ActualOrderParent = state.Actual
	contract.Reassigned = state.Reassigned

	status, box := Classify(chart, brk, *state.Current)
	contract.OrderStatus = status
	contract.Box = &box

	r.logger.Debug().
		Str("trendline", subject).
		Str("breakout", brk.Label()).
		Str("order_parent", state.Current.Label()).
		Bool("reassigned", state.Reassigned).
		Str("status", string(status)).
		Msg("Contract resolved")

	return contract, nil
}

// FindBreakout returns the first extremum of the receiver's kind right of
// the receiver that is strictly more extreme than it.
func FindBreakout(sameKind []models.ParentExtremum, receiver models.ParentExtremum) (models.ParentExtremum, bool) {
	for _, e := range sameKind {
		if e.X() <= receiver.X() {
			continue
		}
		if e.MoreExtremeThan(receiver) {
			return e, true
		}
	}
	return models.ParentExtremum{}, false
}

// InitialOrderParent walks back from the breakout through the combined
// sequence and returns the nearest opposite-kind extremum strictly between
// receiver and breakout.
func InitialOrderParent(combined []models.ParentExtremum, receiver, brk models.ParentExtremum) *models.ParentExtremum {
	idx := -1
	for i, e := range combined {
		if e.Same(brk) {
			idx = i
			break
		}
	}
	want := brk.Kind.Opposite()
	for j := idx - 1; j >= 0; j-- {
		e := combined[j]
		if e.X() <= receiver.X() {
			break
		}
		if e.Kind == want && e.X() < brk.X() {
			return &e
		}
	}
	return nil
}

// Between returns extrema with receiver.X < x < brk.X.
func Between(list []models.ParentExtremum, receiver, brk models.ParentExtremum) []models.ParentExtremum {
	var out []models.ParentExtremum
	for _, e := range list {
		if e.X() > receiver.X() && e.X() < brk.X() {
			out = append(out, e)
		}
	}
	return out
}

// ResolveOrderParent runs the reassignment machine for one receiver.
func ResolveOrderParent(swings swing.Result, receiver, brk models.ParentExtremum) State {
	opposite := brk.Kind.Opposite()
	initial := InitialOrderParent(swings.Combined(), receiver, brk)
	return Reassign(Start(initial), Between(swings.Of(opposite), receiver, brk))
}

// TriggerLevel returns the price line the order triggers on: the order
// parent's top for longs, its bottom for shorts.
func TriggerLevel(orderParent models.ParentExtremum) int {
	if orderParent.Kind == models.ExtremumLow {
		return orderParent.Candle.TopY
	}
	return orderParent.Candle.BottomY
}

// Classify scans candles right of the breakout for the first one whose
// range contains the trigger level.
func Classify(chart models.Chart, brk, orderParent models.ParentExtremum) (models.OrderStatus, models.Box) {
	level := TriggerLevel(orderParent)
	box := models.Box{
		Left:   orderParent.X(),
		Right:  chart.RightEdge(),
		Top:    orderParent.Candle.TopY,
		Bottom: orderParent.Candle.BottomY,
	}

	candles := make([]models.Candle, 0, len(chart.Candles)+1)
	for _, c := range chart.Candles {
		candles = append(candles, c.Candle)
	}
	if chart.Current != nil {
		candles = append(candles, *chart.Current)
	}

	for _, c := range candles {
		if c.X <= brk.X() {
			continue
		}
		if c.TopY <= level && level <= c.BottomY {
			box.Right = c.X
			return models.OrderExecuted, box
		}
	}
	return models.OrderPending, box
}
