// Package trendline chains parent extrema into directional trendlines.
package trendline

import (
	"fmt"

	"github.com/rs/zerolog"

	"chartline-trader/internal/analysis/swing"
	apperrors "chartline-trader/internal/errors"
	"chartline-trader/internal/models"
)

// Stage is the diagnostic stage name for trendline rejections.
const Stage = "trendline"

const (
	// CrossingTolerance is the closest a trendline may pass to another
	// extremum, in pixels.
	CrossingTolerance = 20.0
	// FallbackGap is the vertical gap between the first and second receiver
	// that must be exceeded before a sender is linked directly to the second.
	FallbackGap = 60
)

// Config holds the chaining rules.
type Config struct {
	MainTrendlinePosition int
	DistanceThreshold     int
	AllowTrailing         bool
}

// ConfigFromParams extracts the chaining rules from pipeline params.
func ConfigFromParams(p models.PipelineParams) Config {
	return Config{
		MainTrendlinePosition: p.MainTrendlinePosition,
		DistanceThreshold:     p.DistanceThreshold,
		AllowTrailing:         p.AllowTrailing,
	}
}

// Chainer links extrema of the same kind into trendlines.
type Chainer struct {
	cfg    Config
	logger zerolog.Logger
}

// NewChainer creates a new trendline chainer.
func NewChainer(cfg Config, logger zerolog.Logger) *Chainer {
	if cfg.MainTrendlinePosition < 1 {
		cfg.MainTrendlinePosition = 1
	}
	return &Chainer{cfg: cfg, logger: logger}
}

func (c *Chainer) Name() string {
	return "TrendlineChainer"
}

// Result holds the trendlines of one chart in chaining order, PH first.
type Result struct {
	Trendlines  []models.Trendline
	Diagnostics []models.Diagnostic
}

// Chain builds PH-to-PH and PL-to-PL trendlines.
func (c *Chainer) Chain(chart models.Chart, swings swing.Result) Result {
	var result Result
	all := swings.Combined()
	seen := make(map[models.TrendlineKey]bool)

	for _, kind := range []models.ExtremumKind{models.ExtremumHigh, models.ExtremumLow} {
		run := &chainRun{
			chainer: c,
			kind:    models.TrendlineKindFor(kind),
			list:    swings.Of(kind),
			all:     all,
			chart:   chart,
			checked: make(map[[2]int]error),
			seen:    seen,
			result:  &result,
		}
		run.chain()
	}

	c.logger.Debug().
		Int("trendlines", len(result.Trendlines)).
		Int("rejected", len(result.Diagnostics)).
		Msg("Trendline chaining completed")

	return result
}

// Validate checks a single sender/receiver link within list. It is exported
// so callers can audit why a specific pair was not linked.
func (c *Chainer) Validate(chart models.Chart, list, all []models.ParentExtremum, s, r int) error {
	sender, receiver := list[s], list[r]

	if !receiver.MoreExtremeThan(sender) {
		return apperrors.ErrNotMoreExtreme
	}
	if !c.cfg.AllowTrailing && r+1 >= len(list) {
		return apperrors.ErrNoTrailingExtremum
	}
	if _, ok := chart.ByPosition(receiver.PositionNumber() - c.cfg.MainTrendlinePosition); !ok {
		return apperrors.ErrNoConfirmationCandle
	}
	if absInt(sender.Y()-receiver.Y()) < c.cfg.DistanceThreshold {
		return apperrors.ErrBelowDistance
	}
	if Crosses(sender, receiver, all, chart.RightEdge(), CrossingTolerance) {
		return apperrors.ErrTrendlineCrossed
	}
	return nil
}

type chainRun struct {
	chainer *Chainer
	kind    models.TrendlineKind
	list    []models.ParentExtremum
	all     []models.ParentExtremum
	chart   models.Chart
	checked map[[2]int]error
	seen    map[models.TrendlineKey]bool
	result  *Result
}

func (r *chainRun) chain() {
	for i := 0; i+1 < len(r.list); i++ {
		r.link(i, i+1)

		if i+2 >= len(r.list) {
			continue
		}
		if r.link(i+1, i+2) == nil {
			continue
		}

		ras, rasr := r.list[i+1], r.list[i+2]
		if absInt(ras.Y()-rasr.Y()) <= FallbackGap {
			r.reject(i, i+2, apperrors.ErrGapTooSmall)
			continue
		}
		r.link(i, i+2)
	}
}

// link validates s→r once and records the trendline or the rejection.
func (r *chainRun) link(s, rc int) error {
	key := [2]int{s, rc}
	if err, ok := r.checked[key]; ok {
		return err
	}
	err := r.chainer.Validate(r.chart, r.list, r.all, s, rc)
	r.checked[key] = err
	if err != nil {
		r.reject(s, rc, err)
		return err
	}

	t := models.Trendline{Kind: r.kind, Sender: r.list[s], Receiver: r.list[rc]}
	if r.seen[t.Key()] {
		return nil
	}
	r.seen[t.Key()] = true
	r.result.Trendlines = append(r.result.Trendlines, t)
	return nil
}

func (r *chainRun) reject(s, rc int, err error) {
	subject := fmt.Sprintf("%s->%s", r.list[s].Label(), r.list[rc].Label())
	r.result.Diagnostics = append(r.result.Diagnostics, models.NewDiagnostic(Stage, subject, err))
}
