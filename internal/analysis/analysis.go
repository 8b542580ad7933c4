// Package analysis runs the chart-to-contract pipeline: swing detection,
// trendline chaining and breakout resolution over one chart snapshot.
package analysis

import (
	"sort"

	"github.com/rs/zerolog"

	"chartline-trader/internal/analysis/breakout"
	"chartline-trader/internal/analysis/swing"
	"chartline-trader/internal/analysis/trendline"
	"chartline-trader/internal/logging"
	"chartline-trader/internal/models"
)

// Stage is implemented by every pipeline component.
type Stage interface {
	Name() string
}

// Pipeline wires the three analysis stages with one set of tunables. It
// holds no per-run state and may be shared across goroutines.
type Pipeline struct {
	params   models.PipelineParams
	logger   zerolog.Logger
	detector *swing.Detector
	chainer  *trendline.Chainer
	resolver *breakout.Resolver
}

// NewPipeline creates a pipeline. Params are assumed validated.
func NewPipeline(params models.PipelineParams, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		params:   params,
		logger:   logger,
		detector: swing.NewDetector(params.LeftRequired, params.RightRequired, logging.WithStage(logger, swing.Stage)),
		chainer:  trendline.NewChainer(trendline.ConfigFromParams(params), logging.WithStage(logger, trendline.Stage)),
		resolver: breakout.NewResolver(logging.WithStage(logger, breakout.Stage)),
	}
}

// Params returns the tunables the pipeline was built with.
func (p *Pipeline) Params() models.PipelineParams {
	return p.params
}

// Stages lists the components in execution order.
func (p *Pipeline) Stages() []Stage {
	return []Stage{p.detector, p.chainer, p.resolver}
}

// Result is the output of one run.
type Result struct {
	Chart       models.Chart
	Swings      swing.Result
	Trendlines  []models.Trendline
	Contracts   []models.Contract
	Diagnostics []models.Diagnostic
}

// Run processes one chart. It never fails: rejected candidates end up in
// Diagnostics and an empty chart yields an empty result.
func (p *Pipeline) Run(chart models.Chart) Result {
	result := Result{Chart: chart}
	if len(chart.Candles) == 0 {
		p.logger.Debug().Msg("Empty chart, nothing to analyze")
		return result
	}

	result.Swings = p.detector.Detect(chart.Candles)
	result.Diagnostics = append(result.Diagnostics, result.Swings.Diagnostics...)

	chained := p.chainer.Chain(chart, result.Swings)
	result.Trendlines = chained.Trendlines
	result.Diagnostics = append(result.Diagnostics, chained.Diagnostics...)

	result.Contracts = make([]models.Contract, 0, len(chained.Trendlines))
	for _, t := range chained.Trendlines {
		contract, diag := p.resolver.Resolve(chart, result.Swings, t)
		result.Contracts = append(result.Contracts, contract)
		if diag != nil {
			result.Diagnostics = append(result.Diagnostics, *diag)
		}
	}

	p.logger.Info().
		Int("candles", len(chart.Candles)).
		Int("highs", len(result.Swings.Highs)).
		Int("lows", len(result.Swings.Lows)).
		Int("trendlines", len(result.Trendlines)).
		Int("contracts", len(result.Contracts)).
		Int("pending", len(result.Pending(0))).
		Msg("Pipeline run completed")

	return result
}

// Pending returns the valid pending contracts, newest receiver first,
// capped at limit when limit > 0.
func (r Result) Pending(limit int) []models.Contract {
	var out []models.Contract
	for _, c := range r.Contracts {
		if c.IsValidPending() {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Receiver.PositionNumber() < out[j].Receiver.PositionNumber()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Views flattens contracts into their exported shape.
func Views(contracts []models.Contract) []models.ContractView {
	out := make([]models.ContractView, len(contracts))
	for i, c := range contracts {
		out[i] = c.View()
	}
	return out
}
