package models

import (
	"encoding/json"
	"errors"
	"testing"

	apperrors "chartline-trader/internal/errors"
)

func TestIndexCandles(t *testing.T) {
	candles := []Candle{{X: 0}, {X: 10}, {X: 20}, {X: 30}}
	indexed, current := IndexCandles(candles, 5)

	if current == nil || current.X != 30 {
		t.Fatalf("current = %+v, want x=30", current)
	}
	wantPos := []int{3, 2, 1}
	for i, c := range indexed {
		if c.PositionNumber != wantPos[i] || c.ArrowNumber != 5+wantPos[i]-1 {
			t.Errorf("candle %d: pos=%d arrow=%d", i, c.PositionNumber, c.ArrowNumber)
		}
	}

	if got, cur := IndexCandles(nil, 1); got != nil || cur != nil {
		t.Error("empty input should give nothing")
	}
	if got, cur := IndexCandles([]Candle{{X: 4}}, 1); len(got) != 0 || cur == nil {
		t.Error("a single candle is only the current one")
	}
}

func TestChartByPositionAndRightEdge(t *testing.T) {
	indexed, current := IndexCandles([]Candle{{X: 0}, {X: 10}, {X: 20}}, 1)
	chart := Chart{Candles: indexed, Current: current}

	if c, ok := chart.ByPosition(1); !ok || c.X != 10 {
		t.Errorf("ByPosition(1) = %+v, %v", c, ok)
	}
	if c, ok := chart.ByPosition(2); !ok || c.X != 0 {
		t.Errorf("ByPosition(2) = %+v, %v", c, ok)
	}
	for _, pos := range []int{0, 3, -1} {
		if _, ok := chart.ByPosition(pos); ok {
			t.Errorf("ByPosition(%d) should not exist", pos)
		}
	}

	if chart.RightEdge() != 20 {
		t.Errorf("RightEdge = %d, want current x 20", chart.RightEdge())
	}
	chart.Width = 640
	if chart.RightEdge() != 640 {
		t.Errorf("RightEdge = %d, want image width", chart.RightEdge())
	}
}

func TestExtremumDirection(t *testing.T) {
	c := IndexedCandle{Candle: Candle{X: 5, TopY: 40, BottomY: 90}, PositionNumber: 7, ArrowNumber: 8}
	h := NewExtremum(ExtremumHigh, c)
	l := NewExtremum(ExtremumLow, c)

	if h.Y() != 40 || l.Y() != 90 {
		t.Errorf("Y = %d/%d, want 40/90", h.Y(), l.Y())
	}
	if h.Label() != "PH8" || l.Label() != "PL8" {
		t.Errorf("labels = %s/%s", h.Label(), l.Label())
	}
	if !ExtremumHigh.MoreExtreme(30, 40) || ExtremumHigh.MoreExtreme(40, 40) {
		t.Error("higher highs have smaller y")
	}
	if !ExtremumLow.MoreExtreme(100, 90) || ExtremumLow.MoreExtreme(90, 90) {
		t.Error("lower lows have larger y")
	}
	if h.Same(l) {
		t.Error("PH and PL on one candle are different extrema")
	}
	if ExtremumHigh.Opposite() != ExtremumLow || ExtremumLow.Opposite() != ExtremumHigh {
		t.Error("Opposite")
	}
	if LabelOf(nil) != InvalidLabel {
		t.Error("nil extremum should render invalid")
	}
}

func TestTrendlineKinds(t *testing.T) {
	if PhToPh.OrderType() != OrderLong || PlToPl.OrderType() != OrderShort {
		t.Error("PH trendlines are long, PL trendlines are short")
	}
	if TrendlineKindFor(ExtremumLow) != PlToPl || PlToPl.ExtremumKind() != ExtremumLow {
		t.Error("kind mapping")
	}
}

func TestContractJSON(t *testing.T) {
	c := IndexedCandle{Candle: Candle{X: 5, TopY: 40, BottomY: 90, Color: ColorRed}, PositionNumber: 7, ArrowNumber: 7}
	s := NewExtremum(ExtremumHigh, IndexedCandle{Candle: Candle{Color: ColorGreen}, PositionNumber: 9, ArrowNumber: 9})
	r := NewExtremum(ExtremumHigh, c)
	contract := Contract{
		Trendline:   Trendline{Kind: PhToPh, Sender: s, Receiver: r},
		OrderType:   OrderLong,
		OrderStatus: OrderInvalid,
	}

	data, err := json.Marshal(contract)
	if err != nil {
		t.Fatal(err)
	}
	var v ContractView
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatal(err)
	}
	if v.Type != PhToPh || v.Sender.PositionNumber != 9 || v.Receiver.ArrowNumber != 7 {
		t.Errorf("view = %+v", v)
	}
	if v.Receiver.BreakoutParent != InvalidLabel || v.Receiver.OrderParent != InvalidLabel {
		t.Errorf("missing parents should be invalid, got %+v", v.Receiver)
	}
	if v.Box != nil {
		t.Error("box should be omitted")
	}
}

func TestPipelineParamsValidate(t *testing.T) {
	if err := DefaultPipelineParams().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*PipelineParams)
		field  string
	}{
		{"start number", func(p *PipelineParams) { p.StartNumber = 0 }, "start_number"},
		{"left", func(p *PipelineParams) { p.LeftRequired = -1 }, "left_required"},
		{"right", func(p *PipelineParams) { p.RightRequired = -1 }, "right_required"},
		{"position low", func(p *PipelineParams) { p.MainTrendlinePosition = 0 }, "main_trendline_position"},
		{"position high", func(p *PipelineParams) { p.MainTrendlinePosition = 6 }, "main_trendline_position"},
		{"distance", func(p *PipelineParams) { p.DistanceThreshold = 30 }, "distance_threshold"},
		{"contracts", func(p *PipelineParams) { p.NumContracts = -2 }, "num_contracts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPipelineParams()
			tt.mutate(&p)
			err := p.Validate()
			var ve *apperrors.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("got %v, want validation error on %s", err, tt.field)
			}
			if !errors.Is(err, apperrors.ErrConfigInvalid) {
				t.Error("validation errors should match ErrConfigInvalid")
			}
		})
	}

	for _, d := range AllowedDistanceThresholds {
		p := DefaultPipelineParams()
		p.DistanceThreshold = d
		if err := p.Validate(); err != nil {
			t.Errorf("distance %d rejected: %v", d, err)
		}
	}
}

func TestParseColor(t *testing.T) {
	for in, want := range map[string]Color{"red": ColorRed, "GREEN": ColorGreen, " g ": ColorGreen, "R": ColorRed} {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Errorf("ParseColor(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseColor("blue"); err == nil {
		t.Error("blue is not a candle color")
	}
}

func TestDiagnosticWrapsStage(t *testing.T) {
	d := NewDiagnostic("breakout", "PH3->PH1", apperrors.ErrNoBreakoutFound)
	if !errors.Is(d.Err, apperrors.ErrNoBreakoutFound) {
		t.Error("diagnostic should unwrap to its cause")
	}
	var se *apperrors.StageError
	if !errors.As(d.Err, &se) || se.Stage != "breakout" {
		t.Errorf("stage error = %+v", se)
	}
}
