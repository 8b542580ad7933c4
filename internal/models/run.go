package models

import (
	"fmt"
	"time"

	apperrors "chartline-trader/internal/errors"
)

// PipelineParams holds the tunables of one pipeline run.
type PipelineParams struct {
	StartNumber           int  `mapstructure:"start_number" json:"start_number"`
	LeftRequired          int  `mapstructure:"left_required" json:"left_required"`
	RightRequired         int  `mapstructure:"right_required" json:"right_required"`
	MainTrendlinePosition int  `mapstructure:"main_trendline_position" json:"main_trendline_position"`
	DistanceThreshold     int  `mapstructure:"distance_threshold" json:"distance_threshold"`
	NumContracts          int  `mapstructure:"num_contracts" json:"num_contracts"`
	AllowTrailing         bool `mapstructure:"allow_trailing" json:"allow_trailing"`
}

// AllowedDistanceThresholds lists the accepted trendline distance thresholds.
var AllowedDistanceThresholds = []int{0, 10, 20, 50, 100, 200}

// DefaultPipelineParams returns the default tunables.
func DefaultPipelineParams() PipelineParams {
	return PipelineParams{
		StartNumber:           1,
		LeftRequired:          1,
		RightRequired:         1,
		MainTrendlinePosition: 1,
		DistanceThreshold:     0,
		NumContracts:          0,
		AllowTrailing:         false,
	}
}

// Validate checks every tunable against its allowed range.
func (p PipelineParams) Validate() error {
	if p.StartNumber < 1 {
		return apperrors.NewValidationError("start_number", p.StartNumber, "must be >= 1")
	}
	if p.LeftRequired < 0 {
		return apperrors.NewValidationError("left_required", p.LeftRequired, "must be >= 0")
	}
	if p.RightRequired < 0 {
		return apperrors.NewValidationError("right_required", p.RightRequired, "must be >= 0")
	}
	if p.MainTrendlinePosition < 1 || p.MainTrendlinePosition > 5 {
		return apperrors.NewValidationError("main_trendline_position", p.MainTrendlinePosition, "must be between 1 and 5")
	}
	allowed := false
	for _, d := range AllowedDistanceThresholds {
		if p.DistanceThreshold == d {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperrors.NewValidationError("distance_threshold", p.DistanceThreshold,
			fmt.Sprintf("must be one of %v", AllowedDistanceThresholds))
	}
	if p.NumContracts < 0 {
		return apperrors.NewValidationError("num_contracts", p.NumContracts, "must be >= 0")
	}
	return nil
}

// Diagnostic records a candidate rejected by a pipeline stage.
type Diagnostic struct {
	Stage   string `json:"stage"`
	Subject string `json:"subject,omitempty"`
	Reason  string `json:"reason"`
	Err     error  `json:"-"`
}

// NewDiagnostic builds a diagnostic from a stage error.
func NewDiagnostic(stage, subject string, err error) Diagnostic {
	return Diagnostic{
		Stage:   stage,
		Subject: subject,
		Reason:  err.Error(),
		Err:     apperrors.NewStageError(stage, subject, err),
	}
}

// Run is a persisted record of one pipeline invocation.
type Run struct {
	ID            string         `json:"id"`
	Source        string         `json:"source"`
	CreatedAt     time.Time      `json:"created_at"`
	Params        PipelineParams `json:"params"`
	CandleCount   int            `json:"candle_count"`
	HighCount     int            `json:"high_count"`
	LowCount      int            `json:"low_count"`
	ContractCount int            `json:"contract_count"`
	PendingCount  int            `json:"pending_count"`
	Contracts     []ContractView `json:"contracts,omitempty"`
}
