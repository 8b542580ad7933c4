// Package store provides persistence for pipeline runs. The analysis
// packages never import it; the CLI decides whether runs are kept.
package store

import (
	"context"
	"time"

	"chartline-trader/internal/models"
)

// DataStore defines the interface for run persistence.
type DataStore interface {
	SaveRun(ctx context.Context, run *models.Run) error
	GetRuns(ctx context.Context, filter RunFilter) ([]models.Run, error)
	GetRun(ctx context.Context, id string) (*models.Run, error)
	GetContracts(ctx context.Context, runID string, filter ContractFilter) ([]models.ContractView, error)

	Close() error
}

// RunFilter represents filters for querying runs.
type RunFilter struct {
	Source    string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// ContractFilter represents filters for querying a run's contracts.
type ContractFilter struct {
	Type   models.TrendlineKind
	Status models.OrderStatus
}
