package storage

import (
	"context"

	"dilemma/internal/model"
)

// Store defines persistence operations for run artifacts.
type Store interface {
	Init(ctx context.Context) error
	Reset(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, runID string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveStandings(ctx context.Context, runID string, standings []model.StandingRecord) error
	GetStandings(ctx context.Context, runID string) ([]model.StandingRecord, bool, error)
	SaveGenerations(ctx context.Context, runID string, generations []model.GenerationRecord) error
	GetGenerations(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error)
}
