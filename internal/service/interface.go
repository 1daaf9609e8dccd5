package service

import (
	"context"

	"github.com/godilite/camps-trends/internal/repository/models"
)

// RatingSource is the read-only API over submitted ratings.
type RatingSource interface {
	ListTeams(ctx context.Context) ([]models.Team, error)
	GetTeam(ctx context.Context, teamID string) (models.Team, error)
	SubjectExists(ctx context.Context, kind, id string) (bool, error)
	GetRatings(ctx context.Context, f models.RatingFilter) ([]models.RatingRow, error)
}

// TrendStore persists materialized trend records per (team, category) unit.
type TrendStore interface {
	ReplaceUnit(ctx context.Context, teamID, category string, records []models.TrendRecord) error
	FindTrends(ctx context.Context, f models.TrendFilter) ([]models.TrendRecord, error)
}

// JobStore keeps the recalculation processing log.
type JobStore interface {
	Save(ctx context.Context, job models.RecalculationJob) error
	Get(ctx context.Context, id string) (models.RecalculationJob, error)
	LatestFinished(ctx context.Context, teamID string, statuses ...string) (models.RecalculationJob, bool, error)
}
