package grpc

import (
	"context"
	"time"

	"github.com/godilite/camps-trends/internal/analytics"
	"github.com/godilite/camps-trends/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	DeletePrefix(ctx context.Context, keyPrefix string) (int64, error)
}

type TrendService interface {
	GetTrendsForQuery(ctx context.Context, q service.SubjectQuery) ([]analytics.TrendRecord, error)
	GetEmployeeTrends(ctx context.Context, employeeID string, q service.SubjectQuery) ([]analytics.TrendRecord, error)
	GetTeamTrends(ctx context.Context, teamID string, q service.SubjectQuery) ([]analytics.TrendRecord, error)
	GetTeamAverages(ctx context.Context, teamID string, date time.Time, includeStats bool) ([]service.CategoryAverage, error)
	GetTeamStats(ctx context.Context, q service.TeamStatsQuery) ([]service.TeamStats, error)
	GetMostImprovedCategory(ctx context.Context, employeeID string, tp analytics.TimePeriod) (*service.CategoryImprovement, error)
	GetSignificantChanges(ctx context.Context, kind analytics.SubjectKind, subjectID string, asOf time.Time) ([]analytics.SignificantChange, error)
	Recalculate(ctx context.Context, teamID string) service.CalculationResult
	Submit(ctx context.Context, teamID string) (string, error)
	GetJob(ctx context.Context, id string) (service.Job, error)
}
