package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/camps-trends/internal/analytics"
	"github.com/godilite/camps-trends/internal/service"
)

// MockTrendService is a function-field mock of the handler's TrendService.
type MockTrendService struct {
	GetTrendsForQueryFunc       func(ctx context.Context, q service.SubjectQuery) ([]analytics.TrendRecord, error)
	GetEmployeeTrendsFunc       func(ctx context.Context, employeeID string, q service.SubjectQuery) ([]analytics.TrendRecord, error)
	GetTeamTrendsFunc           func(ctx context.Context, teamID string, q service.SubjectQuery) ([]analytics.TrendRecord, error)
	GetTeamAveragesFunc         func(ctx context.Context, teamID string, date time.Time, includeStats bool) ([]service.CategoryAverage, error)
	GetTeamStatsFunc            func(ctx context.Context, q service.TeamStatsQuery) ([]service.TeamStats, error)
	GetMostImprovedCategoryFunc func(ctx context.Context, employeeID string, tp analytics.TimePeriod) (*service.CategoryImprovement, error)
	GetSignificantChangesFunc   func(ctx context.Context, kind analytics.SubjectKind, subjectID string, asOf time.Time) ([]analytics.SignificantChange, error)
	RecalculateFunc             func(ctx context.Context, teamID string) service.CalculationResult
	SubmitFunc                  func(ctx context.Context, teamID string) (string, error)
	GetJobFunc                  func(ctx context.Context, id string) (service.Job, error)
}

var errNotImplemented = errors.New("not implemented")

func (m *MockTrendService) GetTrendsForQuery(ctx context.Context, q service.SubjectQuery) ([]analytics.TrendRecord, error) {
	if m.GetTrendsForQueryFunc != nil {
		return m.GetTrendsForQueryFunc(ctx, q)
	}
	return nil, errNotImplemented
}

func (m *MockTrendService) GetEmployeeTrends(ctx context.Context, employeeID string, q service.SubjectQuery) ([]analytics.TrendRecord, error) {
	if m.GetEmployeeTrendsFunc != nil {
		return m.GetEmployeeTrendsFunc(ctx, employeeID, q)
	}
	return nil, errNotImplemented
}

func (m *MockTrendService) GetTeamTrends(ctx context.Context, teamID string, q service.SubjectQuery) ([]analytics.TrendRecord, error) {
	if m.GetTeamTrendsFunc != nil {
		return m.GetTeamTrendsFunc(ctx, teamID, q)
	}
	return nil, errNotImplemented
}

func (m *MockTrendService) GetTeamAverages(ctx context.Context, teamID string, date time.Time, includeStats bool) ([]service.CategoryAverage, error) {
	if m.GetTeamAveragesFunc != nil {
		return m.GetTeamAveragesFunc(ctx, teamID, date, includeStats)
	}
	return nil, errNotImplemented
}

func (m *MockTrendService) GetTeamStats(ctx context.Context, q service.TeamStatsQuery) ([]service.TeamStats, error) {
	if m.GetTeamStatsFunc != nil {
		return m.GetTeamStatsFunc(ctx, q)
	}
	return nil, errNotImplemented
}

func (m *MockTrendService) GetMostImprovedCategory(ctx context.Context, employeeID string, tp analytics.TimePeriod) (*service.CategoryImprovement, error) {
	if m.GetMostImprovedCategoryFunc != nil {
		return m.GetMostImprovedCategoryFunc(ctx, employeeID, tp)
	}
	return nil, errNotImplemented
}

func (m *MockTrendService) GetSignificantChanges(ctx context.Context, kind analytics.SubjectKind, subjectID string, asOf time.Time) ([]analytics.SignificantChange, error) {
	if m.GetSignificantChangesFunc != nil {
		return m.GetSignificantChangesFunc(ctx, kind, subjectID, asOf)
	}
	return nil, errNotImplemented
}

func (m *MockTrendService) Recalculate(ctx context.Context, teamID string) service.CalculationResult {
	if m.RecalculateFunc != nil {
		return m.RecalculateFunc(ctx, teamID)
	}
	return service.CalculationResult{Status: service.StatusFailed, Message: errNotImplemented.Error()}
}

func (m *MockTrendService) Submit(ctx context.Context, teamID string) (string, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, teamID)
	}
	return "", errNotImplemented
}

func (m *MockTrendService) GetJob(ctx context.Context, id string) (service.Job, error) {
	if m.GetJobFunc != nil {
		return m.GetJobFunc(ctx, id)
	}
	return service.Job{}, errNotImplemented
}
