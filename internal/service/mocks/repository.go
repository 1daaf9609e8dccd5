package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/camps-trends/internal/repository/models"
)

// MockRatingSource is a mock implementation of the RatingSource interface
// for testing the service layer.
type MockRatingSource struct {
	ListTeamsFunc     func(ctx context.Context) ([]models.Team, error)
	GetTeamFunc       func(ctx context.Context, teamID string) (models.Team, error)
	SubjectExistsFunc func(ctx context.Context, kind, id string) (bool, error)
	GetRatingsFunc    func(ctx context.Context, f models.RatingFilter) ([]models.RatingRow, error)
}

func (m *MockRatingSource) ListTeams(ctx context.Context) ([]models.Team, error) {
	if m.ListTeamsFunc != nil {
		return m.ListTeamsFunc(ctx)
	}
	return nil, errors.New("ListTeamsFunc not implemented")
}

func (m *MockRatingSource) GetTeam(ctx context.Context, teamID string) (models.Team, error) {
	if m.GetTeamFunc != nil {
		return m.GetTeamFunc(ctx, teamID)
	}
	return models.Team{}, errors.New("GetTeamFunc not implemented")
}

func (m *MockRatingSource) SubjectExists(ctx context.Context, kind, id string) (bool, error) {
	if m.SubjectExistsFunc != nil {
		return m.SubjectExistsFunc(ctx, kind, id)
	}
	return false, errors.New("SubjectExistsFunc not implemented")
}

func (m *MockRatingSource) GetRatings(ctx context.Context, f models.RatingFilter) ([]models.RatingRow, error) {
	if m.GetRatingsFunc != nil {
		return m.GetRatingsFunc(ctx, f)
	}
	return nil, errors.New("GetRatingsFunc not implemented")
}

// MockTrendStore is a mock implementation of the TrendStore interface.
type MockTrendStore struct {
	ReplaceUnitFunc func(ctx context.Context, teamID, category string, records []models.TrendRecord) error
	FindTrendsFunc  func(ctx context.Context, f models.TrendFilter) ([]models.TrendRecord, error)
}

func (m *MockTrendStore) ReplaceUnit(ctx context.Context, teamID, category string, records []models.TrendRecord) error {
	if m.ReplaceUnitFunc != nil {
		return m.ReplaceUnitFunc(ctx, teamID, category, records)
	}
	return errors.New("ReplaceUnitFunc not implemented")
}

func (m *MockTrendStore) FindTrends(ctx context.Context, f models.TrendFilter) ([]models.TrendRecord, error) {
	if m.FindTrendsFunc != nil {
		return m.FindTrendsFunc(ctx, f)
	}
	return nil, errors.New("FindTrendsFunc not implemented")
}

// MockLocker is a mock implementation of lock.Locker.
type MockLocker struct {
	TryAcquireFunc func(ctx context.Context, name string) (bool, error)
	Released       []string
}

func (m *MockLocker) TryAcquire(ctx context.Context, name string, _ time.Duration) (bool, error) {
	if m.TryAcquireFunc != nil {
		return m.TryAcquireFunc(ctx, name)
	}
	return true, nil
}

func (m *MockLocker) Release(_ context.Context, name string) error {
	m.Released = append(m.Released, name)
	return nil
}
