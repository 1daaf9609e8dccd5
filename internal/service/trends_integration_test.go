package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/godilite/camps-trends/internal/analytics"
	"github.com/godilite/camps-trends/internal/repository"
	"github.com/godilite/camps-trends/internal/repository/repotest"
	"github.com/godilite/camps-trends/internal/service"
)

// TestRecalculateAndQuery_SQLite runs a recalculation against sqlite and
// reads the materialized records back through the query API.
func TestRecalculateAndQuery_SQLite(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

	db := repotest.NewDB(t)
	repotest.AddTeam(t, db, "T1", "E1", "E2")
	repotest.AddTeam(t, db, "T2", "E3")
	first := time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC)
	for i, v := range []int{5, 6, 7, 8} {
		repotest.AddRating(t, db, "E1", "CERTAINTY", first.AddDate(0, 0, 7*i), v)
	}
	repotest.AddRating(t, db, "E2", "CERTAINTY", first.AddDate(0, 0, 21), 10)
	repotest.AddRating(t, db, "E3", "MEANING", first, 4)

	gdb, err := repository.OpenGorm(db, "sqlite3", logger)
	require.NoError(t, err)
	store := repository.NewTrendStore(gdb)
	require.NoError(t, store.EnsureSchema(ctx))

	svc := service.NewTrendService(repository.NewRatingRepository(db, "sqlite3"), store, logger,
		service.WithClock(func() time.Time { return now }))

	result := svc.Recalculate(ctx, "")
	require.Equal(t, service.StatusSucceeded, result.Status, result.Message)
	require.Positive(t, result.CalculatedRecords)

	category := analytics.Certainty
	records, err := svc.GetEmployeeTrends(ctx, "E1", service.SubjectQuery{
		Category:  &category,
		DateRange: &service.DateRange{Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), End: now},
	})
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Nil(t, records[0].Changes.Week)
	for i, r := range records[1:] {
		require.NotNil(t, r.Changes.Week, "week %d", i+1)
		assert.Equal(t, 1.0, *r.Changes.Week)
	}
	assert.Equal(t, 6.5, *records[3].RollingAverages.FourWeek)

	teamStats, err := svc.GetTeamStats(ctx, service.TeamStatsQuery{
		TeamID:            "T1",
		AggregationPeriod: analytics.Weekly,
		DateRange:         &service.DateRange{Start: first, End: now},
	})
	require.NoError(t, err)
	require.Len(t, teamStats, 4)
	last := teamStats[3]
	assert.Equal(t, 9.0, last.AverageRating, "E1 rated 8 and E2 rated 10")
	assert.Equal(t, 2, last.EmployeeCount)
	require.NotNil(t, last.ParticipationRate)
	assert.Equal(t, 1.0, *last.ParticipationRate)

	t.Run("recalculation is idempotent", func(t *testing.T) {
		again := svc.Recalculate(ctx, "")
		require.True(t, again.Success)
		assert.Equal(t, result.CalculatedRecords, again.CalculatedRecords)

		reread, err := svc.GetEmployeeTrends(ctx, "E1", service.SubjectQuery{
			Category:  &category,
			DateRange: &service.DateRange{Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), End: now},
		})
		require.NoError(t, err)
		assert.Equal(t, records, reread)
	})

	t.Run("single team scope", func(t *testing.T) {
		scoped := svc.Recalculate(ctx, "T2")
		require.True(t, scoped.Success)
		assert.Less(t, scoped.CalculatedRecords, result.CalculatedRecords)

		n, err := store.CountUnit(ctx, "T2", "MEANING")
		require.NoError(t, err)
		assert.Equal(t, int64(10), n, "one employee and one team record per period")
	})

	t.Run("unknown subject", func(t *testing.T) {
		_, err := svc.GetTeamTrends(ctx, "T404", service.SubjectQuery{})
		assert.ErrorIs(t, err, service.ErrSubjectNotFound)
	})
}

func TestRecalculate_EmployeeChangesTeam_SQLite(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

	db := repotest.NewDB(t)
	repotest.AddTeam(t, db, "A", "E1")
	repotest.AddTeam(t, db, "B", "E2")
	first := time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC)
	for i, v := range []int{5, 6, 7, 8} {
		repotest.AddRating(t, db, "E1", "CERTAINTY", first.AddDate(0, 0, 7*i), v)
		repotest.AddRating(t, db, "E1", "MEANING", first.AddDate(0, 0, 7*i), v)
	}
	repotest.AddRating(t, db, "E2", "CERTAINTY", first, 3)

	gdb, err := repository.OpenGorm(db, "sqlite3", logger)
	require.NoError(t, err)
	store := repository.NewTrendStore(gdb)
	require.NoError(t, store.EnsureSchema(ctx))

	svc := service.NewTrendService(repository.NewRatingRepository(db, "sqlite3"), store, logger,
		service.WithClock(func() time.Time { return now }))
	require.Equal(t, service.StatusSucceeded, svc.Recalculate(ctx, "").Status)

	_, err = db.Exec(`UPDATE employees SET team_id = 'B' WHERE id = 'E1'`)
	require.NoError(t, err)

	moved := svc.Recalculate(ctx, "B")
	require.Equal(t, service.StatusSucceeded, moved.Status, moved.Message)
	assert.Empty(t, moved.Errors)
	assert.Positive(t, moved.CalculatedRecords)

	for _, c := range []analytics.CampsCategory{analytics.Certainty, analytics.Meaning} {
		records, err := svc.GetEmployeeTrends(ctx, "E1", service.SubjectQuery{
			Category:  &c,
			DateRange: &service.DateRange{Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), End: now},
		})
		require.NoError(t, err)
		require.Len(t, records, 4, "one weekly series for %s", c)
		for _, r := range records {
			assert.Equal(t, "B", r.TeamID)
		}
	}

	t.Run("old team recalculated afterwards", func(t *testing.T) {
		require.Equal(t, service.StatusSucceeded, svc.Recalculate(ctx, "A").Status)

		c := analytics.Certainty
		records, err := svc.GetEmployeeTrends(ctx, "E1", service.SubjectQuery{
			Category:  &c,
			DateRange: &service.DateRange{Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), End: now},
		})
		require.NoError(t, err)
		assert.Len(t, records, 4)
	})
}
