package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/godilite/camps-trends/internal/repository"
	"github.com/godilite/camps-trends/internal/repository/models"
	"github.com/godilite/camps-trends/internal/repository/repotest"
)

func newTrendStore(t *testing.T) *repository.TrendStore {
	t.Helper()

	gdb, err := repository.OpenGorm(repotest.NewDB(t), "sqlite3", zaptest.NewLogger(t))
	require.NoError(t, err)

	store := repository.NewTrendStore(gdb)
	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

func trendRow(id, subject, category string, start time.Time, avg float64) models.TrendRecord {
	wow := 0.5
	return models.TrendRecord{
		ID:                 id,
		SubjectKind:        "EMPLOYEE",
		SubjectID:          subject,
		TeamID:             "T1",
		Category:           category,
		AggregationPeriod:  "WEEKLY",
		PeriodStart:        start,
		PeriodEnd:          start.AddDate(0, 0, 7),
		AverageRating:      avg,
		SampleSize:         1,
		WeekOverWeekChange: &wow,
		CalculatedAt:       start,
	}
}

func TestTrendStore_ReplaceAndFind(t *testing.T) {
	ctx := context.Background()
	store := newTrendStore(t)
	w1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w2 := w1.AddDate(0, 0, 7)

	err := store.ReplaceUnit(ctx, "T1", "CERTAINTY", []models.TrendRecord{
		trendRow("a", "E1", "CERTAINTY", w2, 6),
		trendRow("b", "E1", "CERTAINTY", w1, 5),
	})
	require.NoError(t, err)
	require.NoError(t, store.ReplaceUnit(ctx, "T1", "MEANING", []models.TrendRecord{
		trendRow("c", "E1", "MEANING", w1, 9),
	}))

	t.Run("ordered by category then start", func(t *testing.T) {
		rows, err := store.FindTrends(ctx, models.TrendFilter{SubjectKind: "EMPLOYEE", SubjectID: "E1", AggregationPeriod: "WEEKLY"})
		require.NoError(t, err)
		require.Len(t, rows, 3)

		assert.Equal(t, "b", rows[0].ID)
		assert.Equal(t, "a", rows[1].ID)
		assert.Equal(t, "MEANING", rows[2].Category)
		require.NotNil(t, rows[0].WeekOverWeekChange)
		assert.Equal(t, 0.5, *rows[0].WeekOverWeekChange)
		assert.Nil(t, rows[0].MonthOverMonthChange)
		assert.True(t, rows[0].PeriodStart.Equal(w1))
	})

	t.Run("category and range filters", func(t *testing.T) {
		rows, err := store.FindTrends(ctx, models.TrendFilter{
			SubjectKind: "EMPLOYEE", SubjectID: "E1", AggregationPeriod: "WEEKLY",
			Category: "CERTAINTY", From: w2, To: w2.Add(time.Hour),
		})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "a", rows[0].ID)
	})

	t.Run("replace overwrites the whole unit", func(t *testing.T) {
		require.NoError(t, store.ReplaceUnit(ctx, "T1", "CERTAINTY", []models.TrendRecord{
			trendRow("d", "E1", "CERTAINTY", w1, 4),
		}))

		n, err := store.CountUnit(ctx, "T1", "CERTAINTY")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = store.CountUnit(ctx, "T1", "MEANING")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n, "sibling unit untouched")
	})

	t.Run("failed insert rolls back the delete", func(t *testing.T) {
		dup := trendRow("dup", "E1", "CERTAINTY", w1, 1)
		err := store.ReplaceUnit(ctx, "T1", "CERTAINTY", []models.TrendRecord{dup, dup})
		require.Error(t, err)

		rows, err := store.FindTrends(ctx, models.TrendFilter{SubjectKind: "EMPLOYEE", SubjectID: "E1", AggregationPeriod: "WEEKLY", Category: "CERTAINTY"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "d", rows[0].ID)
	})
}

func TestOpenGorm_UnsupportedDriver(t *testing.T) {
	_, err := repository.OpenGorm(repotest.NewDB(t), "mysql", nil)
	assert.ErrorContains(t, err, "unsupported driver")
}

func TestTrendStore_ReplaceUnitMovesEmployee(t *testing.T) {
	ctx := context.Background()
	store := newTrendStore(t)
	w1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.ReplaceUnit(ctx, "T1", "CERTAINTY", []models.TrendRecord{
		trendRow("e1-w1", "E1", "CERTAINTY", w1, 5),
		trendRow("e2-w1", "E2", "CERTAINTY", w1, 7),
	}))
	require.NoError(t, store.ReplaceUnit(ctx, "T1", "MEANING", []models.TrendRecord{
		trendRow("e1-meaning", "E1", "MEANING", w1, 8),
	}))

	moved := trendRow("e1-w1", "E1", "CERTAINTY", w1, 6)
	moved.TeamID = "T2"
	require.NoError(t, store.ReplaceUnit(ctx, "T2", "CERTAINTY", []models.TrendRecord{moved}))

	rows, err := store.FindTrends(ctx, models.TrendFilter{
		SubjectKind: "EMPLOYEE", SubjectID: "E1", AggregationPeriod: "WEEKLY", Category: "CERTAINTY",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "T2", rows[0].TeamID)
	assert.Equal(t, 6.0, rows[0].AverageRating)

	n, err := store.CountUnit(ctx, "T1", "CERTAINTY")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "E2 stays with T1")

	n, err = store.CountUnit(ctx, "T1", "MEANING")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "other categories are left for their own unit")
}
