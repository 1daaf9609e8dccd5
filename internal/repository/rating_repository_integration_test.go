package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/camps-trends/internal/repository"
	"github.com/godilite/camps-trends/internal/repository/models"
	"github.com/godilite/camps-trends/internal/repository/repotest"
)

func TestRatingRepository_Integration(t *testing.T) {
	ctx := context.Background()
	db := repotest.NewDB(t)

	repotest.AddTeam(t, db, "T1", "E1", "E2")
	repotest.AddTeam(t, db, "T2", "E3")
	repotest.AddTeam(t, db, "T3")

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	repotest.AddRating(t, db, "E2", "CERTAINTY", base.Add(48*time.Hour), 7)
	repotest.AddRating(t, db, "E1", "CERTAINTY", base, 5)
	repotest.AddRating(t, db, "E1", "MEANING", base.Add(24*time.Hour), 9)
	repotest.AddRating(t, db, "E3", "CERTAINTY", base, 3)
	repotest.AddRating(t, db, "E1", "CERTAINTY", base.AddDate(0, 1, 0), 8)

	repo := repository.NewRatingRepository(db, "sqlite3")

	t.Run("ListTeams", func(t *testing.T) {
		teams, err := repo.ListTeams(ctx)
		require.NoError(t, err)
		require.Len(t, teams, 3)

		assert.Equal(t, "T1", teams[0].ID)
		assert.Equal(t, 2, teams[0].MemberCount)
		assert.Equal(t, 1, teams[1].MemberCount)
		assert.Equal(t, 0, teams[2].MemberCount)
	})

	t.Run("GetTeam", func(t *testing.T) {
		team, err := repo.GetTeam(ctx, "T2")
		require.NoError(t, err)
		assert.Equal(t, "Team T2", team.Name)
		assert.Equal(t, 1, team.MemberCount)

		_, err = repo.GetTeam(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("SubjectExists", func(t *testing.T) {
		ok, err := repo.SubjectExists(ctx, "EMPLOYEE", "E1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.SubjectExists(ctx, "TEAM", "T9")
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = repo.SubjectExists(ctx, "DEPARTMENT", "D1")
		assert.Error(t, err)
	})

	t.Run("GetRatings by team is date ordered", func(t *testing.T) {
		rows, err := repo.GetRatings(ctx, models.RatingFilter{
			TeamID: "T1",
			Start:  base,
			End:    base.AddDate(0, 0, 7),
		})
		require.NoError(t, err)
		require.Len(t, rows, 3)

		assert.Equal(t, "E1", rows[0].EmployeeID)
		assert.Equal(t, "E1", rows[1].EmployeeID)
		assert.Equal(t, "MEANING", rows[1].Category)
		assert.Equal(t, "E2", rows[2].EmployeeID)
		assert.Equal(t, "T1", rows[2].TeamID)
		assert.True(t, rows[0].RatingDate.Equal(base))
		for i := 1; i < len(rows); i++ {
			assert.False(t, rows[i].RatingDate.Before(rows[i-1].RatingDate))
		}
	})

	t.Run("GetRatings by employee and category", func(t *testing.T) {
		rows, err := repo.GetRatings(ctx, models.RatingFilter{
			EmployeeID: "E1",
			Category:   "CERTAINTY",
			Start:      base.AddDate(-1, 0, 0),
			End:        base.AddDate(1, 0, 0),
		})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 5, rows[0].Rating)
		assert.Equal(t, 8, rows[1].Rating)
	})

	t.Run("GetRatings end is exclusive", func(t *testing.T) {
		rows, err := repo.GetRatings(ctx, models.RatingFilter{TeamID: "T2", Start: base.Add(-time.Hour), End: base})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestRatingRepository_SourceFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT r.id").WillReturnError(errors.New("connection refused"))
	mock.ExpectQuery("SELECT t.id").WillReturnError(errors.New("connection refused"))

	repo := repository.NewRatingRepository(db, "sqlmock")

	_, err = repo.GetRatings(context.Background(), models.RatingFilter{TeamID: "T1", End: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query GetRatings")
	assert.Contains(t, err.Error(), "connection refused")

	_, err = repo.ListTeams(context.Background())
	assert.ErrorContains(t, err, "query ListTeams")

	assert.NoError(t, mock.ExpectationsWereMet())
}
