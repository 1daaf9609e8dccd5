package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/camps-trends/internal/repository"
	"github.com/godilite/camps-trends/internal/repository/models"
)

type jobStore interface {
	Save(ctx context.Context, job models.RecalculationJob) error
	Get(ctx context.Context, id string) (models.RecalculationJob, error)
	LatestFinished(ctx context.Context, teamID string, statuses ...string) (models.RecalculationJob, bool, error)
	Close() error
}

func TestJobStores(t *testing.T) {
	stores := map[string]func(t *testing.T) jobStore{
		"memory": func(t *testing.T) jobStore { return repository.NewMemoryJobStore() },
		"bolt": func(t *testing.T) jobStore {
			s, err := repository.OpenBoltJobStore(filepath.Join(t.TempDir(), "jobs.db"))
			require.NoError(t, err)
			return s
		},
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)
			defer store.Close()

			_, found, err := store.LatestFinished(ctx, "")
			require.NoError(t, err)
			assert.False(t, found)

			created := time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC)
			require.NoError(t, store.Save(ctx, models.RecalculationJob{ID: "j1", Status: "PENDING", CreatedAt: created}))
			require.NoError(t, store.Save(ctx, models.RecalculationJob{ID: "j2", Status: "PENDING", CreatedAt: created.Add(time.Hour)}))

			finished := created.Add(2 * time.Hour)
			require.NoError(t, store.Save(ctx, models.RecalculationJob{
				ID: "j1", Status: "PARTIAL", CreatedAt: created, FinishedAt: &finished,
				CalculatedRecords: 12, Errors: []string{"team T3: data source failure"},
			}))

			job, err := store.Get(ctx, "j1")
			require.NoError(t, err)
			assert.Equal(t, "PARTIAL", job.Status)
			assert.Equal(t, 12, job.CalculatedRecords)
			assert.Len(t, job.Errors, 1)
			require.NotNil(t, job.FinishedAt)
			assert.True(t, job.FinishedAt.Equal(finished))

			_, found, err = store.LatestFinished(ctx, "")
			require.NoError(t, err)
			assert.True(t, found, "j1 finished")

			teamDone := finished.Add(time.Hour)
			failedDone := finished.Add(2 * time.Hour)
			require.NoError(t, store.Save(ctx, models.RecalculationJob{
				ID: "j3", TeamID: "T1", Status: "SUCCEEDED", CreatedAt: created, FinishedAt: &teamDone,
			}))
			require.NoError(t, store.Save(ctx, models.RecalculationJob{
				ID: "j4", Status: "FAILED", CreatedAt: created, FinishedAt: &failedDone,
			}))

			latest, found, err := store.LatestFinished(ctx, "", "SUCCEEDED", "PARTIAL")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "j1", latest.ID, "team-scoped and failed jobs are skipped")

			latest, found, err = store.LatestFinished(ctx, "")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "j4", latest.ID)

			latest, found, err = store.LatestFinished(ctx, "T1")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "j3", latest.ID)

			_, err = store.Get(ctx, "nope")
			assert.ErrorIs(t, err, repository.ErrNotFound)
		})
	}
}
