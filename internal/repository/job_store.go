package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/godilite/camps-trends/internal/repository/models"
)

var jobsBucket = []byte("recalculation_jobs")

// BoltJobStore keeps recalculation job status in a local bbolt file.
type BoltJobStore struct {
	db *bolt.DB
}

func OpenBoltJobStore(path string) (*BoltJobStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open job store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(jobsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create jobs bucket: %w", err)
	}
	return &BoltJobStore{db: db}, nil
}

func (s *BoltJobStore) Save(_ context.Context, job models.RecalculationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(jobsBucket).Put([]byte(job.ID), data)
	})
}

func (s *BoltJobStore) Get(_ context.Context, id string) (models.RecalculationJob, error) {
	var job models.RecalculationJob
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(jobsBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("job %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &job)
	})
	return job, err
}

// LatestFinished returns the job for teamID ("" for full runs) that finished
// most recently with one of statuses. No statuses means any status.
func (s *BoltJobStore) LatestFinished(_ context.Context, teamID string, statuses ...string) (models.RecalculationJob, bool, error) {
	var (
		latest models.RecalculationJob
		found  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(jobsBucket).ForEach(func(_, v []byte) error {
			var job models.RecalculationJob
			if err := json.Unmarshal(v, &job); err != nil {
				return err
			}
			if newerFinished(job, latest, found, teamID, statuses) {
				latest, found = job, true
			}
			return nil
		})
	})
	if err != nil {
		return models.RecalculationJob{}, false, fmt.Errorf("scan jobs: %w", err)
	}
	return latest, found, nil
}

func newerFinished(job, latest models.RecalculationJob, found bool, teamID string, statuses []string) bool {
	if job.FinishedAt == nil || job.TeamID != teamID {
		return false
	}
	if len(statuses) > 0 && !slices.Contains(statuses, job.Status) {
		return false
	}
	return !found || job.FinishedAt.After(*latest.FinishedAt)
}

func (s *BoltJobStore) Close() error {
	return s.db.Close()
}

// MemoryJobStore is the process-local job store used when no file is configured.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]models.RecalculationJob
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]models.RecalculationJob)}
}

func (s *MemoryJobStore) Save(_ context.Context, job models.RecalculationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.Errors = append([]string(nil), job.Errors...)
	s.jobs[job.ID] = job
	return nil
}

func (s *MemoryJobStore) Get(_ context.Context, id string) (models.RecalculationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.RecalculationJob{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return job, nil
}

func (s *MemoryJobStore) LatestFinished(_ context.Context, teamID string, statuses ...string) (models.RecalculationJob, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		latest models.RecalculationJob
		found  bool
	)
	for _, job := range s.jobs {
		if newerFinished(job, latest, found, teamID, statuses) {
			latest, found = job, true
		}
	}
	return latest, found, nil
}

func (s *MemoryJobStore) Close() error { return nil }
