package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/camps-trends/internal/repository"
)

// Submit records a PENDING job and runs it in the background.
func (s *TrendService) Submit(ctx context.Context, teamID string) (string, error) {
	job := s.newJob(teamID)
	if err := s.jobs.Save(ctx, jobToModel(job)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.run(context.WithoutCancel(ctx), job)
	}()
	return job.ID, nil
}

func (s *TrendService) GetJob(ctx context.Context, id string) (Job, error) {
	m, err := s.jobs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		return Job{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return jobFromModel(m), nil
}

// Wait blocks until submitted jobs finish or ctx is done.
func (s *TrendService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NeedsRecalculation reports whether no full recalculation has completed
// within maxAge. Team-scoped, failed and unfinished jobs do not count.
func (s *TrendService) NeedsRecalculation(ctx context.Context, maxAge time.Duration) (bool, error) {
	latest, found, err := s.jobs.LatestFinished(ctx, "", string(StatusSucceeded), string(StatusPartial))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if !found {
		return true, nil
	}
	return s.now().Sub(*latest.FinishedAt) > maxAge, nil
}

func (s *TrendService) saveJob(ctx context.Context, job Job) {
	if err := s.jobs.Save(context.WithoutCancel(ctx), jobToModel(job)); err != nil {
		s.logger.Warn("persist recalculation job",
			zap.String("job_id", job.ID),
			zap.String("status", string(job.Status)),
			zap.Error(err))
	}
}

// RecalculationWorker runs a full recalculation on every tick. With a
// positive freshness it skips ticks when a job finished within that window,
// so restarts do not redo a recent run.
type RecalculationWorker struct {
	svc       *TrendService
	freshness time.Duration
}

func NewRecalculationWorker(svc *TrendService, freshness time.Duration) *RecalculationWorker {
	return &RecalculationWorker{svc: svc, freshness: freshness}
}

func (w *RecalculationWorker) Name() string { return "trend-recalculation" }

func (w *RecalculationWorker) Run(ctx context.Context) error {
	if w.freshness > 0 {
		needed, err := w.svc.NeedsRecalculation(ctx, w.freshness)
		if err != nil {
			return err
		}
		if !needed {
			w.svc.logger.Debug("trends are fresh, skipping recalculation",
				zap.Duration("freshness", w.freshness))
			return nil
		}
	}
	return w.svc.Recalculate(ctx, "").Err()
}
