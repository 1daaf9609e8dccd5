package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/godilite/camps-trends/internal/analytics"
	"github.com/godilite/camps-trends/internal/repository"
	"github.com/godilite/camps-trends/internal/repository/models"
	"github.com/godilite/camps-trends/pkg/lock"
)

const (
	queryTimeout = 5 * time.Second

	defaultWorkers     = 4
	defaultUnitTimeout = 30 * time.Second
	defaultLookback    = 730 * 24 * time.Hour
	defaultLockTTL     = 30 * time.Minute
)

var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/godilite/camps-trends/trend-record"))

// TrendService materializes trend records from ratings and serves them.
type TrendService struct {
	source RatingSource
	store  TrendStore
	jobs   JobStore
	locker lock.Locker
	logger *zap.Logger

	bucketer    *analytics.Bucketer
	thresholds  analytics.Thresholds
	periods     []analytics.AggregationPeriod
	workers     int
	unitTimeout time.Duration
	lookback    time.Duration
	lockTTL     time.Duration
	limiter     *rate.Limiter
	now         func() time.Time
	onFinish    []FinishHook

	inflight sync.WaitGroup
}

// FinishHook observes every finished recalculation, whether it was run
// synchronously, submitted or scheduled.
type FinishHook func(ctx context.Context, result CalculationResult)

type Option func(*TrendService)

func WithFinishHook(h FinishHook) Option {
	return func(s *TrendService) {
		if h != nil {
			s.onFinish = append(s.onFinish, h)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TrendService) { s.now = now }
}

func WithThresholds(t analytics.Thresholds) Option {
	return func(s *TrendService) { s.thresholds = t }
}

func WithPeriods(periods ...analytics.AggregationPeriod) Option {
	return func(s *TrendService) {
		if len(periods) > 0 {
			s.periods = periods
		}
	}
}

func WithWorkers(n int) Option {
	return func(s *TrendService) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithUnitTimeout(d time.Duration) Option {
	return func(s *TrendService) {
		if d > 0 {
			s.unitTimeout = d
		}
	}
}

func WithLookback(d time.Duration) Option {
	return func(s *TrendService) {
		if d > 0 {
			s.lookback = d
		}
	}
}

// WithReadRate throttles rating source reads; perSecond <= 0 disables it.
func WithReadRate(perSecond float64, burst int) Option {
	return func(s *TrendService) {
		if perSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithLocker(l lock.Locker, ttl time.Duration) Option {
	return func(s *TrendService) {
		s.locker = l
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func WithJobStore(js JobStore) Option {
	return func(s *TrendService) { s.jobs = js }
}

func WithBucketer(b *analytics.Bucketer) Option {
	return func(s *TrendService) { s.bucketer = b }
}

// NewTrendService creates a TrendService. It panics if source or store is nil.
func NewTrendService(source RatingSource, store TrendStore, logger *zap.Logger, opts ...Option) *TrendService {
	if source == nil {
		panic("rating source must not be nil")
	}
	if store == nil {
		panic("trend store must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &TrendService{
		source:      source,
		store:       store,
		jobs:        repository.NewMemoryJobStore(),
		locker:      lock.NewLocalLocker(),
		logger:      logger,
		thresholds:  analytics.DefaultThresholds(),
		periods:     analytics.AggregationPeriods(),
		workers:     defaultWorkers,
		unitTimeout: defaultUnitTimeout,
		lookback:    defaultLookback,
		lockTTL:     defaultLockTTL,
		limiter:     rate.NewLimiter(rate.Inf, 1),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bucketer == nil {
		s.bucketer = analytics.NewBucketer()
	}
	return s
}

func (s *TrendService) Thresholds() analytics.Thresholds { return s.thresholds }

// Recalculate rebuilds every trend record for teamID, or for all teams when
// teamID is empty. Per-unit failures are reported in the result, not returned.
func (s *TrendService) Recalculate(ctx context.Context, teamID string) CalculationResult {
	job := s.newJob(teamID)
	s.saveJob(ctx, job)
	return s.run(ctx, job)
}

func (s *TrendService) newJob(teamID string) Job {
	return Job{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		Status:    StatusPending,
		CreatedAt: s.now().UTC(),
	}
}

func (s *TrendService) run(ctx context.Context, job Job) CalculationResult {
	logger := s.logger.With(zap.String("job_id", job.ID), zap.String("scope", scopeOf(job.TeamID)))
	began := time.Now()

	started := s.now().UTC()
	job.Status = StatusRunning
	job.StartedAt = &started
	s.saveJob(ctx, job)

	result := s.recalculate(ctx, logger, job.TeamID)
	result.JobID = job.ID

	finished := s.now().UTC()
	job.Status = result.Status
	job.Message = result.Message
	job.CalculatedRecords = result.CalculatedRecords
	job.FinishedAt = &finished
	job.Errors = nil
	for _, e := range result.Errors {
		job.Errors = append(job.Errors, e.String())
	}
	s.saveJob(ctx, job)

	logger.Info("recalculation finished",
		zap.String("status", string(result.Status)),
		zap.Int("records", result.CalculatedRecords),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("duration", time.Since(began)))

	for _, h := range s.onFinish {
		h(context.WithoutCancel(ctx), result)
	}
	return result
}

func (s *TrendService) recalculate(ctx context.Context, logger *zap.Logger, teamID string) CalculationResult {
	lockName := "camps:recalc:" + scopeOf(teamID)
	acquired, err := s.locker.TryAcquire(ctx, lockName, s.lockTTL)
	if err != nil {
		return FailedResult(fmt.Errorf("acquire lock: %w", err), "lock", teamID)
	}
	if !acquired {
		return FailedResult(ErrRecalculationBusy, "lock", teamID)
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), lockName); err != nil {
			logger.Warn("release recalculation lock", zap.Error(err))
		}
	}()

	teams, err := s.resolveTeams(ctx, teamID)
	if err != nil {
		logger.Error("resolve teams", zap.Error(err))
		return FailedResult(err, "teams", teamID)
	}

	var (
		mu      sync.Mutex
		total   tally
		g       errgroup.Group
		logTeam = func(t models.Team) *zap.Logger { return logger.With(zap.String("team_id", t.ID)) }
	)
	g.SetLimit(s.workers)
	for _, team := range teams {
		g.Go(func() error {
			t := s.recalculateTeam(ctx, logTeam(team), team)
			mu.Lock()
			total.add(t)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return total.result(len(teams))
}

func (s *TrendService) resolveTeams(ctx context.Context, teamID string) ([]models.Team, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &analytics.DataSourceError{Op: "throttle", Err: err}
	}
	readCtx, cancel := context.WithTimeout(ctx, s.unitTimeout)
	defer cancel()

	if teamID == "" {
		teams, err := s.source.ListTeams(readCtx)
		if err != nil {
			return nil, &analytics.DataSourceError{Op: "list teams", Err: err}
		}
		return teams, nil
	}
	team, err := s.source.GetTeam(readCtx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("team %s: %w", teamID, ErrSubjectNotFound)
		}
		return nil, &analytics.DataSourceError{Op: "get team " + teamID, Err: err}
	}
	return []models.Team{team}, nil
}

// tally accumulates unit outcomes across workers.
type tally struct {
	records   int
	succeeded int
	errs      []UnitError
}

func (t *tally) add(o tally) {
	t.records += o.records
	t.succeeded += o.succeeded
	t.errs = append(t.errs, o.errs...)
}

func (t tally) result(teams int) CalculationResult {
	r := CalculationResult{CalculatedRecords: t.records, Errors: t.errs}
	switch {
	case len(t.errs) == 0:
		r.Status = StatusSucceeded
		r.Success = true
		r.Message = fmt.Sprintf("recalculated %d records for %d teams", t.records, teams)
	case t.succeeded > 0:
		r.Status = StatusPartial
		r.Message = fmt.Sprintf("recalculated %d records for %d teams with %d failed units", t.records, teams, len(t.errs))
	default:
		r.Status = StatusFailed
		r.CalculatedRecords = 0
		r.Message = fmt.Sprintf("all %d units failed", len(t.errs))
	}
	return r
}

// FailedResult reports a run that stopped before any unit was attempted.
func FailedResult(cause error, unit, teamID string) CalculationResult {
	return CalculationResult{
		Status:  StatusFailed,
		Message: cause.Error(),
		Errors:  []UnitError{{Unit: unit, TeamID: teamID, Message: cause.Error(), Err: cause}},
		cause:   cause,
	}
}

func (s *TrendService) recalculateTeam(ctx context.Context, logger *zap.Logger, team models.Team) tally {
	var out tally

	byCategory, err := s.readTeam(ctx, team)
	if err != nil {
		logger.Warn("read team ratings", zap.Error(err))
		out.errs = append(out.errs, UnitError{Unit: "team " + team.ID, TeamID: team.ID, Message: err.Error(), Err: err})
		return out
	}

	for raw := range byCategory {
		if _, err := analytics.ParseCategory(raw); err != nil {
			invalid := fmt.Errorf("%w: %v", analytics.ErrInvalidEvent, err)
			out.errs = append(out.errs, UnitError{
				Unit: team.ID + "/" + raw, TeamID: team.ID, Category: raw,
				Message: invalid.Error(), Err: invalid,
			})
		}
	}

	for _, category := range analytics.Categories() {
		n, err := s.recalculateUnit(ctx, team, category, byCategory[string(category)])
		if err != nil {
			logger.Warn("recalculate unit", zap.String("category", string(category)), zap.Error(err))
			out.errs = append(out.errs, UnitError{
				Unit: team.ID + "/" + string(category), TeamID: team.ID, Category: string(category),
				Message: err.Error(), Err: err,
			})
			continue
		}
		out.records += n
		out.succeeded++
	}
	logger.Debug("team recalculated", zap.Int("records", out.records), zap.Int("failed_units", len(out.errs)))
	return out
}

// readTeam loads the lookback window, aligned to the start of the widest
// configured bucket so that no bucket is read partially.
func (s *TrendService) readTeam(ctx context.Context, team models.Team) (map[string][]models.RatingRow, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &analytics.DataSourceError{Op: "throttle", Err: err}
	}
	readCtx, cancel := context.WithTimeout(ctx, s.unitTimeout)
	defer cancel()

	now := s.now().UTC()
	rows, err := s.source.GetRatings(readCtx, models.RatingFilter{
		TeamID: team.ID,
		Start:  analytics.PeriodStart(now.Add(-s.lookback), s.widestPeriod()),
		End:    now,
	})
	if err != nil {
		return nil, &analytics.DataSourceError{Op: "read ratings for team " + team.ID, Err: err}
	}

	out := make(map[string][]models.RatingRow)
	for _, r := range rows {
		out[r.Category] = append(out[r.Category], r)
	}
	return out, nil
}

func (s *TrendService) widestPeriod() analytics.AggregationPeriod {
	widest := s.periods[0]
	for _, p := range s.periods[1:] {
		if analytics.Wider(p, widest) {
			widest = p
		}
	}
	return widest
}

func (s *TrendService) recalculateUnit(ctx context.Context, team models.Team, category analytics.CampsCategory, rows []models.RatingRow) (int, error) {
	events := make([]analytics.RatingEvent, 0, 2*len(rows))
	for _, r := range rows {
		base := analytics.RatingEvent{
			EmployeeID: r.EmployeeID,
			Category:   category,
			Date:       r.RatingDate.UTC(),
			Value:      r.Rating,
		}
		employee, teamEvent := base, base
		employee.SubjectID, employee.SubjectKind = r.EmployeeID, analytics.SubjectEmployee
		teamEvent.SubjectID, teamEvent.SubjectKind = team.ID, analytics.SubjectTeam
		events = append(events, employee, teamEvent)
	}

	calculatedAt := s.now().UTC()
	var records []models.TrendRecord
	for _, period := range s.periods {
		buckets, err := s.bucketer.Buckets(events, period)
		if err != nil {
			return 0, err
		}
		for _, rec := range analytics.BuildRecords(buckets, s.thresholds, calculatedAt) {
			rec.TeamID = team.ID
			if rec.SubjectKind == analytics.SubjectTeam {
				rec.TeamSize = team.MemberCount
				if team.MemberCount > 0 {
					participation := float64(rec.EmployeeCount) / float64(team.MemberCount)
					rec.ParticipationRate = &participation
				}
			}
			rec.ID = recordID(rec)
			records = append(records, toModel(rec))
		}
	}

	if err := s.store.ReplaceUnit(ctx, team.ID, string(category), records); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return len(records), nil
}

func recordID(r analytics.TrendRecord) string {
	name := fmt.Sprintf("%s|%s|%s|%s|%d", r.SubjectKind, r.SubjectID, r.Category, r.Period, r.PeriodStart.Unix())
	return uuid.NewSHA1(recordNamespace, []byte(name)).String()
}

func scopeOf(teamID string) string {
	if teamID == "" {
		return "all"
	}
	return "team:" + teamID
}
