package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/godilite/camps-trends/api/v1"
	"github.com/godilite/camps-trends/internal/analytics"
	"github.com/godilite/camps-trends/internal/service"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
	recalculateTimeout   = 30 * time.Minute
)

// CachePrefix namespaces every cached read result. Deleting it invalidates
// all of them.
const CachePrefix = "grpc:"

type CacheKeyType string

const (
	cacheKeyTrends             CacheKeyType = CachePrefix + "trends"
	cacheKeyTeamAverages       CacheKeyType = CachePrefix + "team_averages"
	cacheKeyTeamStats          CacheKeyType = CachePrefix + "team_stats"
	cacheKeyMostImproved       CacheKeyType = CachePrefix + "most_improved"
	cacheKeySignificantChanges CacheKeyType = CachePrefix + "significant_changes"
)

type GRPCHandlers struct {
	pb.UnimplementedTrendServiceServer
	svc      TrendService
	cache    Cacher
	logger   *zap.Logger
	sfGroup  singleflight.Group
	cacheTTL time.Duration
	now      func() time.Time
}

// NewGRPCHandlers initializes the gRPC handlers. cache may be nil, in which
// case reads go straight to the service.
func NewGRPCHandlers(trends TrendService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if trends == nil {
		panic("nil TrendService provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &GRPCHandlers{
		svc:      trends,
		cache:    cache,
		logger:   logger.Named("grpc-handler"),
		cacheTTL: ttl,
		now:      time.Now,
	}
}

// normalizeKey joins key parts under prefix. Empty parts are kept so that
// positional meaning is preserved.
func normalizeKey(prefix CacheKeyType, parts ...string) string {
	return string(prefix) + ":" + strings.Join(parts, ":")
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Truncate(24 * time.Hour).Format("2006-01-02")
}

func queryKey(kind, id string, q service.SubjectQuery, today time.Time) string {
	category := ""
	if q.Category != nil {
		category = string(*q.Category)
	}
	window := string(q.TimePeriod) + "@" + day(today)
	if q.DateRange != nil {
		window = day(q.DateRange.Start) + "~" + day(q.DateRange.End)
	}
	analysis := "default"
	if a := q.Analysis; a != nil {
		analysis = fmt.Sprintf("%s/%t/%t/%t", a.AggregationPeriod,
			a.IncludeStatisticalContext, a.IncludeVolatilityIndicators, a.IncludeRollingAverages)
	}
	return normalizeKey(cacheKeyTrends, kind, id, category, window, analysis)
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, service.ErrSubjectNotFound), errors.Is(err, service.ErrJobNotFound):
		s.logger.Info("not found", zap.String("op", op), zap.Error(err))
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrInvalidQuery),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, analytics.ErrInvalidEvent):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrRecalculationBusy):
		s.logger.Info("recalculation busy", zap.String("op", op))
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) trendsResponse(
	ctx context.Context,
	op, kind, id string,
	q service.SubjectQuery,
	fetch func(context.Context) ([]analytics.TrendRecord, error),
) (*pb.TrendsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	key := queryKey(kind, id, q, s.now())
	records, err := FindAndCache(ctx, s.cache, &s.sfGroup, key, s.cacheTTL, s.logger, fetch)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return &pb.TrendsResponse{Records: toProtoRecords(records)}, nil
}

func (s *GRPCHandlers) GetTrends(ctx context.Context, req *pb.TrendQuery) (*pb.TrendsResponse, error) {
	q, err := parseSubjectQuery(req)
	if err != nil {
		return nil, err
	}
	kind, id := string(analytics.SubjectEmployee), q.EmployeeID
	if q.TeamID != "" {
		kind, id = string(analytics.SubjectTeam), q.TeamID
	}
	return s.trendsResponse(ctx, "GetTrends", kind, id, q, func(fetchCtx context.Context) ([]analytics.TrendRecord, error) {
		return s.svc.GetTrendsForQuery(fetchCtx, q)
	})
}

func (s *GRPCHandlers) GetEmployeeTrends(ctx context.Context, req *pb.TrendQuery) (*pb.TrendsResponse, error) {
	q, err := parseSubjectQuery(req)
	if err != nil {
		return nil, err
	}
	id := req.SubjectId
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "subject id is required")
	}
	return s.trendsResponse(ctx, "GetEmployeeTrends", string(analytics.SubjectEmployee), id, q, func(fetchCtx context.Context) ([]analytics.TrendRecord, error) {
		return s.svc.GetEmployeeTrends(fetchCtx, id, q)
	})
}

func (s *GRPCHandlers) GetTeamTrends(ctx context.Context, req *pb.TrendQuery) (*pb.TrendsResponse, error) {
	q, err := parseSubjectQuery(req)
	if err != nil {
		return nil, err
	}
	id := req.SubjectId
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "subject id is required")
	}
	return s.trendsResponse(ctx, "GetTeamTrends", string(analytics.SubjectTeam), id, q, func(fetchCtx context.Context) ([]analytics.TrendRecord, error) {
		return s.svc.GetTeamTrends(fetchCtx, id, q)
	})
}

func (s *GRPCHandlers) GetTeamAverages(ctx context.Context, req *pb.TeamAveragesRequest) (*pb.TeamAveragesResponse, error) {
	if req.GetTeamId() == "" {
		return nil, status.Error(codes.InvalidArgument, "team id is required")
	}
	date := optionalTime(req.Date)
	if date.IsZero() {
		date = s.now()
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	key := normalizeKey(cacheKeyTeamAverages, req.TeamId, day(date), fmt.Sprint(req.IncludeStatisticalContext))
	averages, err := FindAndCache(ctx, s.cache, &s.sfGroup, key, s.cacheTTL, s.logger, func(fetchCtx context.Context) ([]service.CategoryAverage, error) {
		return s.svc.GetTeamAverages(fetchCtx, req.TeamId, date, req.IncludeStatisticalContext)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetTeamAverages", err)
	}
	return &pb.TeamAveragesResponse{Averages: toProtoAverages(averages)}, nil
}

func (s *GRPCHandlers) GetTeamStats(ctx context.Context, req *pb.TeamStatsRequest) (*pb.TeamStatsResponse, error) {
	if req.GetTeamId() == "" {
		return nil, status.Error(codes.InvalidArgument, "team id is required")
	}
	q := service.TeamStatsQuery{TeamID: req.TeamId, IncludeStats: req.IncludeStatisticalContext}

	var err error
	if q.TimePeriod, err = analytics.ParseTimePeriod(req.TimePeriod); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.AggregationPeriod != "" {
		if q.AggregationPeriod, err = analytics.ParseAggregationPeriod(req.AggregationPeriod); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}
	if q.DateRange, err = parseDateRange(req.DateRange); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	window := string(q.TimePeriod) + "@" + day(s.now())
	if q.DateRange != nil {
		window = day(q.DateRange.Start) + "~" + day(q.DateRange.End)
	}
	key := normalizeKey(cacheKeyTeamStats, q.TeamID, window, string(q.AggregationPeriod), fmt.Sprint(q.IncludeStats))
	stats, err := FindAndCache(ctx, s.cache, &s.sfGroup, key, s.cacheTTL, s.logger, func(fetchCtx context.Context) ([]service.TeamStats, error) {
		return s.svc.GetTeamStats(fetchCtx, q)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetTeamStats", err)
	}
	return &pb.TeamStatsResponse{Stats: toProtoTeamStats(stats)}, nil
}

func (s *GRPCHandlers) GetMostImprovedCategory(ctx context.Context, req *pb.MostImprovedCategoryRequest) (*pb.MostImprovedCategoryResponse, error) {
	if req.GetEmployeeId() == "" {
		return nil, status.Error(codes.InvalidArgument, "employee id is required")
	}
	tp, err := analytics.ParseTimePeriod(req.TimePeriod)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	key := normalizeKey(cacheKeyMostImproved, req.EmployeeId, string(tp), day(s.now()))
	best, err := FindAndCache(ctx, s.cache, &s.sfGroup, key, s.cacheTTL, s.logger, func(fetchCtx context.Context) (*service.CategoryImprovement, error) {
		return s.svc.GetMostImprovedCategory(fetchCtx, req.EmployeeId, tp)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetMostImprovedCategory", err)
	}
	if best == nil {
		return &pb.MostImprovedCategoryResponse{}, nil
	}
	return &pb.MostImprovedCategoryResponse{
		Found:            true,
		Category:         string(best.Category),
		CategoryMetadata: CategoryMetadataFor(best.Category),
		Improvement:      best.Improvement,
		FirstAverage:     best.FirstAverage,
		LastAverage:      best.LastAverage,
	}, nil
}

func (s *GRPCHandlers) GetSignificantChanges(ctx context.Context, req *pb.SignificantChangesRequest) (*pb.SignificantChangesResponse, error) {
	if req.GetSubjectId() == "" {
		return nil, status.Error(codes.InvalidArgument, "subject id is required")
	}
	kind := analytics.SubjectKind(req.SubjectKind)
	if !kind.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown subject kind %q", req.SubjectKind)
	}
	asOf := optionalTime(req.AsOf)
	if asOf.IsZero() {
		asOf = s.now()
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	key := normalizeKey(cacheKeySignificantChanges, string(kind), req.SubjectId, day(asOf))
	changes, err := FindAndCache(ctx, s.cache, &s.sfGroup, key, s.cacheTTL, s.logger, func(fetchCtx context.Context) ([]analytics.SignificantChange, error) {
		return s.svc.GetSignificantChanges(fetchCtx, kind, req.SubjectId, asOf)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetSignificantChanges", err)
	}
	if req.NotableOnly {
		changes = analytics.Notable(changes)
	}
	return &pb.SignificantChangesResponse{Changes: toProtoChanges(changes)}, nil
}

func (s *GRPCHandlers) ListCategories(context.Context, *pb.ListCategoriesRequest) (*pb.ListCategoriesResponse, error) {
	categories := analytics.Categories()
	out := make([]*pb.CategoryMetadata, len(categories))
	for i, c := range categories {
		out[i] = CategoryMetadataFor(c)
	}
	return &pb.ListCategoriesResponse{Categories: out}, nil
}

// RecalculateTrends runs a recalculation synchronously. PARTIAL and FAILED
// outcomes are reported in the result body; only a busy lock and request
// cancellation surface as gRPC errors.
func (s *GRPCHandlers) RecalculateTrends(ctx context.Context, req *pb.RecalculateRequest) (*pb.CalculationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, recalculateTimeout)
	defer cancel()

	result := s.svc.Recalculate(ctx, req.GetTeamId())
	if err := result.Err(); errors.Is(err, service.ErrRecalculationBusy) || ctx.Err() != nil {
		return nil, s.handleError(ctx, "RecalculateTrends", err)
	}
	return toProtoResult(result), nil
}

func (s *GRPCHandlers) SubmitRecalculation(ctx context.Context, req *pb.RecalculateRequest) (*pb.SubmitRecalculationResponse, error) {
	id, err := s.svc.Submit(ctx, req.GetTeamId())
	if err != nil {
		return nil, s.handleError(ctx, "SubmitRecalculation", err)
	}
	return &pb.SubmitRecalculationResponse{JobId: id}, nil
}

func (s *GRPCHandlers) GetRecalculationJob(ctx context.Context, req *pb.GetRecalculationJobRequest) (*pb.RecalculationJob, error) {
	if req.GetJobId() == "" {
		return nil, status.Error(codes.InvalidArgument, "job id is required")
	}
	job, err := s.svc.GetJob(ctx, req.JobId)
	if err != nil {
		return nil, s.handleError(ctx, "GetRecalculationJob", err)
	}
	return toProtoJob(job), nil
}

// CacheInvalidator returns a hook that drops cached read results once a
// recalculation has written records.
func CacheInvalidator(c Cacher, logger *zap.Logger) service.FinishHook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, result service.CalculationResult) {
		if c == nil || result.CalculatedRecords == 0 {
			return
		}
		n, err := c.DeletePrefix(ctx, CachePrefix)
		if err != nil {
			logger.Warn("cache invalidation failed", zap.String("job_id", result.JobID), zap.Error(err))
			return
		}
		logger.Debug("cache invalidated", zap.String("job_id", result.JobID), zap.Int64("keys", n))
	}
}
