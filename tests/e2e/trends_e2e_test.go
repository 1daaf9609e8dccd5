//go:build e2e

package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	pb "github.com/godilite/camps-trends/api/v1"
	handler "github.com/godilite/camps-trends/internal/grpc"
	"github.com/godilite/camps-trends/internal/repository"
	"github.com/godilite/camps-trends/internal/repository/repotest"
	"github.com/godilite/camps-trends/internal/service"
	grpcsrv "github.com/godilite/camps-trends/pkg/grpc/server"
	"github.com/godilite/camps-trends/tests/e2e/mocks"
)

var (
	testNow   = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	firstWeek = time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC)
)

type env struct {
	client pb.TrendServiceClient
	cache  *mocks.InMemoryCache
}

// setup seeds two teams, serves the trend service over a loopback gRPC
// server and returns a client speaking the JSON codec.
func setup(t *testing.T) env {
	t.Helper()
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	db := repotest.NewDB(t)
	repotest.AddTeam(t, db, "T1", "E1", "E2", "E4")
	repotest.AddTeam(t, db, "T2", "E3")
	for i, v := range []int{5, 6, 7, 8} {
		day := firstWeek.AddDate(0, 0, 7*i)
		repotest.AddRating(t, db, "E1", "CERTAINTY", day, v)
		repotest.AddRating(t, db, "E1", "PROGRESS", day, 9-i)
	}
	repotest.AddRating(t, db, "E2", "CERTAINTY", firstWeek.AddDate(0, 0, 21), 10)
	repotest.AddRating(t, db, "E3", "MEANING", firstWeek, 4)

	gdb, err := repository.OpenGorm(db, "sqlite3", logger)
	require.NoError(t, err)
	store := repository.NewTrendStore(gdb)
	require.NoError(t, store.EnsureSchema(ctx))

	cache := mocks.NewInMemoryCache()
	svc := service.NewTrendService(repository.NewRatingRepository(db, "sqlite3"), store, logger,
		service.WithClock(func() time.Time { return testNow }),
		service.WithFinishHook(handler.CacheInvalidator(cache, logger)))
	t.Cleanup(func() { _ = svc.Wait(context.Background()) })

	handlers := handler.NewGRPCHandlers(svc, cache, logger, 5*time.Minute)

	server, err := grpcsrv.New(
		grpcsrv.WithHost("127.0.0.1"),
		grpcsrv.WithPort(0),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithLogging(true),
	)
	require.NoError(t, err)
	server.RegisterServiceWithHealth(pb.ServiceName, func(s *grpc.Server) {
		pb.RegisterTrendServiceServer(s, handlers)
	})
	server.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	})

	conn, err := grpc.NewClient(server.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return env{client: pb.NewTrendServiceClient(conn), cache: cache}
}

func callCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestE2E_ListCategories(t *testing.T) {
	e := setup(t)

	resp, err := e.client.ListCategories(callCtx(t), &pb.ListCategoriesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Categories, 5)
	assert.Equal(t, "CERTAINTY", resp.Categories[0].Category)
	assert.Equal(t, "bg-blue-500", resp.Categories[0].Color)
}

func TestE2E_RecalculateThenQuery(t *testing.T) {
	e := setup(t)
	ctx := callCtx(t)

	result, err := e.client.RecalculateTrends(ctx, &pb.RecalculateRequest{})
	require.NoError(t, err)
	require.Equal(t, "SUCCEEDED", result.Status, result.Message)
	assert.True(t, result.Success)
	assert.Positive(t, result.CalculatedRecords)
	assert.NotEmpty(t, result.JobId)

	window := &pb.DateRange{
		Start: timestamppb.New(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
		End:   timestamppb.New(testNow),
	}

	t.Run("employee weekly trends", func(t *testing.T) {
		resp, err := e.client.GetTrends(ctx, &pb.TrendQuery{
			EmployeeId: "E1",
			Category:   "CERTAINTY",
			DateRange:  window,
			Analysis: &pb.TrendAnalysisInput{
				AggregationPeriod:      "WEEKLY",
				IncludeRollingAverages: true,
			},
		})
		require.NoError(t, err)
		require.Len(t, resp.Records, 4)

		assert.Nil(t, resp.Records[0].WeekOverWeekChange)
		for _, r := range resp.Records[1:] {
			require.NotNil(t, r.WeekOverWeekChange)
			assert.Equal(t, 1.0, *r.WeekOverWeekChange)
		}
		last := resp.Records[3]
		assert.Equal(t, 8.0, last.AverageRating)
		require.NotNil(t, last.RollingAverages)
		assert.Equal(t, 6.5, *last.RollingAverages.FourWeek)
		assert.Nil(t, last.StatisticalContext)
		assert.Equal(t, "Certainty", last.CategoryMetadata.Name)
		assert.Equal(t, time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC), last.PeriodStart.AsTime())
	})

	t.Run("team trends carry participation", func(t *testing.T) {
		resp, err := e.client.GetTeamTrends(ctx, &pb.TrendQuery{SubjectId: "T1", Category: "CERTAINTY", DateRange: window})
		require.NoError(t, err)
		require.NotEmpty(t, resp.Records)

		var weekly []*pb.TrendRecord
		for _, r := range resp.Records {
			if r.AggregationPeriod == "WEEKLY" {
				weekly = append(weekly, r)
			}
		}
		require.Len(t, weekly, 4)
		last := weekly[3]
		assert.Equal(t, 9.0, last.AverageRating)
		assert.Equal(t, int32(2), last.EmployeeCount)
		assert.Equal(t, int32(3), last.TeamSize)
		require.NotNil(t, last.ParticipationRate)
		assert.InDelta(t, 2.0/3.0, *last.ParticipationRate, 1e-9)
	})

	t.Run("team averages for the latest week", func(t *testing.T) {
		resp, err := e.client.GetTeamAverages(ctx, &pb.TeamAveragesRequest{
			TeamId:                    "T1",
			Date:                      timestamppb.New(testNow),
			IncludeStatisticalContext: true,
		})
		require.NoError(t, err)
		require.Len(t, resp.Averages, 5)
		for _, a := range resp.Averages {
			if a.Category == "CERTAINTY" {
				require.NotNil(t, a.AverageRating)
				assert.Equal(t, 9.0, *a.AverageRating)
			}
		}
	})

	t.Run("most improved category", func(t *testing.T) {
		resp, err := e.client.GetMostImprovedCategory(ctx, &pb.MostImprovedCategoryRequest{EmployeeId: "E1", TimePeriod: "LAST_90_DAYS"})
		require.NoError(t, err)
		require.True(t, resp.Found)
		assert.Equal(t, "CERTAINTY", resp.Category)
	})

	t.Run("significant changes", func(t *testing.T) {
		resp, err := e.client.GetSignificantChanges(ctx, &pb.SignificantChangesRequest{
			SubjectKind: "EMPLOYEE",
			SubjectId:   "E1",
			AsOf:        timestamppb.New(testNow),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Changes)
	})

	t.Run("reads are cached", func(t *testing.T) {
		assert.Eventually(t, func() bool { return e.cache.Len() > 0 }, 2*time.Second, 10*time.Millisecond)
	})
}

func TestE2E_Errors(t *testing.T) {
	e := setup(t)
	ctx := callCtx(t)

	_, err := e.client.GetTrends(ctx, &pb.TrendQuery{EmployeeId: "E404"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = e.client.GetTrends(ctx, &pb.TrendQuery{EmployeeId: "E1", TeamId: "T1"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = e.client.GetTrends(ctx, &pb.TrendQuery{EmployeeId: "E1", Category: "JOY"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = e.client.GetRecalculationJob(ctx, &pb.GetRecalculationJobRequest{JobId: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestE2E_SubmitRecalculation(t *testing.T) {
	e := setup(t)
	ctx := callCtx(t)

	_, err := e.client.GetTeamTrends(ctx, &pb.TrendQuery{SubjectId: "T2"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return e.cache.Len() > 0 }, 2*time.Second, 10*time.Millisecond)

	submitted, err := e.client.SubmitRecalculation(ctx, &pb.RecalculateRequest{TeamId: "T2"})
	require.NoError(t, err)
	require.NotEmpty(t, submitted.JobId)

	var job *pb.RecalculationJob
	require.Eventually(t, func() bool {
		job, err = e.client.GetRecalculationJob(ctx, &pb.GetRecalculationJobRequest{JobId: submitted.JobId})
		return err == nil && (job.Status == "SUCCEEDED" || job.Status == "PARTIAL" || job.Status == "FAILED")
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, "SUCCEEDED", job.Status)
	assert.Equal(t, "T2", job.TeamId)
	assert.Positive(t, job.CalculatedRecords)
	require.NotNil(t, job.FinishedAt)
	assert.Eventually(t, func() bool { return e.cache.Len() == 0 }, 2*time.Second, 10*time.Millisecond,
		"background runs drop cached reads")
}
