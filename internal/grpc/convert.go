package grpc

import (
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	pb "github.com/godilite/camps-trends/api/v1"
	"github.com/godilite/camps-trends/internal/analytics"
	"github.com/godilite/camps-trends/internal/service"
)

func parseSubjectQuery(req *pb.TrendQuery) (service.SubjectQuery, error) {
	var q service.SubjectQuery
	if req == nil {
		return q, status.Error(codes.InvalidArgument, "request is required")
	}
	q.EmployeeID = req.EmployeeId
	q.TeamID = req.TeamId

	if req.Category != "" {
		c, err := analytics.ParseCategory(req.Category)
		if err != nil {
			return q, status.Error(codes.InvalidArgument, err.Error())
		}
		q.Category = &c
	}

	tp, err := analytics.ParseTimePeriod(req.TimePeriod)
	if err != nil {
		return q, status.Error(codes.InvalidArgument, err.Error())
	}
	q.TimePeriod = tp

	if q.DateRange, err = parseDateRange(req.DateRange); err != nil {
		return q, err
	}

	if a := req.Analysis; a != nil {
		in := service.TrendAnalysisInput{
			AggregationPeriod:           analytics.Weekly,
			IncludeStatisticalContext:   a.IncludeStatisticalContext,
			IncludeVolatilityIndicators: a.IncludeVolatilityIndicators,
			IncludeRollingAverages:      a.IncludeRollingAverages,
		}
		if a.AggregationPeriod != "" {
			p, err := analytics.ParseAggregationPeriod(a.AggregationPeriod)
			if err != nil {
				return q, status.Error(codes.InvalidArgument, err.Error())
			}
			in.AggregationPeriod = p
		}
		q.Analysis = &in
	}
	return q, nil
}

func parseDateRange(dr *pb.DateRange) (*service.DateRange, error) {
	if dr == nil {
		return nil, nil
	}
	if dr.GetStart() == nil || dr.GetEnd() == nil {
		return nil, status.Error(codes.InvalidArgument, "date range needs both start and end")
	}
	if err := dr.Start.CheckValid(); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid start date: %v", err)
	}
	if err := dr.End.CheckValid(); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid end date: %v", err)
	}
	return &service.DateRange{Start: dr.Start.AsTime(), End: dr.End.AsTime()}, nil
}

func optionalTime(ts *timestamppb.Timestamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.AsTime()
}

func optionalTimestamp(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamppb.New(*t)
}

func toProtoStats(sc *analytics.StatisticalContext) *pb.StatisticalContext {
	if sc == nil {
		return nil
	}
	return &pb.StatisticalContext{
		SampleSize:                 int32(sc.SampleSize),
		Mean:                       sc.Mean,
		StandardDeviation:          sc.StandardDeviation,
		Variance:                   sc.Variance,
		ConfidenceInterval:         sc.ConfidenceInterval,
		IsStatisticallySignificant: sc.IsStatisticallySignificant,
		SignificanceLevel:          sc.SignificanceLevel,
	}
}

func toProtoRolling(ra *analytics.RollingAverages) *pb.RollingAverages {
	if ra == nil {
		return nil
	}
	return &pb.RollingAverages{FourWeek: ra.FourWeek, TwelveWeek: ra.TwelveWeek, SixMonth: ra.SixMonth}
}

func toProtoVolatility(v *analytics.VolatilityIndicators) *pb.VolatilityIndicators {
	if v == nil {
		return nil
	}
	return &pb.VolatilityIndicators{
		VolatilityScore:     v.VolatilityScore,
		StabilityRating:     string(v.StabilityRating),
		TrendDirection:      string(v.TrendDirection),
		SeasonalityDetected: v.SeasonalityDetected,
	}
}

func toProtoRecords(records []analytics.TrendRecord) []*pb.TrendRecord {
	out := make([]*pb.TrendRecord, len(records))
	for i, r := range records {
		out[i] = &pb.TrendRecord{
			Id:                       r.ID,
			SubjectId:                r.SubjectID,
			SubjectKind:              string(r.SubjectKind),
			TeamId:                   r.TeamID,
			Category:                 string(r.Category),
			CategoryMetadata:         CategoryMetadataFor(r.Category),
			AggregationPeriod:        string(r.Period),
			PeriodStart:              timestamppb.New(r.PeriodStart),
			PeriodEnd:                timestamppb.New(r.PeriodEnd),
			AverageRating:            r.AverageRating,
			SampleSize:               int32(r.SampleSize),
			EmployeeCount:            int32(r.EmployeeCount),
			TeamSize:                 int32(r.TeamSize),
			ParticipationRate:        r.ParticipationRate,
			StatisticalContext:       toProtoStats(r.Stats),
			WeekOverWeekChange:       r.Changes.Week,
			MonthOverMonthChange:     r.Changes.Month,
			QuarterOverQuarterChange: r.Changes.Quarter,
			YearOverYearChange:       r.Changes.Year,
			RollingAverages:          toProtoRolling(r.RollingAverages),
			VolatilityIndicators:     toProtoVolatility(r.VolatilityIndicators),
			CalculatedAt:             timestamppb.New(r.CalculatedAt),
		}
	}
	return out
}

func toProtoAverages(averages []service.CategoryAverage) []*pb.CategoryAverage {
	out := make([]*pb.CategoryAverage, len(averages))
	for i, a := range averages {
		out[i] = &pb.CategoryAverage{
			Category:              string(a.Category),
			CategoryMetadata:      CategoryMetadataFor(a.Category),
			AverageRating:         a.AverageRating,
			PreviousAverageRating: a.PreviousAverageRating,
			Change:                a.Change,
			WeekOverWeekChange:    a.WeekOverWeekChange,
			SampleSize:            int32(a.SampleSize),
			StatisticalContext:    toProtoStats(a.Stats),
			RollingAverages:       toProtoRolling(a.RollingAverages),
			VolatilityIndicators:  toProtoVolatility(a.VolatilityIndicators),
		}
	}
	return out
}

func toProtoTeamStats(stats []service.TeamStats) []*pb.TeamStats {
	out := make([]*pb.TeamStats, len(stats))
	for i, s := range stats {
		out[i] = &pb.TeamStats{
			RecordDate:           timestamppb.New(s.RecordDate),
			AggregationPeriod:    string(s.AggregationPeriod),
			Category:             string(s.Category),
			AverageRating:        s.AverageRating,
			EmployeeCount:        int32(s.EmployeeCount),
			TeamSize:             int32(s.TeamSize),
			ParticipationRate:    s.ParticipationRate,
			StatisticalContext:   toProtoStats(s.Stats),
			WeekOverWeekChange:   s.WeekOverWeekChange,
			MonthOverMonthChange: s.MonthOverMonthChange,
		}
	}
	return out
}

func toProtoChanges(changes []analytics.SignificantChange) []*pb.SignificantChange {
	out := make([]*pb.SignificantChange, len(changes))
	for i, c := range changes {
		out[i] = &pb.SignificantChange{
			Category:                   string(c.Category),
			ChangeType:                 string(c.ChangeType),
			ChangeMagnitude:            c.ChangeMagnitude,
			PreviousValue:              c.PreviousValue,
			CurrentValue:               c.CurrentValue,
			IsStatisticallySignificant: c.IsStatisticallySignificant,
			ConfidenceLevel:            c.ConfidenceLevel,
		}
	}
	return out
}

func toProtoResult(r service.CalculationResult) *pb.CalculationResult {
	out := &pb.CalculationResult{
		JobId:             r.JobID,
		Status:            string(r.Status),
		Success:           r.Success,
		Message:           r.Message,
		CalculatedRecords: int32(r.CalculatedRecords),
	}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, &pb.UnitError{
			Unit:     e.Unit,
			TeamId:   e.TeamID,
			Category: e.Category,
			Message:  e.Message,
		})
	}
	return out
}

func toProtoJob(j service.Job) *pb.RecalculationJob {
	return &pb.RecalculationJob{
		Id:                j.ID,
		TeamId:            j.TeamID,
		Status:            string(j.Status),
		Message:           j.Message,
		CalculatedRecords: int32(j.CalculatedRecords),
		Errors:            j.Errors,
		CreatedAt:         timestamppb.New(j.CreatedAt),
		StartedAt:         optionalTimestamp(j.StartedAt),
		FinishedAt:        optionalTimestamp(j.FinishedAt),
	}
}
