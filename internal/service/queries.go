package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/camps-trends/internal/analytics"
	"github.com/godilite/camps-trends/internal/repository/models"
)

const maxRangeSpan = 2 * 366 * 24 * time.Hour

// GetTrends returns materialized records for one subject, ordered by
// category then period start. It never recomputes.
func (s *TrendService) GetTrends(ctx context.Context, q TrendQuery) ([]analytics.TrendRecord, error) {
	if !q.SubjectKind.Valid() {
		return nil, fmt.Errorf("%w: unknown subject kind %q", ErrInvalidQuery, q.SubjectKind)
	}
	if q.SubjectID == "" {
		return nil, fmt.Errorf("%w: subject id is required", ErrInvalidQuery)
	}
	if q.Category != nil && !q.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidQuery, *q.Category)
	}
	analysis := resolveAnalysis(q.Analysis)
	if !analysis.AggregationPeriod.Valid() {
		return nil, fmt.Errorf("%w: unknown aggregation period %q", ErrInvalidQuery, analysis.AggregationPeriod)
	}
	start, end, err := s.resolveRange(q.TimePeriod, q.DateRange)
	if err != nil {
		return nil, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := s.requireSubject(dbCtx, q.SubjectKind, q.SubjectID); err != nil {
		return nil, err
	}

	filter := models.TrendFilter{
		SubjectKind:       string(q.SubjectKind),
		SubjectID:         q.SubjectID,
		AggregationPeriod: string(analysis.AggregationPeriod),
		From:              analytics.PeriodStart(start, analysis.AggregationPeriod),
		To:                end,
	}
	if q.Category != nil {
		filter.Category = string(*q.Category)
	}
	rows, err := s.store.FindTrends(dbCtx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	out := make([]analytics.TrendRecord, len(rows))
	for i, row := range rows {
		out[i] = fromModel(row, analysis)
	}

	s.logger.Debug("fetched trends",
		zap.String("subject_kind", string(q.SubjectKind)),
		zap.String("subject_id", q.SubjectID),
		zap.String("period", string(analysis.AggregationPeriod)),
		zap.Int("records", len(out)))

	return out, nil
}

func (s *TrendService) GetEmployeeTrends(ctx context.Context, employeeID string, q SubjectQuery) ([]analytics.TrendRecord, error) {
	return s.GetTrends(ctx, TrendQuery{
		SubjectKind: analytics.SubjectEmployee,
		SubjectID:   employeeID,
		Category:    q.Category,
		TimePeriod:  q.TimePeriod,
		DateRange:   q.DateRange,
		Analysis:    q.Analysis,
	})
}

func (s *TrendService) GetTeamTrends(ctx context.Context, teamID string, q SubjectQuery) ([]analytics.TrendRecord, error) {
	return s.GetTrends(ctx, TrendQuery{
		SubjectKind: analytics.SubjectTeam,
		SubjectID:   teamID,
		Category:    q.Category,
		TimePeriod:  q.TimePeriod,
		DateRange:   q.DateRange,
		Analysis:    q.Analysis,
	})
}

// GetTrendsForQuery dispatches on whichever of EmployeeID or TeamID is set.
func (s *TrendService) GetTrendsForQuery(ctx context.Context, q SubjectQuery) ([]analytics.TrendRecord, error) {
	switch {
	case q.EmployeeID != "" && q.TeamID != "":
		return nil, fmt.Errorf("%w: specify either employeeId or teamId, not both", ErrInvalidQuery)
	case q.EmployeeID != "":
		return s.GetEmployeeTrends(ctx, q.EmployeeID, q)
	case q.TeamID != "":
		return s.GetTeamTrends(ctx, q.TeamID, q)
	default:
		return nil, fmt.Errorf("%w: either employeeId or teamId is required", ErrInvalidQuery)
	}
}

// GetTeamAverages returns one entry per category from the weekly team record
// covering date (or the latest before it) and the record one week earlier.
func (s *TrendService) GetTeamAverages(ctx context.Context, teamID string, date time.Time, includeStats bool) ([]CategoryAverage, error) {
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidQuery)
	}
	if date.IsZero() {
		date = s.now()
	}
	date = date.UTC()

	dbCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := s.requireSubject(dbCtx, analytics.SubjectTeam, teamID); err != nil {
		return nil, err
	}
	latest, err := s.latestWeekly(dbCtx, analytics.SubjectTeam, teamID, date)
	if err != nil {
		return nil, err
	}

	out := make([]CategoryAverage, 0, len(analytics.Categories()))
	for _, category := range analytics.Categories() {
		ca := CategoryAverage{Category: category}
		pair, ok := latest[category]
		if ok {
			cur := pair.current
			avg := cur.AverageRating
			ca.AverageRating = &avg
			ca.SampleSize = cur.SampleSize
			ca.WeekOverWeekChange = cur.WeekOverWeekChange
			if pair.previous != nil {
				prev := pair.previous.AverageRating
				change := analytics.Round1(avg - prev)
				ca.PreviousAverageRating = &prev
				ca.Change = &change
			}
			rec := fromModel(cur, TrendAnalysisInput{
				IncludeStatisticalContext:   includeStats,
				IncludeRollingAverages:      true,
				IncludeVolatilityIndicators: true,
			})
			ca.Stats = rec.Stats
			ca.RollingAverages = rec.RollingAverages
			ca.VolatilityIndicators = rec.VolatilityIndicators
		}
		out = append(out, ca)
	}
	return out, nil
}

// GetTeamStats lists team records over a range. Without an explicit
// aggregation period the width is chosen from the span.
func (s *TrendService) GetTeamStats(ctx context.Context, q TeamStatsQuery) ([]TeamStats, error) {
	if q.TeamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidQuery)
	}
	start, end, err := s.resolveRange(q.TimePeriod, q.DateRange)
	if err != nil {
		return nil, err
	}
	period := q.AggregationPeriod
	if period == "" {
		period = analytics.DetermineAggregation(start, end)
	}
	if !period.Valid() {
		return nil, fmt.Errorf("%w: unknown aggregation period %q", ErrInvalidQuery, period)
	}

	dbCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := s.requireSubject(dbCtx, analytics.SubjectTeam, q.TeamID); err != nil {
		return nil, err
	}
	rows, err := s.store.FindTrends(dbCtx, models.TrendFilter{
		SubjectKind:       string(analytics.SubjectTeam),
		SubjectID:         q.TeamID,
		AggregationPeriod: string(period),
		From:              analytics.PeriodStart(start, period),
		To:                end,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	out := make([]TeamStats, 0, len(rows))
	for _, r := range rows {
		ts := TeamStats{
			RecordDate:           r.PeriodStart.UTC(),
			AggregationPeriod:    period,
			Category:             analytics.CampsCategory(r.Category),
			AverageRating:        r.AverageRating,
			EmployeeCount:        r.EmployeeCount,
			TeamSize:             r.TeamSize,
			ParticipationRate:    r.ParticipationRate,
			WeekOverWeekChange:   r.WeekOverWeekChange,
			MonthOverMonthChange: r.MonthOverMonthChange,
		}
		if q.IncludeStats {
			ts.Stats = statsOf(r)
		}
		out = append(out, ts)
	}
	return out, nil
}

// GetMostImprovedCategory returns the category whose weekly average rose the
// most between the first and last bucket of the window. It returns nil when
// no category has at least two buckets or none of them rose.
func (s *TrendService) GetMostImprovedCategory(ctx context.Context, employeeID string, tp analytics.TimePeriod) (*CategoryImprovement, error) {
	records, err := s.GetEmployeeTrends(ctx, employeeID, SubjectQuery{
		TimePeriod: tp,
		Analysis:   &TrendAnalysisInput{AggregationPeriod: analytics.Weekly},
	})
	if err != nil {
		return nil, err
	}

	series := make(map[analytics.CampsCategory][]analytics.TrendRecord)
	for _, r := range records {
		series[r.Category] = append(series[r.Category], r)
	}

	var best *CategoryImprovement
	for _, category := range analytics.Categories() {
		rs := series[category]
		if len(rs) < 2 {
			continue
		}
		first, last := rs[0].AverageRating, rs[len(rs)-1].AverageRating
		improvement := analytics.Round1(last - first)
		if best == nil || improvement > best.Improvement {
			best = &CategoryImprovement{
				Category:     category,
				Improvement:  improvement,
				FirstAverage: first,
				LastAverage:  last,
			}
		}
	}
	if best == nil || best.Improvement <= 0 {
		return nil, nil
	}
	return best, nil
}

// GetSignificantChanges compares the latest weekly bucket at or before asOf
// with the bucket one week earlier, per category.
func (s *TrendService) GetSignificantChanges(ctx context.Context, kind analytics.SubjectKind, subjectID string, asOf time.Time) ([]analytics.SignificantChange, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown subject kind %q", ErrInvalidQuery, kind)
	}
	if subjectID == "" {
		return nil, fmt.Errorf("%w: subject id is required", ErrInvalidQuery)
	}
	if asOf.IsZero() {
		asOf = s.now()
	}

	dbCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := s.requireSubject(dbCtx, kind, subjectID); err != nil {
		return nil, err
	}
	latest, err := s.latestWeekly(dbCtx, kind, subjectID, asOf.UTC())
	if err != nil {
		return nil, err
	}

	inputs := make([]analytics.ChangeInput, 0, len(latest))
	for _, category := range analytics.Categories() {
		pair, ok := latest[category]
		if !ok || pair.previous == nil {
			continue
		}
		inputs = append(inputs, analytics.ChangeInput{
			Category:      category,
			Current:       pair.current.AverageRating,
			CurrentStats:  statsOf(pair.current),
			Previous:      pair.previous.AverageRating,
			PreviousStats: statsOf(*pair.previous),
		})
	}
	return analytics.DetectSignificantChanges(inputs, s.thresholds), nil
}

type weeklyPair struct {
	current  models.TrendRecord
	previous *models.TrendRecord
}

// latestWeekly finds, per category, the newest weekly record starting at or
// before asOf within the past year, and the record one week before it.
func (s *TrendService) latestWeekly(ctx context.Context, kind analytics.SubjectKind, subjectID string, asOf time.Time) (map[analytics.CampsCategory]weeklyPair, error) {
	rows, err := s.store.FindTrends(ctx, models.TrendFilter{
		SubjectKind:       string(kind),
		SubjectID:         subjectID,
		AggregationPeriod: string(analytics.Weekly),
		From:              analytics.PeriodStart(asOf.AddDate(-1, 0, 0), analytics.Weekly),
		To:                asOf,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	byCategory := make(map[analytics.CampsCategory][]models.TrendRecord)
	for _, r := range rows {
		c := analytics.CampsCategory(r.Category)
		byCategory[c] = append(byCategory[c], r)
	}

	out := make(map[analytics.CampsCategory]weeklyPair, len(byCategory))
	for c, rs := range byCategory {
		sort.Slice(rs, func(i, j int) bool { return rs[i].PeriodStart.Before(rs[j].PeriodStart) })
		pair := weeklyPair{current: rs[len(rs)-1]}
		want := pair.current.PeriodStart.AddDate(0, 0, -7)
		if len(rs) > 1 && rs[len(rs)-2].PeriodStart.Equal(want) {
			prev := rs[len(rs)-2]
			pair.previous = &prev
		}
		out[c] = pair
	}
	return out, nil
}

func (s *TrendService) requireSubject(ctx context.Context, kind analytics.SubjectKind, id string) error {
	exists, err := s.source.SubjectExists(ctx, string(kind), id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s %s", ErrSubjectNotFound, kind, id)
	}
	return nil
}

// resolveRange prefers an explicit date range over the relative period.
func (s *TrendService) resolveRange(tp analytics.TimePeriod, dr *DateRange) (time.Time, time.Time, error) {
	now := s.now().UTC()
	if dr == nil {
		if tp == "" {
			tp = analytics.DefaultRange
		}
		if _, err := analytics.ParseTimePeriod(string(tp)); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		start, end := tp.Range(now)
		return start, end, nil
	}

	start, end := dr.Start.UTC(), dr.End.UTC()
	switch {
	case start.IsZero() || end.IsZero():
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start and end are required", ErrInvalidDateRange)
	case start.After(end):
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date must be before end date", ErrInvalidDateRange)
	case start.After(now):
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date cannot be in the future", ErrInvalidDateRange)
	case end.Sub(start) > maxRangeSpan:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: date range cannot exceed 2 years", ErrInvalidDateRange)
	}
	return start, end, nil
}

func resolveAnalysis(in *TrendAnalysisInput) TrendAnalysisInput {
	if in == nil {
		return DefaultAnalysis()
	}
	out := *in
	if out.AggregationPeriod == "" {
		out.AggregationPeriod = analytics.Weekly
	}
	return out
}
