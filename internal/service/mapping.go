package service

import (
	"github.com/godilite/camps-trends/internal/analytics"
	"github.com/godilite/camps-trends/internal/repository/models"
)

func toModel(r analytics.TrendRecord) models.TrendRecord {
	m := models.TrendRecord{
		ID:                       r.ID,
		SubjectKind:              string(r.SubjectKind),
		SubjectID:                r.SubjectID,
		TeamID:                   r.TeamID,
		Category:                 string(r.Category),
		AggregationPeriod:        string(r.Period),
		PeriodStart:              r.PeriodStart.UTC(),
		PeriodEnd:                r.PeriodEnd.UTC(),
		AverageRating:            r.AverageRating,
		SampleSize:               r.SampleSize,
		EmployeeCount:            r.EmployeeCount,
		TeamSize:                 r.TeamSize,
		ParticipationRate:        r.ParticipationRate,
		WeekOverWeekChange:       r.Changes.Week,
		MonthOverMonthChange:     r.Changes.Month,
		QuarterOverQuarterChange: r.Changes.Quarter,
		YearOverYearChange:       r.Changes.Year,
		CalculatedAt:             r.CalculatedAt.UTC(),
	}
	if s := r.Stats; s != nil {
		m.Mean = s.Mean
		m.StandardDeviation = s.StandardDeviation
		m.Variance = s.Variance
		m.ConfidenceInterval = s.ConfidenceInterval
		m.IsStatisticallySignificant = s.IsStatisticallySignificant
		m.SignificanceLevel = s.SignificanceLevel
	}
	if ra := r.RollingAverages; ra != nil {
		m.RollingFourWeek = ra.FourWeek
		m.RollingTwelveWeek = ra.TwelveWeek
		m.RollingSixMonth = ra.SixMonth
	}
	if v := r.VolatilityIndicators; v != nil {
		score := v.VolatilityScore
		stability := string(v.StabilityRating)
		direction := string(v.TrendDirection)
		seasonal := v.SeasonalityDetected
		m.VolatilityScore = &score
		m.StabilityRating = &stability
		m.TrendDirection = &direction
		m.SeasonalityDetected = &seasonal
	}
	return m
}

// fromModel restores a record, keeping only the sections analysis asks for.
func fromModel(m models.TrendRecord, analysis TrendAnalysisInput) analytics.TrendRecord {
	r := analytics.TrendRecord{
		ID:                m.ID,
		SubjectID:         m.SubjectID,
		SubjectKind:       analytics.SubjectKind(m.SubjectKind),
		TeamID:            m.TeamID,
		Category:          analytics.CampsCategory(m.Category),
		Period:            analytics.AggregationPeriod(m.AggregationPeriod),
		PeriodStart:       m.PeriodStart.UTC(),
		PeriodEnd:         m.PeriodEnd.UTC(),
		AverageRating:     m.AverageRating,
		SampleSize:        m.SampleSize,
		EmployeeCount:     m.EmployeeCount,
		TeamSize:          m.TeamSize,
		ParticipationRate: m.ParticipationRate,
		Changes: analytics.ChangeSet{
			Week:    m.WeekOverWeekChange,
			Month:   m.MonthOverMonthChange,
			Quarter: m.QuarterOverQuarterChange,
			Year:    m.YearOverYearChange,
		},
		CalculatedAt: m.CalculatedAt.UTC(),
	}
	if analysis.IncludeStatisticalContext {
		r.Stats = statsOf(m)
	}
	if analysis.IncludeRollingAverages {
		r.RollingAverages = &analytics.RollingAverages{
			FourWeek:   m.RollingFourWeek,
			TwelveWeek: m.RollingTwelveWeek,
			SixMonth:   m.RollingSixMonth,
		}
	}
	if analysis.IncludeVolatilityIndicators && m.VolatilityScore != nil {
		v := &analytics.VolatilityIndicators{VolatilityScore: *m.VolatilityScore}
		if m.StabilityRating != nil {
			v.StabilityRating = analytics.StabilityRating(*m.StabilityRating)
		}
		if m.TrendDirection != nil {
			v.TrendDirection = analytics.TrendDirection(*m.TrendDirection)
		}
		if m.SeasonalityDetected != nil {
			v.SeasonalityDetected = *m.SeasonalityDetected
		}
		r.VolatilityIndicators = v
	}
	return r
}

func statsOf(m models.TrendRecord) *analytics.StatisticalContext {
	return &analytics.StatisticalContext{
		SampleSize:                 m.SampleSize,
		Mean:                       m.Mean,
		StandardDeviation:          m.StandardDeviation,
		Variance:                   m.Variance,
		ConfidenceInterval:         m.ConfidenceInterval,
		IsStatisticallySignificant: m.IsStatisticallySignificant,
		SignificanceLevel:          m.SignificanceLevel,
	}
}

func jobToModel(j Job) models.RecalculationJob {
	return models.RecalculationJob{
		ID:                j.ID,
		TeamID:            j.TeamID,
		Status:            string(j.Status),
		Message:           j.Message,
		CalculatedRecords: j.CalculatedRecords,
		Errors:            j.Errors,
		CreatedAt:         j.CreatedAt,
		StartedAt:         j.StartedAt,
		FinishedAt:        j.FinishedAt,
	}
}

func jobFromModel(m models.RecalculationJob) Job {
	return Job{
		ID:                m.ID,
		TeamID:            m.TeamID,
		Status:            JobStatus(m.Status),
		Message:           m.Message,
		CalculatedRecords: m.CalculatedRecords,
		Errors:            m.Errors,
		CreatedAt:         m.CreatedAt,
		StartedAt:         m.StartedAt,
		FinishedAt:        m.FinishedAt,
	}
}
