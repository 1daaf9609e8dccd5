package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/godilite/camps-trends/internal/analytics"
)

// TrendAnalysisInput selects the bucket width and which derived sections
// a trend query returns.
type TrendAnalysisInput struct {
	AggregationPeriod           analytics.AggregationPeriod
	IncludeStatisticalContext   bool
	IncludeVolatilityIndicators bool
	IncludeRollingAverages      bool
}

// DefaultAnalysis is used when a query carries no analysis input.
func DefaultAnalysis() TrendAnalysisInput {
	return TrendAnalysisInput{
		AggregationPeriod:           analytics.Weekly,
		IncludeStatisticalContext:   true,
		IncludeVolatilityIndicators: true,
		IncludeRollingAverages:      true,
	}
}

type DateRange struct {
	Start time.Time
	End   time.Time
}

// TrendQuery reads materialized trends for one subject.
type TrendQuery struct {
	SubjectKind analytics.SubjectKind
	SubjectID   string
	Category    *analytics.CampsCategory
	TimePeriod  analytics.TimePeriod
	DateRange   *DateRange
	Analysis    *TrendAnalysisInput
}

// SubjectQuery names the subject by exactly one of EmployeeID or TeamID.
type SubjectQuery struct {
	EmployeeID string
	TeamID     string
	Category   *analytics.CampsCategory
	TimePeriod analytics.TimePeriod
	DateRange  *DateRange
	Analysis   *TrendAnalysisInput
}

type CategoryAverage struct {
	Category              analytics.CampsCategory
	AverageRating         *float64
	PreviousAverageRating *float64
	Change                *float64
	WeekOverWeekChange    *float64
	SampleSize            int
	Stats                 *analytics.StatisticalContext
	RollingAverages       *analytics.RollingAverages
	VolatilityIndicators  *analytics.VolatilityIndicators
}

type TeamStatsQuery struct {
	TeamID            string
	DateRange         *DateRange
	TimePeriod        analytics.TimePeriod
	AggregationPeriod analytics.AggregationPeriod
	IncludeStats      bool
}

type TeamStats struct {
	RecordDate           time.Time
	AggregationPeriod    analytics.AggregationPeriod
	Category             analytics.CampsCategory
	AverageRating        float64
	EmployeeCount        int
	TeamSize             int
	ParticipationRate    *float64
	Stats                *analytics.StatisticalContext
	WeekOverWeekChange   *float64
	MonthOverMonthChange *float64
}

type CategoryImprovement struct {
	Category     analytics.CampsCategory
	Improvement  float64
	FirstAverage float64
	LastAverage  float64
}

type JobStatus string

const (
	StatusPending   JobStatus = "PENDING"
	StatusRunning   JobStatus = "RUNNING"
	StatusSucceeded JobStatus = "SUCCEEDED"
	StatusPartial   JobStatus = "PARTIAL"
	StatusFailed    JobStatus = "FAILED"
)

func (s JobStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusPartial || s == StatusFailed
}

// UnitError reports one failed unit of a recalculation.
type UnitError struct {
	Unit     string
	TeamID   string
	Category string
	Message  string
	Err      error `json:"-"`
}

func (e UnitError) String() string {
	return fmt.Sprintf("%s: %s", e.Unit, e.Message)
}

type CalculationResult struct {
	JobID             string
	Status            JobStatus
	Success           bool
	Message           string
	CalculatedRecords int
	Errors            []UnitError

	cause error
}

// Err returns nil for SUCCEEDED runs. A run that failed before any unit was
// attempted wraps its cause, such as ErrRecalculationBusy.
func (r CalculationResult) Err() error {
	switch r.Status {
	case StatusSucceeded:
		return nil
	case StatusPartial:
		return fmt.Errorf("%w: %s", analytics.ErrRecalculationPartial, r.summary())
	default:
		if r.cause != nil {
			return fmt.Errorf("recalculation failed: %w", r.cause)
		}
		return fmt.Errorf("recalculation failed: %s", r.summary())
	}
}

func (r CalculationResult) summary() string {
	if len(r.Errors) == 0 {
		return r.Message
	}
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = e.String()
	}
	return strings.Join(parts, "; ")
}

// Job is the recorded lifecycle of one recalculation run.
type Job struct {
	ID                string
	TeamID            string
	Status            JobStatus
	Message           string
	CalculatedRecords int
	Errors            []string
	CreatedAt         time.Time
	StartedAt         *time.Time
	FinishedAt        *time.Time
}
