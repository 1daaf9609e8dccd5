// Package v1 defines the camps.v1.TrendService wire contract. Messages are
// carried over gRPC with the JSON codec; instants use protobuf Timestamps.
package v1

import "google.golang.org/protobuf/types/known/timestamppb"

type DateRange struct {
	Start *timestamppb.Timestamp `json:"start,omitempty"`
	End   *timestamppb.Timestamp `json:"end,omitempty"`
}

func (d *DateRange) GetStart() *timestamppb.Timestamp {
	if d == nil {
		return nil
	}
	return d.Start
}

func (d *DateRange) GetEnd() *timestamppb.Timestamp {
	if d == nil {
		return nil
	}
	return d.End
}

type TrendAnalysisInput struct {
	AggregationPeriod           string `json:"aggregationPeriod,omitempty"`
	IncludeStatisticalContext   bool   `json:"includeStatisticalContext"`
	IncludeVolatilityIndicators bool   `json:"includeVolatilityIndicators"`
	IncludeRollingAverages      bool   `json:"includeRollingAverages"`
}

// TrendQuery selects a subject by exactly one of EmployeeId or TeamId.
// The kind-specific RPCs use SubjectId instead.
type TrendQuery struct {
	EmployeeId string              `json:"employeeId,omitempty"`
	TeamId     string              `json:"teamId,omitempty"`
	SubjectId  string              `json:"subjectId,omitempty"`
	Category   string              `json:"category,omitempty"`
	TimePeriod string              `json:"timePeriod,omitempty"`
	DateRange  *DateRange          `json:"dateRange,omitempty"`
	Analysis   *TrendAnalysisInput `json:"analysis,omitempty"`
}

type StatisticalContext struct {
	SampleSize                 int32    `json:"sampleSize"`
	Mean                       *float64 `json:"mean,omitempty"`
	StandardDeviation          *float64 `json:"standardDeviation,omitempty"`
	Variance                   *float64 `json:"variance,omitempty"`
	ConfidenceInterval         *float64 `json:"confidenceInterval,omitempty"`
	IsStatisticallySignificant bool     `json:"isStatisticallySignificant"`
	SignificanceLevel          float64  `json:"significanceLevel"`
}

type RollingAverages struct {
	FourWeek   *float64 `json:"fourWeek,omitempty"`
	TwelveWeek *float64 `json:"twelveWeek,omitempty"`
	SixMonth   *float64 `json:"sixMonth,omitempty"`
}

type VolatilityIndicators struct {
	VolatilityScore     float64 `json:"volatilityScore"`
	StabilityRating     string  `json:"stabilityRating"`
	TrendDirection      string  `json:"trendDirection"`
	SeasonalityDetected bool    `json:"seasonalityDetected"`
}

type CategoryMetadata struct {
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type TrendRecord struct {
	Id                       string                 `json:"id"`
	SubjectId                string                 `json:"subjectId"`
	SubjectKind              string                 `json:"subjectKind"`
	TeamId                   string                 `json:"teamId,omitempty"`
	Category                 string                 `json:"category"`
	CategoryMetadata         *CategoryMetadata      `json:"categoryMetadata,omitempty"`
	AggregationPeriod        string                 `json:"aggregationPeriod"`
	PeriodStart              *timestamppb.Timestamp `json:"periodStart"`
	PeriodEnd                *timestamppb.Timestamp `json:"periodEnd"`
	AverageRating            float64                `json:"averageRating"`
	SampleSize               int32                  `json:"sampleSize"`
	EmployeeCount            int32                  `json:"employeeCount,omitempty"`
	TeamSize                 int32                  `json:"teamSize,omitempty"`
	ParticipationRate        *float64               `json:"participationRate,omitempty"`
	StatisticalContext       *StatisticalContext    `json:"statisticalContext,omitempty"`
	WeekOverWeekChange       *float64               `json:"weekOverWeekChange,omitempty"`
	MonthOverMonthChange     *float64               `json:"monthOverMonthChange,omitempty"`
	QuarterOverQuarterChange *float64               `json:"quarterOverQuarterChange,omitempty"`
	YearOverYearChange       *float64               `json:"yearOverYearChange,omitempty"`
	RollingAverages          *RollingAverages       `json:"rollingAverages,omitempty"`
	VolatilityIndicators     *VolatilityIndicators  `json:"volatilityIndicators,omitempty"`
	CalculatedAt             *timestamppb.Timestamp `json:"calculatedAt"`
}

type TrendsResponse struct {
	Records []*TrendRecord `json:"records"`
}

type TeamAveragesRequest struct {
	TeamId                    string                 `json:"teamId"`
	Date                      *timestamppb.Timestamp `json:"date,omitempty"`
	IncludeStatisticalContext bool                   `json:"includeStatisticalContext"`
}

type CategoryAverage struct {
	Category              string                `json:"category"`
	CategoryMetadata      *CategoryMetadata     `json:"categoryMetadata,omitempty"`
	AverageRating         *float64              `json:"averageRating,omitempty"`
	PreviousAverageRating *float64              `json:"previousAverageRating,omitempty"`
	Change                *float64              `json:"change,omitempty"`
	WeekOverWeekChange    *float64              `json:"weekOverWeekChange,omitempty"`
	SampleSize            int32                 `json:"sampleSize"`
	StatisticalContext    *StatisticalContext   `json:"statisticalContext,omitempty"`
	RollingAverages       *RollingAverages      `json:"rollingAverages,omitempty"`
	VolatilityIndicators  *VolatilityIndicators `json:"volatilityIndicators,omitempty"`
}

type TeamAveragesResponse struct {
	Averages []*CategoryAverage `json:"averages"`
}

type TeamStatsRequest struct {
	TeamId                    string     `json:"teamId"`
	DateRange                 *DateRange `json:"dateRange,omitempty"`
	TimePeriod                string     `json:"timePeriod,omitempty"`
	AggregationPeriod         string     `json:"aggregationPeriod,omitempty"`
	IncludeStatisticalContext bool       `json:"includeStatisticalContext"`
}

type TeamStats struct {
	RecordDate           *timestamppb.Timestamp `json:"recordDate"`
	AggregationPeriod    string                 `json:"aggregationPeriod"`
	Category             string                 `json:"category"`
	AverageRating        float64                `json:"averageRating"`
	EmployeeCount        int32                  `json:"employeeCount"`
	TeamSize             int32                  `json:"teamSize"`
	ParticipationRate    *float64               `json:"participationRate,omitempty"`
	StatisticalContext   *StatisticalContext    `json:"statisticalContext,omitempty"`
	WeekOverWeekChange   *float64               `json:"weekOverWeekChange,omitempty"`
	MonthOverMonthChange *float64               `json:"monthOverMonthChange,omitempty"`
}

type TeamStatsResponse struct {
	Stats []*TeamStats `json:"stats"`
}

type MostImprovedCategoryRequest struct {
	EmployeeId string `json:"employeeId"`
	TimePeriod string `json:"timePeriod,omitempty"`
}

type MostImprovedCategoryResponse struct {
	Found            bool              `json:"found"`
	Category         string            `json:"category,omitempty"`
	CategoryMetadata *CategoryMetadata `json:"categoryMetadata,omitempty"`
	Improvement      float64           `json:"improvement"`
	FirstAverage     float64           `json:"firstAverage"`
	LastAverage      float64           `json:"lastAverage"`
}

type SignificantChangesRequest struct {
	SubjectKind string                 `json:"subjectKind"`
	SubjectId   string                 `json:"subjectId"`
	AsOf        *timestamppb.Timestamp `json:"asOf,omitempty"`
	NotableOnly bool                   `json:"notableOnly"`
}

type SignificantChange struct {
	Category                   string  `json:"category"`
	ChangeType                 string  `json:"changeType"`
	ChangeMagnitude            float64 `json:"changeMagnitude"`
	PreviousValue              float64 `json:"previousValue"`
	CurrentValue               float64 `json:"currentValue"`
	IsStatisticallySignificant bool    `json:"isStatisticallySignificant"`
	ConfidenceLevel            float64 `json:"confidenceLevel"`
}

type SignificantChangesResponse struct {
	Changes []*SignificantChange `json:"changes"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []*CategoryMetadata `json:"categories"`
}

type RecalculateRequest struct {
	TeamId string `json:"teamId,omitempty"`
}

type UnitError struct {
	Unit     string `json:"unit"`
	TeamId   string `json:"teamId,omitempty"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

type CalculationResult struct {
	JobId             string       `json:"jobId"`
	Status            string       `json:"status"`
	Success           bool         `json:"success"`
	Message           string       `json:"message"`
	CalculatedRecords int32        `json:"calculatedRecords"`
	Errors            []*UnitError `json:"errors,omitempty"`
}

type SubmitRecalculationResponse struct {
	JobId string `json:"jobId"`
}

type GetRecalculationJobRequest struct {
	JobId string `json:"jobId"`
}

type RecalculationJob struct {
	Id                string                 `json:"id"`
	TeamId            string                 `json:"teamId,omitempty"`
	Status            string                 `json:"status"`
	Message           string                 `json:"message,omitempty"`
	CalculatedRecords int32                  `json:"calculatedRecords"`
	Errors            []string               `json:"errors,omitempty"`
	CreatedAt         *timestamppb.Timestamp `json:"createdAt"`
	StartedAt         *timestamppb.Timestamp `json:"startedAt,omitempty"`
	FinishedAt        *timestamppb.Timestamp `json:"finishedAt,omitempty"`
}

func (r *TeamAveragesRequest) GetTeamId() string {
	if r == nil {
		return ""
	}
	return r.TeamId
}

func (r *TeamStatsRequest) GetTeamId() string {
	if r == nil {
		return ""
	}
	return r.TeamId
}

func (r *MostImprovedCategoryRequest) GetEmployeeId() string {
	if r == nil {
		return ""
	}
	return r.EmployeeId
}

func (r *SignificantChangesRequest) GetSubjectId() string {
	if r == nil {
		return ""
	}
	return r.SubjectId
}

func (r *RecalculateRequest) GetTeamId() string {
	if r == nil {
		return ""
	}
	return r.TeamId
}

func (r *GetRecalculationJobRequest) GetJobId() string {
	if r == nil {
		return ""
	}
	return r.JobId
}
