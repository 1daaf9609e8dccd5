package analytics

import (
	"fmt"
	"time"
)

// CampsCategory is one of the five engagement dimensions.
type CampsCategory string

const (
	Certainty       CampsCategory = "CERTAINTY"
	Autonomy        CampsCategory = "AUTONOMY"
	Meaning         CampsCategory = "MEANING"
	Progress        CampsCategory = "PROGRESS"
	SocialInclusion CampsCategory = "SOCIAL_INCLUSION"
)

// Categories returns every category in declaration order.
func Categories() []CampsCategory {
	return []CampsCategory{Certainty, Autonomy, Meaning, Progress, SocialInclusion}
}

func (c CampsCategory) Valid() bool {
	switch c {
	case Certainty, Autonomy, Meaning, Progress, SocialInclusion:
		return true
	}
	return false
}

// ParseCategory converts a wire value into a CampsCategory.
func ParseCategory(s string) (CampsCategory, error) {
	c := CampsCategory(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

type SubjectKind string

const (
	SubjectEmployee SubjectKind = "EMPLOYEE"
	SubjectTeam     SubjectKind = "TEAM"
)

func (k SubjectKind) Valid() bool {
	return k == SubjectEmployee || k == SubjectTeam
}

// AggregationPeriod determines bucket width and alignment.
type AggregationPeriod string

const (
	Daily     AggregationPeriod = "DAILY"
	Weekly    AggregationPeriod = "WEEKLY"
	Monthly   AggregationPeriod = "MONTHLY"
	Quarterly AggregationPeriod = "QUARTERLY"
	Yearly    AggregationPeriod = "YEARLY"
)

// AggregationPeriods returns all periods from finest to coarsest.
func AggregationPeriods() []AggregationPeriod {
	return []AggregationPeriod{Daily, Weekly, Monthly, Quarterly, Yearly}
}

func (p AggregationPeriod) Valid() bool {
	switch p {
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

func ParseAggregationPeriod(s string) (AggregationPeriod, error) {
	p := AggregationPeriod(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown aggregation period %q", s)
	}
	return p, nil
}

// Wider reports whether a spans more time than b.
func Wider(a, b AggregationPeriod) bool { return a.rank() > b.rank() }

// rank orders periods by width.
func (p AggregationPeriod) rank() int {
	switch p {
	case Daily:
		return 0
	case Weekly:
		return 1
	case Monthly:
		return 2
	case Quarterly:
		return 3
	case Yearly:
		return 4
	}
	return -1
}

// RatingEvent is a single immutable rating fact.
type RatingEvent struct {
	SubjectID   string        `validate:"required"`
	SubjectKind SubjectKind   `validate:"required,oneof=EMPLOYEE TEAM"`
	EmployeeID  string        `validate:"required"`
	Category    CampsCategory `validate:"required,oneof=CERTAINTY AUTONOMY MEANING PROGRESS SOCIAL_INCLUSION"`
	Date        time.Time     `validate:"required"`
	Value       int           `validate:"min=1,max=10"`
}

type BucketKey struct {
	SubjectID   string
	SubjectKind SubjectKind
	Category    CampsCategory
	PeriodStart time.Time
}

// Bucket is the aggregate of one (subject, category, period window).
type Bucket struct {
	SubjectID     string
	SubjectKind   SubjectKind
	Category      CampsCategory
	Period        AggregationPeriod
	PeriodStart   time.Time
	PeriodEnd     time.Time
	AverageRating float64
	Values        []float64
	EmployeeCount int
}

func (b Bucket) SampleSize() int { return len(b.Values) }

func (b Bucket) Key() BucketKey {
	return BucketKey{
		SubjectID:   b.SubjectID,
		SubjectKind: b.SubjectKind,
		Category:    b.Category,
		PeriodStart: b.PeriodStart,
	}
}

// StatisticalContext describes the sample behind one bucket average.
// Nil fields mean the statistic is undefined for the sample size.
type StatisticalContext struct {
	SampleSize                 int      `json:"sampleSize"`
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

type StabilityRating string

const (
	VeryStable   StabilityRating = "VERY_STABLE"
	Stable       StabilityRating = "STABLE"
	Moderate     StabilityRating = "MODERATE"
	Volatile     StabilityRating = "VOLATILE"
	VeryVolatile StabilityRating = "VERY_VOLATILE"
)

type TrendDirection string

const (
	StronglyDecreasing TrendDirection = "STRONGLY_DECREASING"
	Decreasing         TrendDirection = "DECREASING"
	Flat               TrendDirection = "STABLE"
	Increasing         TrendDirection = "INCREASING"
	StronglyIncreasing TrendDirection = "STRONGLY_INCREASING"
)

type VolatilityIndicators struct {
	VolatilityScore     float64         `json:"volatilityScore"`
	StabilityRating     StabilityRating `json:"stabilityRating"`
	TrendDirection      TrendDirection  `json:"trendDirection"`
	SeasonalityDetected bool            `json:"seasonalityDetected"`
}

// ChangeSet holds period-over-period deltas. Nil means no baseline.
type ChangeSet struct {
	Week    *float64 `json:"weekOverWeek,omitempty"`
	Month   *float64 `json:"monthOverMonth,omitempty"`
	Quarter *float64 `json:"quarterOverQuarter,omitempty"`
	Year    *float64 `json:"yearOverYear,omitempty"`
}

// TrendRecord is the materialized trend row for one bucket.
type TrendRecord struct {
	ID                   string
	SubjectID            string
	SubjectKind          SubjectKind
	TeamID               string
	Category             CampsCategory
	Period               AggregationPeriod
	PeriodStart          time.Time
	PeriodEnd            time.Time
	AverageRating        float64
	SampleSize           int
	EmployeeCount        int
	TeamSize             int
	ParticipationRate    *float64
	Stats                *StatisticalContext
	Changes              ChangeSet
	RollingAverages      *RollingAverages
	VolatilityIndicators *VolatilityIndicators
	CalculatedAt         time.Time
}

type ChangeType string

const (
	SignificantImprovement ChangeType = "SIGNIFICANT_IMPROVEMENT"
	ModerateImprovement    ChangeType = "MODERATE_IMPROVEMENT"
	NoChange               ChangeType = "STABLE"
	ModerateDecline        ChangeType = "MODERATE_DECLINE"
	SignificantDecline     ChangeType = "SIGNIFICANT_DECLINE"
)

type SignificantChange struct {
	Category                   CampsCategory `json:"category"`
	ChangeType                 ChangeType    `json:"changeType"`
	ChangeMagnitude            float64       `json:"changeMagnitude"`
	PreviousValue              float64       `json:"previousValue"`
	CurrentValue               float64       `json:"currentValue"`
	IsStatisticallySignificant bool          `json:"isStatisticallySignificant"`
	ConfidenceLevel            float64       `json:"confidenceLevel"`
}

func ptr[T any](v T) *T { return &v }
