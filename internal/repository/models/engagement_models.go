package models

import "time"

type Team struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	MemberCount int    `db:"member_count"`
}

// RatingRow is one engagement rating joined with the rated employee's team.
type RatingRow struct {
	ID         int64     `db:"id"`
	EmployeeID string    `db:"employee_id"`
	TeamID     string    `db:"team_id"`
	Category   string    `db:"category"`
	RatingDate time.Time `db:"rating_date"`
	Rating     int       `db:"rating"`
}

// RatingFilter selects ratings by employee or team in [Start, End).
type RatingFilter struct {
	EmployeeID string
	TeamID     string
	Category   string
	Start      time.Time
	End        time.Time
}

// TrendRecord is the persisted form of one materialized trend bucket.
type TrendRecord struct {
	ID                string    `gorm:"primaryKey;type:varchar(36)"`
	SubjectKind       string    `gorm:"type:varchar(16);not null;index:idx_trend_subject,priority:1"`
	SubjectID         string    `gorm:"type:varchar(64);not null;index:idx_trend_subject,priority:2"`
	TeamID            string    `gorm:"type:varchar(64);not null;index:idx_trend_unit,priority:1"`
	Category          string    `gorm:"type:varchar(32);not null;index:idx_trend_unit,priority:2"`
	AggregationPeriod string    `gorm:"type:varchar(16);not null;index:idx_trend_subject,priority:3"`
	PeriodStart       time.Time `gorm:"not null;index:idx_trend_subject,priority:4"`
	PeriodEnd         time.Time `gorm:"not null"`
	AverageRating     float64   `gorm:"not null"`
	SampleSize        int       `gorm:"not null"`
	EmployeeCount     int
	TeamSize          int
	ParticipationRate *float64

	Mean                       *float64
	StandardDeviation          *float64
	Variance                   *float64
	ConfidenceInterval         *float64
	IsStatisticallySignificant bool
	SignificanceLevel          float64

	WeekOverWeekChange       *float64
	MonthOverMonthChange     *float64
	QuarterOverQuarterChange *float64
	YearOverYearChange       *float64

	RollingFourWeek   *float64
	RollingTwelveWeek *float64
	RollingSixMonth   *float64

	VolatilityScore     *float64
	StabilityRating     *string `gorm:"type:varchar(16)"`
	TrendDirection      *string `gorm:"type:varchar(24)"`
	SeasonalityDetected *bool

	CalculatedAt time.Time `gorm:"not null"`
}

func (TrendRecord) TableName() string { return "trend_records" }

// TrendFilter selects materialized records for one subject.
type TrendFilter struct {
	SubjectKind       string
	SubjectID         string
	Category          string
	AggregationPeriod string
	From              time.Time
	To                time.Time
}

type RecalculationJob struct {
	ID                string     `json:"id"`
	TeamID            string     `json:"teamId,omitempty"`
	Status            string     `json:"status"`
	Message           string     `json:"message,omitempty"`
	CalculatedRecords int        `json:"calculatedRecords"`
	Errors            []string   `json:"errors,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	StartedAt         *time.Time `json:"startedAt,omitempty"`
	FinishedAt        *time.Time `json:"finishedAt,omitempty"`
}
