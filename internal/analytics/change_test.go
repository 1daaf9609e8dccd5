package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weeklyBucket(start time.Time, avg float64) Bucket {
	return Bucket{
		SubjectID:     "E1",
		SubjectKind:   SubjectEmployee,
		Category:      Certainty,
		Period:        Weekly,
		PeriodStart:   start,
		PeriodEnd:     PeriodEnd(start, Weekly),
		AverageRating: avg,
		Values:        []float64{avg},
	}
}

func TestChanges_ConsecutiveWeeks(t *testing.T) {
	w1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := []Bucket{
		weeklyBucket(w1, 5),
		weeklyBucket(w1.AddDate(0, 0, 7), 6),
		weeklyBucket(w1.AddDate(0, 0, 14), 7),
		weeklyBucket(w1.AddDate(0, 0, 21), 8),
	}
	calc := NewChangeCalculator(series)

	first := calc.Changes(series[0])
	assert.Nil(t, first.Week, "earliest bucket has no baseline")
	assert.Nil(t, first.Month)
	assert.Nil(t, first.Quarter)
	assert.Nil(t, first.Year)

	for i := 1; i < len(series); i++ {
		cs := calc.Changes(series[i])
		require.NotNil(t, cs.Week)
		assert.Equal(t, 1.0, *cs.Week)
	}
}

func TestChanges_GapMeansNoBaseline(t *testing.T) {
	w1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := []Bucket{
		weeklyBucket(w1, 5),
		weeklyBucket(w1.AddDate(0, 0, 14), 7),
	}
	cs := Changes(series[1], series)
	assert.Nil(t, cs.Week)
}

func TestChanges_ZeroIsDistinctFromMissing(t *testing.T) {
	w1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := []Bucket{weeklyBucket(w1, 6), weeklyBucket(w1.AddDate(0, 0, 7), 6)}

	cs := Changes(series[1], series)
	require.NotNil(t, cs.Week)
	assert.Equal(t, 0.0, *cs.Week)
}

func TestChanges_MonthOverMonthOnWeeklyBuckets(t *testing.T) {
	current := weeklyBucket(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), 7)
	// one calendar month back is Sunday 2024-02-04, inside the week of Jan 29
	baseline := weeklyBucket(time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC), 5)
	overshoot := weeklyBucket(time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), 1)
	lastYear := weeklyBucket(time.Date(2023, 2, 27, 0, 0, 0, 0, time.UTC), 9)

	cs := Changes(current, []Bucket{lastYear, baseline, overshoot, current})

	require.NotNil(t, cs.Month)
	assert.Equal(t, 2.0, *cs.Month)
	require.NotNil(t, cs.Year)
	assert.Equal(t, -2.0, *cs.Year)
	assert.Nil(t, cs.Quarter)
}

func TestChanges_HorizonNarrowerThanBucket(t *testing.T) {
	mk := func(start time.Time, avg float64) Bucket {
		return Bucket{SubjectID: "T1", SubjectKind: SubjectTeam, Category: Meaning, Period: Monthly,
			PeriodStart: start, PeriodEnd: PeriodEnd(start, Monthly), AverageRating: avg}
	}
	feb := mk(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 6)
	mar := mk(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 7.5)

	cs := Changes(mar, []Bucket{feb, mar})
	assert.Nil(t, cs.Week)
	require.NotNil(t, cs.Month)
	assert.Equal(t, 1.5, *cs.Month)
}

func TestChanges_OtherSubjectsIgnored(t *testing.T) {
	w1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	other := weeklyBucket(w1, 2)
	other.SubjectID = "E2"
	current := weeklyBucket(w1.AddDate(0, 0, 7), 8)

	assert.Nil(t, Changes(current, []Bucket{other, current}).Week)
}

func TestMonthsBack(t *testing.T) {
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), monthsBack(time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC), 1))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), monthsBack(time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), 3))
	assert.Equal(t, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), monthsBack(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), 12))
}

func TestRounded(t *testing.T) {
	cs := ChangeSet{Week: ptr(2.25), Month: ptr(1.0 / 3.0), Quarter: ptr(-0.05)}
	r := cs.Rounded()

	assert.Equal(t, 2.3, *r.Week)
	assert.Equal(t, 0.3, *r.Month)
	assert.Equal(t, -0.1, *r.Quarter)
	assert.Nil(t, r.Year)
	assert.InDelta(t, 1.0/3.0, *cs.Month, 1e-15, "source keeps full precision")
}
