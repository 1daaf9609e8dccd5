package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

type horizon int

const (
	horizonWeek horizon = iota + 1
	horizonMonth
	horizonQuarter
	horizonYear
)

func (h horizon) back(t time.Time) time.Time {
	switch h {
	case horizonWeek:
		return t.AddDate(0, 0, -7)
	case horizonMonth:
		return monthsBack(t, 1)
	case horizonQuarter:
		return monthsBack(t, 3)
	default:
		return monthsBack(t, 12)
	}
}

// monthsBack moves t back n calendar months, clamping the day to the end of
// the target month so that Jul 31 minus one month is Jun 30, not Jul 1.
func monthsBack(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	first = first.AddDate(0, -n, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

// applies reports whether the horizon is at least as wide as the bucket.
func (h horizon) applies(p AggregationPeriod) bool {
	return int(h) >= p.rank()
}

type seriesKey struct {
	subject string
	kind    SubjectKind
	cat     CampsCategory
	start   int64
}

func keyOf(b Bucket, start time.Time) seriesKey {
	return seriesKey{subject: b.SubjectID, kind: b.SubjectKind, cat: b.Category, start: start.UTC().Unix()}
}

// ChangeCalculator resolves period-over-period baselines against an indexed
// bucket series.
//
// The baseline for a horizon is the bucket of the same subject and category
// whose window contains current.PeriodStart minus the horizon, that is the
// latest bucket starting at or before that instant without running past it.
// Buckets are aligned, so this is the bucket starting at PeriodStart(target).
type ChangeCalculator struct {
	index map[seriesKey]Bucket
}

func NewChangeCalculator(series []Bucket) *ChangeCalculator {
	idx := make(map[seriesKey]Bucket, len(series))
	for _, b := range series {
		idx[keyOf(b, b.PeriodStart)] = b
	}
	return &ChangeCalculator{index: idx}
}

// Changes returns full-precision deltas; a nil field means no baseline.
func (c *ChangeCalculator) Changes(current Bucket) ChangeSet {
	return ChangeSet{
		Week:    c.delta(current, horizonWeek),
		Month:   c.delta(current, horizonMonth),
		Quarter: c.delta(current, horizonQuarter),
		Year:    c.delta(current, horizonYear),
	}
}

// Baseline returns the comparable prior bucket one period back.
func (c *ChangeCalculator) Baseline(current Bucket) (Bucket, bool) {
	target := shift(current.PeriodStart, current.Period, -1)
	b, ok := c.index[keyOf(current, target)]
	return b, ok
}

func (c *ChangeCalculator) delta(current Bucket, h horizon) *float64 {
	if !h.applies(current.Period) {
		return nil
	}
	target := PeriodStart(h.back(current.PeriodStart), current.Period)
	base, ok := c.index[keyOf(current, target)]
	if !ok {
		return nil
	}
	return ptr(current.AverageRating - base.AverageRating)
}

// Changes is a one-shot convenience over NewChangeCalculator.
func Changes(current Bucket, series []Bucket) ChangeSet {
	return NewChangeCalculator(series).Changes(current)
}

// Rounded returns the display form of the set, one decimal place.
func (cs ChangeSet) Rounded() ChangeSet {
	return ChangeSet{
		Week:    roundPtr(cs.Week),
		Month:   roundPtr(cs.Month),
		Quarter: roundPtr(cs.Quarter),
		Year:    roundPtr(cs.Year),
	}
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(Round1(*v))
}
