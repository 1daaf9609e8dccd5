package analytics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/stat"
)

var (
	defaultMinEventDate = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	defaultMaxEventDate = time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Bucketer groups rating events into aligned, non-overlapping period windows.
type Bucketer struct {
	validate *validator.Validate
	minDate  time.Time
	maxDate  time.Time
}

type BucketerOption func(*Bucketer)

// WithDateBounds sets the accepted event date range [min, max).
func WithDateBounds(min, max time.Time) BucketerOption {
	return func(b *Bucketer) {
		b.minDate = min.UTC()
		b.maxDate = max.UTC()
	}
}

func NewBucketer(opts ...BucketerOption) *Bucketer {
	b := &Bucketer{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		minDate:  defaultMinEventDate,
		maxDate:  defaultMaxEventDate,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// PeriodStart truncates t (normalized to UTC) to the start of its period.
// Weeks start on Monday.
func PeriodStart(t time.Time, p AggregationPeriod) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case Weekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Quarterly:
		m := ((int(t.Month())-1)/3)*3 + 1
		return time.Date(t.Year(), time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	case Yearly:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// PeriodEnd returns the exclusive end of the period beginning at start.
func PeriodEnd(start time.Time, p AggregationPeriod) time.Time {
	return shift(start, p, 1)
}

func shift(t time.Time, p AggregationPeriod, n int) time.Time {
	switch p {
	case Weekly:
		return t.AddDate(0, 0, 7*n)
	case Monthly:
		return t.AddDate(0, n, 0)
	case Quarterly:
		return t.AddDate(0, 3*n, 0)
	case Yearly:
		return t.AddDate(n, 0, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}

// Validate checks every event and returns the first failure as *InvalidEventError.
func (b *Bucketer) Validate(events []RatingEvent) error {
	for i := range events {
		if err := b.validateEvent(i, events[i]); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bucketer) validateEvent(i int, e RatingEvent) error {
	if err := b.validate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &InvalidEventError{Index: i, Field: fe.Field(), Reason: fmt.Sprintf("failed %q (value %v)", fe.Tag(), fe.Value())}
		}
		return &InvalidEventError{Index: i, Field: "event", Reason: err.Error()}
	}
	d := e.Date.UTC()
	if d.IsZero() || d.Before(b.minDate) || !d.Before(b.maxDate) {
		return &InvalidEventError{Index: i, Field: "Date", Reason: fmt.Sprintf("%s outside [%s, %s)", d.Format(time.RFC3339), b.minDate.Format(time.DateOnly), b.maxDate.Format(time.DateOnly))}
	}
	return nil
}

// Bucket validates events then groups them by (subject, category, period start).
// Event order inside each group follows input order.
func (b *Bucketer) Bucket(events []RatingEvent, period AggregationPeriod) (map[BucketKey][]RatingEvent, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("unknown aggregation period %q", period)
	}
	if err := b.Validate(events); err != nil {
		return nil, err
	}

	groups := make(map[BucketKey][]RatingEvent)
	for _, e := range events {
		key := BucketKey{
			SubjectID:   e.SubjectID,
			SubjectKind: e.SubjectKind,
			Category:    e.Category,
			PeriodStart: PeriodStart(e.Date, period),
		}
		groups[key] = append(groups[key], e)
	}
	return groups, nil
}

// Buckets returns the aggregated buckets sorted by subject, category and start.
func (b *Bucketer) Buckets(events []RatingEvent, period AggregationPeriod) ([]Bucket, error) {
	groups, err := b.Bucket(events, period)
	if err != nil {
		return nil, err
	}

	out := make([]Bucket, 0, len(groups))
	for key, evs := range groups {
		values := make([]float64, len(evs))
		employees := make(map[string]struct{}, len(evs))
		for i, e := range evs {
			values[i] = float64(e.Value)
			employees[e.EmployeeID] = struct{}{}
		}
		out = append(out, Bucket{
			SubjectID:     key.SubjectID,
			SubjectKind:   key.SubjectKind,
			Category:      key.Category,
			Period:        period,
			PeriodStart:   key.PeriodStart,
			PeriodEnd:     PeriodEnd(key.PeriodStart, period),
			AverageRating: stat.Mean(values, nil),
			Values:        values,
			EmployeeCount: len(employees),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SubjectKind != b.SubjectKind {
			return a.SubjectKind < b.SubjectKind
		}
		if a.SubjectID != b.SubjectID {
			return a.SubjectID < b.SubjectID
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.PeriodStart.Before(b.PeriodStart)
	})
	return out, nil
}
