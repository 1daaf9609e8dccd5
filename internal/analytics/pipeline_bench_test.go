package analytics

import (
	"fmt"
	"testing"
	"time"
)

// benchEvents returns two years of daily ratings for a ten-person team,
// each rating also attributed to the team subject.
func benchEvents() []RatingEvent {
	first := time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC)
	var events []RatingEvent
	for day := 0; day < 730; day++ {
		date := first.AddDate(0, 0, day)
		for e := 0; e < 10; e++ {
			employee := fmt.Sprintf("E%d", e)
			value := 1 + (day+e)%10
			events = append(events,
				RatingEvent{SubjectID: employee, SubjectKind: SubjectEmployee, EmployeeID: employee, Category: Certainty, Date: date, Value: value},
				RatingEvent{SubjectID: "T1", SubjectKind: SubjectTeam, EmployeeID: employee, Category: Certainty, Date: date, Value: value},
			)
		}
	}
	return events
}

func BenchmarkBuckets(b *testing.B) {
	events := benchEvents()
	bucketer := NewBucketer()

	for _, period := range []AggregationPeriod{Daily, Weekly} {
		b.Run(string(period), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := bucketer.Buckets(events, period); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkBuildRecords(b *testing.B) {
	events := benchEvents()
	th := DefaultThresholds()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, period := range []AggregationPeriod{Daily, Weekly, Monthly} {
		buckets, err := NewBucketer().Buckets(events, period)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(string(period), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				_ = BuildRecords(buckets, th, now)
			}
		})
	}
}
