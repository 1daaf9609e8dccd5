package analytics

import "time"

// BuildRecords runs stats, change and volatility over sorted buckets and
// returns one TrendRecord per bucket. Buckets of the same subject and
// category must be contiguous and date ordered, as Buckets returns them.
func BuildRecords(buckets []Bucket, t Thresholds, calculatedAt time.Time) []TrendRecord {
	out := make([]TrendRecord, 0, len(buckets))
	for start := 0; start < len(buckets); {
		end := start + 1
		for end < len(buckets) && sameSeries(buckets[start], buckets[end]) {
			end++
		}
		out = append(out, seriesRecords(buckets[start:end], t, calculatedAt)...)
		start = end
	}
	return out
}

func sameSeries(a, b Bucket) bool {
	return a.SubjectID == b.SubjectID && a.SubjectKind == b.SubjectKind &&
		a.Category == b.Category && a.Period == b.Period
}

func seriesRecords(series []Bucket, t Thresholds, calculatedAt time.Time) []TrendRecord {
	calc := NewChangeCalculator(series)
	out := make([]TrendRecord, len(series))
	for i, b := range series {
		sc := ComputeStatistics(b.Values, t)
		if base, ok := calc.Baseline(b); ok {
			sc = Compare(sc, base.AverageRating, t.MinSampleSize)
		}
		rolling, vol := AnalyzeVolatility(series[:i+1], t)

		out[i] = TrendRecord{
			SubjectID:            b.SubjectID,
			SubjectKind:          b.SubjectKind,
			Category:             b.Category,
			Period:               b.Period,
			PeriodStart:          b.PeriodStart,
			PeriodEnd:            b.PeriodEnd,
			AverageRating:        b.AverageRating,
			SampleSize:           b.SampleSize(),
			EmployeeCount:        b.EmployeeCount,
			Stats:                &sc,
			Changes:              calc.Changes(b).Rounded(),
			RollingAverages:      &rolling,
			VolatilityIndicators: vol,
			CalculatedAt:         calculatedAt.UTC(),
		}
	}
	return out
}
