package analytics

import (
	"math"

	"github.com/cinar/indicator"
	"gonum.org/v1/gonum/stat"
)

type rollingWindows struct {
	fourWeek, twelveWeek, sixMonth int
}

// windowsFor maps the calendar windows onto trailing bucket counts.
// Zero means the window is finer than the bucket and is never reported.
func windowsFor(p AggregationPeriod) rollingWindows {
	switch p {
	case Daily:
		return rollingWindows{28, 84, 182}
	case Weekly:
		return rollingWindows{4, 12, 26}
	case Monthly:
		return rollingWindows{1, 3, 6}
	case Quarterly:
		return rollingWindows{0, 1, 2}
	default:
		return rollingWindows{}
	}
}

func volatilityWindow(p AggregationPeriod) int {
	switch p {
	case Daily:
		return 28
	case Weekly:
		return 12
	case Monthly:
		return 6
	case Quarterly:
		return 4
	default:
		return 3
	}
}

func seasonalLag(p AggregationPeriod) int {
	switch p {
	case Daily:
		return 7
	case Weekly:
		return 4
	case Monthly:
		return 12
	case Quarterly:
		return 4
	default:
		return 0
	}
}

// AnalyzeVolatility derives rolling averages and volatility indicators from a
// date-ordered history whose last element is the current bucket. Indicators
// are nil with fewer than two buckets.
func AnalyzeVolatility(history []Bucket, t Thresholds) (RollingAverages, *VolatilityIndicators) {
	if len(history) == 0 {
		return RollingAverages{}, nil
	}

	period := history[len(history)-1].Period
	values := make([]float64, len(history))
	for i, b := range history {
		values[i] = b.AverageRating
	}

	w := windowsFor(period)
	rolling := RollingAverages{
		FourWeek:   trailingMean(values, w.fourWeek),
		TwelveWeek: trailingMean(values, w.twelveWeek),
		SixMonth:   trailingMean(values, w.sixMonth),
	}

	window := values
	if n := volatilityWindow(period); len(window) > n {
		window = window[len(window)-n:]
	}
	if len(window) < 2 {
		return rolling, nil
	}

	score := coefficientOfVariation(window)
	return rolling, &VolatilityIndicators{
		VolatilityScore:     score,
		StabilityRating:     classifyStability(score, t.StabilityCutPoints),
		TrendDirection:      classifyTrend(slope(window), t),
		SeasonalityDetected: seasonal(values, seasonalLag(period), t.SeasonalityAutocorrelation),
	}
}

func trailingMean(values []float64, n int) *float64 {
	if n <= 0 || len(values) < n {
		return nil
	}
	sma := indicator.Sma(n, values[len(values)-n:])
	return ptr(sma[len(sma)-1])
}

func coefficientOfVariation(values []float64) float64 {
	mean, sd := stat.MeanStdDev(values, nil)
	if mean == 0 || math.IsNaN(sd) {
		return 0
	}
	return sd / math.Abs(mean)
}

func classifyStability(score float64, cuts []float64) StabilityRating {
	bands := []StabilityRating{VeryStable, Stable, Moderate, Volatile}
	for i, cut := range cuts {
		if i < len(bands) && score < cut {
			return bands[i]
		}
	}
	return VeryVolatile
}

// slope fits value = a + b*index and returns b in rating points per bucket.
func slope(values []float64) float64 {
	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, beta := stat.LinearRegression(xs, values, nil, false)
	if math.IsNaN(beta) {
		return 0
	}
	return beta
}

func classifyTrend(s float64, t Thresholds) TrendDirection {
	abs := math.Abs(s)
	switch {
	case abs < t.FlatSlope:
		return Flat
	case abs < t.StrongSlope && s > 0:
		return Increasing
	case abs < t.StrongSlope:
		return Decreasing
	case s > 0:
		return StronglyIncreasing
	default:
		return StronglyDecreasing
	}
}

// seasonal is a best-effort lag autocorrelation check.
func seasonal(values []float64, lag int, threshold float64) bool {
	if lag <= 0 || len(values) < 2*lag {
		return false
	}
	n := len(values)
	r := stat.Correlation(values[:n-lag], values[lag:], nil)
	if math.IsNaN(r) {
		return false
	}
	return r > threshold
}
