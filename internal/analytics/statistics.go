package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ComputeStatistics summarizes a sample. Variance is the unbiased (n-1)
// estimator and is nil below two observations. The confidence interval is a
// half-width at 1 - SignificanceLevel using Student-t for small samples.
func ComputeStatistics(values []float64, t Thresholds) StatisticalContext {
	sc := StatisticalContext{
		SampleSize:        len(values),
		SignificanceLevel: t.SignificanceLevel,
	}
	switch len(values) {
	case 0:
		return sc
	case 1:
		sc.Mean = ptr(values[0])
		return sc
	}

	mean, variance := stat.MeanVariance(values, nil)
	sd := math.Sqrt(variance)
	n := float64(len(values))

	sc.Mean = ptr(mean)
	sc.Variance = ptr(variance)
	sc.StandardDeviation = ptr(sd)
	sc.ConfidenceInterval = ptr(criticalValue(len(values), t) * sd / math.Sqrt(n))
	return sc
}

func criticalValue(n int, t Thresholds) float64 {
	p := 1 - t.SignificanceLevel/2
	if n >= t.LargeSampleSize {
		return distuv.UnitNormal.Quantile(p)
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(p)
}

// Compare marks the context significant when the sample meets the minimum
// size and its interval around the mean excludes the baseline.
func Compare(sc StatisticalContext, baseline float64, minSample int) StatisticalContext {
	sc.IsStatisticallySignificant = false
	if RequireSample(sc.SampleSize, minSample) != nil || sc.Mean == nil || sc.ConfidenceInterval == nil {
		return sc
	}
	sc.IsStatisticallySignificant = math.Abs(*sc.Mean-baseline) > *sc.ConfidenceInterval
	return sc
}

// welchPValue runs a two-sided Welch t-test between two summarized samples.
// ok is false when either sample lacks a variance.
func welchPValue(a, b StatisticalContext) (p float64, ok bool) {
	if a.Mean == nil || b.Mean == nil || a.Variance == nil || b.Variance == nil {
		return 0, false
	}
	na, nb := float64(a.SampleSize), float64(b.SampleSize)
	va, vb := *a.Variance/na, *b.Variance/nb
	delta := *a.Mean - *b.Mean

	se2 := va + vb
	if se2 == 0 {
		if delta == 0 {
			return 1, true
		}
		return 0, true
	}

	df := se2 * se2 / (va*va/(na-1) + vb*vb/(nb-1))
	tStat := math.Abs(delta) / math.Sqrt(se2)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - dist.CDF(tStat)), true
}
