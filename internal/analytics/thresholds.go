package analytics

import (
	"errors"
	"fmt"
	"sort"
)

// Thresholds collects every tunable cut point used by the calculators.
type Thresholds struct {
	// MinSampleSize is the floor below which no bucket is reported significant.
	MinSampleSize int `mapstructure:"min_sample_size" yaml:"min_sample_size"`
	// SignificanceLevel is alpha; confidence intervals use 1 - alpha.
	SignificanceLevel float64 `mapstructure:"significance_level" yaml:"significance_level"`
	// LargeSampleSize switches the interval from Student-t to normal.
	LargeSampleSize int `mapstructure:"large_sample_size" yaml:"large_sample_size"`

	SignificantChange float64 `mapstructure:"significant_change" yaml:"significant_change"`
	ModerateChange    float64 `mapstructure:"moderate_change" yaml:"moderate_change"`

	// StabilityCutPoints are four ascending coefficient-of-variation bounds
	// separating VERY_STABLE, STABLE, MODERATE, VOLATILE and VERY_VOLATILE.
	StabilityCutPoints []float64 `mapstructure:"stability_cut_points" yaml:"stability_cut_points"`

	FlatSlope   float64 `mapstructure:"flat_slope" yaml:"flat_slope"`
	StrongSlope float64 `mapstructure:"strong_slope" yaml:"strong_slope"`

	SeasonalityAutocorrelation float64 `mapstructure:"seasonality_autocorrelation" yaml:"seasonality_autocorrelation"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSampleSize:              3,
		SignificanceLevel:          0.05,
		LargeSampleSize:            30,
		SignificantChange:          2.0,
		ModerateChange:             1.0,
		StabilityCutPoints:         []float64{0.05, 0.10, 0.20, 0.35},
		FlatSlope:                  0.1,
		StrongSlope:                0.5,
		SeasonalityAutocorrelation: 0.6,
	}
}

func (t Thresholds) Validate() error {
	var errs []error
	if t.MinSampleSize < 2 {
		errs = append(errs, fmt.Errorf("min_sample_size must be at least 2, got %d", t.MinSampleSize))
	}
	if t.SignificanceLevel <= 0 || t.SignificanceLevel >= 1 {
		errs = append(errs, fmt.Errorf("significance_level must be in (0,1), got %v", t.SignificanceLevel))
	}
	if t.LargeSampleSize < 2 {
		errs = append(errs, fmt.Errorf("large_sample_size must be at least 2, got %d", t.LargeSampleSize))
	}
	if t.ModerateChange <= 0 || t.SignificantChange < t.ModerateChange {
		errs = append(errs, fmt.Errorf("change thresholds must satisfy 0 < moderate (%v) <= significant (%v)", t.ModerateChange, t.SignificantChange))
	}
	if len(t.StabilityCutPoints) != 4 || !sort.Float64sAreSorted(t.StabilityCutPoints) {
		errs = append(errs, fmt.Errorf("stability_cut_points must be 4 ascending values, got %v", t.StabilityCutPoints))
	}
	if t.FlatSlope < 0 || t.StrongSlope < t.FlatSlope {
		errs = append(errs, fmt.Errorf("slope thresholds must satisfy 0 <= flat (%v) <= strong (%v)", t.FlatSlope, t.StrongSlope))
	}
	return errors.Join(errs...)
}
