package analytics

import "math"

// ChangeInput pairs the current and prior bucket averages of one category.
type ChangeInput struct {
	Category      CampsCategory
	Current       float64
	CurrentStats  *StatisticalContext
	Previous      float64
	PreviousStats *StatisticalContext
}

// DetectSignificantChanges classifies each input by magnitude and sign and
// tests whether the move is statistically significant. Classification uses
// the delta rounded to one decimal so that float noise cannot cross a band.
func DetectSignificantChanges(inputs []ChangeInput, t Thresholds) []SignificantChange {
	out := make([]SignificantChange, 0, len(inputs))
	for _, in := range inputs {
		delta := Round1(in.Current - in.Previous)
		ct := classifyChange(delta, t)

		sc := SignificantChange{
			Category:        in.Category,
			ChangeType:      ct,
			ChangeMagnitude: math.Abs(delta),
			PreviousValue:   in.Previous,
			CurrentValue:    in.Current,
		}

		if in.CurrentStats != nil && in.PreviousStats != nil &&
			RequireSample(in.CurrentStats.SampleSize, t.MinSampleSize) == nil &&
			RequireSample(in.PreviousStats.SampleSize, t.MinSampleSize) == nil {
			if p, ok := welchPValue(*in.CurrentStats, *in.PreviousStats); ok {
				sc.ConfidenceLevel = 1 - p
				sc.IsStatisticallySignificant = ct != NoChange && p < t.SignificanceLevel
			}
		}
		out = append(out, sc)
	}
	return out
}

func classifyChange(delta float64, t Thresholds) ChangeType {
	abs := math.Abs(delta)
	switch {
	case abs >= t.SignificantChange && delta > 0:
		return SignificantImprovement
	case abs >= t.SignificantChange:
		return SignificantDecline
	case abs >= t.ModerateChange && delta > 0:
		return ModerateImprovement
	case abs >= t.ModerateChange:
		return ModerateDecline
	default:
		return NoChange
	}
}

// Notable filters out STABLE entries.
func Notable(changes []SignificantChange) []SignificantChange {
	out := make([]SignificantChange, 0, len(changes))
	for _, c := range changes {
		if c.ChangeType != NoChange {
			out = append(out, c)
		}
	}
	return out
}
