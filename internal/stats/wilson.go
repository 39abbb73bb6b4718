// Package stats provides the pure statistical building blocks of the
// metagame pipeline: Wilson score intervals, normalization, tier assignment,
// diversity indices, and clustering. Everything here is a deterministic
// function of its inputs.
package stats

import "math"

// Interval is a confidence interval over a win rate, in percentage points.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// MaximalInterval is the zero-sample sentinel: total uncertainty.
var MaximalInterval = Interval{Lower: 0, Upper: 100}

// ZForConfidence returns the z value for the supported confidence levels.
// Unrecognized levels fall back to the 95% value.
func ZForConfidence(level float64) float64 {
	switch level {
	case 0.90:
		return 1.645
	case 0.95:
		return 1.96
	default:
		return 1.96
	}
}

// Wilson computes the Wilson score interval for wins successes out of total
// trials at the given z. Total is wins+losses: draws are excluded, matching
// the win rate definition. A zero total returns MaximalInterval.
func Wilson(wins, total int, z float64) Interval {
	if total <= 0 {
		return MaximalInterval
	}

	n := float64(total)
	p := float64(wins) / n
	z2 := z * z

	denom := 1 + z2/n
	center := (p + z2/(2*n)) / denom
	margin := z * math.Sqrt(p*(1-p)/n+z2/(4*n*n)) / denom

	return Interval{
		Lower: math.Max(0, (center-margin)*100),
		Upper: math.Min(100, (center+margin)*100),
	}
}
