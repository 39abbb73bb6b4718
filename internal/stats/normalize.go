package stats

import "math"

// NormalizePresence maps raw presence percentages into [0,1] using a log
// transform: log(p) - log(min(p)), divided by the maximum transformed value.
// Raw presence is roughly exponentially distributed across a metagame, so a
// linear scale would collapse every small archetype to zero.
//
// The maximum value always normalizes to 1.0. Degenerate populations (one
// value, or all values equal) normalize to all zeros. Non-positive inputs
// normalize to 0.
func NormalizePresence(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	min := math.Inf(1)
	for _, v := range values {
		if v > 0 && v < min {
			min = v
		}
	}
	if math.IsInf(min, 1) {
		return out
	}

	logMin := math.Log(min)
	max := 0.0
	for i, v := range values {
		if v <= 0 {
			continue
		}
		out[i] = math.Log(v) - logMin
		if out[i] > max {
			max = out[i]
		}
	}
	if max == 0 {
		return make([]float64, len(values))
	}
	for i := range out {
		out[i] /= max
	}
	return out
}

// NormalizeLinear maps values into [0,1] by subtracting the minimum and
// dividing by the resulting maximum. All-equal populations normalize to zeros.
func NormalizeLinear(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	min := values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
	}
	max := 0.0
	for i, v := range values {
		out[i] = v - min
		if out[i] > max {
			max = out[i]
		}
	}
	if max == 0 {
		return make([]float64, len(values))
	}
	for i := range out {
		out[i] /= max
	}
	return out
}
