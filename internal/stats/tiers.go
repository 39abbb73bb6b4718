package stats

import "math"

// TierOther is the label for archetypes that fall outside every tier bucket.
const TierOther = "Other"

// tierBuckets lists the tier labels and their threshold multiples of the
// bucket width, strongest first. A value at deviation d gets the first label
// whose threshold it meets; below the last threshold it is TierOther.
var tierBuckets = []struct {
	label     string
	threshold float64
}{
	{"0", 3},
	{"0.5", 2},
	{"1", 1},
	{"1.5", 0},
	{"2", -1},
	{"2.5", -2},
	{"3", -3},
}

// TierConfig controls tier assignment.
type TierConfig struct {
	// BucketWidth is the width of one tier bucket in standard deviations.
	BucketWidth float64

	// MaxIterations bounds the fixed-point recomputation that excludes
	// TierOther members from the population mean.
	MaxIterations int
}

// DefaultTierConfig returns the standard tier configuration.
func DefaultTierConfig() TierConfig {
	return TierConfig{
		BucketWidth:   1.0,
		MaxIterations: 10,
	}
}

// TierAssignment is the result of AssignTiers.
type TierAssignment struct {
	// Labels holds one tier label per input value, parallel to the input.
	Labels []string

	// Iterations is how many assignment passes ran.
	Iterations int

	// Approximate is set when the iteration bound was hit before the
	// assignment reached a fixed point.
	Approximate bool
}

// AssignTiers buckets each value (the CI lower bound of an archetype's win
// rate) by its distance in standard deviations from the population mean.
// When any value lands in TierOther, the mean and deviation are recomputed
// excluding TierOther members and every value is reassigned, repeating until
// the assignment stops changing or MaxIterations is reached. Assignment is
// monotonic: a higher value never receives a numerically weaker tier.
func AssignTiers(values []float64, config TierConfig) TierAssignment {
	assignment := TierAssignment{Labels: make([]string, len(values))}
	if len(values) == 0 {
		return assignment
	}
	width := config.BucketWidth
	if width <= 0 {
		width = 1.0
	}
	maxIter := config.MaxIterations
	if maxIter <= 0 {
		maxIter = 1
	}

	included := values
	for iter := 0; iter < maxIter; iter++ {
		assignment.Iterations = iter + 1
		mean := Mean(included)
		sd := SampleStdDev(included)

		changed := false
		for i, v := range values {
			label := tierFor(v, mean, sd, width)
			if assignment.Labels[i] != label {
				assignment.Labels[i] = label
				changed = true
			}
		}
		if !changed {
			return assignment
		}

		included = included[:0:0]
		for i, v := range values {
			if assignment.Labels[i] != TierOther {
				included = append(included, v)
			}
		}
		if len(included) == 0 {
			// Everything fell out; keep the all-Other assignment.
			return assignment
		}
	}

	assignment.Approximate = true
	return assignment
}

func tierFor(v, mean, sd, width float64) string {
	// Zero spread puts on-mean values in the middle tier; anything off the
	// mean is then infinitely many deviations away.
	var deviation float64
	switch {
	case sd > 0:
		deviation = (v - mean) / sd
	case v > mean:
		deviation = math.Inf(1)
	case v < mean:
		deviation = math.Inf(-1)
	}
	for _, bucket := range tierBuckets {
		if deviation >= bucket.threshold*width {
			return bucket.label
		}
	}
	return TierOther
}
