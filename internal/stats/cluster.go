package stats

import (
	"math"
	"sort"
)

// ClusterConfig controls k-means clustering of archetype feature vectors.
type ClusterConfig struct {
	// K is the number of clusters. Populations smaller than K get one
	// cluster per point.
	K int

	// MaxIterations bounds the Lloyd iteration count.
	MaxIterations int
}

// DefaultClusterConfig returns the standard clustering configuration.
func DefaultClusterConfig() ClusterConfig {
	return ClusterConfig{
		K:             3,
		MaxIterations: 100,
	}
}

// Cluster partitions points into K groups with k-means and returns one
// cluster id per point. Features are z-score standardized first so a
// 0-100 win rate cannot drown out a small share fraction.
//
// Seeding is deterministic: points are ranked by their standardized feature
// sum and the initial centroids are taken at evenly spaced ranks. Random
// seeding would break run-to-run reproducibility of the pipeline.
func Cluster(points [][]float64, config ClusterConfig) []int {
	n := len(points)
	if n == 0 {
		return nil
	}
	k := config.K
	if k <= 0 {
		k = 1
	}
	if k >= n {
		ids := make([]int, n)
		for i := range ids {
			ids[i] = i
		}
		return ids
	}
	maxIter := config.MaxIterations
	if maxIter <= 0 {
		maxIter = 1
	}

	standardized := standardize(points)

	// Rank points by feature sum; seed centroids at evenly spaced ranks.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return featureSum(standardized[order[a]]) < featureSum(standardized[order[b]])
	})
	dims := len(standardized[0])
	centroids := make([][]float64, k)
	for c := 0; c < k; c++ {
		rank := (2*c + 1) * n / (2 * k)
		centroids[c] = append([]float64(nil), standardized[order[rank]]...)
	}

	assignments := make([]int, n)
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, p := range standardized {
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				if d := squaredDistance(p, centroid); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		counts := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, p := range standardized {
			c := assignments[i]
			counts[c]++
			for d, v := range p {
				sums[c][d] += v
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				// Empty cluster keeps its previous centroid.
				continue
			}
			for d := range centroids[c] {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}
	}

	return assignments
}

// standardize z-scores each feature column. Columns with zero spread map to 0.
func standardize(points [][]float64) [][]float64 {
	n := len(points)
	dims := len(points[0])
	out := make([][]float64, n)

	column := make([]float64, n)
	means := make([]float64, dims)
	sds := make([]float64, dims)
	for d := 0; d < dims; d++ {
		for i, p := range points {
			column[i] = p[d]
		}
		means[d] = Mean(column)
		sds[d] = SampleStdDev(column)
	}

	for i, p := range points {
		out[i] = make([]float64, dims)
		for d, v := range p {
			if sds[d] > 0 {
				out[i][d] = (v - means[d]) / sds[d]
			}
		}
	}
	return out
}

func featureSum(p []float64) float64 {
	sum := 0.0
	for _, v := range p {
		sum += v
	}
	return sum
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
