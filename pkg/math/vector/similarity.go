// Package vector provides float64-accumulating reference versions of the
// distance math.
//
// The kernels in pkg/simd and pkg/distance accumulate in float32 for speed.
// The functions here accumulate in float64 and exist to measure how far the
// float32 results drift; use them in tests and diagnostics, not hot paths.
package vector

import "math"

// DotProduct returns sum(a[i] * b[i]) accumulated in float64.
// Returns 0 if the vectors are empty or have different lengths.
func DotProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Norm returns the L2 norm of v accumulated in float64.
func Norm(v []float32) float64 {
	return math.Sqrt(DotProduct(v, v))
}

// CosineSimilarity calculates cosine similarity with float64 accumulation,
// dividing by both norms so it is exact for non-normalized input too.
// Returns 0 if either vector has zero length.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProd, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dotProd += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProd / (math.Sqrt(normA) * math.Sqrt(normB))
}

// NormalizedCosineDistance returns (1 - cosine similarity) / 2 in float64.
func NormalizedCosineDistance(a, b []float32) float64 {
	return (1 - CosineSimilarity(a, b)) / 2
}

// MaxAbsDiff returns the largest |got[i] - want[i]|, or +Inf if the lengths
// differ.
func MaxAbsDiff(got []float32, want []float64) float64 {
	if len(got) != len(want) {
		return math.Inf(1)
	}
	var m float64
	for i := range got {
		if d := math.Abs(float64(got[i]) - want[i]); d > m {
			m = d
		}
	}
	return m
}
