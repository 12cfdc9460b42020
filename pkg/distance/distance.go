// Package distance computes the normalized cosine distance between unit-norm
// embeddings, one pair at a time or for a whole candidate collection in one
// matrix product.
//
// Normalized cosine distance maps cosine similarity s ∈ [-1, 1] onto [0, 1]:
//
//	distance = (1 - s) / 2
//
// 0 means same direction, 0.5 orthogonal, 1 opposite. For unit-norm inputs
// the cosine similarity is just the dot product, so no norms are computed.
// Passing vectors that are not unit norm returns a number that is not a
// cosine distance; nothing here checks for it.
//
// # Strategies
//
//   - Distance: one dot product per pair, O(D), no allocation
//   - Batch: candidates viewed as an N×D matrix (zero-copy), multiplied by
//     the query as a D×1 column in a single kernel call
//   - Engine.Batch: Batch split into row blocks across goroutines
//   - PairMatMul: a 1×D · D×1 matrix product per pair
//
// All strategies agree element-wise to within a relative error of 1e-5.
//
// # Checked and unchecked paths
//
// The *embedding.Embedding functions are the fast path: the array type fixes
// the dimension and the norm is trusted. DistanceSlices, BatchFlat and
// BatchInto validate lengths and return ErrDimensionMismatch or
// ErrBufferLength instead.
package distance

import (
	"errors"
	"fmt"

	"github.com/orneryd/embeddist/pkg/embedding"
	"github.com/orneryd/embeddist/pkg/simd"
)

var (
	// ErrDimensionMismatch is returned when vectors do not share a dimension.
	ErrDimensionMismatch = errors.New("distance: dimension mismatch")
	// ErrBufferLength is returned when a flat buffer or destination has the wrong length.
	ErrBufferLength = errors.New("distance: buffer length mismatch")
)

// FromSimilarity maps a cosine similarity onto the normalized cosine distance.
func FromSimilarity(s float32) float32 {
	return (1 - s) / 2
}

// Distance returns the normalized cosine distance between a and b.
func Distance(a, b *embedding.Embedding) float32 {
	return FromSimilarity(simd.DotProduct(a[:], b[:]))
}

// DistanceSlices is Distance for raw slices of any shared, non-zero length.
func DistanceSlices(a, b []float32) (float32, error) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	return FromSimilarity(simd.DotProduct(a, b)), nil
}

// PairMatMul computes the distance between a and b as a 1×D · D×1 matrix
// product. It returns the same value as Distance and exists to measure what
// routing a single pair through the matrix kernel costs.
func PairMatMul(a, b *embedding.Embedding) float32 {
	var out [1]float32
	if _, err := simd.MatMulInto(out[:], a[:], b[:], embedding.Dimensions); err != nil {
		// Both operands are exactly Dimensions long.
		panic(err)
	}
	return FromSimilarity(out[0])
}
