package distance

import (
	"fmt"

	"github.com/orneryd/embeddist/pkg/embedding"
	"github.com/orneryd/embeddist/pkg/simd"
)

// Batch returns the distance from query to every candidate, in candidate
// order. The candidates are multiplied as one N×Dimensions matrix by the
// query column; an empty collection yields an empty, non-nil result.
func Batch(query *embedding.Embedding, candidates []embedding.Embedding) []float32 {
	out := make([]float32, len(candidates))
	batchInto(out, query, candidates)
	return out
}

// BatchInto is Batch writing into dst, which must hold at least
// len(candidates) values. It returns dst[:len(candidates)].
func BatchInto(dst []float32, query *embedding.Embedding, candidates []embedding.Embedding) ([]float32, error) {
	if len(dst) < len(candidates) {
		return nil, fmt.Errorf("%w: dst holds %d, need %d", ErrBufferLength, len(dst), len(candidates))
	}
	dst = dst[:len(candidates)]
	batchInto(dst, query, candidates)
	return dst, nil
}

// BatchFlat is Batch for a raw row-major matrix whose row length is
// len(query). len(flat) must be a whole number of rows.
func BatchFlat(query, flat []float32) ([]float32, error) {
	dims := len(query)
	if dims == 0 {
		return nil, fmt.Errorf("%w: empty query", ErrDimensionMismatch)
	}
	if len(flat)%dims != 0 {
		return nil, fmt.Errorf("%w: %d values is not a multiple of %d", ErrBufferLength, len(flat), dims)
	}
	out := make([]float32, len(flat)/dims)
	if err := batchFlatInto(out, query, flat); err != nil {
		return nil, err
	}
	return out, nil
}

func batchInto(dst []float32, query *embedding.Embedding, candidates []embedding.Embedding) {
	if err := batchFlatInto(dst, query[:], embedding.Flatten(candidates)); err != nil {
		// Shapes come from the Embedding type and cannot disagree.
		panic(err)
	}
}

// batchFlatInto computes flat · query into dst and maps each similarity to a
// distance in place. len(dst) must equal len(flat)/len(query).
func batchFlatInto(dst, query, flat []float32) error {
	if len(dst) == 0 {
		return nil
	}
	if err := simd.BatchDotProduct(dst, flat, query); err != nil {
		return err
	}
	for i, s := range dst {
		dst[i] = FromSimilarity(s)
	}
	return nil
}
