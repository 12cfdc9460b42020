package simd

import (
	"errors"
	"fmt"

	"github.com/viterin/vek/vek32"
)

// Implementation represents the active SIMD implementation
type Implementation string

const (
	// ImplGeneric indicates the vek fallback (may still be accelerated by vek)
	ImplGeneric Implementation = "generic"
	// ImplAVX2 indicates x86 AVX2+FMA SIMD
	ImplAVX2 Implementation = "avx2"
)

// ErrShape is returned when matrix operands do not line up.
var ErrShape = errors.New("simd: matrix shape mismatch")

// RuntimeInfo contains information about the active SIMD implementation
type RuntimeInfo struct {
	// Implementation is the active SIMD backend
	Implementation Implementation
	// Features lists specific CPU features being used
	Features []string
	// Accelerated indicates whether SIMD acceleration is active
	Accelerated bool
	// MatMulAccelerated reports whether vek32.MatMul runs its assembly kernel
	MatMulAccelerated bool
}

// DotProduct computes the dot product of two float32 vectors.
//
// The dot product is defined as: sum(a[i] * b[i]) for all i.
// Returns 0 if vectors are empty or have different lengths.
//
// Example:
//
//	a := []float32{1, 2, 3}
//	b := []float32{4, 5, 6}
//	result := simd.DotProduct(a, b) // 1*4 + 2*5 + 3*6 = 32
func DotProduct(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	return dotProduct(a, b)
}

// Norm computes the Euclidean norm (L2 norm / magnitude) of a float32 vector.
//
// Example:
//
//	v := []float32{3, 4}
//	result := simd.Norm(v) // 5.0
func Norm(v []float32) float32 {
	return norm(v)
}

// NormalizeInPlace normalizes a vector to unit length, modifying it in place.
// A zero vector is left unchanged.
func NormalizeInPlace(v []float32) {
	normalizeInPlace(v)
}

// MatMul multiplies the row-major m×n matrix x by the row-major n×p matrix y
// and returns the m×p product. To multiply a matrix by a vector pass the
// vector as an n×1 matrix.
func MatMul(x, y []float32, n int) ([]float32, error) {
	m, p, err := matShape(x, y, n)
	if err != nil {
		return nil, err
	}
	return matMulInto(make([]float32, m*p), x, y, n), nil
}

// MatMulInto is MatMul writing into dst, which must hold at least m×p values.
// Only dst[:m*p] is written and returned.
func MatMulInto(dst, x, y []float32, n int) ([]float32, error) {
	m, p, err := matShape(x, y, n)
	if err != nil {
		return nil, err
	}
	if len(dst) < m*p {
		return nil, fmt.Errorf("%w: dst holds %d values, product needs %d", ErrShape, len(dst), m*p)
	}
	return matMulInto(dst[:m*p], x, y, n), nil
}

// BatchDotProduct computes the dot product of query with every row of the
// flat row-major matrix rows ([num_rows × len(query)]) as a single
// rows · query matrix product. results must hold at least num_rows values.
func BatchDotProduct(results, rows, query []float32) error {
	if len(query) == 0 {
		return fmt.Errorf("%w: empty query", ErrShape)
	}
	if len(rows) == 0 {
		return nil
	}
	_, err := MatMulInto(results, rows, query, len(query))
	return err
}

// Info returns information about the active SIMD implementation.
func Info() RuntimeInfo {
	info := runtimeInfo()
	info.MatMulAccelerated = vek32.Info().Acceleration
	return info
}

func matShape(x, y []float32, n int) (m, p int, err error) {
	if n <= 0 {
		return 0, 0, fmt.Errorf("%w: inner dimension %d", ErrShape, n)
	}
	if len(x)%n != 0 || len(y)%n != 0 {
		return 0, 0, fmt.Errorf("%w: %d and %d values do not split into rows of %d", ErrShape, len(x), len(y), n)
	}
	return len(x) / n, len(y) / n, nil
}

// vek32 accumulates into dst, so it has to start zeroed.
func matMulInto(dst, x, y []float32, n int) []float32 {
	if len(dst) == 0 {
		return dst
	}
	clear(dst)
	return vek32.MatMul_Into(dst, x, y, n)
}
