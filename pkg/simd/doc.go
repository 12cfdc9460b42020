// Package simd provides float32 vector kernels for embedding distance work.
//
// The kernels pick the fastest implementation available for the platform:
//
//   - x86/amd64: 8-way unrolled loops the compiler vectorizes, with AVX2+FMA
//     detected at runtime
//   - everything else (or the nosimd build tag): github.com/viterin/vek
//
// Matrix multiplication always goes through vek32, which carries its own
// AVX2 kernels and a pure Go fallback.
//
// # Supported Operations
//
//   - DotProduct: Dot product of two vectors
//   - Norm: Euclidean norm (L2 norm / magnitude) of a vector
//   - NormalizeInPlace: Normalize a vector to unit length in-place
//   - MatMul / MatMulInto: Row-major m×n · n×p matrix product
//   - BatchDotProduct: Dot products of one query against a flat row matrix
//
// # Usage
//
//	a := []float32{1.0, 2.0, 3.0, 4.0}
//	b := []float32{5.0, 6.0, 7.0, 8.0}
//	dot := simd.DotProduct(a, b)
//
//	// 3 rows of 4 dimensions against one query
//	rows := make([]float32, 3*4)
//	out := make([]float32, 3)
//	simd.BatchDotProduct(out, rows, a)
//
//	info := simd.Info()
//	fmt.Printf("SIMD: %s (%s)\n", info.Implementation, info.Features)
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use.
// They do not modify any global state.
//
// # Precision
//
// Everything accumulates in float32. Unrolled and blocked kernels sum in a
// different order than a naive loop, so results can differ in the last few
// ulps between DotProduct and BatchDotProduct for the same inputs.
package simd
