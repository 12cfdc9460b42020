//go:build amd64 && !nosimd

package simd

import (
	"math"

	"golang.org/x/sys/cpu"
)

// x86/amd64 kernels. Eight independent accumulators match one 256-bit AVX2
// register of float32 lanes, which lets the compiler keep the loop vectorized.

// hasAVX2 checks if the CPU supports AVX2+FMA at runtime
var hasAVX2 = cpu.X86.HasAVX2 && cpu.X86.HasFMA

func dotProduct(a, b []float32) float32 {
	n := len(a)
	b = b[:n]

	var s0, s1, s2, s3, s4, s5, s6, s7 float32

	i := 0
	for ; i <= n-8; i += 8 {
		s0 += a[i] * b[i]
		s1 += a[i+1] * b[i+1]
		s2 += a[i+2] * b[i+2]
		s3 += a[i+3] * b[i+3]
		s4 += a[i+4] * b[i+4]
		s5 += a[i+5] * b[i+5]
		s6 += a[i+6] * b[i+6]
		s7 += a[i+7] * b[i+7]
	}

	// Tail
	for ; i < n; i++ {
		s0 += a[i] * b[i]
	}

	return (s0 + s1) + (s2 + s3) + (s4 + s5) + (s6 + s7)
}

func norm(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return float32(math.Sqrt(float64(dotProduct(v, v))))
}

func normalizeInPlace(v []float32) {
	n := norm(v)
	if n == 0 {
		return
	}
	inv := 1 / n
	for i := range v {
		v[i] *= inv
	}
}

func runtimeInfo() RuntimeInfo {
	if hasAVX2 {
		return RuntimeInfo{
			Implementation: ImplAVX2,
			Features:       []string{"avx2", "fma", "auto-vectorized"},
			Accelerated:    true,
		}
	}
	return RuntimeInfo{
		Implementation: ImplGeneric,
		Features:       []string{"sse2"},
		Accelerated:    false,
	}
}
