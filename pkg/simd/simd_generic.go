//go:build !amd64 || nosimd

package simd

import "github.com/viterin/vek/vek32"

// Fallback kernels backed by viterin/vek. vek32 picks its own accelerated
// path when the CPU has one and a pure Go loop otherwise.

func dotProduct(a, b []float32) float32 {
	return vek32.Dot(a, b)
}

func norm(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return vek32.Norm(v)
}

func normalizeInPlace(v []float32) {
	n := norm(v)
	if n == 0 {
		return
	}
	vek32.DivNumber_Inplace(v, n)
}

func runtimeInfo() RuntimeInfo {
	info := vek32.Info()
	return RuntimeInfo{
		Implementation: ImplGeneric,
		Features:       info.CPUFeatures,
		Accelerated:    info.Acceleration,
	}
}
