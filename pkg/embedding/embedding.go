// Package embedding defines the fixed-dimension, unit-norm float32 vector used
// by every distance operation, plus the sampler that produces them.
//
// Embedding is a Go array, so a []Embedding is one tightly packed block of
// len×Dimensions float32 values. Flatten and AsBytes expose that block
// without copying; the distance package relies on this to hand the whole
// candidate collection to a single matrix product.
//
// Unit norm is a precondition, not a checked property. New and the Sampler
// establish it once; distance operations trust it afterwards.
package embedding

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/orneryd/embeddist/pkg/simd"
)

// Dimensions is the fixed length of every Embedding.
const Dimensions = 1536

// NormTolerance is how far the L2 norm may drift from 1 and still count as
// normalized.
const NormTolerance = 1e-5

// degenerateNorm is the norm below which a vector has no usable direction.
const degenerateNorm = 1e-12

// Embedding is a unit-norm float32 vector of Dimensions components.
type Embedding [Dimensions]float32

// recordSize is the in-memory size of one Embedding in bytes.
const recordSize = Dimensions * 4

// Embedding must be exactly Dimensions packed float32s for Flatten and
// AsBytes. The index below is out of range at compile time otherwise.
var _ = [1]struct{}{}[unsafe.Sizeof(Embedding{})-recordSize]

var (
	// ErrDimensionMismatch is returned when a vector does not have Dimensions components.
	ErrDimensionMismatch = errors.New("embedding: dimension mismatch")
	// ErrNotNormalized is returned when a vector's L2 norm is not 1 within NormTolerance.
	ErrNotNormalized = errors.New("embedding: vector is not unit norm")
	// ErrDegenerate is returned when a vector is too close to zero to normalize.
	ErrDegenerate = errors.New("embedding: degenerate vector")
	// ErrBufferLength is returned when a byte buffer is not a whole number of records.
	ErrBufferLength = errors.New("embedding: buffer length is not a multiple of the record size")
)

// New copies values into an Embedding after checking the dimension and the
// unit-norm invariant. Use Normalized for raw model output.
func New(values []float32) (Embedding, error) {
	var e Embedding
	if len(values) != Dimensions {
		return e, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(values), Dimensions)
	}
	copy(e[:], values)
	if n := e.Norm(); math.Abs(float64(n)-1) > NormTolerance {
		return Embedding{}, fmt.Errorf("%w: norm %v", ErrNotNormalized, n)
	}
	return e, nil
}

// Normalized copies values into an Embedding scaled to unit length.
func Normalized(values []float32) (Embedding, error) {
	var e Embedding
	if len(values) != Dimensions {
		return e, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(values), Dimensions)
	}
	copy(e[:], values)
	if err := e.normalize(); err != nil {
		return Embedding{}, err
	}
	return e, nil
}

// Norm returns the L2 norm of e.
func (e *Embedding) Norm() float32 {
	return simd.Norm(e[:])
}

// IsNormalized reports whether e satisfies the unit-norm invariant.
func (e *Embedding) IsNormalized() bool {
	return math.Abs(float64(e.Norm())-1) <= NormTolerance
}

// Negate returns the embedding pointing in the opposite direction.
func (e *Embedding) Negate() Embedding {
	var out Embedding
	for i, v := range e {
		out[i] = -v
	}
	return out
}

// Slice returns e's components as a slice aliasing e.
func (e *Embedding) Slice() []float32 {
	return e[:]
}

func (e *Embedding) normalize() error {
	n := e.Norm()
	if n < degenerateNorm || math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
		return fmt.Errorf("%w: norm %v", ErrDegenerate, n)
	}
	simd.NormalizeInPlace(e[:])
	return nil
}

// Flatten views a collection as one row-major len(es)×Dimensions float32
// buffer. The result aliases es; nothing is copied. Returns nil for an empty
// collection.
func Flatten(es []Embedding) []float32 {
	if len(es) == 0 {
		return nil
	}
	return unsafe.Slice(&es[0][0], len(es)*Dimensions)
}

// AsBytes views a collection as its raw in-memory bytes (native endianness).
// The result aliases es.
func AsBytes(es []Embedding) []byte {
	if len(es) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&es[0])), len(es)*recordSize)
}

// FromBytes copies a buffer produced by AsBytes back into a new collection.
func FromBytes(b []byte) ([]Embedding, error) {
	if len(b)%recordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes, record is %d", ErrBufferLength, len(b), recordSize)
	}
	out := make([]Embedding, len(b)/recordSize)
	copy(AsBytes(out), b)
	return out, nil
}
