package embedding

import (
	"fmt"
	"math/rand"
)

// Source supplies normally distributed values. *rand.Rand satisfies it.
type Source interface {
	NormFloat64() float64
}

// Sampler draws random unit-norm embeddings. Normalizing a vector of
// independent Gaussians gives a direction uniform on the unit hypersphere.
//
// A Sampler is not safe for concurrent use; give each goroutine its own.
type Sampler struct {
	src Source
}

// NewSampler returns a Sampler drawing from src.
func NewSampler(src Source) *Sampler {
	return &Sampler{src: src}
}

// NewSeededSampler returns a deterministic Sampler for seed.
func NewSeededSampler(seed int64) *Sampler {
	return NewSampler(rand.New(rand.NewSource(seed)))
}

// Sample returns one embedding. It fails only when the draw is degenerate.
func (s *Sampler) Sample() (Embedding, error) {
	var e Embedding
	if err := s.SampleInto(&e); err != nil {
		return Embedding{}, err
	}
	return e, nil
}

// SampleInto overwrites e with a fresh sample.
func (s *Sampler) SampleInto(e *Embedding) error {
	for i := range e {
		e[i] = float32(s.src.NormFloat64())
	}
	return e.normalize()
}

// SampleN returns n embeddings in one contiguous slice.
func (s *Sampler) SampleN(n int) ([]Embedding, error) {
	if n < 0 {
		return nil, fmt.Errorf("embedding: negative sample count %d", n)
	}
	out := make([]Embedding, n)
	for i := range out {
		if err := s.SampleInto(&out[i]); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
	}
	return out, nil
}
