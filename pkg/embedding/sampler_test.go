package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleIsUnitNorm(t *testing.T) {
	s := NewSeededSampler(42)
	for i := 0; i < 200; i++ {
		e, err := s.Sample()
		require.NoError(t, err)
		assert.InDelta(t, 1.0, e.Norm(), 1e-5, "sample %d", i)
	}
}

func TestSampleDeterministic(t *testing.T) {
	a, err := NewSeededSampler(42).SampleN(3)
	require.NoError(t, err)
	b, err := NewSeededSampler(42).SampleN(3)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := NewSeededSampler(43).SampleN(3)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

// zeroSource always returns 0, which can never be normalized.
type zeroSource struct{}

func (zeroSource) NormFloat64() float64 { return 0 }

func TestSampleDegenerate(t *testing.T) {
	_, err := NewSampler(zeroSource{}).Sample()
	require.ErrorIs(t, err, ErrDegenerate)

	_, err = NewSampler(zeroSource{}).SampleN(2)
	require.ErrorIs(t, err, ErrDegenerate)
	assert.Contains(t, err.Error(), "sample 0")
}

func TestSampleN(t *testing.T) {
	es, err := NewSeededSampler(9).SampleN(0)
	require.NoError(t, err)
	assert.Empty(t, es)

	_, err = NewSeededSampler(9).SampleN(-1)
	require.Error(t, err)
}
