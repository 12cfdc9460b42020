package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitAxis(i int) []float32 {
	v := make([]float32, Dimensions)
	v[i] = 1
	return v
}

func TestNew(t *testing.T) {
	t.Run("unit vector", func(t *testing.T) {
		e, err := New(unitAxis(3))
		require.NoError(t, err)
		assert.Equal(t, float32(1), e[3])
		assert.True(t, e.IsNormalized())
	})

	t.Run("wrong dimension", func(t *testing.T) {
		_, err := New([]float32{1, 0, 0, 0})
		require.ErrorIs(t, err, ErrDimensionMismatch)
		assert.Contains(t, err.Error(), "got 4, want 1536")
	})

	t.Run("not normalized", func(t *testing.T) {
		v := unitAxis(0)
		v[0] = 2
		_, err := New(v)
		require.ErrorIs(t, err, ErrNotNormalized)
	})

	t.Run("copies input", func(t *testing.T) {
		v := unitAxis(0)
		e, err := New(v)
		require.NoError(t, err)
		v[0] = 5
		assert.Equal(t, float32(1), e[0])
	})
}

func TestNormalized(t *testing.T) {
	v := make([]float32, Dimensions)
	v[0], v[1] = 3, 4
	e, err := Normalized(v)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, e[0], 1e-6)
	assert.InDelta(t, 0.8, e[1], 1e-6)
	assert.InDelta(t, 1, e.Norm(), NormTolerance)

	_, err = Normalized(make([]float32, Dimensions))
	require.ErrorIs(t, err, ErrDegenerate)

	_, err = Normalized(v[:10])
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestNegate(t *testing.T) {
	e, err := New(unitAxis(7))
	require.NoError(t, err)
	neg := e.Negate()
	assert.Equal(t, float32(-1), neg[7])
	assert.Equal(t, float32(1), e[7], "Negate must not modify the receiver")
	assert.True(t, neg.IsNormalized())
}

func TestFlattenIsZeroCopy(t *testing.T) {
	es := make([]Embedding, 3)
	es[1][5] = 42

	flat := Flatten(es)
	require.Len(t, flat, 3*Dimensions)
	assert.Equal(t, float32(42), flat[Dimensions+5])

	flat[2*Dimensions] = 7
	assert.Equal(t, float32(7), es[2][0], "Flatten must alias the collection")

	assert.Nil(t, Flatten(nil))
	assert.Nil(t, Flatten([]Embedding{}))
}

func TestBytesRoundTrip(t *testing.T) {
	es, err := NewSeededSampler(1).SampleN(4)
	require.NoError(t, err)

	b := AsBytes(es)
	require.Len(t, b, 4*Dimensions*4)

	back, err := FromBytes(b)
	require.NoError(t, err)
	require.Len(t, back, 4)
	for i := range es {
		for j := range es[i] {
			if math.Float32bits(es[i][j]) != math.Float32bits(back[i][j]) {
				t.Fatalf("record %d component %d differs: %v vs %v", i, j, es[i][j], back[i][j])
			}
		}
	}

	_, err = FromBytes(b[:len(b)-1])
	require.ErrorIs(t, err, ErrBufferLength)

	empty, err := FromBytes(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
