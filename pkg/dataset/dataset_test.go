package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/embeddist/pkg/embedding"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleData(t *testing.T, seed int64, n int) *Data {
	t.Helper()
	sampler := embedding.NewSeededSampler(seed)
	candidates, err := sampler.SampleN(n)
	require.NoError(t, err)
	q, err := sampler.Sample()
	require.NoError(t, err)
	return &Data{Query: q, Candidates: candidates}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	// Spans several chunks with a partial last one.
	data := sampleData(t, 42, 2*ChunkSize+17)

	require.NoError(t, s.Save("bench", 42, data))

	got, err := s.Load("bench")
	require.NoError(t, err)
	assert.Equal(t, data.Query, got.Query)
	require.Len(t, got.Candidates, len(data.Candidates))
	assert.Equal(t, data.Candidates, got.Candidates)

	meta, err := s.Meta("bench")
	require.NoError(t, err)
	assert.Equal(t, "bench", meta.Name)
	assert.Equal(t, len(data.Candidates), meta.Count)
	assert.Equal(t, embedding.Dimensions, meta.Dimensions)
	assert.Equal(t, int64(42), meta.Seed)
	assert.False(t, meta.CreatedAt.IsZero())
}

func TestSaveEmptyCandidates(t *testing.T) {
	s := openTestStore(t)
	data := sampleData(t, 1, 0)
	require.NoError(t, s.Save("empty", 1, data))

	got, err := s.Load("empty")
	require.NoError(t, err)
	assert.Equal(t, data.Query, got.Query)
	assert.Empty(t, got.Candidates)
}

func TestSaveReplaces(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Save("x", 1, sampleData(t, 1, ChunkSize+1)))
	smaller := sampleData(t, 2, 3)
	require.NoError(t, s.Save("x", 2, smaller))

	got, err := s.Load("x")
	require.NoError(t, err)
	assert.Equal(t, smaller.Candidates, got.Candidates)
}

func TestListAndDelete(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Save("a", 1, sampleData(t, 1, 2)))
	require.NoError(t, s.Save("b", 2, sampleData(t, 2, 2)))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	require.NoError(t, s.Delete("a"))
	_, err = s.Load("a")
	require.ErrorIs(t, err, ErrNotFound)

	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)

	require.ErrorIs(t, s.Delete("a"), ErrNotFound)
}

func TestInvalidNames(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{"", "a/b"} {
		require.ErrorIs(t, s.Save(name, 0, sampleData(t, 1, 1)), ErrInvalidName)
		_, err := s.Load(name)
		require.ErrorIs(t, err, ErrInvalidName)
	}
}

func TestLoadMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Load("nope")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Meta("nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore(t *testing.T) {
	s, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	defer s.Close()

	data := sampleData(t, 5, 10)
	require.NoError(t, s.Save("mem", 5, data))
	got, err := s.Load("mem")
	require.NoError(t, err)
	assert.Equal(t, data.Candidates, got.Candidates)
}
