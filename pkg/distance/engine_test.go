package distance

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngineDefaults(t *testing.T) {
	cfg := NewEngine(Config{}).Config()
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, 1024, cfg.MinBatchSize)

	cfg = NewEngine(Config{Workers: 3, MinBatchSize: 10}).Config()
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 10, cfg.MinBatchSize)
}

func TestEngineMatchesBatch(t *testing.T) {
	es := sample(t, 10, 501)
	q, candidates := &es[0], es[1:]
	want := Batch(q, candidates)

	for _, workers := range []int{1, 2, 3, 7, 16, 1000} {
		t.Run(fmt.Sprintf("workers-%d", workers), func(t *testing.T) {
			e := NewEngine(Config{Workers: workers, MinBatchSize: 1})
			got := e.Batch(q, candidates)
			require.Len(t, got, len(want))
			for i := range want {
				assertEquivalent(t, want[i], got[i], i)
			}
		})
	}
}

func TestEngineBelowThresholdRunsInline(t *testing.T) {
	es := sample(t, 11, 5)
	e := NewEngine(Config{Workers: 8, MinBatchSize: 100})
	assert.Equal(t, Batch(&es[0], es[1:]), e.Batch(&es[0], es[1:]))
}

func TestEngineConcurrentUse(t *testing.T) {
	es := sample(t, 12, 300)
	q, candidates := &es[0], es[1:]
	want := Batch(q, candidates)
	e := NewEngine(Config{Workers: 4, MinBatchSize: 1})

	var wg sync.WaitGroup
	results := make([][]float32, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Batch(q, candidates)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		for i := range want {
			assertEquivalent(t, want[i], got[i], i)
		}
	}
}
