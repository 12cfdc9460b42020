package distance

import (
	"runtime"
	"sync"

	"github.com/orneryd/embeddist/pkg/embedding"
)

// Config controls how Engine splits a batch across goroutines.
type Config struct {
	// Workers is the maximum number of goroutines per batch.
	// Default: runtime.NumCPU()
	Workers int

	// MinBatchSize is the candidate count below which the batch runs on the
	// calling goroutine. Default: 1024
	MinBatchSize int
}

// DefaultConfig returns the default parallel batch configuration.
func DefaultConfig() Config {
	return Config{
		Workers:      runtime.NumCPU(),
		MinBatchSize: 1024,
	}
}

// Engine runs batched distance computations split into contiguous row blocks,
// one matrix product per block. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine returns an Engine for cfg, filling zero fields from DefaultConfig.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.MinBatchSize <= 0 {
		cfg.MinBatchSize = def.MinBatchSize
	}
	return &Engine{cfg: cfg}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Batch returns the same result as the package-level Batch.
func (e *Engine) Batch(query *embedding.Embedding, candidates []embedding.Embedding) []float32 {
	out := make([]float32, len(candidates))
	e.batchInto(out, query, candidates)
	return out
}

func (e *Engine) batchInto(dst []float32, query *embedding.Embedding, candidates []embedding.Embedding) {
	n := len(candidates)
	if e.cfg.Workers <= 1 || n < e.cfg.MinBatchSize {
		batchInto(dst, query, candidates)
		return
	}

	workers := e.cfg.Workers
	if workers > n {
		workers = n
	}
	chunkSize := (n + workers - 1) / workers

	// Each worker owns dst[start:end]; no two windows overlap.
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			batchInto(dst[start:end], query, candidates[start:end])
		}(start, end)
	}
	wg.Wait()
}
