// Package bench times the distance strategies against one query and a
// candidate collection and checks that they agree.
//
// The reference run samples 10,000 candidates and one query with seed 42,
// loops the scalar distance over every candidate, then computes the same
// distances with a single batched matrix product.
package bench

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/orneryd/embeddist/pkg/dataset"
	"github.com/orneryd/embeddist/pkg/distance"
	"github.com/orneryd/embeddist/pkg/embedding"
)

// Strategy names one way of computing query→candidate distances.
type Strategy string

const (
	// StrategyScalar loops distance.Distance over every candidate.
	StrategyScalar Strategy = "scalar"
	// StrategyBatch runs one distance.Batch call.
	StrategyBatch Strategy = "batch"
	// StrategyParallel runs one distance.Engine.Batch call.
	StrategyParallel Strategy = "parallel"
	// StrategyPairMatMul loops a 1×D · D×1 matrix product per candidate.
	StrategyPairMatMul Strategy = "pairmatmul"
)

// checkEvery is how many candidates a loop strategy processes between
// context checks.
const checkEvery = 1024

// absFloor keeps the relative comparison meaningful for distances near zero.
const absFloor = 1e-6

var (
	// ErrUnknownStrategy is returned for strategy names Run does not know.
	ErrUnknownStrategy = errors.New("bench: unknown strategy")
	// ErrNotEquivalent is returned when a strategy disagrees with the scalar results.
	ErrNotEquivalent = errors.New("bench: strategies disagree")
)

// ParseStrategies converts names into strategies, rejecting unknown ones.
func ParseStrategies(names []string) ([]Strategy, error) {
	out := make([]Strategy, 0, len(names))
	for _, n := range names {
		s := Strategy(n)
		switch s {
		case StrategyScalar, StrategyBatch, StrategyParallel, StrategyPairMatMul:
			out = append(out, s)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, n)
		}
	}
	return out, nil
}

// Options configures Run.
type Options struct {
	// Strategies run in order. Empty means scalar then batch.
	Strategies []Strategy
	// Engine configures the parallel strategy.
	Engine distance.Config
	// Verify compares every strategy with the scalar results.
	Verify bool
	// Tolerance is the relative error Verify allows. Default: 1e-5
	Tolerance float64
	// Seed is recorded in the report.
	Seed int64
	// Logf, if set, receives one progress line per strategy.
	Logf func(format string, args ...any)
}

// Result is the outcome of one strategy.
type Result struct {
	Strategy Strategy
	Duration time.Duration
	// Checksum is the float64 sum of all distances, printed so runs can be
	// compared at a glance.
	Checksum float64
	// Distances holds the per-candidate output in candidate order.
	Distances []float32
}

// Report is the outcome of one Run.
type Report struct {
	RunID      string
	StartedAt  time.Time
	Seed       int64
	Count      int
	Dimensions int
	Results    []Result
	// MaxRelError is the largest relative difference from the scalar results
	// seen across strategies. Zero unless Verify is set.
	MaxRelError float64
}

// Generate samples count candidates followed by one query from seed, in the
// same draw order as the reference run.
func Generate(seed int64, count int) (*dataset.Data, error) {
	s := embedding.NewSeededSampler(seed)
	candidates, err := s.SampleN(count)
	if err != nil {
		return nil, fmt.Errorf("failed to sample candidates: %w", err)
	}
	q, err := s.Sample()
	if err != nil {
		return nil, fmt.Errorf("failed to sample query: %w", err)
	}
	return &dataset.Data{Query: q, Candidates: candidates}, nil
}

// Run times each strategy over data and, if asked, verifies that they agree.
func Run(ctx context.Context, data *dataset.Data, opts Options) (*Report, error) {
	if len(opts.Strategies) == 0 {
		opts.Strategies = []Strategy{StrategyScalar, StrategyBatch}
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-5
	}
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	report := &Report{
		RunID:      uuid.NewString(),
		StartedAt:  time.Now(),
		Seed:       opts.Seed,
		Count:      len(data.Candidates),
		Dimensions: embedding.Dimensions,
	}
	engine := distance.NewEngine(opts.Engine)

	for _, s := range opts.Strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := runStrategy(ctx, s, data, engine)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", s, err)
		}
		logf("   %-10s %v", s, res.Duration)
		report.Results = append(report.Results, *res)
	}

	if opts.Verify {
		maxRel, err := verify(ctx, data, report.Results, opts.Tolerance)
		report.MaxRelError = maxRel
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func runStrategy(ctx context.Context, s Strategy, data *dataset.Data, engine *distance.Engine) (*Result, error) {
	q := &data.Query
	candidates := data.Candidates
	var out []float32

	start := time.Now()
	switch s {
	case StrategyScalar:
		var err error
		out, err = loop(ctx, q, candidates, distance.Distance)
		if err != nil {
			return nil, err
		}
	case StrategyPairMatMul:
		var err error
		out, err = loop(ctx, q, candidates, distance.PairMatMul)
		if err != nil {
			return nil, err
		}
	case StrategyBatch:
		out = distance.Batch(q, candidates)
	case StrategyParallel:
		out = engine.Batch(q, candidates)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
	elapsed := time.Since(start)

	return &Result{
		Strategy:  s,
		Duration:  elapsed,
		Checksum:  checksum(out),
		Distances: out,
	}, nil
}

func loop(ctx context.Context, q *embedding.Embedding, candidates []embedding.Embedding, fn func(a, b *embedding.Embedding) float32) ([]float32, error) {
	out := make([]float32, len(candidates))
	for i := range candidates {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		out[i] = fn(q, &candidates[i])
	}
	return out, nil
}

// verify compares every result with the scalar distances, computing them
// untimed if the scalar strategy was not run.
func verify(ctx context.Context, data *dataset.Data, results []Result, tol float64) (float64, error) {
	var ref []float32
	for _, r := range results {
		if r.Strategy == StrategyScalar {
			ref = r.Distances
			break
		}
	}
	if ref == nil {
		var err error
		ref, err = loop(ctx, &data.Query, data.Candidates, distance.Distance)
		if err != nil {
			return 0, err
		}
	}

	var maxRel float64
	for _, r := range results {
		if len(r.Distances) != len(ref) {
			return maxRel, fmt.Errorf("%w: %s returned %d distances, want %d", ErrNotEquivalent, r.Strategy, len(r.Distances), len(ref))
		}
		for i, want := range ref {
			got := r.Distances[i]
			diff := math.Abs(float64(got) - float64(want))
			scale := math.Abs(float64(want))
			if rel := diff / math.Max(scale, absFloor); rel > maxRel {
				maxRel = rel
			}
			if diff > tol*scale+absFloor {
				return maxRel, fmt.Errorf("%w: %s[%d] = %v, scalar = %v", ErrNotEquivalent, r.Strategy, i, got, want)
			}
		}
	}
	return maxRel, nil
}

func checksum(ds []float32) float64 {
	var sum float64
	for _, d := range ds {
		sum += float64(d)
	}
	return sum
}
