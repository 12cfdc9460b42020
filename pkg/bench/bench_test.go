package bench

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/embeddist/pkg/dataset"
	"github.com/orneryd/embeddist/pkg/distance"
	"github.com/orneryd/embeddist/pkg/embedding"
)

func TestParseStrategies(t *testing.T) {
	got, err := ParseStrategies([]string{"scalar", "batch", "parallel", "pairmatmul"})
	require.NoError(t, err)
	assert.Equal(t, []Strategy{StrategyScalar, StrategyBatch, StrategyParallel, StrategyPairMatMul}, got)

	_, err = ParseStrategies([]string{"scalar", "gpu"})
	require.ErrorIs(t, err, ErrUnknownStrategy)
	assert.Contains(t, err.Error(), `"gpu"`)
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate(42, 5)
	require.NoError(t, err)
	b, err := Generate(42, 5)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a.Candidates, 5)
	assert.InDelta(t, 1, a.Query.Norm(), 1e-5)
}

func TestRunAllStrategiesAgree(t *testing.T) {
	data, err := Generate(42, 2000)
	require.NoError(t, err)

	var lines []string
	report, err := Run(context.Background(), data, Options{
		Strategies: []Strategy{StrategyScalar, StrategyBatch, StrategyParallel, StrategyPairMatMul},
		Engine:     distance.Config{Workers: 4, MinBatchSize: 100},
		Verify:     true,
		Seed:       42,
		Logf: func(format string, args ...any) {
			lines = append(lines, fmt.Sprintf(format, args...))
		},
	})
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	require.NoError(t, err)
	assert.Equal(t, 2000, report.Count)
	assert.Equal(t, embedding.Dimensions, report.Dimensions)
	assert.Equal(t, int64(42), report.Seed)
	require.Len(t, report.Results, 4)
	assert.Len(t, lines, 4)
	assert.LessOrEqual(t, report.MaxRelError, 1e-5)

	scalar := report.Result(StrategyScalar)
	require.NotNil(t, scalar)
	for _, r := range report.Results {
		assert.Len(t, r.Distances, 2000)
		assert.InDelta(t, scalar.Checksum, r.Checksum, 1e-2, "checksum of %s", r.Strategy)
	}
}

func TestRunDefaultsToScalarAndBatch(t *testing.T) {
	data, err := Generate(1, 10)
	require.NoError(t, err)
	report, err := Run(context.Background(), data, Options{})
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, StrategyScalar, report.Results[0].Strategy)
	assert.Equal(t, StrategyBatch, report.Results[1].Strategy)
	assert.Zero(t, report.MaxRelError)
}

func TestRunVerifyWithoutScalar(t *testing.T) {
	data, err := Generate(3, 50)
	require.NoError(t, err)
	report, err := Run(context.Background(), data, Options{
		Strategies: []Strategy{StrategyBatch},
		Verify:     true,
	})
	require.NoError(t, err)
	assert.Nil(t, report.Result(StrategyScalar))
	assert.Zero(t, report.Speedup(StrategyBatch))
}

func TestVerifyDetectsDisagreement(t *testing.T) {
	data, err := Generate(4, 8)
	require.NoError(t, err)
	good := distance.Batch(&data.Query, data.Candidates)
	bad := append([]float32(nil), good...)
	bad[5] += 0.01

	_, err = verify(context.Background(), data, []Result{
		{Strategy: StrategyBatch, Distances: good},
		{Strategy: StrategyParallel, Distances: bad},
	}, 1e-5)
	require.ErrorIs(t, err, ErrNotEquivalent)
	assert.Contains(t, err.Error(), "parallel[5]")

	_, err = verify(context.Background(), data, []Result{
		{Strategy: StrategyBatch, Distances: good[:3]},
	}, 1e-5)
	require.ErrorIs(t, err, ErrNotEquivalent)
}

func TestRunEmptyCandidates(t *testing.T) {
	data, err := Generate(5, 0)
	require.NoError(t, err)
	report, err := Run(context.Background(), data, Options{
		Strategies: []Strategy{StrategyScalar, StrategyBatch, StrategyParallel},
		Verify:     true,
	})
	require.NoError(t, err)
	for _, r := range report.Results {
		assert.Empty(t, r.Distances)
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf))
}

func TestRunCanceled(t *testing.T) {
	data, err := Generate(6, 10)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Run(ctx, data, Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunUnknownStrategy(t *testing.T) {
	data := &dataset.Data{}
	_, err := Run(context.Background(), data, Options{Strategies: []Strategy{"gpu"}})
	require.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestWriteText(t *testing.T) {
	data, err := Generate(7, 1000)
	require.NoError(t, err)
	report, err := Run(context.Background(), data, Options{Verify: true, Seed: 7})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, report.RunID)
	assert.Contains(t, out, "1,000 candidates")
	assert.Contains(t, out, "5.9 MiB")
	assert.Contains(t, out, "STRATEGY")
	assert.Contains(t, out, "scalar")
	assert.Contains(t, out, "batch")
}
