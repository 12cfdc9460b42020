// Package main provides the embeddist CLI entry point.
//
// embeddist samples unit-norm embeddings and times the normalized cosine
// distance strategies against each other.
//
// Usage:
//
//	embeddist bench [--count 10000 --seed 42 --strategies scalar,batch]
//	embeddist sample --name nightly --data-dir ./data
//	embeddist bench --dataset nightly --data-dir ./data
//	embeddist datasets --data-dir ./data
//	embeddist info
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/orneryd/embeddist/pkg/bench"
	"github.com/orneryd/embeddist/pkg/config"
	"github.com/orneryd/embeddist/pkg/dataset"
	"github.com/orneryd/embeddist/pkg/distance"
	"github.com/orneryd/embeddist/pkg/embedding"
	"github.com/orneryd/embeddist/pkg/simd"
)

var (
	version   = "0.1.0"
	commit    = "dev"
	buildTime = "unknown" // Set via ldflags: -X main.buildTime=$(date +%Y%m%d-%H%M%S)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "embeddist",
		Short: "embeddist - normalized cosine distance benchmarks",
		Long: `embeddist compares two ways of computing normalized cosine distance
between one query embedding and many candidates:

  • scalar:     one dot product per candidate
  • batch:      one matrix product over all candidates
  • parallel:   the batch split into row blocks across goroutines
  • pairmatmul: a 1×D · D×1 matrix product per candidate

Embeddings are 1536-dimensional unit-norm float32 vectors.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Config file (default: search standard locations)")
	rootCmd.PersistentFlags().String("data-dir", "", "Dataset directory (BadgerDB)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "embeddist v%s (%s) built %s\n", version, commit, buildTime)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show the active SIMD implementation",
		Run: func(cmd *cobra.Command, args []string) {
			info := simd.Info()
			fmt.Fprintf(cmd.OutOrStdout(), "implementation: %s\naccelerated: %v\nmatmul accelerated: %v\nfeatures: %v\ndimensions: %d\n",
				info.Implementation, info.Accelerated, info.MatMulAccelerated, info.Features, embedding.Dimensions)
		},
	})

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Time the distance strategies",
		RunE:  runBench,
	}
	benchCmd.Flags().Int("count", 0, "Number of candidate embeddings (default 10000)")
	benchCmd.Flags().Int64("seed", 0, "Random seed (default 42)")
	benchCmd.Flags().StringSlice("strategies", nil, "Strategies to run: scalar, batch, parallel, pairmatmul")
	benchCmd.Flags().Int("workers", 0, "Goroutines for the parallel strategy (0 = all CPUs)")
	benchCmd.Flags().Int("min-batch-size", 0, "Candidates below which the parallel strategy runs inline")
	benchCmd.Flags().Bool("verify", true, "Check every strategy against the scalar results")
	benchCmd.Flags().Float64("tolerance", 0, "Relative error allowed by --verify (default 1e-5)")
	benchCmd.Flags().String("dataset", "", "Load a stored dataset instead of sampling")
	benchCmd.Flags().Bool("quiet", false, "Suppress progress logging")
	rootCmd.AddCommand(benchCmd)

	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "Sample a dataset and store it",
		RunE:  runSample,
	}
	sampleCmd.Flags().String("name", "default", "Dataset name")
	sampleCmd.Flags().Int("count", 0, "Number of candidate embeddings (default 10000)")
	sampleCmd.Flags().Int64("seed", 0, "Random seed (default 42)")
	rootCmd.AddCommand(sampleCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "datasets",
		Short: "List stored datasets",
		RunE:  runDatasets,
	})

	return rootCmd
}

// loadConfig reads the config file and environment, then applies any flags
// set on cmd. Flags left at their defaults do not override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.Dataset.DataDir, _ = flags.GetString("data-dir")
	}
	if f := flags.Lookup("count"); f != nil && f.Changed {
		cfg.Bench.Count, _ = flags.GetInt("count")
	}
	if f := flags.Lookup("seed"); f != nil && f.Changed {
		cfg.Bench.Seed, _ = flags.GetInt64("seed")
	}
	if f := flags.Lookup("strategies"); f != nil && f.Changed {
		cfg.Bench.Strategies, _ = flags.GetStringSlice("strategies")
	}
	if f := flags.Lookup("workers"); f != nil && f.Changed {
		cfg.Bench.Workers, _ = flags.GetInt("workers")
	}
	if f := flags.Lookup("min-batch-size"); f != nil && f.Changed {
		cfg.Bench.MinBatchSize, _ = flags.GetInt("min-batch-size")
	}
	if f := flags.Lookup("verify"); f != nil && f.Changed {
		cfg.Bench.Verify, _ = flags.GetBool("verify")
	}
	if f := flags.Lookup("tolerance"); f != nil && f.Changed {
		cfg.Bench.Tolerance, _ = flags.GetFloat64("tolerance")
	}
	if f := flags.Lookup("dataset"); f != nil && f.Changed {
		cfg.Dataset.Name, _ = flags.GetString("dataset")
	}
	if f := flags.Lookup("quiet"); f != nil && f.Changed {
		quiet, _ := flags.GetBool("quiet")
		cfg.Logging.Progress = !quiet
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	strategies, err := bench.ParseStrategies(cfg.Bench.Strategies)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logf := func(string, ...any) {}
	if cfg.Logging.Progress {
		logf = log.Printf
	}

	logf("📐 embeddist bench")
	logf("   %s", cfg)

	data, seed, err := benchData(cfg, logf)
	if err != nil {
		return err
	}

	logf("⏱️  Running %d strategies over %d candidates...", len(strategies), len(data.Candidates))
	report, err := bench.Run(ctx, data, bench.Options{
		Strategies: strategies,
		Engine: distance.Config{
			Workers:      cfg.Bench.Workers,
			MinBatchSize: cfg.Bench.MinBatchSize,
		},
		Verify:    cfg.Bench.Verify,
		Tolerance: cfg.Bench.Tolerance,
		Seed:      seed,
		Logf:      logf,
	})
	if err != nil {
		return err
	}
	if cfg.Bench.Verify {
		logf("✅ All strategies agree (max relative error %.3g)", report.MaxRelError)
	}
	return report.WriteText(cmd.OutOrStdout())
}

// benchData loads the configured dataset or samples a fresh one.
func benchData(cfg *config.Config, logf func(string, ...any)) (*dataset.Data, int64, error) {
	if cfg.Dataset.Name == "" {
		logf("📊 Sampling %d embeddings (seed %d)...", cfg.Bench.Count, cfg.Bench.Seed)
		data, err := bench.Generate(cfg.Bench.Seed, cfg.Bench.Count)
		return data, cfg.Bench.Seed, err
	}

	store, err := dataset.Open(dataset.Options{DataDir: cfg.Dataset.DataDir})
	if err != nil {
		return nil, 0, err
	}
	defer store.Close()

	meta, err := store.Meta(cfg.Dataset.Name)
	if err != nil {
		return nil, 0, err
	}
	logf("📥 Loading dataset %q (%d candidates, seed %d)...", meta.Name, meta.Count, meta.Seed)
	data, err := store.Load(cfg.Dataset.Name)
	if err != nil {
		return nil, 0, err
	}
	return data, meta.Seed, nil
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Dataset.DataDir == "" {
		return fmt.Errorf("sample needs --data-dir (or EMBEDDIST_DATA_DIR)")
	}
	name, _ := cmd.Flags().GetString("name")

	log.Printf("📊 Sampling %d embeddings (seed %d)...", cfg.Bench.Count, cfg.Bench.Seed)
	data, err := bench.Generate(cfg.Bench.Seed, cfg.Bench.Count)
	if err != nil {
		return err
	}

	store, err := dataset.Open(dataset.Options{DataDir: cfg.Dataset.DataDir})
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(name, cfg.Bench.Seed, data); err != nil {
		return err
	}
	log.Printf("💾 Saved dataset %q to %s", name, cfg.Dataset.DataDir)
	return nil
}

func runDatasets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Dataset.DataDir == "" {
		return fmt.Errorf("datasets needs --data-dir (or EMBEDDIST_DATA_DIR)")
	}
	store, err := dataset.Open(dataset.Options{DataDir: cfg.Dataset.DataDir})
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := store.List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, name := range names {
		meta, err := store.Meta(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%d candidates\tseed %d\t%s\n", meta.Name, meta.Count, meta.Seed, meta.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

