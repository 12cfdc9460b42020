// Package config handles embeddist configuration via YAML files and
// environment variables.
//
// Configuration Precedence (highest to lowest):
//  1. Command-line flags (--count, --seed, etc.)
//  2. Environment variables (EMBEDDIST_*)
//  3. Config file (embeddist.yaml)
//  4. Built-in defaults
//
// Example Usage:
//
//	cfg, err := config.LoadFromFile(config.FindConfigFile())
//	if err != nil {
//		log.Fatalf("Invalid config: %v", err)
//	}
//
// Environment Variables:
//
// Benchmark:
//   - EMBEDDIST_COUNT=10000
//   - EMBEDDIST_SEED=42
//   - EMBEDDIST_STRATEGIES="scalar,batch"
//   - EMBEDDIST_WORKERS=8
//   - EMBEDDIST_MIN_BATCH_SIZE=1024
//   - EMBEDDIST_VERIFY=true
//   - EMBEDDIST_TOLERANCE=1e-5
//
// Datasets:
//   - EMBEDDIST_DATA_DIR="./data"
//   - EMBEDDIST_DATASET="default"
//
// Logging:
//   - EMBEDDIST_LOG_PROGRESS=true
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all embeddist configuration.
type Config struct {
	Bench   BenchConfig
	Dataset DatasetConfig
	Logging LoggingConfig
}

// BenchConfig controls the benchmark harness.
type BenchConfig struct {
	// Count is the number of candidate embeddings.
	Count int
	// Seed makes sampling reproducible.
	Seed int64
	// Strategies lists the distance strategies to run, in order.
	Strategies []string
	// Workers caps goroutines for the parallel strategy (0 = NumCPU).
	Workers int
	// MinBatchSize is the candidate count below which the parallel strategy runs inline.
	MinBatchSize int
	// Verify compares every strategy against the scalar results.
	Verify bool
	// Tolerance is the relative error allowed by Verify.
	Tolerance float64
}

// DatasetConfig controls where sampled datasets are persisted.
type DatasetConfig struct {
	// DataDir is the badger directory. Empty keeps datasets in memory only.
	DataDir string
	// Name selects a stored dataset. Empty samples fresh data.
	Name string
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Progress logs one line per strategy while the benchmark runs.
	Progress bool
}

// YAMLConfig is the on-disk layout of embeddist.yaml.
type YAMLConfig struct {
	Bench struct {
		Count        int      `yaml:"count"`
		Seed         *int64   `yaml:"seed"`
		Strategies   []string `yaml:"strategies"`
		Workers      int      `yaml:"workers"`
		MinBatchSize int      `yaml:"min_batch_size"`
		Verify       *bool    `yaml:"verify"`
		Tolerance    float64  `yaml:"tolerance"`
	} `yaml:"bench"`
	Dataset struct {
		DataDir string `yaml:"data_dir"`
		Name    string `yaml:"name"`
	} `yaml:"dataset"`
	Logging struct {
		Progress *bool `yaml:"progress"`
	} `yaml:"logging"`
}

// KnownStrategies lists the strategy names Validate accepts.
var KnownStrategies = []string{"scalar", "batch", "parallel", "pairmatmul"}

// LoadDefaults returns the built-in configuration: the reference run of
// 10,000 candidates with seed 42, scalar loop against one batched product.
func LoadDefaults() *Config {
	return &Config{
		Bench: BenchConfig{
			Count:        10000,
			Seed:         42,
			Strategies:   []string{"scalar", "batch"},
			Workers:      runtime.NumCPU(),
			MinBatchSize: 1024,
			Verify:       true,
			Tolerance:    1e-5,
		},
		Logging: LoggingConfig{
			Progress: true,
		},
	}
}

// LoadFromEnv returns the defaults with EMBEDDIST_* overrides applied.
func LoadFromEnv() *Config {
	cfg := LoadDefaults()
	applyEnvVars(cfg)
	return cfg
}

// LoadFromFile loads defaults, then the YAML file at configPath, then
// environment overrides. A missing file (or empty path) is not an error.
func LoadFromFile(configPath string) (*Config, error) {
	cfg := LoadDefaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			var yamlCfg YAMLConfig
			if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			applyYAML(cfg, &yamlCfg)
		}
	}

	applyEnvVars(cfg)
	return cfg, nil
}

func applyYAML(cfg *Config, y *YAMLConfig) {
	if y.Bench.Count > 0 {
		cfg.Bench.Count = y.Bench.Count
	}
	if y.Bench.Seed != nil {
		cfg.Bench.Seed = *y.Bench.Seed
	}
	if len(y.Bench.Strategies) > 0 {
		cfg.Bench.Strategies = y.Bench.Strategies
	}
	if y.Bench.Workers > 0 {
		cfg.Bench.Workers = y.Bench.Workers
	}
	if y.Bench.MinBatchSize > 0 {
		cfg.Bench.MinBatchSize = y.Bench.MinBatchSize
	}
	if y.Bench.Verify != nil {
		cfg.Bench.Verify = *y.Bench.Verify
	}
	if y.Bench.Tolerance > 0 {
		cfg.Bench.Tolerance = y.Bench.Tolerance
	}
	if y.Dataset.DataDir != "" {
		cfg.Dataset.DataDir = y.Dataset.DataDir
	}
	if y.Dataset.Name != "" {
		cfg.Dataset.Name = y.Dataset.Name
	}
	if y.Logging.Progress != nil {
		cfg.Logging.Progress = *y.Logging.Progress
	}
}

func applyEnvVars(cfg *Config) {
	cfg.Bench.Count = getEnvInt("EMBEDDIST_COUNT", cfg.Bench.Count)
	cfg.Bench.Seed = getEnvInt64("EMBEDDIST_SEED", cfg.Bench.Seed)
	cfg.Bench.Strategies = getEnvStringSlice("EMBEDDIST_STRATEGIES", cfg.Bench.Strategies)
	cfg.Bench.Workers = getEnvInt("EMBEDDIST_WORKERS", cfg.Bench.Workers)
	cfg.Bench.MinBatchSize = getEnvInt("EMBEDDIST_MIN_BATCH_SIZE", cfg.Bench.MinBatchSize)
	cfg.Bench.Verify = getEnvBool("EMBEDDIST_VERIFY", cfg.Bench.Verify)
	cfg.Bench.Tolerance = getEnvFloat("EMBEDDIST_TOLERANCE", cfg.Bench.Tolerance)
	cfg.Dataset.DataDir = getEnv("EMBEDDIST_DATA_DIR", cfg.Dataset.DataDir)
	cfg.Dataset.Name = getEnv("EMBEDDIST_DATASET", cfg.Dataset.Name)
	cfg.Logging.Progress = getEnvBool("EMBEDDIST_LOG_PROGRESS", cfg.Logging.Progress)
}

// Validate checks the configuration for values the harness cannot run with.
func (c *Config) Validate() error {
	if c.Bench.Count < 0 {
		return fmt.Errorf("bench count must be >= 0, got %d", c.Bench.Count)
	}
	if len(c.Bench.Strategies) == 0 {
		return fmt.Errorf("at least one strategy is required")
	}
	for _, s := range c.Bench.Strategies {
		if !isKnownStrategy(s) {
			return fmt.Errorf("unknown strategy %q (known: %s)", s, strings.Join(KnownStrategies, ", "))
		}
	}
	if c.Bench.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Bench.Workers)
	}
	if c.Bench.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be > 0, got %g", c.Bench.Tolerance)
	}
	if c.Dataset.Name != "" && c.Dataset.DataDir == "" {
		return fmt.Errorf("dataset %q requires a data dir", c.Dataset.Name)
	}
	return nil
}

// String renders the configuration for logging.
func (c *Config) String() string {
	return fmt.Sprintf("count=%d seed=%d strategies=%s workers=%d min_batch=%d verify=%v tolerance=%g data_dir=%q dataset=%q",
		c.Bench.Count, c.Bench.Seed, strings.Join(c.Bench.Strategies, ","), c.Bench.Workers,
		c.Bench.MinBatchSize, c.Bench.Verify, c.Bench.Tolerance, c.Dataset.DataDir, c.Dataset.Name)
}

func isKnownStrategy(s string) bool {
	for _, k := range KnownStrategies {
		if s == k {
			return true
		}
	}
	return false
}

// FindConfigFile searches for a config file in standard locations and returns
// the first one found, or "" if none exist.
// Search order:
//  1. ~/.embeddist/config.yaml
//  2. Current working directory (embeddist.yaml, config.yaml)
//  3. ~/.config/embeddist/config.yaml (XDG)
func FindConfigFile() string {
	var candidates []string

	home, homeErr := os.UserHomeDir()
	if homeErr == nil {
		candidates = append(candidates, filepath.Join(home, ".embeddist", "config.yaml"))
	}
	candidates = append(candidates, "embeddist.yaml", "config.yaml")
	if homeErr == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "embeddist", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Helper functions for environment variable parsing

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}

func getEnvStringSlice(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultVal
}
