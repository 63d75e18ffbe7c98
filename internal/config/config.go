// Package config loads the pipeline configuration from an optional YAML
// file, applying defaults for absent fields and validating ranges. Command
// flags override file values at the CLI layer.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when fields are absent from the config file. They mirror
// the production pipeline parameters.
const (
	DefaultSplitRatio     = 0.70
	DefaultContamination  = 0.05
	DefaultTrees          = 200
	DefaultSampleSize     = 256
	DefaultSeed           = 42
	DefaultBatchSize      = 100
	DefaultScoreInterval  = 2 * time.Second
	DefaultReplayInterval = 1 * time.Second
)

// Config is the top-level pipeline configuration.
type Config struct {
	// Database is the SQLite database path.
	Database string `yaml:"database"`

	// SplitRatio divides the historical dataset: the first SplitRatio
	// fraction is the training prefix, the rest is the replay suffix.
	// The seeder and the replay producer must agree on it.
	SplitRatio float64 `yaml:"split_ratio"`

	Model   ModelConfig   `yaml:"model"`
	Scoring ScoringConfig `yaml:"scoring"`
	Replay  ReplayConfig  `yaml:"replay"`
}

// ModelConfig holds the training parameters.
type ModelConfig struct {
	// Contamination is the expected anomaly fraction, in (0, 0.5].
	Contamination float64 `yaml:"contamination"`

	// Trees is the isolation-forest ensemble size.
	Trees int `yaml:"trees"`

	// SampleSize is the per-tree subsample size.
	SampleSize int `yaml:"sample_size"`

	// Seed fixes the fit's randomness for reproducible models.
	Seed int64 `yaml:"seed"`
}

// ScoringConfig holds the scoring-loop parameters.
type ScoringConfig struct {
	// BatchSize bounds how many pending readings one cycle scores.
	BatchSize int `yaml:"batch_size"`

	// Interval is the fixed sleep between scoring cycles.
	Interval Duration `yaml:"interval"`
}

// ReplayConfig holds the feed-producer parameters.
type ReplayConfig struct {
	// Interval is the delay between insertions.
	Interval Duration `yaml:"interval"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "2s"
// as well as bare nanosecond integers.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value on line %d", value.Line)
	}
	*d = Duration(n)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String returns the usual duration formatting.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database:   "bridge.db",
		SplitRatio: DefaultSplitRatio,
		Model: ModelConfig{
			Contamination: DefaultContamination,
			Trees:         DefaultTrees,
			SampleSize:    DefaultSampleSize,
			Seed:          DefaultSeed,
		},
		Scoring: ScoringConfig{
			BatchSize: DefaultBatchSize,
			Interval:  Duration(DefaultScoreInterval),
		},
		Replay: ReplayConfig{
			Interval: Duration(DefaultReplayInterval),
		},
	}
}

// Load reads a YAML config file, overlays it on the defaults, and
// validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field is in range.
func (c Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.SplitRatio <= 0 || c.SplitRatio >= 1 {
		return fmt.Errorf("split_ratio %g outside (0, 1)", c.SplitRatio)
	}
	if c.Model.Contamination <= 0 || c.Model.Contamination > 0.5 {
		return fmt.Errorf("model.contamination %g outside (0, 0.5]", c.Model.Contamination)
	}
	if c.Model.Trees <= 0 {
		return fmt.Errorf("model.trees must be positive, got %d", c.Model.Trees)
	}
	if c.Model.SampleSize <= 0 {
		return fmt.Errorf("model.sample_size must be positive, got %d", c.Model.SampleSize)
	}
	if c.Scoring.BatchSize <= 0 {
		return fmt.Errorf("scoring.batch_size must be positive, got %d", c.Scoring.BatchSize)
	}
	if c.Scoring.Interval < 0 {
		return fmt.Errorf("scoring.interval must not be negative, got %s", c.Scoring.Interval)
	}
	if c.Replay.Interval < 0 {
		return fmt.Errorf("replay.interval must not be negative, got %s", c.Replay.Interval)
	}
	return nil
}
