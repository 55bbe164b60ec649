// Package config loads the YAML run configuration and merges CLI
// overrides on top of it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scriven-ml/scriven/internal/augment"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	TrainPath  string  `yaml:"train_path"`
	TestPath   string  `yaml:"test_path"`
	OutputPath string  `yaml:"output_path"`
	Model      string  `yaml:"model"`
	Epochs     int     `yaml:"epochs"`
	BatchSize  int     `yaml:"batch_size"`
	LR         float64 `yaml:"learning_rate"`
	Seed       int64   `yaml:"seed"`
	LogEvery   int     `yaml:"log_every"`

	// Synthetic > 0 replaces the CSV inputs with that many generated
	// training rows (plus 10 test rows), for smoke runs without data.
	Synthetic int `yaml:"synthetic"`

	Augment augment.Config `yaml:"augment"`

	PreviewPath string `yaml:"preview_path"` // optional sample-grid PNG
	CurvesPath  string `yaml:"curves_path"`  // optional training-curves PNG
}

// Overrides captures CLI supplied values. Zero fields leave the config
// untouched.
type Overrides struct {
	TrainPath  string
	TestPath   string
	OutputPath string
	Model      string
	Epochs     int
	BatchSize  int
	LR         float64
	Seed       int64
	Synthetic  int

	PreviewPath string
	CurvesPath  string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		TrainPath:  "train.csv",
		TestPath:   "test.csv",
		OutputPath: "submission.csv",
		Model:      "baseline",
		Epochs:     5,
		BatchSize:  64,
		LR:         0.001,
		Seed:       1,
		LogEvery:   100,
	}
}

// Load reads and validates a Config from YAML. Keys absent from the
// file keep their defaults; unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.TrainPath != "" {
		c.TrainPath = o.TrainPath
	}
	if o.TestPath != "" {
		c.TestPath = o.TestPath
	}
	if o.OutputPath != "" {
		c.OutputPath = o.OutputPath
	}
	if o.Model != "" {
		c.Model = o.Model
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.LR > 0 {
		c.LR = o.LR
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.Synthetic > 0 {
		c.Synthetic = o.Synthetic
	}
	if o.PreviewPath != "" {
		c.PreviewPath = o.PreviewPath
	}
	if o.CurvesPath != "" {
		c.CurvesPath = o.CurvesPath
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Model != "baseline" && c.Model != "improved" {
		return fmt.Errorf("model must be baseline or improved (got %q)", c.Model)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.LR <= 0 {
		return fmt.Errorf("learning_rate must be > 0 (got %g)", c.LR)
	}
	if c.Synthetic == 0 {
		if c.TrainPath == "" {
			return errors.New("train_path must be set")
		}
		if c.TestPath == "" {
			return errors.New("test_path must be set")
		}
	}
	if c.OutputPath == "" {
		return errors.New("output_path must be set")
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 100
	}
	return nil
}
