package training

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ModelConfig holds the training hyperparameters, normally loaded from
// configs/model.yaml.
type ModelConfig struct {
	Epochs       int     `yaml:"epochs" json:"epochs"`
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate"`
	BatchSize    int     `yaml:"batch_size" json:"batch_size"`
	TestFraction float64 `yaml:"test_fraction" json:"test_fraction"`
	Seed         int64   `yaml:"seed" json:"seed"`
	Threshold    float64 `yaml:"threshold" json:"threshold"`
}

func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Epochs:       400,
		LearningRate: 0.05,
		BatchSize:    32,
		TestFraction: 0.2,
		Seed:         42,
		Threshold:    0.5,
	}
}

// LoadModelConfig reads a YAML config, filling unset fields from the
// defaults. An empty path yields the defaults outright.
func LoadModelConfig(path string) (ModelConfig, error) {
	cfg := DefaultModelConfig()
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return ModelConfig{}, fmt.Errorf("parse model config: %w", err)
	}

	defaults := DefaultModelConfig()
	if cfg.Epochs <= 0 {
		cfg.Epochs = defaults.Epochs
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = defaults.LearningRate
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = defaults.TestFraction
	}
	if cfg.Threshold <= 0 || cfg.Threshold >= 1 {
		cfg.Threshold = defaults.Threshold
	}
	return cfg, nil
}
