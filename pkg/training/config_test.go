package training

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadModelConfigDefaults(t *testing.T) {
	cfg, err := LoadModelConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != DefaultModelConfig() {
		t.Fatalf("empty path must yield defaults, got %+v", cfg)
	}
}

func TestLoadModelConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	content := "epochs: 100\nlearning_rate: 0.1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg, err := LoadModelConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Epochs != 100 {
		t.Fatalf("expected epochs 100, got %d", cfg.Epochs)
	}
	if cfg.LearningRate != 0.1 {
		t.Fatalf("expected learning rate 0.1, got %f", cfg.LearningRate)
	}
	// Unset fields fall back to defaults.
	if cfg.BatchSize != DefaultModelConfig().BatchSize {
		t.Fatalf("expected default batch size, got %d", cfg.BatchSize)
	}
	if cfg.Threshold != 0.5 {
		t.Fatalf("expected default threshold, got %f", cfg.Threshold)
	}
}

func TestLoadModelConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	if err := os.WriteFile(path, []byte("epochs: [not-an-int"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := LoadModelConfig(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
