package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.Epochs != 100 {
		t.Errorf("Epochs = %d, want 100", s.Epochs)
	}
	if s.BatchSize != 32 {
		t.Errorf("BatchSize = %d, want 32", s.BatchSize)
	}
	if s.LearningRate != 1e-4 {
		t.Errorf("LearningRate = %g, want 1e-4", s.LearningRate)
	}
	if s.MinConfidence != 0.5 {
		t.Errorf("MinConfidence = %g, want 0.5", s.MinConfidence)
	}
	if s.CheckpointPath == "" || s.RunStorePath == "" {
		t.Error("expected default artifact paths")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "epochs: 25\nbatch_size: 16\ntrain_features: custom/X.csv\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.Epochs != 25 {
		t.Errorf("Epochs = %d, want 25", s.Epochs)
	}
	if s.BatchSize != 16 {
		t.Errorf("BatchSize = %d, want 16", s.BatchSize)
	}
	if s.TrainFeatures != "custom/X.csv" {
		t.Errorf("TrainFeatures = %q", s.TrainFeatures)
	}
	// Unset keys keep their defaults.
	if s.LearningRate != 1e-4 {
		t.Errorf("LearningRate = %g, want default 1e-4", s.LearningRate)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
