// Package config loads driver settings. The core packages never read
// configuration themselves; commands pass these values into constructors.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Settings enumerates the plain key/value configuration surface of the
// command-line driver.
type Settings struct {
	// Dataset file paths (pre-split CSV files).
	TrainFeatures string `mapstructure:"train_features"`
	TrainTargets  string `mapstructure:"train_targets"`
	TestFeatures  string `mapstructure:"test_features"`
	TestTargets   string `mapstructure:"test_targets"`

	// Training parameters.
	Epochs       int     `mapstructure:"epochs"`
	BatchSize    int     `mapstructure:"batch_size"`
	LearningRate float64 `mapstructure:"learning_rate"`
	Seed         int64   `mapstructure:"seed"`

	// Artifact and bookkeeping paths.
	CheckpointPath string `mapstructure:"checkpoint_path"`
	RunStorePath   string `mapstructure:"run_store_path"`

	// Landmark provider options.
	ProviderScript  string  `mapstructure:"provider_script"`
	MinConfidence   float64 `mapstructure:"min_confidence"`
	MinTrackingConf float64 `mapstructure:"min_tracking_confidence"`
}

// dataDir returns the per-user data directory.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".pjmsign")
}

// setDefaults registers the documented defaults on a viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("train_features", "data/X_train.csv")
	v.SetDefault("train_targets", "data/y_train.csv")
	v.SetDefault("test_features", "data/X_test.csv")
	v.SetDefault("test_targets", "data/y_test.csv")
	v.SetDefault("epochs", 100)
	v.SetDefault("batch_size", 32)
	v.SetDefault("learning_rate", 1e-4)
	v.SetDefault("seed", 1)
	v.SetDefault("checkpoint_path", filepath.Join(dataDir(), "model.json"))
	v.SetDefault("run_store_path", filepath.Join(dataDir(), "runs.db"))
	v.SetDefault("provider_script", "")
	v.SetDefault("min_confidence", 0.5)
	v.SetDefault("min_tracking_confidence", 0.5)
}

// Load reads settings from an optional YAML config file and PJMSIGN_*
// environment variables, falling back to the documented defaults.
// An empty path skips the file and uses defaults plus environment only.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("pjmsign")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &s, nil
}
