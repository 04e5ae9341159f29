// Package config loads tool configuration from a YAML file, falling back
// to defaults when the file is absent.
package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the editing core's configuration.
type Config struct {
	// PreviewMaxDim bounds the longer edge of interactive previews.
	PreviewMaxDim int `yaml:"preview_max_dim"`
	// UndoCapacity bounds how many edits stay undoable per session.
	UndoCapacity int `yaml:"undo_capacity"`
	// StorePath is the SQLite session database; empty keeps sessions in
	// memory only.
	StorePath string `yaml:"store_path"`
	// AssetRoot is the directory asset references resolve under.
	AssetRoot string `yaml:"asset_root"`
	// CascadePath points at the Haar cascade file for face detection.
	CascadePath string `yaml:"cascade_path"`
	LogLevel    string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PreviewMaxDim: 1600,
		UndoCapacity:  50,
		AssetRoot:     ".",
		LogLevel:      "info",
	}
}

// Load reads the configuration at path. A missing file yields defaults;
// a present but malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.PreviewMaxDim <= 0 {
		return fmt.Errorf("preview_max_dim must be positive, got %d", c.PreviewMaxDim)
	}
	if c.UndoCapacity <= 0 {
		return fmt.Errorf("undo_capacity must be positive, got %d", c.UndoCapacity)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// LogrusLevel converts the configured log level, defaulting to info on
// an unparseable value.
func (c Config) LogrusLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
