// Package config handles meshquery configuration loading and management.
package config

import (
	"fmt"

	"go.uber.org/multierr"
)

// Config holds all tool settings.
type Config struct {
	Index    IndexConfig    `yaml:"index"`
	Depthmap DepthmapConfig `yaml:"depthmap"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// IndexConfig holds mesh index construction settings.
type IndexConfig struct {
	AdaptiveEpsilon bool    `yaml:"adaptive_epsilon"`
	Epsilon         float64 `yaml:"epsilon"`
	Parallelism     int     `yaml:"parallelism"` // 0 = GOMAXPROCS
}

// DepthmapConfig holds depth map rendering settings.
type DepthmapConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Supersample int    `yaml:"supersample"`
	View        string `yaml:"view"` // +x, -x, +y, -y, +z or -z
	Output      string `yaml:"output"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			AdaptiveEpsilon: false,
			Epsilon:         1e-6,
		},
		Depthmap: DepthmapConfig{
			Width:       512,
			Height:      512,
			Supersample: 2,
			View:        "-z",
			Output:      "depth.webp",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

var validViews = map[string]bool{"+x": true, "-x": true, "+y": true, "-y": true, "+z": true, "-z": true}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if c.Index.Epsilon <= 0 {
		err = multierr.Append(err, fmt.Errorf("index.epsilon must be positive, got %g", c.Index.Epsilon))
	}
	if c.Index.Parallelism < 0 {
		err = multierr.Append(err, fmt.Errorf("index.parallelism must not be negative, got %d", c.Index.Parallelism))
	}
	if c.Depthmap.Width <= 0 || c.Depthmap.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("depthmap size must be positive, got %dx%d", c.Depthmap.Width, c.Depthmap.Height))
	}
	if c.Depthmap.Supersample < 1 || c.Depthmap.Supersample > 8 {
		err = multierr.Append(err, fmt.Errorf("depthmap.supersample must be in [1, 8], got %d", c.Depthmap.Supersample))
	}
	if !validViews[c.Depthmap.View] {
		err = multierr.Append(err, fmt.Errorf("depthmap.view %q is not one of +x -x +y -y +z -z", c.Depthmap.View))
	}
	if !validLevels[c.Logging.Level] {
		err = multierr.Append(err, fmt.Errorf("logging.level %q is not one of debug info warn error", c.Logging.Level))
	}
	return err
}
