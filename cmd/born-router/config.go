package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the born-router configuration file
// (~/.config/born-router/config.yaml). Pointer fields distinguish "not set"
// from zero values.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	Output      string `yaml:"output"`
	Accelerator string `yaml:"accelerator"`

	// Transfer defaults
	Source string `yaml:"source"`
	Target string `yaml:"target"`

	// Mock accelerator
	MockDevices *int           `yaml:"mock_devices"`
	MockLatency *time.Duration `yaml:"mock_latency"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "born-router", "config.yaml")
}

// LoadConfig reads the config file at path. A missing file yields a zero
// Config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// loadConfig reads the config file named by --config and applies it to the
// global flags of c.
func loadConfig(c *cli.Command) (Config, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return cfg, err
	}
	applyGlobalConfig(c, cfg)
	return cfg, nil
}

// applyGlobalConfig applies config file defaults to the global flag
// variables when the corresponding flag was not explicitly set.
func applyGlobalConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
	if cfg.Output != "" && !c.IsSet("output") {
		outputMode = cfg.Output
	}
	if cfg.Accelerator != "" && !c.IsSet("accelerator") {
		accelerator = cfg.Accelerator
	}
	if cfg.MockDevices != nil && !c.IsSet("mock-devices") {
		mockDevices = *cfg.MockDevices
	}
	if cfg.MockLatency != nil && !c.IsSet("mock-latency") {
		mockLatency = *cfg.MockLatency
	}
}

// applyTransferConfig applies config file defaults to transfer flags.
func applyTransferConfig(c *cli.Command, cfg Config, from, to *string) {
	if cfg.Source != "" && !c.IsSet("from") {
		*from = cfg.Source
	}
	if cfg.Target != "" && !c.IsSet("to") {
		*to = cfg.Target
	}
}
