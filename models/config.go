// Package models defines data structures for configuration, page signals and snapshots.
package models

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AIConfig controls the AI provider and the request queue around it.
type AIConfig struct {
	Enabled          bool                     `yaml:"enabled"`
	Endpoint         string                   `yaml:"endpoint"`
	Model            string                   `yaml:"model"`
	QueuePause       time.Duration            `yaml:"queue_pause"`
	Timeouts         map[string]time.Duration `yaml:"timeouts"`
	Cooldown         time.Duration            `yaml:"cooldown"`
	BatteryThreshold float64                  `yaml:"battery_threshold"`
	AdviceTTL        time.Duration            `yaml:"advice_ttl"`
}

// FocusConfig bounds which dwell sessions become focus events.
type FocusConfig struct {
	MinSession time.Duration `yaml:"min_session"`
	MaxSession time.Duration `yaml:"max_session"`
}

// StorageConfig caps the append-only logs and the stored text.
type StorageConfig struct {
	MaxActionHistory int `yaml:"max_action_history"`
	MaxFocusEvents   int `yaml:"max_focus_events"`
	TextClamp        int `yaml:"text_clamp"`
}

// CleanupConfig drives the periodic snapshot eviction.
type CleanupConfig struct {
	Interval time.Duration `yaml:"interval"`
	MaxAge   time.Duration `yaml:"max_age"`
	MaxBytes int64         `yaml:"max_bytes"`
}

// Config is the runtime configuration. Values come from a YAML file and are
// overridden by CLI flags.
type Config struct {
	DBPath   string        `yaml:"db_path"`
	Listen   string        `yaml:"listen"`
	Timezone string        `yaml:"timezone"`
	AI       AIConfig      `yaml:"ai"`
	Focus    FocusConfig   `yaml:"focus"`
	Storage  StorageConfig `yaml:"storage"`
	Cleanup  CleanupConfig `yaml:"cleanup"`
}

// Timeout labels with their own budgets.
const (
	LabelDefault    = "default"
	LabelOneLiner   = "generateOneLiner"
	LabelFocusCoach = "generateFocusCoachSummary"
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		DBPath:   "actionsense.db",
		Listen:   "127.0.0.1:7425",
		Timezone: "Local",
		AI: AIConfig{
			Enabled:    true,
			Endpoint:   "http://127.0.0.1:11434",
			Model:      "gemma3:1b",
			QueuePause: 100 * time.Millisecond,
			Timeouts: map[string]time.Duration{
				LabelDefault:    35 * time.Second,
				LabelOneLiner:   25 * time.Second,
				LabelFocusCoach: 60 * time.Second,
			},
			Cooldown:         20 * time.Second,
			BatteryThreshold: 0.25,
			AdviceTTL:        20 * time.Second,
		},
		Focus: FocusConfig{
			MinSession: 5 * time.Second,
			MaxSession: 30 * time.Minute,
		},
		Storage: StorageConfig{
			MaxActionHistory: 50,
			MaxFocusEvents:   500,
			TextClamp:        2_000,
		},
		Cleanup: CleanupConfig{
			Interval: 24 * time.Hour,
			MaxAge:   7 * 24 * time.Hour,
			MaxBytes: 5 * 1024 * 1024,
		},
	}
}

// LoadConfig reads a YAML config on top of the defaults. A missing file is not
// an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	defaultTimeouts := cfg.AI.Timeouts
	cfg.AI.Timeouts = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	// Labels missing from the file keep their default budgets.
	if cfg.AI.Timeouts == nil {
		cfg.AI.Timeouts = map[string]time.Duration{}
	}
	for label, d := range defaultTimeouts {
		if _, ok := cfg.AI.Timeouts[label]; !ok {
			cfg.AI.Timeouts[label] = d
		}
	}
	return cfg, nil
}

// Location resolves the configured timezone used for day and week buckets.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
