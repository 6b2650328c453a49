// Package config loads recommender settings from defaults, an optional
// JSON/YAML file and RECOMMENDER_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adhocore/gronx"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/shop-recommender/internal/logger"
)

const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type Config struct {
	Store    string `json:"store" yaml:"store" env:"RECOMMENDER_STORE"`
	DBPath   string `json:"db_path" yaml:"db_path" env:"RECOMMENDER_DB"`
	LogLevel string `json:"log_level" yaml:"log_level" env:"RECOMMENDER_LOG_LEVEL"`

	RecommendationLimit int `json:"recommendation_limit" yaml:"recommendation_limit" env:"RECOMMENDER_RECOMMENDATION_LIMIT"`
	MinScore            int `json:"min_score" yaml:"min_score" env:"RECOMMENDER_MIN_SCORE"`
	HistoryLimit        int `json:"history_limit" yaml:"history_limit" env:"RECOMMENDER_HISTORY_LIMIT"`

	CatalogPath string `json:"catalog_path" yaml:"catalog_path" env:"RECOMMENDER_CATALOG"`
	ActionsPath string `json:"actions_path" yaml:"actions_path" env:"RECOMMENDER_ACTIONS"`

	SweepIdle     time.Duration `json:"sweep_idle" yaml:"sweep_idle" env:"RECOMMENDER_SWEEP_IDLE"`
	SweepSchedule string        `json:"sweep_schedule" yaml:"sweep_schedule" env:"RECOMMENDER_SWEEP_SCHEDULE"` // cron expression; empty runs once
}

func DefaultConfig() *Config {
	return &Config{
		Store:               StoreSQLite,
		DBPath:              "~/.shop-recommender/conversations.db",
		LogLevel:            "info",
		RecommendationLimit: 5,
		MinScore:            20,
		HistoryLimit:        10,
		SweepIdle:           24 * time.Hour,
	}
}

// LoadConfig reads path (if it exists) over the defaults, then applies
// environment overrides. JSON files parse as YAML.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(expandHome(path))
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// defaults
		default:
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("env: %w", err)
	}

	cfg.DBPath = expandHome(cfg.DBPath)
	cfg.CatalogPath = expandHome(cfg.CatalogPath)
	cfg.ActionsPath = expandHome(cfg.ActionsPath)
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			return errors.New("db_path is required for the sqlite store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreSQLite, StoreMemory)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.RecommendationLimit <= 0 {
		return fmt.Errorf("recommendation_limit must be positive, got %d", c.RecommendationLimit)
	}
	if c.MinScore < 0 || c.MinScore > 100 {
		return fmt.Errorf("min_score must be within 0..100, got %d", c.MinScore)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be positive, got %d", c.HistoryLimit)
	}
	if c.SweepIdle <= 0 {
		return fmt.Errorf("sweep_idle must be positive, got %s", c.SweepIdle)
	}
	if c.SweepSchedule != "" && !gronx.New().IsValid(c.SweepSchedule) {
		return fmt.Errorf("invalid sweep_schedule %q", c.SweepSchedule)
	}
	return nil
}

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, _ := os.UserHomeDir()
	if len(path) > 1 && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return home
}
