package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	yaml "github.com/goccy/go-yaml"
)

const (
	defaultWatchInterval = 2 * time.Second

	envLayoutPath    = "KRUNQ_LAYOUT"
	envImagePath     = "KRUNQ_IMAGE"
	envWatchInterval = "KRUNQ_WATCH_INTERVAL"
)

// Config aggregates snapshot locations and watch-mode tuning.
type Config struct {
	LayoutPath    string
	ImagePath     string
	WatchInterval time.Duration
}

// Load builds a Config from an optional YAML file path plus environment
// overrides. Flags layered on top by the CLI win over both.
func Load(path string) (Config, error) {
	cfg := Config{
		WatchInterval: defaultWatchInterval,
	}

	if path != "" {
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		if fileCfg.LayoutPath != "" {
			cfg.LayoutPath = fileCfg.LayoutPath
		}
		if fileCfg.ImagePath != "" {
			cfg.ImagePath = fileCfg.ImagePath
		}
		if fileCfg.WatchInterval != 0 {
			cfg.WatchInterval = fileCfg.WatchInterval
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envLayoutPath); v != "" {
		cfg.LayoutPath = v
	}
	if v := os.Getenv(envImagePath); v != "" {
		cfg.ImagePath = v
	}
	if v := os.Getenv(envWatchInterval); v != "" {
		if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
			cfg.WatchInterval = dur
		} else if err != nil {
			log.Printf("invalid %s value %q: %v", envWatchInterval, v, err)
		}
	}
}

type fileConfig struct {
	Layout        string `yaml:"layout"`
	Image         string `yaml:"image"`
	WatchInterval string `yaml:"watch_interval"`
}

func loadFromFile(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, err
	}

	cfg.LayoutPath = raw.Layout
	cfg.ImagePath = raw.Image
	if raw.WatchInterval != "" {
		dur, err := time.ParseDuration(raw.WatchInterval)
		if err != nil {
			return cfg, fmt.Errorf("parse watch_interval: %w", err)
		}
		if dur <= 0 {
			return cfg, errors.New("watch_interval must be > 0")
		}
		cfg.WatchInterval = dur
	}

	return cfg, nil
}
