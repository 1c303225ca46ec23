// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ResearchConfig struct {
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Timezone     string        `yaml:"timezone"` // default IANA zone for task locale
}

type CreativeConfig struct {
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Imagination  string        `yaml:"imagination"`  // default style
	AspectRatio  string        `yaml:"aspect_ratio"` // default output ratio
}

type WorkerConfig struct {
	Workers         int           `yaml:"workers"`
	MaxPollDuration time.Duration `yaml:"max_poll_duration"` // safety ceiling per job
	ConcurrentLimit int           `yaml:"concurrent_limit"`  // max in-flight provider calls
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Research ResearchConfig `yaml:"research"`
	Creative CreativeConfig `yaml:"creative"`
	Worker   WorkerConfig   `yaml:"worker"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Research.BaseURL == "" {
		cfg.Research.BaseURL = "https://api.yutori.com/v1/research/tasks"
	}
	if cfg.Research.PollInterval <= 0 {
		cfg.Research.PollInterval = 2500 * time.Millisecond
	}
	if cfg.Research.Timezone == "" {
		cfg.Research.Timezone = "America/Los_Angeles"
	}
	if cfg.Creative.BaseURL == "" {
		cfg.Creative.BaseURL = "https://api.freepik.com/v1/ai/text-to-image/seedream-v4-5-edit"
	}
	if cfg.Creative.PollInterval <= 0 {
		cfg.Creative.PollInterval = 3 * time.Second
	}
	if cfg.Creative.Imagination == "" {
		cfg.Creative.Imagination = "vivid"
	}
	if cfg.Creative.AspectRatio == "" {
		cfg.Creative.AspectRatio = "original"
	}
	if cfg.Worker.Workers <= 0 {
		cfg.Worker.Workers = 16
	}
	if cfg.Worker.MaxPollDuration <= 0 {
		cfg.Worker.MaxPollDuration = 15 * time.Minute
	}
	if cfg.Worker.ConcurrentLimit <= 0 {
		cfg.Worker.ConcurrentLimit = 16
	}

	// Minimal validation; dev mode runs without provider credentials.
	if !dev {
		if cfg.Research.APIKey == "" {
			return nil, errors.New("research.api_key is required")
		}
		if cfg.Creative.APIKey == "" {
			return nil, errors.New("creative.api_key is required")
		}
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
