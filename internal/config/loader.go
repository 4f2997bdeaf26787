package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Sentinel error kinds returned by Load.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Environment variable names read by Load.
const (
	EnvPrefix  = "OUTREACH_"
	EnvConfig  = "OUTREACH_CONFIG"
	EnvDotfile = "OUTREACH_ENV_FILE"
)

// Load builds a Config by layering defaults, an optional .env file, an
// optional YAML file and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env (OUTREACH_ENV_FILE or ./.env); never overrides variables already set
//  3. file (YAML) if OUTREACH_CONFIG is set
//  4. env (prefix OUTREACH_, "__" separates nested keys)
func Load(_ context.Context) (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// OUTREACH_LIMITS__MESSAGES_PER_DAY -> limits.messages_per_day
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotenv() error {
	path := os.Getenv(EnvDotfile)
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Validate checks invariants the rest of the service relies on.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	l := c.Limits
	if l.ActionsPerHour < 0 || l.ProfilesPerSession < 0 || l.MessagesPerDay < 0 || l.CommentsPerDay < 0 {
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidConfig)
	}
	if c.Pacing.MinDelay < 0 || c.Pacing.MaxDelay < c.Pacing.MinDelay {
		return fmt.Errorf("%w: pacing.max_delay must be >= pacing.min_delay >= 0", ErrInvalidConfig)
	}
	if c.Pacing.BreakChance < 0 || c.Pacing.BreakChance > 1 {
		return fmt.Errorf("%w: pacing.break_chance must be within [0,1]", ErrInvalidConfig)
	}
	if c.Campaign.Workers < 1 || c.Campaign.QueueSize < 1 {
		return fmt.Errorf("%w: campaign.workers and campaign.queue_size must be positive", ErrInvalidConfig)
	}
	for _, d := range c.Criteria.ConnectionDegrees {
		if d < 1 || d > 3 {
			return fmt.Errorf("%w: criteria.connection_degrees accepts 1, 2 or 3, got %d", ErrInvalidConfig, d)
		}
	}
	return nil
}
