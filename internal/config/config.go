// Package config loads the JSON configuration document described in
// spec §3, with two deployment knobs overridable from an optional .env
// file the way internal/config.Load does in the zoebot example: try it,
// ignore it if it isn't there.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Trigger is the commitment level that fires a feature's analytics page.
type Trigger string

const (
	TriggerHover  Trigger = "hover"
	TriggerPick   Trigger = "pick"
	TriggerLockIn Trigger = "lock_in"
)

// FeatureConfig is one feature's policy block.
type FeatureConfig struct {
	Enabled bool    `json:"enabled"`
	Trigger Trigger `json:"trigger"`
	// OpenInGame only applies to build_guide: game_start also qualifies.
	OpenInGame bool `json:"open_in_game,omitempty"`
}

// Features holds the four analytics feature policies.
type Features struct {
	Matchup        FeatureConfig `json:"matchup"`
	MyCounters     FeatureConfig `json:"my_counters"`
	EnemyCounters  FeatureConfig `json:"enemy_counters"`
	BuildGuide     FeatureConfig `json:"build_guide"`
}

// Analytics holds the destination site configuration.
type Analytics struct {
	BaseURL string `json:"base_url"`
}

// Dispatch holds the open-in-browser timing policy.
type Dispatch struct {
	DelayMs int `json:"delay_ms"`
}

// TransportConfig holds the LCU reconnect policy.
type TransportConfig struct {
	RetryIntervalMs int `json:"retry_interval_ms"`
	MaxRetries      int `json:"max_retries"`
}

// Config is the full process-wide configuration document.
type Config struct {
	Features  Features        `json:"features"`
	Analytics Analytics       `json:"analytics"`
	Dispatch  Dispatch        `json:"dispatch"`
	Transport TransportConfig `json:"transport"`
}

// Default returns the configuration used when no file is present or the
// file fails to load (§7 Config error: load fails, defaults apply).
func Default() *Config {
	return &Config{
		Features: Features{
			Matchup:       FeatureConfig{Enabled: true, Trigger: TriggerHover},
			MyCounters:    FeatureConfig{Enabled: true, Trigger: TriggerHover},
			EnemyCounters: FeatureConfig{Enabled: true, Trigger: TriggerPick},
			BuildGuide:    FeatureConfig{Enabled: true, Trigger: TriggerLockIn, OpenInGame: true},
		},
		Analytics: Analytics{BaseURL: "https://lolanalytics.com"},
		Dispatch:  Dispatch{DelayMs: 500},
		Transport: TransportConfig{RetryIntervalMs: 2000, MaxRetries: 0},
	}
}

// EnvPathVar and EnvLogLevelVar name the two .env-overridable knobs that
// intentionally don't live in the versioned JSON document.
const (
	EnvPathVar     = "LOLSCOUT_CONFIG_PATH"
	EnvLogLevelVar = "LOLSCOUT_LOG_LEVEL"
)

// Resolved is a loaded configuration plus the ambient knobs read from
// the environment/.env rather than the JSON document itself.
type Resolved struct {
	Config   *Config
	LogLevel string
}

// Load reads the .env (if present), then the JSON config file named by
// LOLSCOUT_CONFIG_PATH (default "config.json"). A missing file yields
// the defaults with a nil error. An unreadable, malformed or invalid file
// is not fatal either: defaults apply and the error is returned for the
// caller to log, per §7's Config error semantics.
func Load() (*Resolved, error) {
	_ = godotenv.Load()

	path := os.Getenv(EnvPathVar)
	if path == "" {
		path = "config.json"
	}
	logLevel := os.Getenv(EnvLogLevelVar)
	if logLevel == "" {
		logLevel = "info"
	}

	cfg, err := loadFile(path)
	if err != nil {
		return &Resolved{Config: Default(), LogLevel: logLevel}, err
	}
	return &Resolved{Config: cfg, LogLevel: logLevel}, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config: validate %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the bounds spec §3 names explicitly.
func (c *Config) Validate() error {
	if c.Dispatch.DelayMs < 0 || c.Dispatch.DelayMs > 10000 {
		return fmt.Errorf("dispatch.delay_ms must be within 0..10000, got %d", c.Dispatch.DelayMs)
	}
	for _, fc := range []FeatureConfig{c.Features.Matchup, c.Features.MyCounters, c.Features.EnemyCounters, c.Features.BuildGuide} {
		switch fc.Trigger {
		case TriggerHover, TriggerPick, TriggerLockIn, "":
		default:
			return fmt.Errorf("invalid trigger %q", fc.Trigger)
		}
	}
	if c.Analytics.BaseURL == "" {
		return fmt.Errorf("analytics.base_url must not be empty")
	}
	return nil
}
