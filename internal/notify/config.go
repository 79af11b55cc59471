// Package notify holds the pure core of the notification engine: the due-task
// matcher, the dedup tracker and the user-facing notification settings. It has
// no I/O besides reading the settings file and is shared by the foreground
// scheduler and the background worker so the two paths cannot drift apart.
package notify

import (
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// LeadUnit is the unit of the configured lead time.
type LeadUnit string

const (
	UnitMinutes LeadUnit = "minutes"
	UnitHours   LeadUnit = "hours"
)

// LeadTime is the user-configured interval before a task's due instant at
// which an alert should fire.
type LeadTime struct {
	Value int      `yaml:"value" json:"value"`
	Unit  LeadUnit `yaml:"unit" json:"unit"`
}

// Duration converts the lead time to a time.Duration.
func (l LeadTime) Duration() time.Duration {
	if l.Unit == UnitHours {
		return time.Duration(l.Value) * time.Hour
	}
	return time.Duration(l.Value) * time.Minute
}

// Config is the user's notification settings, owned by the settings
// collaborator and read fresh on every evaluation cycle.
type Config struct {
	Enabled      bool     `yaml:"enabled" json:"enabled"`
	SoundEnabled bool     `yaml:"soundEnabled" json:"soundEnabled"`
	LeadTime     LeadTime `yaml:"leadTime" json:"leadTime"`
}

// DefaultConfig is the documented fallback when stored settings are missing
// or corrupt.
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		SoundEnabled: true,
		LeadTime:     LeadTime{Value: 30, Unit: UnitMinutes},
	}
}

// LoadConfig reads settings from a YAML file. Any failure (missing file,
// parse error, nonsensical lead time) falls back to DefaultConfig; broken
// settings must never take the engine down.
func LoadConfig(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig()
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig()
	}
	if cfg.LeadTime.Value <= 0 {
		return DefaultConfig()
	}
	if cfg.LeadTime.Unit != UnitMinutes && cfg.LeadTime.Unit != UnitHours {
		return DefaultConfig()
	}
	return cfg
}
