// Package config loads the server configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/leave-engine/leave"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Database DatabaseConfig  `yaml:"database"`
	Holidays []HolidayConfig `yaml:"holidays"`
	Types    []TypeConfig    `yaml:"leave_types"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	// Path is the SQLite database file. ":memory:" runs without persistence.
	Path string `yaml:"path"`
}

// HolidayConfig is one seeded holiday date.
type HolidayConfig struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
}

// TypeConfig overrides the default leave type catalog at first seed.
type TypeConfig struct {
	ID                string   `yaml:"id"`
	Name              string   `yaml:"name"`
	MaxDaysPerYear    *float64 `yaml:"max_days_per_year"`
	RequiresApproval  bool     `yaml:"requires_approval"`
	AdvanceNoticeDays int      `yaml:"advance_notice_days"`
	IsPaid            bool     `yaml:"is_paid"`
	CarryOverAllowed  bool     `yaml:"carry_over_allowed"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "leave.db"},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server.addr must be set")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("config: database.path must be set")
	}
	for _, h := range c.Holidays {
		if _, err := time.Parse("2006-01-02", h.Date); err != nil {
			return fmt.Errorf("config: holiday date %q must be YYYY-MM-DD: %w", h.Date, err)
		}
	}
	for _, t := range c.Types {
		if t.ID == "" || t.Name == "" {
			return fmt.Errorf("config: leave_types entries need id and name")
		}
	}
	return nil
}

// HolidayDates returns the seeded holiday dates as UTC midnights.
func (c *Config) HolidayDates() []time.Time {
	out := make([]time.Time, 0, len(c.Holidays))
	for _, h := range c.Holidays {
		t, err := time.ParseInLocation("2006-01-02", h.Date, time.UTC)
		if err != nil {
			continue // validated at load
		}
		out = append(out, t)
	}
	return out
}

// LeaveTypes converts the configured overrides to catalog entries.
func (c *Config) LeaveTypes() []leave.LeaveType {
	out := make([]leave.LeaveType, 0, len(c.Types))
	for _, t := range c.Types {
		lt := leave.LeaveType{
			ID:                t.ID,
			Name:              t.Name,
			RequiresApproval:  t.RequiresApproval,
			AdvanceNoticeDays: t.AdvanceNoticeDays,
			IsPaid:            t.IsPaid,
			CarryOverAllowed:  t.CarryOverAllowed,
			Active:            true,
		}
		if t.MaxDaysPerYear != nil {
			d := decimal.NewFromFloat(*t.MaxDaysPerYear)
			lt.MaxDaysPerYear = &d
		}
		out = append(out, lt)
	}
	return out
}
