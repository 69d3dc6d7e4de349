package config

import (
	"fmt"
	"slices"
	"time"
)

// EngineConfig tunes the periodic evaluation loop.
type EngineConfig struct {
	// LookbackDays bounds the timeline read for one evaluation.
	LookbackDays int `json:"lookback_days"`
	// PublishIntervalSeconds is the period of the evaluate and publish loop.
	// Zero disables the loop.
	PublishIntervalSeconds int `json:"publish_interval_seconds"`
	// CrewVehicles lists vehicles operated by two drivers.
	CrewVehicles []string `json:"crew_vehicles"`
}

// SetDefaults applies sane defaults.
func (c *EngineConfig) SetDefaults() {
	if c.LookbackDays <= 0 {
		c.LookbackDays = 28
	}
}

// Validate checks ranges.
func (c EngineConfig) Validate() error {
	if c.LookbackDays < 15 {
		return fmt.Errorf("engine: lookback_days must cover two calendar weeks, got %d", c.LookbackDays)
	}
	if c.PublishIntervalSeconds < 0 {
		return fmt.Errorf("engine: publish_interval_seconds must not be negative")
	}
	return nil
}

// Lookback returns LookbackDays as a duration.
func (c EngineConfig) Lookback() time.Duration {
	return time.Duration(c.LookbackDays) * 24 * time.Hour
}

// PublishInterval returns the loop period.
func (c EngineConfig) PublishInterval() time.Duration {
	return time.Duration(c.PublishIntervalSeconds) * time.Second
}

// IsCrew reports whether the vehicle is configured for crew mode.
func (c EngineConfig) IsCrew(vehicleID string) bool {
	return slices.Contains(c.CrewVehicles, vehicleID)
}
