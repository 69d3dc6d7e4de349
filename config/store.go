package config

import (
	"fmt"
)

// StoreConfig selects where recorder minutes and boundary entries are kept.
type StoreConfig struct {
	// Backend selects the store type: "memory" or "sqlite".
	Backend string `json:"backend"`
	// Path is the database file used by the sqlite backend.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.Backend == "sqlite" && c.Path == "" {
		c.Path = "tacho.db"
	}
}

// Validate checks mandatory fields.
func (c StoreConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "sqlite":
		if c.Path == "" {
			return fmt.Errorf("store: path is required for sqlite")
		}
		return nil
	default:
		return fmt.Errorf("store: unknown backend %s", c.Backend)
	}
}
