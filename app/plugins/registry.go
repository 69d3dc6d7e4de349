package plugins

import (
	"fmt"

	"github.com/kilianp07/tacho/config"
	"github.com/kilianp07/tacho/core/timeline"
)

// StoreFactory builds a timeline store from the store configuration.
type StoreFactory func(cfg config.StoreConfig) (timeline.Store, error)

var Stores = map[string]StoreFactory{}

func RegisterStore(name string, f StoreFactory) { Stores[name] = f }

// NewStore builds the store selected by cfg.Backend.
func NewStore(cfg config.StoreConfig) (timeline.Store, error) {
	f, ok := Stores[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown store backend %s", cfg.Backend)
	}
	return f(cfg)
}
