package plugins

import (
	"github.com/kilianp07/tacho/config"
	"github.com/kilianp07/tacho/core/timeline"
	infratimeline "github.com/kilianp07/tacho/infra/timeline"
)

func init() {
	RegisterStore("memory", func(config.StoreConfig) (timeline.Store, error) {
		return timeline.NewMemoryStore(), nil
	})
	RegisterStore("sqlite", func(cfg config.StoreConfig) (timeline.Store, error) {
		return infratimeline.NewSQLiteStore(cfg.Path)
	})
}
