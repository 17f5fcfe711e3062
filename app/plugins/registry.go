// Package plugins maps configuration names to the grid loaders and
// allocation log stores built into the simulator.
package plugins

import (
	"fmt"
	"sort"

	"github.com/kilianp07/gridsim/config"
	"github.com/kilianp07/gridsim/core/allocation/logging"
	"github.com/kilianp07/gridsim/core/grid"
)

// GridLoaderFactory builds a grid from its configuration.
type GridLoaderFactory func(cfg config.GridConfig) (*grid.Grid, error)

// LogStoreFactory builds an allocation log store from its configuration.
type LogStoreFactory func(cfg config.LoggingConfig) (logging.LogStore, error)

var (
	GridLoaders = map[string]GridLoaderFactory{}
	LogStores   = map[string]LogStoreFactory{}
)

func RegisterGridLoader(format string, f GridLoaderFactory) { GridLoaders[format] = f }
func RegisterLogStore(backend string, f LogStoreFactory)    { LogStores[backend] = f }

// LoadGrid builds the grid with the loader of cfg.Format.
func LoadGrid(cfg config.GridConfig) (*grid.Grid, error) {
	f, ok := GridLoaders[cfg.Format]
	if !ok {
		return nil, fmt.Errorf("unknown grid format %q (known: %v)", cfg.Format, keys(GridLoaders))
	}
	return f(cfg)
}

// NewLogStore builds the store of cfg.Backend.
func NewLogStore(cfg config.LoggingConfig) (logging.LogStore, error) {
	f, ok := LogStores[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown log backend %q (known: %v)", cfg.Backend, keys(LogStores))
	}
	return f(cfg)
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
