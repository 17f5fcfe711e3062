package plugins

import (
	"github.com/kilianp07/gridsim/config"
	"github.com/kilianp07/gridsim/core/allocation/logging"
	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/infra/gridfile"
)

func init() {
	RegisterGridLoader(config.GridFormatText, func(cfg config.GridConfig) (*grid.Grid, error) {
		return gridfile.LoadText(cfg.Name, gridfile.TextFiles{
			Areas:  cfg.Areas,
			Plants: cfg.Plants,
			Lines:  cfg.Lines,
		}, cfg.Limits)
	})
	RegisterGridLoader(config.GridFormatDefinition, func(cfg config.GridConfig) (*grid.Grid, error) {
		return gridfile.LoadDefinition(cfg.Definition)
	})

	RegisterLogStore(config.LogBackendJSONL, func(cfg config.LoggingConfig) (logging.LogStore, error) {
		return logging.NewJSONLStore(cfg.Path)
	})
	RegisterLogStore(config.LogBackendRotating, func(cfg config.LoggingConfig) (logging.LogStore, error) {
		return logging.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	})
	RegisterLogStore(config.LogBackendSQLite, func(cfg config.LoggingConfig) (logging.LogStore, error) {
		return logging.NewSQLiteStore(cfg.Path)
	})
	RegisterLogStore(config.LogBackendNone, func(config.LoggingConfig) (logging.LogStore, error) {
		return logging.NopStore{}, nil
	})
}
