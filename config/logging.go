package config

import (
	"fmt"
)

// Allocation log backends.
const (
	LogBackendJSONL    = "jsonl"
	LogBackendRotating = "rotating"
	LogBackendSQLite   = "sqlite"
	LogBackendNone     = "none"
)

// LoggingConfig defines settings for allocation log storage and rotation.
type LoggingConfig struct {
	// Backend selects the log store type: "jsonl", "rotating", "sqlite" or "none".
	Backend string `json:"backend"`
	// Path is the file location of the log store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = LogBackendJSONL
	}
	if c.Path == "" {
		c.Path = "allocation.log"
	}
	if c.Backend == LogBackendRotating && c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	switch c.Backend {
	case LogBackendJSONL, LogBackendRotating, LogBackendSQLite, LogBackendNone:
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Backend != LogBackendNone && c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}
