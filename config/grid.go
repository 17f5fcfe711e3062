package config

import (
	"errors"
	"path/filepath"

	"github.com/kilianp07/gridsim/core/model"
)

// Grid input formats.
const (
	GridFormatText       = "text"
	GridFormatDefinition = "definition"
)

// GridConfig locates the grid to simulate: either a single YAML/JSON
// definition or the three text files of the legacy format.
type GridConfig struct {
	Name       string       `json:"name"`
	Format     string       `json:"format"`
	Definition string       `json:"definition"`
	Areas      string       `json:"areas"`
	Plants     string       `json:"plants"`
	Lines      string       `json:"lines"`
	Limits     model.Limits `json:"limits"`
}

// SetDefaults infers the format from the configured paths.
func (c *GridConfig) SetDefaults() {
	if c.Format == "" {
		if c.Definition != "" {
			c.Format = GridFormatDefinition
		} else {
			c.Format = GridFormatText
		}
	}
	if c.Name == "" {
		c.Name = "grid"
	}
	if c.Limits.MaxWindSpeed <= 0 {
		c.Limits.MaxWindSpeed = model.DefaultLimits.MaxWindSpeed
	}
	if c.Limits.MaxFuelRods <= 0 {
		c.Limits.MaxFuelRods = model.DefaultLimits.MaxFuelRods
	}
}

// Validate checks that the input files of the format are set.
func (c GridConfig) Validate() error {
	switch c.Format {
	case GridFormatDefinition:
		if c.Definition == "" {
			return errors.New("definition path is required")
		}
	case GridFormatText:
		if c.Areas == "" || c.Plants == "" || c.Lines == "" {
			return errors.New("areas, plants and lines paths are required")
		}
	default:
		return errors.New("format must be text or definition")
	}
	return nil
}

// resolve makes relative input paths relative to dir.
func (c *GridConfig) resolve(dir string) {
	for _, p := range []*string{&c.Definition, &c.Areas, &c.Plants, &c.Lines} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
