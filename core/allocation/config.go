package allocation

import (
	"errors"
	"fmt"
)

// ErrInvalidPercent is returned when the per-pass share is outside (0,100].
var ErrInvalidPercent = errors.New("percent must be in (0,100]")

// Config defines how a cycle is driven.
type Config struct {
	// Percent of its requirement an area asks for on each pass.
	Percent float64 `json:"percent"`
	// MaxPasses bounds the number of passes in one cycle.
	MaxPasses int `json:"max_passes"`
	// Tolerance is the deficit in MW below which an area counts as satisfied.
	Tolerance float64 `json:"tolerance"`
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	if c.Percent == 0 {
		c.Percent = 100
	}
	if c.MaxPasses <= 0 {
		c.MaxPasses = 1000
	}
	if c.Tolerance <= 0 {
		c.Tolerance = DefaultTolerance
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := validatePercent(c.Percent); err != nil {
		return err
	}
	if c.MaxPasses <= 0 {
		return fmt.Errorf("max_passes must be positive, got %d", c.MaxPasses)
	}
	return nil
}

func validatePercent(p float64) error {
	if !(p > 0 && p <= 100) {
		return fmt.Errorf("%w: %v", ErrInvalidPercent, p)
	}
	return nil
}
