package model

import (
	"errors"
	"math"
)

// Soft errors returned by the capacity mutators. The mutator leaves its
// receiver in a valid state; callers log them and continue.
var (
	// ErrCapacityExceeded is returned when a reduction exceeds the remaining capacity.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrNegativeAmount is returned when a negative amount is committed.
	ErrNegativeAmount = errors.New("negative amount")
	// ErrOverSupply is returned when an area receives more than it requires.
	ErrOverSupply = errors.New("power supplied exceeds requirement")
)

// ErrUnknownPlantKind is returned when a plant type tag cannot be parsed.
var ErrUnknownPlantKind = errors.New("unknown plant type")

// finiteNonNegative rejects NaN, infinities and negative values.
func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}
