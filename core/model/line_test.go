package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransmissionLine_Capacity(t *testing.T) {
	l := NewTransmissionLine(1, "North Ridge", 100, 0.8)
	assert.NoError(t, l.Validate())
	assert.Equal(t, 100.0, l.RemainingCapacity())

	assert.NoError(t, l.ReduceCapacity(30))
	assert.Equal(t, 70.0, l.RemainingCapacity())
	assert.Equal(t, 30.0, l.InUse())

	assert.ErrorIs(t, l.ReduceCapacity(80), ErrCapacityExceeded)
	assert.ErrorIs(t, l.ReduceCapacity(-1), ErrNegativeAmount)
	assert.Equal(t, 70.0, l.RemainingCapacity())

	l.ResetCapacity()
	assert.Equal(t, 100.0, l.RemainingCapacity())
}

func TestTransmissionLine_SendFor(t *testing.T) {
	l := NewTransmissionLine(2, "East", 100, 0.8)
	assert.InDelta(t, 12.5, l.SendFor(10), 1e-9)
}

func TestTransmissionLine_Validate(t *testing.T) {
	assert.Error(t, NewTransmissionLine(1, "x", 10, 0).Validate())
	assert.Error(t, NewTransmissionLine(1, "x", 10, 95).Validate())
	assert.Error(t, NewTransmissionLine(1, "x", -1, 1).Validate())
	assert.NoError(t, NewTransmissionLine(1, "x", 10, 1).Validate())
}

func TestValidate_RejectsInfinity(t *testing.T) {
	inf := math.Inf(1)
	assert.Error(t, NewTransmissionLine(1, "x", inf, 1).Validate())
	assert.Error(t, NewServiceArea("Kent", inf, 1).Validate())
	assert.Error(t, NewServiceArea("Kent", 10, inf).Validate())
	assert.Error(t, NewPlant("p", inf, 1, GeothermalParams{}).Validate())
	assert.Error(t, NewPlant("p", 10, inf, GeothermalParams{}).Validate())
	assert.Error(t, NewServiceArea("Kent", math.NaN(), 1).Validate())
}
