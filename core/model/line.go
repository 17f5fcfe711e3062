package model

import "fmt"

// TransmissionLine connects the plant pool to the service areas.
// Efficiency is the delivered/sent ratio in (0,1]: sending x MW over the line
// delivers x*Efficiency MW.
type TransmissionLine struct {
	ID          int
	Name        string
	MaxCapacity float64 // MW
	Efficiency  float64

	available float64
}

// NewTransmissionLine returns a line with its full capacity available.
func NewTransmissionLine(id int, name string, capacity, efficiency float64) TransmissionLine {
	return TransmissionLine{ID: id, Name: name, MaxCapacity: capacity, Efficiency: efficiency, available: capacity}
}

// Validate checks the capacity and efficiency ranges.
func (l TransmissionLine) Validate() error {
	if !finiteNonNegative(l.MaxCapacity) {
		return fmt.Errorf("line %d: capacity must be finite and non-negative", l.ID)
	}
	if !(l.Efficiency > 0 && l.Efficiency <= 1) {
		return fmt.Errorf("line %d: efficiency %.3f out of range (0,1]", l.ID, l.Efficiency)
	}
	return nil
}

// ReduceCapacity reserves amount MW of throughput.
func (l *TransmissionLine) ReduceCapacity(amount float64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	if amount > l.available {
		return fmt.Errorf("%w: line %d has %.2f MW, requested %.2f MW", ErrCapacityExceeded, l.ID, l.available, amount)
	}
	l.available -= amount
	return nil
}

// ResetCapacity releases all reserved throughput.
func (l *TransmissionLine) ResetCapacity() { l.available = l.MaxCapacity }

// RemainingCapacity returns the throughput still available.
func (l TransmissionLine) RemainingCapacity() float64 { return l.available }

// InUse returns the reserved throughput.
func (l TransmissionLine) InUse() float64 { return l.MaxCapacity - l.available }

// SendFor returns the gross amount that must be sent over the line so that
// delivered MW arrive at the far end.
func (l TransmissionLine) SendFor(delivered float64) float64 {
	return delivered / l.Efficiency
}
