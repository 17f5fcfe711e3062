package model

import (
	"fmt"
	"math"
)

// SupplyStatus summarises how much of its requirement an area received.
type SupplyStatus int

const (
	NotMet SupplyStatus = iota
	PartiallyMet
	FullyMet
)

func (s SupplyStatus) String() string {
	switch s {
	case NotMet:
		return "not_met"
	case PartiallyMet:
		return "partially_met"
	case FullyMet:
		return "fully_met"
	default:
		return "unknown"
	}
}

// ServiceArea is a demand location on the grid.
type ServiceArea struct {
	Name          string
	PowerRequired float64 // MW
	PricePerMW    float64 // $ paid per MW received

	powerReceived float64
}

// NewServiceArea returns an area that has not received any power yet.
func NewServiceArea(name string, required, price float64) ServiceArea {
	return ServiceArea{Name: name, PowerRequired: required, PricePerMW: price}
}

// Validate checks the requirement and price.
func (a ServiceArea) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("area name is required")
	}
	if !finiteNonNegative(a.PowerRequired) {
		return fmt.Errorf("area %s: required power must be finite and non-negative", a.Name)
	}
	if !finiteNonNegative(a.PricePerMW) {
		return fmt.Errorf("area %s: price must be finite and non-negative", a.Name)
	}
	return nil
}

// AddCapacity credits amount MW to the area and returns the amount actually
// accepted. Received power never exceeds the requirement; the surplus is
// dropped and reported with ErrOverSupply.
func (a *ServiceArea) AddCapacity(amount float64) (float64, error) {
	if amount < 0 || math.IsNaN(amount) {
		return 0, ErrNegativeAmount
	}
	before := a.powerReceived
	a.powerReceived += amount
	if a.powerReceived > a.PowerRequired {
		a.powerReceived = a.PowerRequired
		return a.powerReceived - before, fmt.Errorf("%w: area %s capped at %.2f MW", ErrOverSupply, a.Name, a.PowerRequired)
	}
	return amount, nil
}

// Deficit returns the unmet portion of the requirement.
func (a ServiceArea) Deficit() float64 {
	return math.Max(0, a.PowerRequired-a.powerReceived)
}

// PowerReceived returns the power credited this cycle.
func (a ServiceArea) PowerReceived() float64 { return a.powerReceived }

// TotalPrice returns what the area pays for the power it received.
func (a ServiceArea) TotalPrice() float64 { return a.powerReceived * a.PricePerMW }

// PercentSupplied returns the received share of the requirement in percent.
// An area without requirement counts as fully supplied.
func (a ServiceArea) PercentSupplied() float64 {
	if a.PowerRequired == 0 {
		return 100
	}
	return a.powerReceived / a.PowerRequired * 100
}

// Status classifies the supply level of the area.
func (a ServiceArea) Status() SupplyStatus {
	switch {
	case a.powerReceived >= a.PowerRequired:
		return FullyMet
	case a.powerReceived > 0:
		return PartiallyMet
	default:
		return NotMet
	}
}

// ResetPower clears the received power for a new cycle.
func (a *ServiceArea) ResetPower() { a.powerReceived = 0 }
