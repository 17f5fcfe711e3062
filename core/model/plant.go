package model

import (
	"fmt"
	"math"
	"strings"
)

// PlantKind identifies the generation technology of a plant.
type PlantKind int

const (
	KindSolar PlantKind = iota
	KindWind
	KindHydro
	KindNuclear
	KindGeothermal
	KindGas
)

// String returns a human-readable representation of the plant kind.
func (k PlantKind) String() string {
	switch k {
	case KindSolar:
		return "Solar"
	case KindWind:
		return "Wind"
	case KindHydro:
		return "Hydro"
	case KindNuclear:
		return "Nuclear"
	case KindGeothermal:
		return "Geothermal"
	case KindGas:
		return "Gas"
	default:
		return "unknown"
	}
}

// ParsePlantKind converts a type tag to a PlantKind. The legacy "GeoTherm"
// tag used by plant data files is accepted as well.
func ParsePlantKind(s string) (PlantKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "solar":
		return KindSolar, nil
	case "wind":
		return KindWind, nil
	case "hydro":
		return KindHydro, nil
	case "nuclear":
		return KindNuclear, nil
	case "geothermal", "geotherm":
		return KindGeothermal, nil
	case "gas":
		return KindGas, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPlantKind, s)
	}
}

// Limits bounds the environmental inputs of the output formulas.
type Limits struct {
	MaxWindSpeed float64 `json:"max_wind_speed" yaml:"max_wind_speed"`
	MaxFuelRods  int     `json:"max_fuel_rods" yaml:"max_fuel_rods"`
}

// DefaultLimits mirrors the physical bounds of the reference grid.
var DefaultLimits = Limits{MaxWindSpeed: 25, MaxFuelRods: 100}

// withDefaults fills zero fields from DefaultLimits.
func (l Limits) withDefaults() Limits {
	if l.MaxWindSpeed <= 0 {
		l.MaxWindSpeed = DefaultLimits.MaxWindSpeed
	}
	if l.MaxFuelRods <= 0 {
		l.MaxFuelRods = DefaultLimits.MaxFuelRods
	}
	return l
}

// OutputModel holds the variant specific inputs of a plant. The set of
// implementations is closed: only the *Params types of this package satisfy it.
type OutputModel interface {
	Kind() PlantKind
	isOutputModel()
}

// SolarParams drives a solar farm.
type SolarParams struct {
	Acres         float64 `json:"acres" yaml:"acres"`
	SunlightHours float64 `json:"sunlight_hours" yaml:"sunlight_hours"`
}

// WindParams drives a wind farm. BladeLength is informational only.
type WindParams struct {
	Turbines    int     `json:"turbines" yaml:"turbines"`
	BladeLength float64 `json:"blade_length" yaml:"blade_length"`
	WindSpeed   float64 `json:"wind_speed" yaml:"wind_speed"` // mph
}

// HydroParams drives a hydro electric plant.
type HydroParams struct {
	FlowRate     float64 `json:"flow_rate" yaml:"flow_rate"`         // m^3/s
	VerticalDrop float64 `json:"vertical_drop" yaml:"vertical_drop"` // m
}

// NuclearParams drives a nuclear plant.
type NuclearParams struct {
	FuelRodsActive int `json:"fuel_rods_active" yaml:"fuel_rods_active"`
}

// GeothermalParams has no inputs; output is constant at the plant maximum.
type GeothermalParams struct{}

// GasParams drives a gas fired plant.
type GasParams struct {
	FuelType        string  `json:"fuel_type" yaml:"fuel_type"`
	ThrottlePercent float64 `json:"throttle_percent" yaml:"throttle_percent"`
}

func (SolarParams) Kind() PlantKind      { return KindSolar }
func (WindParams) Kind() PlantKind       { return KindWind }
func (HydroParams) Kind() PlantKind      { return KindHydro }
func (NuclearParams) Kind() PlantKind    { return KindNuclear }
func (GeothermalParams) Kind() PlantKind { return KindGeothermal }
func (GasParams) Kind() PlantKind        { return KindGas }

func (SolarParams) isOutputModel()      {}
func (WindParams) isOutputModel()       {}
func (HydroParams) isOutputModel()      {}
func (NuclearParams) isOutputModel()    {}
func (GeothermalParams) isOutputModel() {}
func (GasParams) isOutputModel()        {}

// Plant is a generating unit of the grid. currentOutput is refreshed once per
// cycle by ComputeOutput; availableCapacity is then only lowered by
// ReduceCapacity until the next cycle.
type Plant struct {
	Name      string
	MaxOutput float64 // MW
	CostPerMW float64 // operating cost ($/MW)
	Params    OutputModel
	Limits    Limits

	currentOutput     float64
	availableCapacity float64
}

// NewPlant returns a plant with the default input limits.
func NewPlant(name string, maxOutput, costPerMW float64, params OutputModel) Plant {
	return Plant{Name: name, MaxOutput: maxOutput, CostPerMW: costPerMW, Params: params, Limits: DefaultLimits}
}

// Validate checks that the plant is usable by the allocation engine.
func (p Plant) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("plant name is required")
	}
	if p.Params == nil {
		return fmt.Errorf("plant %s: missing output model", p.Name)
	}
	if !finiteNonNegative(p.MaxOutput) {
		return fmt.Errorf("plant %s: max output must be finite and non-negative", p.Name)
	}
	if !finiteNonNegative(p.CostPerMW) {
		return fmt.Errorf("plant %s: operating cost must be finite and non-negative", p.Name)
	}
	return nil
}

// Kind returns the technology of the plant.
func (p Plant) Kind() PlantKind {
	if p.Params == nil {
		return -1
	}
	return p.Params.Kind()
}

// RawOutput evaluates the output formula of the plant variant without
// bounding it to MaxOutput.
func (p Plant) RawOutput() float64 {
	lim := p.Limits.withDefaults()
	switch m := p.Params.(type) {
	case SolarParams:
		return m.Acres * m.SunlightHours / 55
	case WindParams:
		return float64(m.Turbines) * math.Min(m.WindSpeed, lim.MaxWindSpeed) / 9.8
	case HydroParams:
		return m.FlowRate * m.VerticalDrop / 600
	case NuclearParams:
		rods := m.FuelRodsActive
		if rods > lim.MaxFuelRods {
			rods = lim.MaxFuelRods
		}
		return float64(rods) * 20
	case GeothermalParams:
		return p.MaxOutput
	case GasParams:
		return p.MaxOutput * m.ThrottlePercent / 100
	default:
		return 0
	}
}

// ComputeOutput refreshes the current output of the plant and releases all
// prior allocations. The result is bounded to [0, MaxOutput].
func (p *Plant) ComputeOutput() float64 {
	out := p.RawOutput()
	if out > p.MaxOutput {
		out = p.MaxOutput
	}
	if out < 0 || math.IsNaN(out) {
		out = 0
	}
	p.currentOutput = out
	p.availableCapacity = out
	return out
}

// ReduceCapacity commits amount MW of the plant output. Amounts that do not
// fit the remaining capacity leave the plant untouched.
func (p *Plant) ReduceCapacity(amount float64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	if amount > p.availableCapacity {
		return fmt.Errorf("%w: plant %s has %.2f MW, requested %.2f MW", ErrCapacityExceeded, p.Name, p.availableCapacity, amount)
	}
	p.availableCapacity -= amount
	return nil
}

// CurrentOutput returns the output computed for the current cycle.
func (p Plant) CurrentOutput() float64 { return p.currentOutput }

// AvailableCapacity returns the output not yet committed this cycle.
func (p Plant) AvailableCapacity() float64 { return p.availableCapacity }

// Allocated returns the output committed this cycle.
func (p Plant) Allocated() float64 { return p.currentOutput - p.availableCapacity }

// CostOfAllocated returns the operating cost of the committed output.
func (p Plant) CostOfAllocated() float64 { return p.Allocated() * p.CostPerMW }

// Condition describes the current environmental parameters of the plant.
func (p Plant) Condition() string {
	switch m := p.Params.(type) {
	case SolarParams:
		return fmt.Sprintf("Acres: %.0f, Sunlight: %.1f hrs", m.Acres, m.SunlightHours)
	case WindParams:
		return fmt.Sprintf("Turbines: %d, Blade: %.1f m, Wind: %.1f mph", m.Turbines, m.BladeLength, m.WindSpeed)
	case HydroParams:
		return fmt.Sprintf("Water Flow: %.2f m3/s, Drop: %.2f m", m.FlowRate, m.VerticalDrop)
	case NuclearParams:
		return fmt.Sprintf("Fuel rods active: %d", m.FuelRodsActive)
	case GeothermalParams:
		return "Geothermal conditions normal"
	case GasParams:
		return fmt.Sprintf("Fuel: %s, Throttle: %.0f%%", m.FuelType, m.ThrottlePercent)
	default:
		return "unknown"
	}
}
