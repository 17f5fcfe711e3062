package gridfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/core/model"
)

// AreaDef describes a service area.
type AreaDef struct {
	Name       string  `yaml:"name" json:"name"`
	Required   float64 `yaml:"required_mw" json:"required_mw"`
	PricePerMW float64 `yaml:"price_per_mw" json:"price_per_mw"`
}

// PlantDef describes a plant. Only the fields of its type are read.
type PlantDef struct {
	Name      string  `yaml:"name" json:"name"`
	Type      string  `yaml:"type" json:"type"`
	MaxOutput float64 `yaml:"max_output_mw" json:"max_output_mw"`
	CostPerMW float64 `yaml:"cost_per_mw" json:"cost_per_mw"`

	Acres           float64 `yaml:"acres,omitempty" json:"acres,omitempty"`
	SunlightHours   float64 `yaml:"sunlight_hours,omitempty" json:"sunlight_hours,omitempty"`
	Turbines        int     `yaml:"turbines,omitempty" json:"turbines,omitempty"`
	BladeLength     float64 `yaml:"blade_length,omitempty" json:"blade_length,omitempty"`
	WindSpeed       float64 `yaml:"wind_speed,omitempty" json:"wind_speed,omitempty"`
	FlowRate        float64 `yaml:"flow_rate,omitempty" json:"flow_rate,omitempty"`
	VerticalDrop    float64 `yaml:"vertical_drop,omitempty" json:"vertical_drop,omitempty"`
	FuelRodsActive  int     `yaml:"fuel_rods_active,omitempty" json:"fuel_rods_active,omitempty"`
	FuelType        string  `yaml:"fuel_type,omitempty" json:"fuel_type,omitempty"`
	ThrottlePercent float64 `yaml:"throttle_percent,omitempty" json:"throttle_percent,omitempty"`
}

// LineDef describes a transmission line.
type LineDef struct {
	ID         int     `yaml:"id" json:"id"`
	Name       string  `yaml:"name" json:"name"`
	Capacity   float64 `yaml:"capacity_mw" json:"capacity_mw"`
	Efficiency float64 `yaml:"efficiency" json:"efficiency"`
}

// Definition is a complete grid in a single document.
type Definition struct {
	Name   string        `yaml:"name" json:"name"`
	Limits *model.Limits `yaml:"limits,omitempty" json:"limits,omitempty"`
	Areas  []AreaDef     `yaml:"areas" json:"areas"`
	Plants []PlantDef    `yaml:"plants" json:"plants"`
	Lines  []LineDef     `yaml:"lines" json:"lines"`
}

// LoadDefinition reads a YAML or JSON definition selected by file extension.
func LoadDefinition(path string) (*grid.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var def Definition
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &def)
	case ".json":
		err = json.Unmarshal(data, &def)
	default:
		return nil, fmt.Errorf("unsupported grid definition format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	g, err := def.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Build validates the definition and assembles a grid in document order.
func (d Definition) Build() (*grid.Grid, error) {
	limits := model.DefaultLimits
	if d.Limits != nil {
		limits = *d.Limits
	}
	g := grid.New(d.Name)
	for _, a := range d.Areas {
		if err := g.AddArea(model.NewServiceArea(a.Name, a.Required, a.PricePerMW)); err != nil {
			return nil, err
		}
	}
	for _, pd := range d.Plants {
		p, err := pd.ToModel()
		if err != nil {
			return nil, err
		}
		p.Limits = limits
		if err := g.AddPlant(p); err != nil {
			return nil, err
		}
	}
	for _, l := range d.Lines {
		eff := l.Efficiency
		if eff > 1 {
			eff /= 100
		}
		if err := g.AddLine(model.NewTransmissionLine(l.ID, l.Name, l.Capacity, eff)); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ToModel converts the definition to a plant.
func (pd PlantDef) ToModel() (model.Plant, error) {
	kind, err := model.ParsePlantKind(pd.Type)
	if err != nil {
		return model.Plant{}, fmt.Errorf("plant %s: %w", pd.Name, err)
	}
	var params model.OutputModel
	switch kind {
	case model.KindSolar:
		params = model.SolarParams{Acres: pd.Acres, SunlightHours: pd.SunlightHours}
	case model.KindWind:
		params = model.WindParams{Turbines: pd.Turbines, BladeLength: pd.BladeLength, WindSpeed: pd.WindSpeed}
	case model.KindHydro:
		params = model.HydroParams{FlowRate: pd.FlowRate, VerticalDrop: pd.VerticalDrop}
	case model.KindNuclear:
		params = model.NuclearParams{FuelRodsActive: pd.FuelRodsActive}
	case model.KindGeothermal:
		params = model.GeothermalParams{}
	case model.KindGas:
		params = model.GasParams{FuelType: pd.FuelType, ThrottlePercent: pd.ThrottlePercent}
	}
	return model.NewPlant(pd.Name, pd.MaxOutput, pd.CostPerMW, params), nil
}
