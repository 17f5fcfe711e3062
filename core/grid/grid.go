// Package grid holds the ordered collections of service areas, plants and
// transmission lines that make up a power grid. Insertion order is preserved
// and is significant for the first-fit allocation performed by the engine.
package grid

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/gridsim/core/model"
)

var (
	// ErrDuplicateName is returned when an area or plant name is already registered.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrDuplicateLineID is returned when a line ID is already registered.
	ErrDuplicateLineID = errors.New("duplicate line id")
)

// Grid exclusively owns the simulation entities.
type Grid struct {
	Name string

	areas  []model.ServiceArea
	plants []model.Plant
	lines  []model.TransmissionLine

	areaIdx  map[string]int
	plantIdx map[string]int
	lineIdx  map[int]int
}

// New returns an empty grid.
func New(name string) *Grid {
	return &Grid{
		Name:     name,
		areaIdx:  make(map[string]int),
		plantIdx: make(map[string]int),
		lineIdx:  make(map[int]int),
	}
}

// AddArea appends a service area.
func (g *Grid) AddArea(a model.ServiceArea) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if _, ok := g.areaIdx[a.Name]; ok {
		return fmt.Errorf("%w: area %s", ErrDuplicateName, a.Name)
	}
	g.areaIdx[a.Name] = len(g.areas)
	g.areas = append(g.areas, a)
	return nil
}

// AddPlant appends a plant.
func (g *Grid) AddPlant(p model.Plant) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, ok := g.plantIdx[p.Name]; ok {
		return fmt.Errorf("%w: plant %s", ErrDuplicateName, p.Name)
	}
	g.plantIdx[p.Name] = len(g.plants)
	g.plants = append(g.plants, p)
	return nil
}

// AddLine appends a transmission line with its full capacity available.
func (g *Grid) AddLine(l model.TransmissionLine) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if _, ok := g.lineIdx[l.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateLineID, l.ID)
	}
	l.ResetCapacity()
	g.lineIdx[l.ID] = len(g.lines)
	g.lines = append(g.lines, l)
	return nil
}

// Areas returns the service areas in load order. The slice aliases the grid
// storage: element mutations are visible to the grid.
func (g *Grid) Areas() []model.ServiceArea { return g.areas }

// Plants returns the plants in load order, aliasing the grid storage.
func (g *Grid) Plants() []model.Plant { return g.plants }

// Lines returns the transmission lines in load order, aliasing the grid storage.
func (g *Grid) Lines() []model.TransmissionLine { return g.lines }

// Area looks up a service area by name.
func (g *Grid) Area(name string) (*model.ServiceArea, bool) {
	i, ok := g.areaIdx[name]
	if !ok {
		return nil, false
	}
	return &g.areas[i], true
}

// Plant looks up a plant by name.
func (g *Grid) Plant(name string) (*model.Plant, bool) {
	i, ok := g.plantIdx[name]
	if !ok {
		return nil, false
	}
	return &g.plants[i], true
}

// Line looks up a transmission line by ID.
func (g *Grid) Line(id int) (*model.TransmissionLine, bool) {
	i, ok := g.lineIdx[id]
	if !ok {
		return nil, false
	}
	return &g.lines[i], true
}

// ResetCycle releases line capacity and clears the power received by areas.
func (g *Grid) ResetCycle() {
	for i := range g.lines {
		g.lines[i].ResetCapacity()
	}
	for i := range g.areas {
		g.areas[i].ResetPower()
	}
}

// ComputeOutputs refreshes the output of every plant once.
func (g *Grid) ComputeOutputs() {
	for i := range g.plants {
		g.plants[i].ComputeOutput()
	}
}

// Satisfied reports whether every area deficit is within tol.
func (g *Grid) Satisfied(tol float64) bool {
	for _, a := range g.areas {
		if a.Deficit() > tol {
			return false
		}
	}
	return true
}

// TotalRequired returns the summed requirement of all areas.
func (g *Grid) TotalRequired() float64 {
	v := make([]float64, len(g.areas))
	for i, a := range g.areas {
		v[i] = a.PowerRequired
	}
	return floats.Sum(v)
}

// TotalReceived returns the summed power received by all areas.
func (g *Grid) TotalReceived() float64 {
	v := make([]float64, len(g.areas))
	for i, a := range g.areas {
		v[i] = a.PowerReceived()
	}
	return floats.Sum(v)
}

// TotalAvailable returns the uncommitted output of all plants.
func (g *Grid) TotalAvailable() float64 {
	v := make([]float64, len(g.plants))
	for i, p := range g.plants {
		v[i] = p.AvailableCapacity()
	}
	return floats.Sum(v)
}
