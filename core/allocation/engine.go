// Package allocation distributes generated power to service areas.
//
// The Engine performs single greedy passes: every area with a deficit asks
// for a share of its requirement, the first line able to carry the request
// and the first plant able to supply it are chosen in load order, and the
// area, plant and line are debited together. The Driver repeats passes until
// the grid is satisfied or a resource is exhausted.
package allocation

import (
	"math"

	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/core/logger"
	"github.com/kilianp07/gridsim/core/model"
)

// DefaultTolerance is the deficit in MW below which an area counts as satisfied.
const DefaultTolerance = 1e-6

// PassResult reports the outcome of one DistributePower pass.
type PassResult struct {
	// LinesHaveCapacity is false when at least one request found no line.
	LinesHaveCapacity bool
	// PlantsHaveCapacity is false when at least one request found no plant.
	PlantsHaveCapacity bool
	Allocations        []model.Allocation
	// Delivered is the power credited to areas during the pass.
	Delivered float64
}

// Engine matches area requests to lines and plants. It keeps no grid state.
type Engine struct {
	log       logger.Logger
	tolerance float64
}

// NewEngine returns an Engine. A nil logger discards output and a
// non-positive tolerance selects DefaultTolerance.
func NewEngine(log logger.Logger, tolerance float64) *Engine {
	if log == nil {
		log = logger.NopLogger{}
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Engine{log: log, tolerance: tolerance}
}

// Tolerance returns the satisfaction threshold used by the engine.
func (e *Engine) Tolerance() float64 { return e.tolerance }

// DistributePower runs one pass over the areas of g in load order. Each area
// with a deficit requests percent of its requirement, capped at the deficit.
func (e *Engine) DistributePower(g *grid.Grid, percent float64) PassResult {
	res := PassResult{LinesHaveCapacity: true, PlantsHaveCapacity: true}
	areas := g.Areas()
	for i := range areas {
		area := &areas[i]
		deficit := area.Deficit()
		if deficit <= e.tolerance {
			continue
		}
		request := math.Min(area.PowerRequired*percent/100, deficit)
		a := e.AllocateToArea(g, area, request)
		switch a.Outcome {
		case model.OutcomeCommitted:
			res.Delivered += a.Delivered
		case model.OutcomeNoLine:
			res.LinesHaveCapacity = false
		case model.OutcomeNoPlant:
			res.PlantsHaveCapacity = false
		}
		res.Allocations = append(res.Allocations, a)
	}
	return res
}

// AllocateToArea tries to deliver request MW to area. The first line whose
// remaining capacity covers the gross amount request/efficiency is chosen,
// then the first plant whose available capacity covers that gross amount.
// Area, plant and line are only mutated when both were found.
func (e *Engine) AllocateToArea(g *grid.Grid, area *model.ServiceArea, request float64) model.Allocation {
	a := model.Allocation{Area: area.Name, Requested: request}
	if !(request > 0) {
		a.Outcome = model.OutcomeSkipped
		return a
	}

	line := firstLine(g.Lines(), request)
	if line == nil {
		e.log.Infof("no line can carry %.3f MW to %s", request, area.Name)
		a.Outcome = model.OutcomeNoLine
		return a
	}
	draw := line.SendFor(request)

	plant := firstPlant(g.Plants(), draw)
	if plant == nil {
		e.log.Infof("no plant can supply %.3f MW for %s over line %d", draw, area.Name, line.ID)
		a.Outcome = model.OutcomeNoPlant
		return a
	}

	accepted, err := area.AddCapacity(request)
	if err != nil {
		e.log.Warnf("area %s: %v", area.Name, err)
	}
	if err := plant.ReduceCapacity(draw); err != nil {
		e.log.Warnf("plant %s: %v", plant.Name, err)
	}
	if err := line.ReduceCapacity(draw); err != nil {
		e.log.Warnf("line %d: %v", line.ID, err)
	}

	a.Plant = plant.Name
	a.LineID = line.ID
	a.LineName = line.Name
	a.Delivered = accepted
	a.Drawn = draw
	a.Outcome = model.OutcomeCommitted
	e.log.Debugw("allocation committed", map[string]any{
		"area":  area.Name,
		"plant": plant.Name,
		"line":  line.ID,
		"mw":    accepted,
		"drawn": draw,
	})
	return a
}

func firstLine(lines []model.TransmissionLine, request float64) *model.TransmissionLine {
	for i := range lines {
		if lines[i].RemainingCapacity() >= lines[i].SendFor(request) {
			return &lines[i]
		}
	}
	return nil
}

func firstPlant(plants []model.Plant, draw float64) *model.Plant {
	for i := range plants {
		if plants[i].AvailableCapacity() >= draw {
			return &plants[i]
		}
	}
	return nil
}
