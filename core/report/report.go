// Package report turns the state of a grid after a simulation cycle into
// per-entity tables and an overall profit and loss summary.
package report

import (
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/gridsim/core/allocation"
	"github.com/kilianp07/gridsim/core/grid"
)

// AreaRow describes the supply of one service area.
type AreaRow struct {
	Name            string          `json:"name"`
	Required        float64         `json:"required_mw"`
	PricePerMW      float64         `json:"price_per_mw"`
	Supplied        float64         `json:"supplied_mw"`
	PercentSupplied float64         `json:"percent_supplied"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Status          string          `json:"status"`
}

// PlantRow describes the usage of one plant.
type PlantRow struct {
	Name          string          `json:"name"`
	Kind          string          `json:"kind"`
	MaxOutput     float64         `json:"max_output_mw"`
	CurrentOutput float64         `json:"current_output_mw"`
	Available     float64         `json:"available_mw"`
	Allocated     float64         `json:"allocated_mw"`
	CostPerMW     float64         `json:"cost_per_mw"`
	Cost          decimal.Decimal `json:"cost"`
	Condition     string          `json:"condition"`
}

// LineRow describes the load of one transmission line.
type LineRow struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Efficiency float64 `json:"efficiency"`
	Capacity   float64 `json:"capacity_mw"`
	Remaining  float64 `json:"remaining_mw"`
}

// Summary is the overall performance and profit of the grid.
type Summary struct {
	TotalDemand       float64 `json:"total_demand_mw"`
	TotalSupplied     float64 `json:"total_supplied_mw"`
	PercentMet        float64 `json:"percent_met"`
	PlantCapacityUsed float64 `json:"plant_capacity_used_mw"`
	// DeliveryEfficiency is the supplied share of the power drawn from plants.
	DeliveryEfficiency float64         `json:"delivery_efficiency"`
	Revenue            decimal.Decimal `json:"revenue"`
	OperatingCost      decimal.Decimal `json:"operating_cost"`
	Profit             decimal.Decimal `json:"profit"`
	StopReason         string          `json:"stop_reason"`
	Passes             int             `json:"passes"`
}

// Report is the full result of a cycle.
type Report struct {
	GridName string     `json:"grid"`
	RunID    string     `json:"run_id"`
	Percent  float64    `json:"percent"`
	Started  time.Time  `json:"started"`
	Finished time.Time  `json:"finished"`
	Areas    []AreaRow  `json:"areas"`
	Plants   []PlantRow `json:"plants"`
	Lines    []LineRow  `json:"lines"`
	Summary  Summary    `json:"summary"`
}

// Build reads g after cycle finished. g is not modified.
func Build(g *grid.Grid, cycle allocation.CycleResult) Report {
	r := Report{
		GridName: g.Name,
		RunID:    cycle.RunID,
		Percent:  cycle.Percent,
		Started:  cycle.Started,
		Finished: cycle.Finished,
	}

	revenue := decimal.Zero
	for _, a := range g.Areas() {
		price := money(a.TotalPrice())
		revenue = revenue.Add(price)
		r.Areas = append(r.Areas, AreaRow{
			Name:            a.Name,
			Required:        a.PowerRequired,
			PricePerMW:      a.PricePerMW,
			Supplied:        a.PowerReceived(),
			PercentSupplied: a.PercentSupplied(),
			TotalPrice:      price,
			Status:          a.Status().String(),
		})
	}

	cost := decimal.Zero
	used := make([]float64, 0, len(g.Plants()))
	for _, p := range g.Plants() {
		c := money(p.CostOfAllocated())
		cost = cost.Add(c)
		used = append(used, p.Allocated())
		r.Plants = append(r.Plants, PlantRow{
			Name:          p.Name,
			Kind:          p.Kind().String(),
			MaxOutput:     p.MaxOutput,
			CurrentOutput: p.CurrentOutput(),
			Available:     p.AvailableCapacity(),
			Allocated:     p.Allocated(),
			CostPerMW:     p.CostPerMW,
			Cost:          c,
			Condition:     p.Condition(),
		})
	}

	for _, l := range g.Lines() {
		r.Lines = append(r.Lines, LineRow{
			ID:         l.ID,
			Name:       l.Name,
			Efficiency: l.Efficiency,
			Capacity:   l.MaxCapacity,
			Remaining:  l.RemainingCapacity(),
		})
	}

	demand, supplied := g.TotalRequired(), g.TotalReceived()
	plantUsage := floats.Sum(used)
	r.Summary = Summary{
		TotalDemand:        demand,
		TotalSupplied:      supplied,
		PercentMet:         percent(supplied, demand),
		PlantCapacityUsed:  plantUsage,
		DeliveryEfficiency: percent(supplied, plantUsage),
		Revenue:            revenue,
		OperatingCost:      cost,
		Profit:             revenue.Sub(cost),
		StopReason:         cycle.Stop.String(),
		Passes:             cycle.Passes,
	}
	return r
}

// AreaTotals returns the summed demand, supply and price of all areas.
func (r Report) AreaTotals() (required, supplied float64, price decimal.Decimal) {
	price = decimal.Zero
	for _, a := range r.Areas {
		required += a.Required
		supplied += a.Supplied
		price = price.Add(a.TotalPrice)
	}
	return required, supplied, price
}

// PlantTotals returns the summed maximum, current and available output of all plants.
func (r Report) PlantTotals() (maxOutput, current, available float64) {
	for _, p := range r.Plants {
		maxOutput += p.MaxOutput
		current += p.CurrentOutput
		available += p.Available
	}
	return maxOutput, current, available
}

// LineTotals returns the summed capacity and remaining capacity of all lines.
func (r Report) LineTotals() (capacity, remaining float64) {
	for _, l := range r.Lines {
		capacity += l.Capacity
		remaining += l.Remaining
	}
	return capacity, remaining
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
