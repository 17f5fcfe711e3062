package metrics

import (
	"time"

	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/core/model"
)

// CycleSummary describes a finished simulation cycle.
type CycleSummary struct {
	RunID          string
	GridName       string
	Passes         int
	StopReason     string
	TotalRequired  float64
	TotalReceived  float64
	TotalAvailable float64
	Time           time.Time
}

// MetricsSink records simulation cycles for observability purposes.
type MetricsSink interface {
	RecordCycle(ev CycleSummary) error
}

// AllocationRecord is a single allocation attempt of a pass.
type AllocationRecord struct {
	RunID      string
	Pass       int
	Allocation model.Allocation
	Time       time.Time
}

// AllocationRecorder records individual allocation attempts.
type AllocationRecorder interface {
	RecordAllocation(rec AllocationRecord) error
}

// AreaState is the end-of-cycle supply of a service area.
type AreaState struct {
	Name     string
	Required float64
	Received float64
	Revenue  float64
	Status   string
}

// PlantState is the end-of-cycle usage of a plant.
type PlantState struct {
	Name      string
	Kind      string
	Output    float64
	Available float64
	Allocated float64
}

// LineState is the end-of-cycle load of a transmission line.
type LineState struct {
	ID       int
	Name     string
	Capacity float64
	InUse    float64
}

// GridState is a snapshot of every entity after a cycle.
type GridState struct {
	RunID    string
	GridName string
	Areas    []AreaState
	Plants   []PlantState
	Lines    []LineState
	Time     time.Time
}

// GridStateRecorder records end-of-cycle grid snapshots.
type GridStateRecorder interface {
	RecordGridState(st GridState) error
}

// SnapshotGrid copies the observable state of g.
func SnapshotGrid(g *grid.Grid, runID string, t time.Time) GridState {
	st := GridState{RunID: runID, GridName: g.Name, Time: t}
	for _, a := range g.Areas() {
		st.Areas = append(st.Areas, AreaState{
			Name:     a.Name,
			Required: a.PowerRequired,
			Received: a.PowerReceived(),
			Revenue:  a.TotalPrice(),
			Status:   a.Status().String(),
		})
	}
	for _, p := range g.Plants() {
		st.Plants = append(st.Plants, PlantState{
			Name:      p.Name,
			Kind:      p.Kind().String(),
			Output:    p.CurrentOutput(),
			Available: p.AvailableCapacity(),
			Allocated: p.Allocated(),
		})
	}
	for _, l := range g.Lines() {
		st.Lines = append(st.Lines, LineState{
			ID:       l.ID,
			Name:     l.Name,
			Capacity: l.MaxCapacity,
			InUse:    l.InUse(),
		})
	}
	return st
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordCycle(CycleSummary) error          { return nil }
func (NopSink) RecordAllocation(AllocationRecord) error { return nil }
func (NopSink) RecordGridState(GridState) error         { return nil }
