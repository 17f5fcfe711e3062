package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/core/model"
)

type recordSink struct {
	cycles, allocs, states int
	err                    error
}

func (r *recordSink) RecordCycle(CycleSummary) error { r.cycles++; return r.err }
func (r *recordSink) RecordAllocation(AllocationRecord) error {
	r.allocs++
	return nil
}
func (r *recordSink) RecordGridState(GridState) error { r.states++; return nil }

type cycleOnly struct{ n int }

func (c *cycleOnly) RecordCycle(CycleSummary) error { c.n++; return nil }

// TestMultiSink ensures records are forwarded to every sink that supports them.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &cycleOnly{}
	m := NewMultiSink(s1, s2)
	require.NoError(t, m.RecordCycle(CycleSummary{}))
	require.NoError(t, m.RecordAllocation(AllocationRecord{}))
	require.NoError(t, m.RecordGridState(GridState{}))
	assert.Equal(t, 1, s1.cycles)
	assert.Equal(t, 1, s1.allocs)
	assert.Equal(t, 1, s1.states)
	assert.Equal(t, 1, s2.n)
}

func TestMultiSink_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &cycleOnly{}
	err := NewMultiSink(s1, s2).RecordCycle(CycleSummary{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s2.n)
}

func TestSnapshotGrid(t *testing.T) {
	g := grid.New("snap")
	require.NoError(t, g.AddArea(model.NewServiceArea("Kent", 10, 2)))
	require.NoError(t, g.AddPlant(model.NewPlant("geo", 20, 1, model.GeothermalParams{})))
	require.NoError(t, g.AddLine(model.NewTransmissionLine(4, "North", 50, 1)))
	g.ComputeOutputs()
	a, _ := g.Area("Kent")
	_, _ = a.AddCapacity(4)

	now := time.Unix(10, 0)
	st := SnapshotGrid(g, "run", now)
	assert.Equal(t, "snap", st.GridName)
	require.Len(t, st.Areas, 1)
	assert.Equal(t, 8.0, st.Areas[0].Revenue)
	assert.Equal(t, "partially_met", st.Areas[0].Status)
	require.Len(t, st.Plants, 1)
	assert.Equal(t, "Geothermal", st.Plants[0].Kind)
	assert.Equal(t, 20.0, st.Plants[0].Available)
	require.Len(t, st.Lines, 1)
	assert.Equal(t, 4, st.Lines[0].ID)
}
