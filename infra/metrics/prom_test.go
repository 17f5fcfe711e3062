package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/gridsim/core/metrics"
	"github.com/kilianp07/gridsim/core/model"
)

func TestPromSink_RecordCycleAndState(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	if err := sink.RecordCycle(coremetrics.CycleSummary{Passes: 3, TotalRequired: 200, TotalReceived: 150}); err != nil {
		t.Fatalf("record cycle: %v", err)
	}
	if v := testutil.ToFloat64(sink.demandMet); v != 75 {
		t.Errorf("demand met = %v, want 75", v)
	}
	if v := testutil.ToFloat64(sink.passes); v != 3 {
		t.Errorf("passes = %v, want 3", v)
	}

	st := coremetrics.GridState{
		Areas:  []coremetrics.AreaState{{Name: "Kent", Required: 100, Received: 60}},
		Plants: []coremetrics.PlantState{{Name: "Dam", Kind: "Hydro", Output: 80, Allocated: 60, Available: 20}},
		Lines:  []coremetrics.LineState{{ID: 7, Name: "North", Capacity: 100, InUse: 60}},
	}
	if err := sink.RecordGridState(st); err != nil {
		t.Fatalf("record state: %v", err)
	}
	expected := `
# HELP grid_area_power_mw Power required and received per service area
# TYPE grid_area_power_mw gauge
grid_area_power_mw{area="Kent",measure="received"} 60
grid_area_power_mw{area="Kent",measure="required"} 100
`
	if err := testutil.CollectAndCompare(sink.areaSupply, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if v := testutil.ToFloat64(sink.plantLoad.WithLabelValues("Dam", "Hydro", "available")); v != 20 {
		t.Errorf("plant available = %v", v)
	}
	if v := testutil.ToFloat64(sink.lineLoad.WithLabelValues("7", "North")); v != 60 {
		t.Errorf("line in use = %v", v)
	}
}

func TestPromSink_RecordAllocation(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	for _, o := range []model.Outcome{model.OutcomeCommitted, model.OutcomeCommitted, model.OutcomeNoLine} {
		_ = sink.RecordAllocation(coremetrics.AllocationRecord{Allocation: model.Allocation{Area: "Kent", Outcome: o}})
	}
	if v := testutil.ToFloat64(sink.areaAttempt.WithLabelValues("Kent", "committed")); v != 2 {
		t.Errorf("committed = %v, want 2", v)
	}
	if v := testutil.ToFloat64(sink.areaAttempt.WithLabelValues("Kent", "no_line")); v != 1 {
		t.Errorf("no_line = %v, want 1", v)
	}
}

// A second sink on the same registry reuses the collectors of the first.
func TestPromSink_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	s1, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	s2, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second sink: %v", err)
	}
	_ = s2.RecordCycle(coremetrics.CycleSummary{Passes: 9})
	if v := testutil.ToFloat64(s1.passes); v != 9 {
		t.Errorf("collectors not shared, got %v", v)
	}
}
