package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/gridsim/core/metrics"
)

// PromSink exposes the state of the last cycle as Prometheus gauges.
type PromSink struct {
	demandMet   prometheus.Gauge
	passes      prometheus.Gauge
	areaSupply  *prometheus.GaugeVec
	plantLoad   *prometheus.GaugeVec
	lineLoad    *prometheus.GaugeVec
	areaAttempt *prometheus.CounterVec
}

// NewPromSink registers grid metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	var err error
	s := &PromSink{}
	if s.demandMet, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "grid_demand_met_percent",
		Help: "Share of the total demand delivered in the last cycle",
	})); err != nil {
		return nil, err
	}
	if s.passes, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "grid_last_cycle_passes",
		Help: "Number of passes of the last cycle",
	})); err != nil {
		return nil, err
	}
	if s.areaSupply, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "grid_area_power_mw",
		Help: "Power required and received per service area",
	}, []string{"area", "measure"})); err != nil {
		return nil, err
	}
	if s.plantLoad, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "grid_plant_power_mw",
		Help: "Output, allocated and available power per plant",
	}, []string{"plant", "kind", "measure"})); err != nil {
		return nil, err
	}
	if s.lineLoad, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "grid_line_in_use_mw",
		Help: "Capacity in use per transmission line",
	}, []string{"line_id", "line"})); err != nil {
		return nil, err
	}
	if s.areaAttempt, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grid_area_allocations_total",
		Help: "Allocation attempts per service area and outcome",
	}, []string{"area", "outcome"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordCycle sets the cycle gauges.
func (s *PromSink) RecordCycle(ev coremetrics.CycleSummary) error {
	s.demandMet.Set(percentOf(ev.TotalReceived, ev.TotalRequired))
	s.passes.Set(float64(ev.Passes))
	return nil
}

// RecordAllocation counts the attempt for its area.
func (s *PromSink) RecordAllocation(rec coremetrics.AllocationRecord) error {
	s.areaAttempt.WithLabelValues(rec.Allocation.Area, rec.Allocation.Outcome.String()).Inc()
	return nil
}

// RecordGridState sets the per-entity gauges.
func (s *PromSink) RecordGridState(st coremetrics.GridState) error {
	for _, a := range st.Areas {
		s.areaSupply.WithLabelValues(a.Name, "required").Set(a.Required)
		s.areaSupply.WithLabelValues(a.Name, "received").Set(a.Received)
	}
	for _, p := range st.Plants {
		s.plantLoad.WithLabelValues(p.Name, p.Kind, "output").Set(p.Output)
		s.plantLoad.WithLabelValues(p.Name, p.Kind, "allocated").Set(p.Allocated)
		s.plantLoad.WithLabelValues(p.Name, p.Kind, "available").Set(p.Available)
	}
	for _, l := range st.Lines {
		s.lineLoad.WithLabelValues(strconv.Itoa(l.ID), l.Name).Set(l.InUse)
	}
	return nil
}
