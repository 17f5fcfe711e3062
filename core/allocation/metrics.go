package allocation

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	allocationsTotal *prometheus.CounterVec
	allocatedMW      prometheus.Counter
	passesTotal      *prometheus.CounterVec
	passesPerCycle   prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Counter, *prometheus.CounterVec, prometheus.Histogram) {
	alloc := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grid_allocations_total",
			Help: "Number of allocation attempts by outcome",
		},
		[]string{"outcome"},
	)
	mw := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grid_allocated_mw_total",
			Help: "Power credited to service areas in MW",
		},
	)
	passCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grid_passes_total",
			Help: "Distribution passes run, labelled by the stop reason of their cycle",
		},
		[]string{"stop_reason"},
	)
	perCycle := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "grid_cycle_passes",
			Help:    "Number of passes needed per cycle",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
	return alloc, mw, passCount, perCycle
}

func init() {
	allocationsTotal, allocatedMW, passesTotal, passesPerCycle = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers allocation metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(allocationsTotal, allocatedMW, passesTotal, passesPerCycle)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	allocationsTotal, allocatedMW, passesTotal, passesPerCycle = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
