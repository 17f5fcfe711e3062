package metrics

import "github.com/kilianp07/gridsim/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// PrometheusAddr is the listen address of the /metrics endpoint. Empty
	// disables the standalone server.
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr"`
}
