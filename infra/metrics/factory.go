package metrics

import (
	"errors"

	"github.com/kilianp07/gridsim/core/factory"
	coremetrics "github.com/kilianp07/gridsim/core/metrics"
)

// InfluxConfig is the per-sink configuration of the influx sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
	// Strict returns the health check error instead of degrading to a nop sink.
	Strict bool `json:"strict"`
}

// Validate checks the fields needed to reach the server.
func (c InfluxConfig) Validate() error {
	if c.URL == "" {
		return errors.New("influx: url required")
	}
	if c.Bucket == "" {
		return errors.New("influx: bucket required")
	}
	return nil
}

func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})
	_ = coremetrics.RegisterMetricsSink("prometheus", newPromFromConf)
	_ = coremetrics.RegisterMetricsSink("influx", newInfluxFromConf)
}

func newPromFromConf(map[string]any) (coremetrics.MetricsSink, error) {
	return NewPromSink()
}

func newInfluxFromConf(conf map[string]any) (coremetrics.MetricsSink, error) {
	var c InfluxConfig
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Strict {
		s := NewInfluxSink(c.URL, c.Token, c.Org, c.Bucket)
		if err := s.Ping(); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	}
	return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
}
