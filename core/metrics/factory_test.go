package metrics_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/gridsim/core/factory"
	"github.com/kilianp07/gridsim/core/metrics"
	_ "github.com/kilianp07/gridsim/infra/metrics"
)

func TestNewMetricsSink_Shape(t *testing.T) {
	cases := []struct {
		name  string
		cfgs  []factory.ModuleConfig
		check func(t *testing.T, s metrics.MetricsSink)
	}{
		{"none", nil, func(t *testing.T, s metrics.MetricsSink) {
			assert.IsType(t, metrics.NopSink{}, s)
		}},
		{"single", []factory.ModuleConfig{{Type: "nop"}}, func(t *testing.T, s metrics.MetricsSink) {
			assert.IsType(t, metrics.NopSink{}, s)
		}},
		{"fan out", []factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}}, func(t *testing.T, s metrics.MetricsSink) {
			m, ok := s.(*metrics.MultiSink)
			require.True(t, ok, "got %T", s)
			assert.Len(t, m.Sinks, 2)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := metrics.NewMetricsSink(tc.cfgs)
			require.NoError(t, err)
			tc.check(t, s)
		})
	}
}

func TestNewMetricsSink_UnknownTypeNamesPosition(t *testing.T) {
	_, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "graphite"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics sink 1 (graphite)")
}

func TestConfig_Decode(t *testing.T) {
	var fromYAML metrics.Config
	require.NoError(t, yaml.Unmarshal([]byte("sinks:\n  - type: nop\nprometheus_addr: \":9090\"\n"), &fromYAML))
	assert.Equal(t, ":9090", fromYAML.PrometheusAddr)
	require.Len(t, fromYAML.Sinks, 1)

	var fromJSON metrics.Config
	require.NoError(t, json.Unmarshal([]byte(`{"sinks":[{"type":"influx","conf":{"url":"http://db"}}]}`), &fromJSON))
	assert.Equal(t, "influx", fromJSON.Sinks[0].Type)
	assert.Equal(t, "http://db", fromJSON.Sinks[0].Conf["url"])
}

func TestSinkTypes(t *testing.T) {
	assert.Subset(t, metrics.SinkTypes(), []string{"influx", "nop", "prometheus"})
}
