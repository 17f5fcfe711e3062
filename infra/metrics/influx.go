package metrics

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/gridsim/core/metrics"
	"github.com/kilianp07/gridsim/infra/logger"
)

// InfluxSink writes simulation results to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// Ping runs the server health check.
func (s *InfluxSink) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := s.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("influx health check: %w", err)
	}
	if health.Status != "pass" {
		return fmt.Errorf("influx health status: %s", health.Status)
	}
	return nil
}

// NewInfluxSinkWithFallback returns a NopSink when the server fails its
// health check.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	if err := sink.Ping(); err != nil {
		sink.log.Errorf("%v, metrics disabled", err)
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordCycle writes a cycle_summary point.
func (s *InfluxSink) RecordCycle(ev coremetrics.CycleSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("cycle_summary").
		AddTag("grid", ev.GridName).
		AddTag("run_id", ev.RunID).
		AddTag("stop_reason", ev.StopReason).
		AddField("passes", ev.Passes).
		AddField("required_mw", round3(ev.TotalRequired)).
		AddField("received_mw", round3(ev.TotalReceived)).
		AddField("available_mw", round3(ev.TotalAvailable)).
		AddField("percent_met", round3(percentOf(ev.TotalReceived, ev.TotalRequired))).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAllocation writes an allocation point.
func (s *InfluxSink) RecordAllocation(rec coremetrics.AllocationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a := rec.Allocation
	p := write.NewPointWithMeasurement("allocation").
		AddTag("run_id", rec.RunID).
		AddTag("area", a.Area).
		AddTag("outcome", a.Outcome.String())
	if a.Plant != "" {
		p = p.AddTag("plant", a.Plant).
			AddTag("line_id", strconv.Itoa(a.LineID))
	}
	p = p.AddField("pass", rec.Pass).
		AddField("requested_mw", round3(a.Requested)).
		AddField("delivered_mw", round3(a.Delivered)).
		AddField("drawn_mw", round3(a.Drawn)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordGridState writes one area_supply point per area, one plant_usage
// point per plant and one line_load point per line in a single request.
func (s *InfluxSink) RecordGridState(st coremetrics.GridState) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, len(st.Areas)+len(st.Plants)+len(st.Lines))
	for _, a := range st.Areas {
		points = append(points, write.NewPointWithMeasurement("area_supply").
			AddTag("grid", st.GridName).
			AddTag("run_id", st.RunID).
			AddTag("area", a.Name).
			AddTag("status", a.Status).
			AddField("required_mw", round3(a.Required)).
			AddField("received_mw", round3(a.Received)).
			AddField("revenue", round3(a.Revenue)).
			SetTime(st.Time))
	}
	for _, p := range st.Plants {
		points = append(points, write.NewPointWithMeasurement("plant_usage").
			AddTag("grid", st.GridName).
			AddTag("run_id", st.RunID).
			AddTag("plant", p.Name).
			AddTag("kind", p.Kind).
			AddField("output_mw", round3(p.Output)).
			AddField("allocated_mw", round3(p.Allocated)).
			AddField("available_mw", round3(p.Available)).
			SetTime(st.Time))
	}
	for _, l := range st.Lines {
		points = append(points, write.NewPointWithMeasurement("line_load").
			AddTag("grid", st.GridName).
			AddTag("run_id", st.RunID).
			AddTag("line_id", strconv.Itoa(l.ID)).
			AddField("capacity_mw", round3(l.Capacity)).
			AddField("in_use_mw", round3(l.InUse)).
			SetTime(st.Time))
	}
	if len(points) == 0 {
		return nil
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

func percentOf(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
