package allocation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/gridsim/core/allocation/logging"
	"github.com/kilianp07/gridsim/core/events"
	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/core/logger"
	"github.com/kilianp07/gridsim/core/metrics"
	"github.com/kilianp07/gridsim/core/model"
	"github.com/kilianp07/gridsim/core/monitoring"
	"github.com/kilianp07/gridsim/internal/eventbus"
)

// StopReason explains why a cycle ended.
type StopReason int

const (
	// StopAllSatisfied means every area deficit is within tolerance.
	StopAllSatisfied StopReason = iota
	// StopLinesExhausted means a pass found no line for some request.
	StopLinesExhausted
	// StopPlantsExhausted means a pass found no plant for some request.
	StopPlantsExhausted
	// StopNoProgress means a pass delivered nothing.
	StopNoProgress
	// StopMaxPasses means the pass limit was reached.
	StopMaxPasses
	// StopCancelled means the context ended the cycle.
	StopCancelled
)

func (r StopReason) String() string {
	switch r {
	case StopAllSatisfied:
		return "all_satisfied"
	case StopLinesExhausted:
		return "lines_exhausted"
	case StopPlantsExhausted:
		return "plants_exhausted"
	case StopNoProgress:
		return "no_progress"
	case StopMaxPasses:
		return "max_passes"
	case StopCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// MarshalText encodes the reason by name.
func (r StopReason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText decodes a reason written by MarshalText.
func (r *StopReason) UnmarshalText(b []byte) error {
	for c := StopAllSatisfied; c <= StopCancelled; c++ {
		if c.String() == string(b) {
			*r = c
			return nil
		}
	}
	return fmt.Errorf("unknown stop reason %q", b)
}

// CycleResult summarises one simulation cycle.
type CycleResult struct {
	RunID       string             `json:"run_id"`
	Percent     float64            `json:"percent"`
	Passes      int                `json:"passes"`
	Stop        StopReason         `json:"stop_reason"`
	Allocations []model.Allocation `json:"allocations"`
	Started     time.Time          `json:"started"`
	Finished    time.Time          `json:"finished"`
}

// Committed returns the allocations that moved power.
func (r CycleResult) Committed() []model.Allocation {
	var out []model.Allocation
	for _, a := range r.Allocations {
		if a.Outcome == model.OutcomeCommitted {
			out = append(out, a)
		}
	}
	return out
}

// Driver runs simulation cycles over a grid. Cycles are serialised.
type Driver struct {
	mu     sync.Mutex
	engine *Engine
	cfg    Config
	log    logger.Logger
	bus    eventbus.EventBus
	store  logging.LogStore
	sink   metrics.MetricsSink
	now    func() time.Time
	newID  func() string
}

// Option customises a Driver.
type Option func(*Driver)

// WithLogger sets the logger used by the driver and its engine.
func WithLogger(l logger.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

// WithBus publishes allocation, pass and cycle events on bus.
func WithBus(bus eventbus.EventBus) Option {
	return func(d *Driver) { d.bus = bus }
}

// WithLogStore persists one record per allocation attempt.
func WithLogStore(s logging.LogStore) Option {
	return func(d *Driver) {
		if s != nil {
			d.store = s
		}
	}
}

// WithSink records cycle summaries and grid snapshots.
func WithSink(s metrics.MetricsSink) Option {
	return func(d *Driver) {
		if s != nil {
			d.sink = s
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDriver validates cfg and returns a Driver.
func NewDriver(cfg Config, opts ...Option) (*Driver, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("allocation: %w", err)
	}
	d := &Driver{
		cfg:   cfg,
		log:   logger.NopLogger{},
		store: logging.NopStore{},
		sink:  metrics.NopSink{},
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(d)
	}
	d.engine = NewEngine(d.log, cfg.Tolerance)
	return d, nil
}

// Config returns the effective configuration.
func (d *Driver) Config() Config { return d.cfg }

// RunCycle resets g, computes plant outputs once and repeats distribution
// passes until the grid is satisfied, a resource is exhausted, a pass makes
// no progress or MaxPasses is reached. When ctx is cancelled the partial
// result is returned together with ctx.Err().
func (d *Driver) RunCycle(ctx context.Context, g *grid.Grid, percent float64) (CycleResult, error) {
	if err := validatePercent(percent); err != nil {
		return CycleResult{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	res := CycleResult{RunID: d.newID(), Percent: percent, Started: d.now()}
	log := d.log.With("run_id", res.RunID)

	g.ResetCycle()
	g.ComputeOutputs()
	for _, p := range g.Plants() {
		if raw := p.RawOutput(); raw > p.MaxOutput {
			log.Warnf("plant %s output %.2f MW clamped to max %.2f MW", p.Name, raw, p.MaxOutput)
		}
	}
	log.Infof("cycle started: %d areas, %d plants, %d lines, %.2f MW available",
		len(g.Areas()), len(g.Plants()), len(g.Lines()), g.TotalAvailable())

	for pass := 1; ; pass++ {
		if err := ctx.Err(); err != nil {
			res.Stop = StopCancelled
			res.Finished = d.now()
			return res, err
		}
		if g.Satisfied(d.cfg.Tolerance) {
			res.Stop = StopAllSatisfied
			break
		}
		if pass > d.cfg.MaxPasses {
			res.Stop = StopMaxPasses
			break
		}

		pr := d.engine.DistributePower(g, percent)
		res.Passes = pass
		res.Allocations = append(res.Allocations, pr.Allocations...)
		d.recordPass(ctx, log, res.RunID, pass, pr)

		if !pr.LinesHaveCapacity {
			res.Stop = StopLinesExhausted
			break
		}
		if !pr.PlantsHaveCapacity {
			res.Stop = StopPlantsExhausted
			break
		}
		if pr.Delivered <= 0 {
			res.Stop = StopNoProgress
			break
		}
	}
	res.Finished = d.now()
	d.finish(log, g, res)
	return res, nil
}

func (d *Driver) recordPass(ctx context.Context, log logger.Logger, runID string, pass int, pr PassResult) {
	ts := d.now()
	for _, a := range pr.Allocations {
		allocationsTotal.WithLabelValues(a.Outcome.String()).Inc()
		if a.Outcome == model.OutcomeCommitted {
			allocatedMW.Add(a.Delivered)
		}
		if err := d.store.Append(ctx, logging.NewRecord(ts, runID, pass, a)); err != nil {
			log.Errorf("allocation log append: %v", err)
			monitoring.CaptureException(err, map[string]string{"component": "allocation", "run_id": runID})
		}
		if d.bus != nil {
			d.bus.Publish(events.AllocationEvent{RunID: runID, Pass: pass, Allocation: a})
		}
	}
	if d.bus != nil {
		d.bus.Publish(events.PassEvent{
			RunID:              runID,
			Pass:               pass,
			Delivered:          pr.Delivered,
			LinesHaveCapacity:  pr.LinesHaveCapacity,
			PlantsHaveCapacity: pr.PlantsHaveCapacity,
		})
	}
	log.Debugf("pass %d delivered %.3f MW (lines ok: %t, plants ok: %t)",
		pass, pr.Delivered, pr.LinesHaveCapacity, pr.PlantsHaveCapacity)
}

func (d *Driver) finish(log logger.Logger, g *grid.Grid, res CycleResult) {
	reason := res.Stop.String()
	passesTotal.WithLabelValues(reason).Add(float64(res.Passes))
	passesPerCycle.Observe(float64(res.Passes))

	required, received := g.TotalRequired(), g.TotalReceived()
	switch res.Stop {
	case StopLinesExhausted, StopPlantsExhausted, StopNoProgress, StopMaxPasses:
		log.Infof("cycle stopped after %d passes: %s (%.2f of %.2f MW delivered)", res.Passes, reason, received, required)
	default:
		log.Infof("cycle completed after %d passes (%.2f MW delivered)", res.Passes, received)
	}

	summary := metrics.CycleSummary{
		RunID:          res.RunID,
		GridName:       g.Name,
		Passes:         res.Passes,
		StopReason:     reason,
		TotalRequired:  required,
		TotalReceived:  received,
		TotalAvailable: g.TotalAvailable(),
		Time:           res.Finished,
	}
	if err := d.sink.RecordCycle(summary); err != nil {
		log.Errorf("metrics error: %v", err)
	}
	if r, ok := d.sink.(metrics.GridStateRecorder); ok {
		if err := r.RecordGridState(metrics.SnapshotGrid(g, res.RunID, res.Finished)); err != nil {
			log.Errorf("grid state metrics error: %v", err)
		}
	}
	if d.bus != nil {
		d.bus.Publish(events.CycleEvent{
			RunID:         res.RunID,
			GridName:      g.Name,
			Passes:        res.Passes,
			StopReason:    reason,
			TotalRequired: required,
			TotalReceived: received,
			Time:          res.Finished,
		})
	}
}
