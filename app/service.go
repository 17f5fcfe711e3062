package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	apigrid "github.com/kilianp07/gridsim/api/grid"
	"github.com/kilianp07/gridsim/app/plugins"
	"github.com/kilianp07/gridsim/config"
	"github.com/kilianp07/gridsim/core/allocation"
	"github.com/kilianp07/gridsim/core/allocation/logging"
	"github.com/kilianp07/gridsim/core/grid"
	coremetrics "github.com/kilianp07/gridsim/core/metrics"
	coremon "github.com/kilianp07/gridsim/core/monitoring"
	"github.com/kilianp07/gridsim/core/report"
	"github.com/kilianp07/gridsim/infra/logger"
	"github.com/kilianp07/gridsim/infra/metrics"
	"github.com/kilianp07/gridsim/infra/monitoring"
	"github.com/kilianp07/gridsim/infra/mqtt"
	"github.com/kilianp07/gridsim/infra/store"
	"github.com/kilianp07/gridsim/internal/eventbus"
)

// Service wires the grid, the allocation driver and every output of a run.
type Service struct {
	Grid *grid.Grid
	API  *apigrid.Handler

	cfg    *config.Config
	log    logger.Logger
	driver *allocation.Driver
	bus    *eventbus.Bus
	sink   coremetrics.MetricsSink
	logs   logging.LogStore
	runs   *store.SQLiteStore
	pub    mqtt.Publisher

	stopCollector context.CancelFunc
	collectorDone <-chan struct{}
}

// Option customises a Service.
type Option func(*Service)

// WithPublisher replaces the publisher built from the MQTT configuration.
func WithPublisher(p mqtt.Publisher) Option { return func(s *Service) { s.pub = p } }

// WithLogger replaces the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a Service from the configuration. Invalid grid input is fatal.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{cfg: cfg, log: logger.New("service")}
	for _, o := range opts {
		o(s)
	}
	ok := false
	defer func() {
		if !ok {
			_ = s.Close()
		}
	}()

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	if s.Grid, err = plugins.LoadGrid(cfg.Grid); err != nil {
		return nil, fmt.Errorf("load grid: %w", err)
	}
	if s.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	if s.logs, err = plugins.NewLogStore(cfg.Logging); err != nil {
		return nil, fmt.Errorf("allocation log: %w", err)
	}
	if !cfg.Store.Disabled {
		if s.runs, err = store.NewSQLiteStore(cfg.Store.Path); err != nil {
			return nil, fmt.Errorf("run store: %w", err)
		}
	}
	if s.pub == nil {
		if cfg.MQTT.Enabled {
			if s.pub, err = mqtt.NewPahoPublisher(cfg.MQTT, logger.New("mqtt")); err != nil {
				return nil, fmt.Errorf("mqtt publisher: %w", err)
			}
		} else {
			s.pub = mqtt.NopPublisher{}
		}
	}

	s.bus = eventbus.New(eventbus.WithBuffer(eventBuffer))
	s.driver, err = allocation.NewDriver(cfg.Simulation,
		allocation.WithLogger(logger.New("allocation")),
		allocation.WithBus(s.bus),
		allocation.WithLogStore(s.logs),
		allocation.WithSink(s.sink),
	)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopCollector = cancel
	s.collectorDone = metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("collector"))

	var runs apigrid.RunStore
	if s.runs != nil {
		runs = s.runs
	}
	s.API = apigrid.NewHandler(runs, s.logs, cfg.API.Token)

	s.log.Infof("grid %s loaded: %d areas, %d plants, %d lines",
		s.Grid.Name, len(s.Grid.Areas()), len(s.Grid.Plants()), len(s.Grid.Lines()))
	ok = true
	return s, nil
}

// RunCycle simulates one cycle at percent (the configured percent when
// zero), stores and publishes the report. Persistence and publishing failures
// are logged and do not fail the run.
func (s *Service) RunCycle(ctx context.Context, percent float64) (report.Report, error) {
	if percent == 0 {
		percent = s.driver.Config().Percent
	}
	res, err := s.driver.RunCycle(ctx, s.Grid, percent)
	if err != nil {
		coremon.CaptureException(err, map[string]string{"module": "app", "grid": s.Grid.Name})
		return report.Report{}, err
	}
	rep := report.Build(s.Grid, res)
	s.log.Infof("run %s finished: %s after %d passes, %.1f%% of demand met",
		rep.RunID, rep.Summary.StopReason, rep.Summary.Passes, rep.Summary.PercentMet)

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, rep); err != nil {
			s.log.Errorf("save run %s: %v", rep.RunID, err)
			coremon.CaptureException(err, map[string]string{"module": "store", "run_id": rep.RunID})
		}
	}
	if err := s.pub.PublishReport(ctx, rep); err != nil {
		s.log.Errorf("publish run %s: %v", rep.RunID, err)
	}
	if rep.Summary.PercentMet < 100 {
		coremon.CaptureMessage("demand not fully met", map[string]string{
			"run_id": rep.RunID, "stop_reason": rep.Summary.StopReason,
		})
	}
	s.API.SetReport(rep)
	return rep, nil
}

// History lists stored runs, most recent first.
func (s *Service) History(ctx context.Context, limit int) ([]store.RunSummary, error) {
	if s.runs == nil {
		return nil, errors.New("run history is disabled")
	}
	return s.runs.ListRuns(ctx, limit)
}

// Serve runs a cycle and then serves the HTTP API until ctx is cancelled.
func (s *Service) Serve(ctx context.Context, percent float64) error {
	if _, err := s.RunCycle(ctx, percent); err != nil {
		return err
	}
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" && addr != s.cfg.API.Addr {
		go func() {
			defer coremon.Recover()
			if err := metrics.StartPromServer(ctx, addr, logger.New("prometheus")); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	srv := &http.Server{
		Addr:              s.cfg.API.Addr,
		Handler:           s.API.Routes(promhttp.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("serving grid API on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// eventBuffer holds every allocation event of a typical cycle so that a slow
// sink does not make the bus drop them.
const eventBuffer = 8192

// collectorDrainTimeout bounds how long Close waits for buffered events to
// reach the metrics sinks.
const collectorDrainTimeout = 5 * time.Second

// Close releases resources held by the service. Events already published
// are recorded before the sinks are closed.
func (s *Service) Close() error {
	if s.bus != nil {
		s.bus.Close()
		if n := s.bus.Dropped(); n > 0 {
			s.log.Warnf("%d events dropped by lagging subscribers", n)
		}
	}
	if s.stopCollector != nil {
		select {
		case <-s.collectorDone:
		case <-time.After(collectorDrainTimeout):
			s.log.Warnf("event collector still draining after %s, stopping it", collectorDrainTimeout)
			s.stopCollector()
			<-s.collectorDone
		}
		s.stopCollector()
	}
	var errs []error
	if s.pub != nil {
		errs = append(errs, s.pub.Close())
	}
	if s.logs != nil {
		errs = append(errs, s.logs.Close())
	}
	if s.runs != nil {
		errs = append(errs, s.runs.Close())
	}
	switch c := s.sink.(type) {
	case interface{ Close() error }:
		errs = append(errs, c.Close())
	case interface{ Close() }:
		c.Close()
	}
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
