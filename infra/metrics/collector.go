package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/gridsim/core/events"
	coremetrics "github.com/kilianp07/gridsim/core/metrics"
	"github.com/kilianp07/gridsim/infra/logger"
	"github.com/kilianp07/gridsim/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards allocation
// events to sinks implementing AllocationRecorder. It returns once the bus is
// closed and every buffered event was recorded. Cancelling ctx stops it after
// the events already buffered are drained. The returned channel is closed
// once the collector goroutine exited.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.AllocationRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	forward := func(ev eventbus.Event) {
		e, ok := ev.(events.AllocationEvent)
		if !ok {
			return
		}
		if err := rec.RecordAllocation(coremetrics.AllocationRecord{
			RunID:      e.RunID,
			Pass:       e.Pass,
			Allocation: e.Allocation,
			Time:       time.Now(),
		}); err != nil {
			log.Errorf("allocation metrics error: %v", err)
		}
	}
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				drain(sub, forward)
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				forward(ev)
			}
		}
	}()
	return done
}

// drain forwards the events already buffered on sub without waiting for more.
func drain(sub <-chan eventbus.Event, forward func(eventbus.Event)) {
	for {
		select {
		case ev, ok := <-sub:
			if !ok {
				return
			}
			forward(ev)
		default:
			return
		}
	}
}
