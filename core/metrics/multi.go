package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCycle forwards the summary to all sinks, returning the first error encountered.
func (m *MultiSink) RecordCycle(ev CycleSummary) error {
	for _, s := range m.Sinks {
		if err := s.RecordCycle(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordAllocation forwards the record to sinks that support it.
func (m *MultiSink) RecordAllocation(rec AllocationRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(AllocationRecorder); ok {
			if err := r.RecordAllocation(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordGridState forwards the snapshot to sinks that support it.
func (m *MultiSink) RecordGridState(st GridState) error {
	for _, s := range m.Sinks {
		if r, ok := s.(GridStateRecorder); ok {
			if err := r.RecordGridState(st); err != nil {
				return err
			}
		}
	}
	return nil
}
