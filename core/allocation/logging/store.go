// Package logging persists one record per allocation attempt so that a
// simulation run can be audited after the fact.
package logging

import (
	"context"
	"time"

	"github.com/kilianp07/gridsim/core/model"
)

// LogRecord captures one allocation attempt of a distribution pass.
type LogRecord struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Pass      int       `json:"pass"`
	Area      string    `json:"area"`
	Plant     string    `json:"plant,omitempty"`
	LineID    int       `json:"line_id,omitempty"`
	Requested float64   `json:"requested_mw"`
	Delivered float64   `json:"delivered_mw"`
	Drawn     float64   `json:"drawn_mw"`
	Outcome   string    `json:"outcome"`
}

// NewRecord builds a LogRecord from an allocation.
func NewRecord(ts time.Time, runID string, pass int, a model.Allocation) LogRecord {
	return LogRecord{
		Timestamp: ts,
		RunID:     runID,
		Pass:      pass,
		Area:      a.Area,
		Plant:     a.Plant,
		LineID:    a.LineID,
		Requested: a.Requested,
		Delivered: a.Delivered,
		Drawn:     a.Drawn,
		Outcome:   a.Outcome.String(),
	}
}

// LogQuery defines filters for retrieving records. Zero fields match everything.
type LogQuery struct {
	Start   time.Time
	End     time.Time
	RunID   string
	Area    string
	Outcome string
}

// Match reports whether r satisfies the query.
func (q LogQuery) Match(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.Area != "" && r.Area != q.Area {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	return true
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

// NopStore discards every record.
type NopStore struct{}

func (NopStore) Append(context.Context, LogRecord) error              { return nil }
func (NopStore) Query(context.Context, LogQuery) ([]LogRecord, error) { return nil, nil }
func (NopStore) Close() error                                         { return nil }
