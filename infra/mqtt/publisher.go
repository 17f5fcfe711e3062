// Package mqtt publishes simulation results to an MQTT broker.
package mqtt

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/gridsim/core/report"
)

// Publisher sends cycle reports to subscribers outside the process.
type Publisher interface {
	PublishReport(ctx context.Context, r report.Report) error
	Close() error
}

// NopPublisher discards every report.
type NopPublisher struct{}

func (NopPublisher) PublishReport(context.Context, report.Report) error { return nil }
func (NopPublisher) Close() error                                       { return nil }

// MockPublisher records the messages it would publish. It is used in tests.
type MockPublisher struct {
	Prefix   string
	Messages []Message
	Fail     bool
	mu       sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher(prefix string) *MockPublisher {
	return &MockPublisher{Prefix: prefix}
}

// PublishReport records the messages or returns an error if configured to fail.
func (m *MockPublisher) PublishReport(_ context.Context, r report.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	msgs, err := Messages(m.Prefix, r)
	if err != nil {
		return err
	}
	m.Messages = append(m.Messages, msgs...)
	return nil
}

// Published returns a copy of the recorded messages.
func (m *MockPublisher) Published() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.Messages...)
}

// Close implements Publisher.
func (m *MockPublisher) Close() error { return nil }
