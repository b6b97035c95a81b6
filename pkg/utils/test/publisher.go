package testutils

import (
	"context"
	"fmt"

	"github.com/minuteshq/minutes/pkg/eventstream"
)

// MockPublisher is a test publisher that records published events.
type MockPublisher struct {
	Events []*eventstream.UsageEvent

	// Fail causes Publish to return an error.
	Fail bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(_ context.Context, event *eventstream.UsageEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	if m.Fail {
		return fmt.Errorf("mock publish failure")
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}
