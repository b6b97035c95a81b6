package testutils

import (
	"context"

	"github.com/minuteshq/minutes/pkg/vector"
)

// MockVectorDriver is a test vector driver that records upserts and plays
// back configurable query results per existing namespace.
type MockVectorDriver struct {
	// Namespaces tracks which users have a namespace.
	Namespaces map[int64]bool

	// Upserted accumulates all records passed to Upsert, per user.
	Upserted map[int64][]vector.Record

	// Results is returned by Query for users with a namespace.
	Results []vector.Result

	// LastTopK and LastFilter capture the most recent query arguments.
	LastTopK   int
	LastFilter *vector.Filter

	// FailQuery causes Query to return ErrStore.
	FailQuery bool
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		Namespaces: make(map[int64]bool),
		Upserted:   make(map[int64][]vector.Record),
	}
}

func (m *MockVectorDriver) EnsureNamespace(_ context.Context, userID int64) error {
	m.Namespaces[userID] = true
	return nil
}

func (m *MockVectorDriver) Upsert(_ context.Context, userID int64, records []vector.Record) error {
	m.Namespaces[userID] = true
	m.Upserted[userID] = append(m.Upserted[userID], records...)
	return nil
}

func (m *MockVectorDriver) Query(_ context.Context, userID int64, _ string, topK int, filter *vector.Filter) ([]vector.Result, error) {
	if m.FailQuery {
		return nil, vector.ErrStore
	}

	m.LastTopK = topK
	m.LastFilter = filter

	if !m.Namespaces[userID] {
		return nil, nil
	}
	if len(m.Results) > topK {
		return m.Results[:topK], nil
	}
	return m.Results, nil
}

func (m *MockVectorDriver) DeleteNamespace(_ context.Context, userID int64) error {
	delete(m.Namespaces, userID)
	delete(m.Upserted, userID)
	return nil
}

func (m *MockVectorDriver) Close() error {
	return nil
}
