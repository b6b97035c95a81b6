package testutils

import (
	"context"
	"fmt"
)

// MockGenerator is a test generator that plays back scripted responses in
// order and counts calls.
type MockGenerator struct {
	// Responses are returned in order; when exhausted the last one
	// repeats. Empty slice means every call returns "".
	Responses []string

	// Fail causes Generate to return an error.
	Fail bool

	// Calls counts Generate invocations.
	Calls int

	// Prompts accumulates every prompt passed to Generate.
	Prompts []string
}

func NewMockGenerator(responses ...string) *MockGenerator {
	return &MockGenerator{
		Responses: responses,
	}
}

func (m *MockGenerator) Generate(_ context.Context, prompt string, _ int) (string, error) {
	m.Calls++
	m.Prompts = append(m.Prompts, prompt)

	if m.Fail {
		return "", fmt.Errorf("mock generation failure")
	}
	if len(m.Responses) == 0 {
		return "", nil
	}

	idx := m.Calls - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

func (m *MockGenerator) Close() error {
	return nil
}
