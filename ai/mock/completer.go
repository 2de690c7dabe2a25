package mock

import "context"

// MockCompleter stands in for ai.Completer. Assigning CompleteFunc
// replaces the canned completion.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, returns a fixed placeholder completion.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	// Prompts records every prompt passed to Complete, in call order.
	Prompts []string

	callCount int
}

// NewMockCompleter returns a double that answers a fixed placeholder
// completion until CompleteFunc is assigned.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete records the prompt and returns the injected or default completion.
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.callCount++
	m.Prompts = append(m.Prompts, prompt)

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}

	return "mock completion", nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	return m.callCount
}

// Reset clears the call count, recorded prompts, and custom functions.
func (m *MockCompleter) Reset() {
	m.callCount = 0
	m.Prompts = nil
	m.CompleteFunc = nil
}
