package mock

import "context"

// MockChat is a test double for ai.Chat.
// It records every message sent and replies with injected or fixed text.
type MockChat struct {
	// SendFunc is called by Send if set.
	// If nil, returns a fixed placeholder reply.
	SendFunc func(ctx context.Context, message string) (string, error)

	// SystemPrompt is the prompt the conversation was opened with.
	SystemPrompt string

	// Messages records every message passed to Send, in call order.
	Messages []string

	callCount int
}

// NewMockChat returns a conversation double with the canned reply.
func NewMockChat() *MockChat {
	return &MockChat{}
}

// Send records the message and returns the injected or default reply.
func (m *MockChat) Send(ctx context.Context, message string) (string, error) {
	m.callCount++
	m.Messages = append(m.Messages, message)

	if m.SendFunc != nil {
		return m.SendFunc(ctx, message)
	}

	return "mock reply", nil
}

// CallCount returns the number of times Send was called.
func (m *MockChat) CallCount() int {
	return m.callCount
}

// Reset clears the call count, recorded messages, and custom functions.
func (m *MockChat) Reset() {
	m.callCount = 0
	m.Messages = nil
	m.SendFunc = nil
}
