package openai

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// chatSession implements ai.Chat over an OpenAI-compatible chat API.
// The full history is resent on every exchange so the model can resolve
// references to earlier turns.
type chatSession struct {
	client      llms.Model
	temperature float64
	timeout     time.Duration
	logger      *slog.Logger

	mu      sync.Mutex
	history []llms.MessageContent
}

func newChatSession(client llms.Model, systemPrompt string, temperature float64, timeout time.Duration) *chatSession {
	history := make([]llms.MessageContent, 0, 8)
	if systemPrompt != "" {
		history = append(history, textMessage(llms.ChatMessageTypeSystem, systemPrompt))
	}
	return &chatSession{
		client:      client,
		temperature: temperature,
		timeout:     timeout,
		logger:      slog.Default().With("component", "openai-chat"),
		history:     history,
	}
}

// Send appends the message to the conversation and returns the model's reply.
// Failed sends leave the history unchanged.
func (c *chatSession) Send(ctx context.Context, message string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	withUser := append(c.history, textMessage(llms.ChatMessageTypeHuman, message))

	response, err := c.client.GenerateContent(ctx, withUser, llms.WithTemperature(c.temperature))
	if err != nil {
		c.logger.Error("failed to generate chat reply", "err", err)
		return "", err
	}

	if len(response.Choices) == 0 {
		c.logger.Warn("model returned no choices")
		return "", errNoChoices
	}

	reply := response.Choices[0].Content
	c.history = append(withUser, textMessage(llms.ChatMessageTypeAI, reply))

	return reply, nil
}
