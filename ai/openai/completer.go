// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/findit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var errNoChoices = errors.New("model returned no completion choices")

// Completer sends single-shot prompts to an OpenAI-compatible chat API.
type Completer struct {
	client      llms.Model
	temperature float64
	timeout     time.Duration
	logger      *slog.Logger
}

// newCompleter returns the concrete type for the provider's use.
func newCompleter(config *ai.Config) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// The client insists on a token even for local services that ignore it.
	client, err := openai.New(
		openai.WithBaseURL(config.CompletionHost),
		openai.WithToken("none"),
		openai.WithModel(config.CompletionModel),
	)
	if err != nil {
		return nil, err
	}

	return &Completer{
		client:      client,
		temperature: config.Temperature,
		timeout:     config.CompletionTimeout,
		logger:      slog.Default().With("component", "openai-completer"),
	}, nil
}

// NewCompleter builds a completer from the configuration.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	return newCompleter(config)
}

// Complete sends the prompt as a single user message and returns the raw
// text of the first choice. The call is bounded by the configured
// completion timeout.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	message := []llms.MessageContent{textMessage(llms.ChatMessageTypeHuman, prompt)}

	response, err := c.client.GenerateContent(ctx, message, llms.WithTemperature(c.temperature))
	if err != nil {
		c.logger.Error("completion request failed", "err", err)
		return "", err
	}

	if len(response.Choices) == 0 {
		c.logger.Warn("model returned no choices")
		return "", errNoChoices
	}
	return response.Choices[0].Content, nil
}

// textMessage builds a single-part chat message for the given role.
func textMessage(role llms.ChatMessageType, text string) llms.MessageContent {
	return llms.MessageContent{
		Role:  role,
		Parts: []llms.ContentPart{llms.TextPart(text)},
	}
}
