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
	"log/slog"
	"time"

	"github.com/poiesic/findit/ai"
)

// Provider bundles the OpenAI-compatible services behind ai.AIProvider.
type Provider struct {
	embedder    *Embedder
	completer   *Completer
	temperature float64
	chatTimeout time.Duration
	logger      *slog.Logger
}

// NewProvider validates the configuration and builds the embedding and
// completion services. The interface return type keeps callers off the
// OpenAI-specific concrete types.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	completer, err := newCompleter(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		embedder:    embedder,
		completer:   completer,
		temperature: config.Temperature,
		chatTimeout: config.CompletionTimeout,
		logger:      slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder exposes the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Completer returns the single-shot completion service.
func (p *Provider) Completer() ai.Completer {
	return p.completer
}

// OpenChat starts a new conversation seeded with the given system prompt.
// The conversation shares the provider's completion client and settings.
func (p *Provider) OpenChat(systemPrompt string) ai.Chat {
	return newChatSession(p.completer.client, systemPrompt, p.temperature, p.chatTimeout)
}

// Close releases resources held by the provider. The langchaingo clients
// hold no connections that need explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("provider closed")
	return nil
}
