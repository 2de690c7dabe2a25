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


package mock

import "github.com/poiesic/findit/ai"

// MockProvider is a test double for ai.AIProvider. Every conversation
// opened through OpenChat is recorded so tests can inspect it afterwards.
type MockProvider struct {
	embedder  *MockEmbedder
	completer *MockCompleter

	// OpenChatFunc is called by OpenChat if set.
	// If nil, a fresh MockChat is created and recorded.
	OpenChatFunc func(systemPrompt string) ai.Chat

	chats []*MockChat
}

// NewMockProvider creates a mock provider backed by default mock services.
// The return type matches the production constructors; cast to
// *MockProvider for the test-only accessors.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		completer: NewMockCompleter(),
	}
}

// Embedder hands back the embedder double.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Completer hands back the completer double.
func (p *MockProvider) Completer() ai.Completer {
	return p.completer
}

// OpenChat returns a mock conversation seeded with the given system prompt.
func (p *MockProvider) OpenChat(systemPrompt string) ai.Chat {
	if p.OpenChatFunc != nil {
		return p.OpenChatFunc(systemPrompt)
	}

	chat := NewMockChat()
	chat.SystemPrompt = systemPrompt
	p.chats = append(p.chats, chat)
	return chat
}

// Close is a no-op for the mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder exposes the concrete embedder for call-count assertions
// and behavior injection.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockCompleter exposes the concrete completer for call-count
// assertions and behavior injection.
func (p *MockProvider) GetMockCompleter() *MockCompleter {
	return p.completer
}

// GetMockChats returns every conversation opened through OpenChat, in order.
func (p *MockProvider) GetMockChats() []*MockChat {
	return p.chats
}
