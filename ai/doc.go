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


// Package ai defines the external AI capabilities Findit depends on:
// vector embeddings, single-shot completions, and stateful chat.
//
// The pipeline packages accept these interfaces rather than concrete
// clients, so the AI side can be swapped or stubbed without touching the
// retrieval logic. Two implementations ship with the module:
//
//   - ai/openai: production clients for OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles with function-field injection
//
// Production constructors return interface types:
//
//	provider, err := openai.NewProvider(config) // ai.AIProvider
//
// Mock constructors return concrete types so tests can inject behavior
// through the exported function fields and read call counts:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//		return []float32{1, 0, 0}, nil
//	}
//	count := embedder.CallCount()
//
// mock.NewMockProvider returns ai.AIProvider to line up with the
// production constructor; cast to *mock.MockProvider for the test-only
// accessors (GetMockEmbedder, GetMockCompleter, GetMockChats).
//
// A typical production setup:
//
//	provider, err := openai.NewProvider(ai.NewConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "permit findings")
//	answer, err := provider.Completer().Complete(ctx, prompt)
package ai
