package ai

import "context"

// Embedder turns text into vectors for semantic similarity scoring.
// One instance is shared across goroutines, so implementations must
// tolerate concurrent calls.
type Embedder interface {
	// EmbedText embeds one string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts embeds a batch in one round trip. The result holds one
	// vector per input, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer produces a single completion for a prompt. It is the narrow
// surface the query pipeline depends on: intent recognition and answer
// synthesis both go through it. Implementations must tolerate
// concurrent calls.
type Completer interface {
	// Complete sends the prompt to the language model and returns its raw
	// text output. Callers own any parsing of the result.
	// Returns an error if the model is unreachable or produces no output.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Chat is a stateful conversation with the language model. Each Send call
// carries the accumulated history, so the model can resolve references to
// earlier turns. Implementations are NOT required to be thread-safe;
// callers serialize access per conversation.
type Chat interface {
	// Send appends the message to the conversation and returns the model's reply.
	Send(ctx context.Context, message string) (string, error)
}

// AIProvider hands out the AI services built over one shared
// configuration and owns their lifecycle.
type AIProvider interface {
	// Embedder exposes the text embedding service, safe for concurrent
	// use.
	Embedder() Embedder

	// Completer returns the single-shot completion service.
	// The returned Completer is safe for concurrent use.
	Completer() Completer

	// OpenChat starts a new conversation seeded with the given system prompt.
	// Conversations are independent; closing the provider invalidates them.
	OpenChat(systemPrompt string) Chat

	// Close tears down the provider. The services it handed out stop
	// working with it.
	Close() error
}
