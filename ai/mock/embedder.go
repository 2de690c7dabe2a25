package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// vectorDim is the dimension of the synthetic embeddings.
const vectorDim = 384

// MockEmbedder is a test double for ai.Embedder. Function fields override
// the default behavior; when they are nil, every text maps to a synthetic
// vector that is deterministic for that text.
type MockEmbedder struct {
	EmbedTextFunc  func(ctx context.Context, text string) ([]float32, error)
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount int
}

// NewMockEmbedder creates a mock embedder with the default synthetic vectors.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText returns the synthetic vector for the text, or defers to
// EmbedTextFunc when set.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return syntheticVector(text), nil
}

// EmbedTexts embeds each text independently, or defers to EmbedTextsFunc
// when set.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = syntheticVector(text)
	}
	return vectors, nil
}

// CallCount reports how many embed calls the double has seen, across
// both methods.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and the overrides.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// syntheticVector derives a unit-length vector from the FNV hash of the
// text by running a small linear congruential generator off the hash.
// Components stay non-negative, so any two synthetic vectors always have a
// clearly positive cosine similarity.
func syntheticVector(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	state := h.Sum32()

	v := make([]float32, vectorDim)
	var sum float64
	for i := range v {
		state = state*1664525 + 1013904223
		c := float32(state%1000) / 1000
		v[i] = c
		sum += float64(c) * float64(c)
	}

	if sum > 0 {
		inv := float32(1 / math.Sqrt(sum))
		for i := range v {
			v[i] *= inv
		}
	}
	return v
}
