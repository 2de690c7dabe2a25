package search

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TokenEstimator approximates how many LLM tokens a text consumes.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// charsPerToken is the character-to-token ratio of the default
// heuristic. Roughly right for English prose on common tokenizers.
const charsPerToken = 4

// HeuristicEstimator estimates tokens as ceil(len/4) without
// tokenizing. It is the default estimator of the context builder.
type HeuristicEstimator struct{}

var _ TokenEstimator = HeuristicEstimator{}

// EstimateTokens returns the character count divided by charsPerToken,
// rounded up.
func (HeuristicEstimator) EstimateTokens(text string) int {
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// TiktokenEstimator counts real BPE tokens for a named encoding. Use it
// when budget accuracy matters more than the cost of tokenizing.
type TiktokenEstimator struct {
	encoding *tiktoken.Tiktoken
}

var _ TokenEstimator = (*TiktokenEstimator)(nil)

// NewTiktokenEstimator loads the named tiktoken encoding. An empty name
// selects cl100k_base.
func NewTiktokenEstimator(encodingName string) (*TiktokenEstimator, error) {
	if encodingName == "" {
		encodingName = "cl100k_base"
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("loading tiktoken encoding %q: %w", encodingName, err)
	}
	return &TiktokenEstimator{encoding: encoding}, nil
}

// EstimateTokens tokenizes the text and returns the token count.
func (e *TiktokenEstimator) EstimateTokens(text string) int {
	return len(e.encoding.Encode(text, nil, nil))
}
