package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/poiesic/findit/ai"
	"github.com/poiesic/findit/core"
)

// SemanticSearcher ranks a candidate pool by similarity to a query.
// Implementations return candidates sorted by descending relevance and
// already filtered to scores of at least minThreshold.
type SemanticSearcher interface {
	Search(ctx context.Context, query string, pool []*core.AuditRecord, topK int, minThreshold float64) ([]core.ScoredCandidate, error)

	// IsAvailable reports whether the searcher can serve queries at all.
	IsAvailable() bool
}

// EmbeddingSearcher scores records by cosine similarity between the
// query embedding and each record's stored vector. Records without a
// vector are skipped; the reembed package generates vectors ahead of
// query time.
type EmbeddingSearcher struct {
	embedder ai.Embedder
	logger   *slog.Logger
}

var _ SemanticSearcher = (*EmbeddingSearcher)(nil)

// NewEmbeddingSearcher creates a searcher over the given embedder.
// A nil embedder yields a searcher that reports itself unavailable.
func NewEmbeddingSearcher(embedder ai.Embedder) *EmbeddingSearcher {
	return &EmbeddingSearcher{
		embedder: embedder,
		logger:   slog.Default().With("component", "search.semantic"),
	}
}

// IsAvailable reports whether an embedding capability is configured.
func (s *EmbeddingSearcher) IsAvailable() bool {
	return s != nil && s.embedder != nil
}

// Search embeds the query and ranks the pool by cosine similarity.
func (s *EmbeddingSearcher) Search(ctx context.Context, query string, pool []*core.AuditRecord, topK int, minThreshold float64) ([]core.ScoredCandidate, error) {
	if !s.IsAvailable() {
		return nil, ErrSemanticUnavailable
	}

	queryVector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}

	candidates := make([]core.ScoredCandidate, 0, len(pool))
	skipped := 0
	for _, record := range pool {
		if record == nil {
			continue
		}
		if len(record.Vector) == 0 {
			skipped++
			continue
		}
		similarity := cosineSimilarity(queryVector, record.Vector)
		if similarity < minThreshold {
			continue
		}
		candidates = append(candidates, core.ScoredCandidate{
			Record:    record,
			Relevance: similarity,
		})
	}
	if skipped > 0 {
		s.logger.Debug("skipped records without embeddings", "skipped", skipped, "poolSize", len(pool))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Relevance > candidates[j].Relevance
	})
	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}
