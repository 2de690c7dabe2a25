package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/findit/ai"
	"github.com/poiesic/findit/core"
	"github.com/poiesic/findit/storage"
)

// BatchProcessor embeds batches of audit records and writes the vectors
// back to storage.
type BatchProcessor struct {
	repo      storage.AuditRepository
	embedder  ai.Embedder
	retries   int
	baseDelay time.Duration
}

// NewBatchProcessor creates a processor that retries failed embedding
// calls up to retries times with exponential backoff starting at baseDelay.
func NewBatchProcessor(repo storage.AuditRepository, embedder ai.Embedder, retries int, baseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:      repo,
		embedder:  embedder,
		retries:   retries,
		baseDelay: baseDelay,
	}
}

// Process embeds one batch from each record's EmbeddingText and stores the
// vectors, normalized to unit length so cosine similarity can skip the
// magnitude division. An empty batch is a no-op.
func (bp *BatchProcessor) Process(ctx context.Context, records []*core.AuditRecord) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.EmbeddingText()
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, bp.retries, bp.baseDelay, func() error {
		var embedErr error
		vectors, embedErr = bp.embedder.EmbedTexts(ctx, texts)
		return embedErr
	})
	if err != nil {
		return fmt.Errorf("embedding batch failed after %d tries: %w", bp.retries, err)
	}

	if len(vectors) != len(records) {
		return fmt.Errorf("embedding count mismatch: %d records, %d vectors", len(records), len(vectors))
	}

	for i := range records {
		records[i].Vector = NormalizeVector(vectors[i])
	}

	if _, err := bp.repo.UpdateAuditRecords(ctx, records...); err != nil {
		return fmt.Errorf("storing embeddings: %w", err)
	}

	return nil
}
