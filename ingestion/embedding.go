package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/poiesic/findit/ai"
	"github.com/poiesic/findit/core"
	"github.com/poiesic/findit/storage"
)

// embeddingProcessorType names the embedding processor's checkpoint entry.
const embeddingProcessorType = "embeddings"

// embeddingProcessor generates embeddings for stored audit records.
type embeddingProcessor struct {
	auditRepository      storage.AuditRepository
	checkpointRepository storage.CheckpointRepository
	embedder             ai.Embedder
	logger               *slog.Logger

	mu     sync.Mutex
	lastID core.ID
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor wires the processor over its stores. All three
// dependencies are mandatory.
func newEmbeddingProcessor(auditRepository storage.AuditRepository, checkpointRepository storage.CheckpointRepository, embedder ai.Embedder, logger *slog.Logger) (processor, error) {
	if auditRepository == nil {
		return nil, ErrAuditRepositoryRequired
	}
	if checkpointRepository == nil {
		return nil, ErrCheckpointRepositoryRequired
	}
	if embedder == nil {
		return nil, errors.New("embedding processor needs an embedder")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		auditRepository:      auditRepository,
		checkpointRepository: checkpointRepository,
		embedder:             embedder,
		logger:               logger.With("processor", "embeddings"),
	}, nil
}

// process embeds the records named by ids and writes the vectors back.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	if len(ids) == 0 {
		return nil
	}

	ep.logger.Info("embedding records", "count", len(ids))

	// Sort first so the checkpoint high-water mark is correct
	slices.Sort(ids)

	records, err := ep.auditRepository.GetAuditRecords(ctx, ids...)
	if err != nil {
		ep.logger.Error("record fetch for embedding failed", "err", err)
		return err
	}
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.EmbeddingText()
	}

	ep.logger.Debug("calling embedder", "texts", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("embedding generation failed", "err", err)
		return err
	}

	if len(embeddings) != len(records) {
		return fmt.Errorf("embedder returned %d vectors for %d records", len(embeddings), len(records))
	}

	for i := range embeddings {
		records[i].Vector = embeddings[i]
	}

	updated, err := ep.auditRepository.UpdateAuditRecords(ctx, records...)
	if err != nil {
		return err
	}

	highestID := updated[len(updated)-1].Id
	ep.mu.Lock()
	if highestID > ep.lastID {
		ep.lastID = highestID
	}
	ep.mu.Unlock()

	return nil
}

// checkpoint persists the highest processed record ID.
func (ep *embeddingProcessor) checkpoint(ctx context.Context) error {
	ep.mu.Lock()
	lastID := ep.lastID
	ep.mu.Unlock()

	if lastID == 0 {
		return nil
	}

	return ep.checkpointRepository.SaveCheckpoint(ctx, &core.Checkpoint{
		ProcessorType: embeddingProcessorType,
		LastId:        lastID,
		UpdatedAt:     time.Now().UTC(),
	})
}
