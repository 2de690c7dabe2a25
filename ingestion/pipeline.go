package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/findit/ai"
	"github.com/poiesic/findit/core"
	"github.com/poiesic/findit/storage"
)

// Pipeline orchestrates the ingestion of audit findings.
// Records are validated and stored synchronously; embedding generation
// runs on a worker pool and never fails the ingest call.
type Pipeline struct {
	auditRepository      storage.AuditRepository
	checkpointRepository storage.CheckpointRepository
	embeddingPool        *ants.Pool
	embeddingProc        processor
	logger               *slog.Logger
}

// Option adjusts a Pipeline at construction time.
type Option func(*Pipeline) error

// WithPoolSize caps how many embedding jobs run at once. Sizes under
// one are raised to one; without the option the pool holds half the
// CPUs, minimum one.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// the constructor already allocated a default pool
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.embeddingPool = pool
		return nil
	}
}

// WithLogger routes pipeline logging somewhere other than
// slog.Default(). A nil logger keeps the default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline builds the ingest path over the two repositories. A nil
// embedder stores records without vectors and leaves embedding to a
// later warm-up run.
func NewPipeline(
	auditRepository storage.AuditRepository,
	checkpointRepository storage.CheckpointRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if auditRepository == nil {
		return nil, ErrAuditRepositoryRequired
	}
	if checkpointRepository == nil {
		return nil, ErrCheckpointRepositoryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		auditRepository:      auditRepository,
		checkpointRepository: checkpointRepository,
		embeddingPool:        embeddingPool,
		logger:               slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create the processor after options are applied so it gets the final logger
	if embedder != nil {
		proc, err := newEmbeddingProcessor(auditRepository, checkpointRepository, embedder, p.logger)
		if err != nil {
			p.Release()
			return nil, err
		}
		p.embeddingProc = proc
	}

	return p, nil
}

// Ingest validates and stores findings, then submits them for asynchronous
// embedding. A validation failure rejects the whole batch before anything
// is written. Embedding errors are logged and left for a warm-up run.
// Returns the stored records with IDs and timestamps populated.
func (p *Pipeline) Ingest(ctx context.Context, records ...*core.AuditRecord) ([]*core.AuditRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}

	for i, record := range records {
		if err := core.ValidateAuditRecord(record); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	added, err := p.auditRepository.AddAuditRecords(ctx, records...)
	if err != nil {
		return nil, err
	}

	if p.embeddingProc == nil || len(added) == 0 {
		return added, nil
	}

	ids := make([]core.ID, len(added))
	for i, record := range added {
		ids[i] = record.Id
	}

	// Background context: the job must outlive the ingest call.
	err = p.embeddingPool.Submit(func() {
		if err := p.embeddingProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("embedding processing failed", "err", err)
			return
		}
		if err := p.embeddingProc.checkpoint(context.Background()); err != nil {
			p.logger.Error("embedding checkpoint failed", "err", err)
		}
	})
	if err != nil {
		p.logger.Error("embedding job submission failed", "err", err)
	}

	return added, nil
}

// Release stops the worker pool. The pipeline is unusable afterwards.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
