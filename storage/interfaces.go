package storage

import (
	"context"

	"github.com/poiesic/findit/core"
)

// Repository is the lifecycle and transaction surface shared by every
// store in this package. Implementations must tolerate concurrent
// calls.
type Repository interface {
	// WithTransaction runs fn inside a single transaction. A nil return
	// from fn commits; an error rolls back and reaches the caller
	// unchanged. The context given to fn carries the transaction, so
	// nested repository calls must use it.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases the backing store. The repository is unusable
	// afterwards.
	Close() error
}

// AuditRepository stores audit findings and answers the lookups the
// search pipeline is built on.
type AuditRepository interface {
	Repository
	// AddAuditRecords writes new records. A record with ID zero gets
	// the content-based ID derived from its natural key (code, project,
	// year), and a zero InsertedAt is stamped with the current time.
	// The returned records carry the assigned IDs and timestamps.
	AddAuditRecords(ctx context.Context, records ...*core.AuditRecord) ([]*core.AuditRecord, error)

	// UpdateAuditRecords rewrites existing records and stamps their
	// UpdatedAt. One unknown ID fails the whole call with ErrNotFound.
	UpdateAuditRecords(ctx context.Context, records ...*core.AuditRecord) ([]*core.AuditRecord, error)

	// DeleteAuditRecords removes records together with their index
	// entries. One unknown ID fails the whole call with ErrNotFound.
	DeleteAuditRecords(ctx context.Context, ids ...core.ID) error

	// GetAuditRecord loads one record by ID, ErrNotFound when it does
	// not exist.
	GetAuditRecord(ctx context.Context, id core.ID) (*core.AuditRecord, error)

	// GetAuditRecords loads the records it finds among ids. Missing IDs
	// are skipped rather than reported.
	GetAuditRecords(ctx context.Context, ids ...core.ID) ([]*core.AuditRecord, error)

	// GetAllAuditRecords retrieves every audit record in storage, ordered
	// by ID. This is the candidate pool for retrieval; callers must treat
	// the returned records as read-only.
	GetAllAuditRecords(ctx context.Context) ([]*core.AuditRecord, error)

	// GetAuditRecordsByYear retrieves records whose audit year matches,
	// ordered by ID.
	GetAuditRecordsByYear(ctx context.Context, year int) ([]*core.AuditRecord, error)

	// GetAuditRecordsByDepartment retrieves records for a department.
	// Matching is case-insensitive. Returns ErrInvalidQuery for an
	// empty department.
	GetAuditRecordsByDepartment(ctx context.Context, department string) ([]*core.AuditRecord, error)
}

// CheckpointRepository persists processor checkpoints so batch operations
// can resume after interruption.
type CheckpointRepository interface {
	// SaveCheckpoint stores the checkpoint for its processor type,
	// replacing any previous one.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint returns the checkpoint saved for processorType,
	// or (nil, nil) when none has been saved.
	LoadCheckpoint(ctx context.Context, processorType string) (*core.Checkpoint, error)

	// DeleteCheckpoint removes the checkpoint for a processor type.
	// Removing a missing checkpoint is not an error.
	DeleteCheckpoint(ctx context.Context, processorType string) error
}
