package ingestion

import "errors"

// Constructor sentinels. Pipelines refuse to start without their stores.
var (
	ErrAuditRepositoryRequired      = errors.New("ingestion needs an audit repository")
	ErrCheckpointRepositoryRequired = errors.New("ingestion needs a checkpoint repository")
)
