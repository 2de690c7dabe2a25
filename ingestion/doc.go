// Package ingestion loads audit findings into storage and enriches them.
//
// The Pipeline type manages the ingestion workflow for audit records:
//   - Validating records and adding them to storage
//   - Generating embeddings asynchronously on a worker pool
//   - Checkpointing the embedding high-water mark
//
// Errors during async processing are logged but do not fail the ingestion
// operation; records without vectors are picked up by a later warm-up run.
// LoadRecordsJSON parses a JSON findings file into records for the CLI.
package ingestion
