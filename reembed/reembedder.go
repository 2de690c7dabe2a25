// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/findit/ai"
	"github.com/poiesic/findit/core"
	"github.com/poiesic/findit/storage"
)

// Config holds configuration for a reembedding run.
type Config struct {
	// BatchSize is the number of records embedded per call to the provider.
	BatchSize int

	// ReportInterval is how many records pass between progress lines.
	ReportInterval int

	// MaxRetries bounds the tries per embedding call.
	MaxRetries int

	// RetryDelay is the wait before the first retry; it doubles per retry.
	RetryDelay time.Duration

	// OnlyMissing limits the run to records that have no embedding yet.
	// Existing vectors are left untouched.
	OnlyMissing bool
}

// DefaultConfig returns the settings the reembed command starts from.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates the embedding vectors of the audit records in a
// database, batch by batch, reporting progress to a writer.
type Reembedder struct {
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *RecordIterator
}

// NewReembedder wires a record iterator and a batch processor over repo.
// Progress lines go to progress, usually os.Stderr. A nil config falls
// back to DefaultConfig.
func NewReembedder(repo storage.AuditRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	return &Reembedder{
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewRecordIterator(repo, config.BatchSize, config.OnlyMissing),
	}
}

// Run reembeds every selected record with the configured embedder. With
// OnlyMissing set, records that already carry a vector are skipped; a run
// that selects nothing reports that and returns nil.
func (r *Reembedder) Run(ctx context.Context) error {
	selected, err := r.iterator.Records(ctx)
	if err != nil {
		return fmt.Errorf("selecting records: %w", err)
	}

	total := len(selected)
	if total == 0 {
		if r.config.OnlyMissing {
			fmt.Fprintln(r.progress, "All records already have embeddings; nothing to do")
		} else {
			fmt.Fprintln(r.progress, "Database holds no records to embed")
		}
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d records (batch size %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	err = r.iterator.ForEach(ctx, func(batch []*core.AuditRecord) error {
		if err := r.processor.Process(ctx, batch); err != nil {
			return fmt.Errorf("processing batch: %w", err)
		}
		tracker.Advance(len(batch))
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	var rate float64
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(total) / secs
	}
	fmt.Fprintf(r.progress, "Reembedding complete: %d records in %s (%.1f records/s)\n",
		total, elapsed.Round(time.Second), rate)

	return nil
}
