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

	"github.com/poiesic/findit/core"
	"github.com/poiesic/findit/storage"
)

// DefaultBatchSize is used when a caller passes a batch size of zero or
// less.
const DefaultBatchSize = 100

// RecordIterator iterates over stored audit records in batches.
type RecordIterator struct {
	repo        storage.AuditRepository
	batchSize   int
	onlyMissing bool
}

// NewRecordIterator selects records from repo in batches of batchSize.
// With onlyMissing set, records that already carry a vector are skipped.
func NewRecordIterator(repo storage.AuditRepository, batchSize int, onlyMissing bool) *RecordIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &RecordIterator{
		repo:        repo,
		batchSize:   batchSize,
		onlyMissing: onlyMissing,
	}
}

// Records returns the records the iterator will visit, in ID order.
func (it *RecordIterator) Records(ctx context.Context) ([]*core.AuditRecord, error) {
	records, err := it.repo.GetAllAuditRecords(ctx)
	if err != nil {
		return nil, err
	}

	if !it.onlyMissing {
		return records, nil
	}

	missing := make([]*core.AuditRecord, 0, len(records))
	for _, record := range records {
		if len(record.Vector) == 0 {
			missing = append(missing, record)
		}
	}
	return missing, nil
}

// ForEach calls fn once per batch of selected records. Iteration stops on
// the first error from fn; cancellation is checked before the first batch
// and after every batch.
func (it *RecordIterator) ForEach(ctx context.Context, fn func([]*core.AuditRecord) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records, err := it.Records(ctx)
	if err != nil {
		return err
	}

	for i := 0; i < len(records); i += it.batchSize {
		end := min(i+it.batchSize, len(records))

		if err := fn(records[i:end]); err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}
