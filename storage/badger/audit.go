package badger

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/findit/core"
	"github.com/poiesic/findit/storage"
)

// AuditRepository keeps audit records in badger, a primary keyspace
// plus year and department index entries per record.
type AuditRepository struct {
	backend *Backend
}

var _ storage.AuditRepository = (*AuditRepository)(nil)

// NewAuditRepository returns a repository backed by backend.
func NewAuditRepository(backend *Backend) *AuditRepository {
	return &AuditRepository{
		backend: backend,
	}
}

// Close is a no-op. The repository holds no resources of its own; the
// backend owner closes the database.
func (r *AuditRepository) Close() error {
	return nil
}

// WithTransaction hands fn to the shared backend.
func (r *AuditRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddAuditRecords validates and writes records along with their index
// entries.
func (r *AuditRepository) AddAuditRecords(ctx context.Context, records ...*core.AuditRecord) ([]*core.AuditRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := core.ValidateAuditRecord(record); err != nil {
				return err
			}

			// Derive the content-based ID from the natural key, so
			// re-ingesting the same finding overwrites rather than duplicates.
			if record.Id == 0 {
				record.Id = core.NewRecordID(record.Code, record.Project, record.Year)
			}

			now := time.Now().UTC()
			if record.InsertedAt.IsZero() {
				record.InsertedAt = now
			}
			record.UpdatedAt = now

			key := makeAuditRecordKey(record.Id)
			value := storage.MarshalAuditRecord(record)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			yearKey := makeYearKey(record.Year, record.Id)
			if err := tx.Set(yearKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}

			// Records without a department carry no department entry.
			if record.Department != "" {
				deptKey := makeDepartmentKey(record.Department, record.Id)
				if err := tx.Set(deptKey, storage.MarshalID(record.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// UpdateAuditRecords rewrites existing records, moving index entries
// whose year or department changed.
func (r *AuditRepository) UpdateAuditRecords(ctx context.Context, records ...*core.AuditRecord) ([]*core.AuditRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := core.ValidateAuditRecord(record); err != nil {
				return err
			}

			key := makeAuditRecordKey(record.Id)

			// The stored version tells us which index entries move.
			old, err := r.readAuditRecord(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			record.UpdatedAt = time.Now().UTC()
			if record.InsertedAt.IsZero() {
				record.InsertedAt = old.InsertedAt
			}

			value := storage.MarshalAuditRecord(record)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			if old.Year != record.Year {
				if err := tx.Delete(makeYearKey(old.Year, old.Id)); err != nil {
					return err
				}
				if err := tx.Set(makeYearKey(record.Year, record.Id), storage.MarshalID(record.Id)); err != nil {
					return err
				}
			}

			// Hashes compare case-insensitively, so a pure case change
			// keeps the existing entry.
			if departmentHash(old.Department) != departmentHash(record.Department) {
				if old.Department != "" {
					if err := tx.Delete(makeDepartmentKey(old.Department, old.Id)); err != nil {
						return err
					}
				}
				if record.Department != "" {
					if err := tx.Set(makeDepartmentKey(record.Department, record.Id), storage.MarshalID(record.Id)); err != nil {
						return err
					}
				}
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// DeleteAuditRecords drops records together with their index entries.
func (r *AuditRepository) DeleteAuditRecords(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeAuditRecordKey(id)

			// The stored version names the index entries to drop.
			record, err := r.readAuditRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeYearKey(record.Year, record.Id)); err != nil {
				return err
			}

			if record.Department != "" {
				if err := tx.Delete(makeDepartmentKey(record.Department, record.Id)); err != nil {
					return err
				}
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetAuditRecord loads one record, ErrNotFound when absent.
func (r *AuditRepository) GetAuditRecord(ctx context.Context, id core.ID) (*core.AuditRecord, error) {
	var result *core.AuditRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeAuditRecordKey(id)
		var err error
		result, err = r.readAuditRecord(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetAuditRecords loads the records that exist among ids, skipping the
// rest.
func (r *AuditRepository) GetAuditRecords(ctx context.Context, ids ...core.ID) ([]*core.AuditRecord, error) {
	var result []*core.AuditRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeAuditRecordKey(id)
			record, err := r.readAuditRecord(tx, key)
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetAllAuditRecords retrieves every audit record, ordered by ID.
// Primary keys embed the ID in BigEndian order, so iteration order is ID order.
func (r *AuditRepository) GetAllAuditRecords(ctx context.Context) ([]*core.AuditRecord, error) {
	var results []*core.AuditRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(auditRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.AuditRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalAuditRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetAuditRecordsByYear retrieves records whose audit year matches, ordered by ID.
func (r *AuditRepository) GetAuditRecordsByYear(ctx context.Context, year int) ([]*core.AuditRecord, error) {
	return r.collectByIndex(makePartialYearKey(year))
}

// GetAuditRecordsByDepartment retrieves records for a department.
// Matching is case-insensitive via the hashed index key.
func (r *AuditRepository) GetAuditRecordsByDepartment(ctx context.Context, department string) ([]*core.AuditRecord, error) {
	if department == "" {
		return nil, fmt.Errorf("%w: department is empty", storage.ErrInvalidQuery)
	}
	return r.collectByIndex(makePartialDepartmentKey(department))
}

// collectByIndex scans an index keyspace and resolves the indexed IDs to
// full records.
func (r *AuditRepository) collectByIndex(partialKey []byte) ([]*core.AuditRecord, error) {
	var results []*core.AuditRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(partialKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, partialKey) {
				break
			}

			var recordID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				recordID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			record, err := r.readAuditRecord(tx, makeAuditRecordKey(recordID))
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	return results, err
}

// readAuditRecord reads an audit record from the transaction.
// Returns (nil, nil) when the key does not exist.
func (r *AuditRepository) readAuditRecord(tx *badger.Txn, key []byte) (*core.AuditRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.AuditRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalAuditRecord(val)
		return unmarshalErr
	})
	return record, err
}
