package badger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Backend owns the BadgerDB handle shared by the repositories.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBackend opens the database under dir, creating the directory when
// missing. With inMemory set the path is ignored and nothing touches
// disk, which is the mode the test helpers use.
func OpenBackend(dir string, inMemory bool) (*Backend, error) {
	logger := slog.Default().With("component", "storage")

	opts, err := backendOptions(dir, inMemory)
	if err != nil {
		return nil, err
	}
	opts.Logger = dbLogger{l: logger}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", dir, err)
	}
	return &Backend{db: db, logger: logger}, nil
}

// backendOptions assembles the badger options for one of the two modes.
// Compression stays off in both; the values are small MUS blobs that do
// not repay it.
func backendOptions(dir string, inMemory bool) (badger.Options, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	if !inMemory {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return badger.Options{}, fmt.Errorf("creating database directory: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Compression = options.None
	return opts, nil
}

// Close closes the database. Further use fails with badger's own error.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed reports whether Close has completed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx runs fn inside one badger transaction, read-write when isWrite
// is set. Committing is left to fn; the deferred discard rolls back
// anything fn left uncommitted.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// WithTransaction satisfies the storage.Repository contract: fn runs
// inside a read-write transaction that commits only when fn returns nil.
func (b *Backend) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return b.WithTx(func(tx *badger.Txn) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// dbLogger feeds badger's logger into slog. Badger terminates its
// messages with newlines that slog does not want.
type dbLogger struct {
	l *slog.Logger
}

var _ badger.Logger = dbLogger{}

func (d dbLogger) Errorf(format string, args ...any) {
	d.l.Error(d.line(format, args))
}

func (d dbLogger) Warningf(format string, args ...any) {
	d.l.Warn(d.line(format, args))
}

func (d dbLogger) Infof(format string, args ...any) {
	d.l.Info(d.line(format, args))
}

func (d dbLogger) Debugf(format string, args ...any) {
	d.l.Debug(d.line(format, args))
}

func (dbLogger) line(format string, args []any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
