package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned by Tx.Get when no record exists for the key.
	ErrNotFound = errors.New("record not found")

	// ErrReadOnly is returned by Put and Delete inside a View transaction.
	ErrReadOnly = errors.New("transaction is read-only")

	// ErrVersionDowngrade is returned by Open when the stored schema version
	// is newer than the requested one.
	ErrVersionDowngrade = errors.New("stored schema version is newer than requested")

	// ErrClosed is returned by operations on a closed DB.
	ErrClosed = errors.New("store is closed")
)

// Backend selects the storage engine.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendBolt   Backend = "bolt"
)

// SQLite driver names registered by the imported drivers.
const (
	DriverCGo    = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPureGo = "sqlite"  // modernc.org/sqlite
)

// DefaultTimeout bounds how long Open waits for a locked database.
const DefaultTimeout = 5 * time.Second

// Options configures Open.
type Options struct {
	Backend Backend
	Path    string

	// Driver is the database/sql driver for the sqlite backend.
	// Defaults to DriverCGo.
	Driver string

	// Timeout is the busy timeout (sqlite) or file lock timeout (bolt).
	// Defaults to DefaultTimeout.
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Backend == "" {
		o.Backend = BackendSQLite
	}
	if o.Driver == "" {
		o.Driver = DriverCGo
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Record is one key/value pair.
type Record struct {
	Key   string
	Value []byte
}

// Tx is a scoped transaction over the record store.
// A Tx must not be used after its callback returns.
type Tx interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)
	// GetAll returns every record ordered by key (byte order).
	GetAll() ([]Record, error)
	// Put stores value under key, replacing any existing value.
	Put(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// UpgradeFunc initializes or migrates the record store from oldVersion to
// newVersion. oldVersion is 0 for a fresh database.
type UpgradeFunc func(tx Tx, oldVersion, newVersion int) error

// DB is an open record store.
type DB interface {
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(Tx) error) error
	// Update runs fn in a read-write transaction, committed if fn returns nil.
	Update(ctx context.Context, fn func(Tx) error) error
	// Version returns the schema version the DB was opened at.
	Version() int
	// Close releases the database. Safe to call more than once.
	Close() error
}

// Open opens (creating if needed) the record store described by opts at the
// given schema version, running upgrade when the stored version is older.
func Open(ctx context.Context, opts Options, version int, upgrade UpgradeFunc) (DB, error) {
	opts = opts.withDefaults()
	if version < 1 {
		return nil, fmt.Errorf("open store: version must be positive, got %d", version)
	}

	switch opts.Backend {
	case BackendSQLite:
		return OpenSQLite(ctx, opts, version, upgrade)
	case BackendBolt:
		return OpenBolt(ctx, opts, version, upgrade)
	default:
		return nil, fmt.Errorf("open store: unknown backend %q", opts.Backend)
	}
}

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendSQLite, BackendBolt:
		return b, nil
	default:
		return "", fmt.Errorf("unknown backend %q: must be %q or %q", s, BackendSQLite, BackendBolt)
	}
}

// checkVersion validates the stored version against the requested one.
func checkVersion(stored, requested int) error {
	if stored > requested {
		return fmt.Errorf("%w: stored %d, requested %d", ErrVersionDowngrade, stored, requested)
	}
	return nil
}
