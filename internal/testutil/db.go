// Package testutil provides store.DB wrappers for tests: fault injection,
// write delays and write recording.
package testutil

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/stationcache/internal/store"
)

// OpenDB opens a fresh store in t.TempDir() and closes it on cleanup.
func OpenDB(t *testing.T, backend store.Backend, version int, upgrade store.UpgradeFunc) store.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := store.Open(context.Background(), store.Options{Backend: backend, Path: path}, version, upgrade)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// txWrapper intercepts writes inside a transaction.
type txWrapper struct {
	store.Tx
	put    func(key string, value []byte) error
	delete func(key string) error
}

func (w *txWrapper) Put(key string, value []byte) error {
	if w.put != nil {
		return w.put(key, value)
	}
	return w.Tx.Put(key, value)
}

func (w *txWrapper) Delete(key string) error {
	if w.delete != nil {
		return w.delete(key)
	}
	return w.Tx.Delete(key)
}

// FaultyDB fails reads or writes on demand.
type FaultyDB struct {
	store.DB

	mu        sync.Mutex
	viewErr   error
	updateErr error
	keyErrs   map[string]error
}

// NewFaultyDB wraps db with no faults configured.
func NewFaultyDB(db store.DB) *FaultyDB {
	return &FaultyDB{DB: db, keyErrs: make(map[string]error)}
}

// FailViews makes every View return err until Heal.
func (f *FaultyDB) FailViews(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewErr = err
}

// FailUpdates makes every Update return err until Heal.
func (f *FaultyDB) FailUpdates(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateErr = err
}

// FailKey makes every write to key fail with err until Heal. The failing
// transaction is rolled back.
func (f *FaultyDB) FailKey(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyErrs[key] = err
}

// Heal clears every configured fault.
func (f *FaultyDB) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewErr = nil
	f.updateErr = nil
	clear(f.keyErrs)
}

func (f *FaultyDB) keyErr(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keyErrs[key]
}

func (f *FaultyDB) View(ctx context.Context, fn func(store.Tx) error) error {
	f.mu.Lock()
	err := f.viewErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.DB.View(ctx, fn)
}

func (f *FaultyDB) Update(ctx context.Context, fn func(store.Tx) error) error {
	f.mu.Lock()
	err := f.updateErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.DB.Update(ctx, func(tx store.Tx) error {
		return fn(&txWrapper{
			Tx: tx,
			put: func(key string, value []byte) error {
				if err := f.keyErr(key); err != nil {
					return err
				}
				return tx.Put(key, value)
			},
			delete: func(key string) error {
				if err := f.keyErr(key); err != nil {
					return err
				}
				return tx.Delete(key)
			},
		})
	})
}

// DelayDB sleeps before each Update for the duration Delay returns. call
// counts Updates from 1.
type DelayDB struct {
	store.DB
	Delay func(call int) time.Duration

	mu    sync.Mutex
	calls int
}

func (d *DelayDB) Update(ctx context.Context, fn func(store.Tx) error) error {
	d.mu.Lock()
	d.calls++
	n := d.calls
	d.mu.Unlock()

	if d.Delay != nil {
		time.Sleep(d.Delay(n))
	}
	return d.DB.Update(ctx, fn)
}

// OpKind is a recorded write operation.
type OpKind string

const (
	OpPut    OpKind = "put"
	OpDelete OpKind = "delete"
)

// Op is one write inside a transaction.
type Op struct {
	Kind  OpKind
	Key   string
	Value []byte
}

// RecordingDB records the operations of every committed Update.
type RecordingDB struct {
	store.DB

	mu  sync.Mutex
	txs [][]Op
}

// NewRecordingDB wraps db.
func NewRecordingDB(db store.DB) *RecordingDB {
	return &RecordingDB{DB: db}
}

func (r *RecordingDB) Update(ctx context.Context, fn func(store.Tx) error) error {
	var ops []Op
	err := r.DB.Update(ctx, func(tx store.Tx) error {
		return fn(&txWrapper{
			Tx: tx,
			put: func(key string, value []byte) error {
				if err := tx.Put(key, value); err != nil {
					return err
				}
				ops = append(ops, Op{Kind: OpPut, Key: key, Value: slices.Clone(value)})
				return nil
			},
			delete: func(key string) error {
				if err := tx.Delete(key); err != nil {
					return err
				}
				ops = append(ops, Op{Kind: OpDelete, Key: key})
				return nil
			},
		})
	})
	if err == nil && len(ops) > 0 {
		r.mu.Lock()
		r.txs = append(r.txs, ops)
		r.mu.Unlock()
	}
	return err
}

// Transactions returns the committed write transactions in commit order.
func (r *RecordingDB) Transactions() [][]Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.txs)
}

// Puts returns the values put under key, in commit order.
func (r *RecordingDB) Puts(key string) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out [][]byte
	for _, ops := range r.txs {
		for _, op := range ops {
			if op.Kind == OpPut && op.Key == key {
				out = append(out, op.Value)
			}
		}
	}
	return out
}

// Reset forgets every recorded transaction.
func (r *RecordingDB) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = nil
}
