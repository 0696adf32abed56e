package store

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.etcd.io/bbolt"
)

const (
	recordBucket = "default"
	metaBucket   = "meta"
	versionKey   = "version"
)

// Bolt is a record store backed by a BoltDB file.
type Bolt struct {
	db      *bbolt.DB
	version int
}

// OpenBolt opens the BoltDB file at opts.Path.
func OpenBolt(ctx context.Context, opts Options, version int, upgrade UpgradeFunc) (*Bolt, error) {
	opts = opts.withDefaults()
	if version < 1 {
		return nil, fmt.Errorf("open bolt: version must be positive, got %d", version)
	}
	if strings.TrimSpace(opts.Path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(filepath.Clean(opts.Path), 0o600, &bbolt.Options{Timeout: opts.Timeout})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	b := &Bolt{db: db, version: version}
	if err := b.migrate(version, upgrade); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

func (b *Bolt) migrate(version int, upgrade UpgradeFunc) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists([]byte(metaBucket))
		if err != nil {
			return fmt.Errorf("upgrade: create meta bucket: %w", err)
		}

		stored := 0
		if raw := meta.Get([]byte(versionKey)); raw != nil {
			stored, err = strconv.Atoi(string(raw))
			if err != nil {
				return fmt.Errorf("upgrade: parse stored version %q: %w", raw, err)
			}
		}
		if err := checkVersion(stored, version); err != nil {
			return err
		}
		if stored == version {
			return nil
		}

		records, err := tx.CreateBucketIfNotExists([]byte(recordBucket))
		if err != nil {
			return fmt.Errorf("upgrade: create record bucket: %w", err)
		}

		if upgrade != nil {
			if err := upgrade(&boltTx{bucket: records}, stored, version); err != nil {
				return fmt.Errorf("upgrade from v%d to v%d: %w", stored, version, err)
			}
		}

		if err := meta.Put([]byte(versionKey), []byte(strconv.Itoa(version))); err != nil {
			return fmt.Errorf("upgrade: set version: %w", err)
		}
		return nil
	})
}

// View runs fn in a read-only bolt transaction.
func (b *Bolt) View(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.db == nil {
		return ErrClosed
	}
	return b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucket))
		if bucket == nil {
			return fmt.Errorf("record bucket is missing")
		}
		return fn(&boltTx{bucket: bucket, readOnly: true})
	})
}

// Update runs fn in a read-write bolt transaction.
func (b *Bolt) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.db == nil {
		return ErrClosed
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucket))
		if bucket == nil {
			return fmt.Errorf("record bucket is missing")
		}
		return fn(&boltTx{bucket: bucket})
	})
}

// Version returns the schema version the database was opened at.
func (b *Bolt) Version() int {
	return b.version
}

// Close closes the underlying BoltDB database.
func (b *Bolt) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

type boltTx struct {
	bucket   *bbolt.Bucket
	readOnly bool
}

// Bolt memory is only valid for the life of the transaction; values are
// copied out.
func (t *boltTx) Get(key string) ([]byte, error) {
	v := t.bucket.Get([]byte(key))
	if v == nil {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (t *boltTx) GetAll() ([]Record, error) {
	var records []Record
	err := t.bucket.ForEach(func(k, v []byte) error {
		records = append(records, Record{Key: string(k), Value: bytes.Clone(v)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get all: %w", err)
	}
	return records, nil
}

func (t *boltTx) Put(key string, value []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	if value == nil {
		value = []byte{}
	}
	if err := t.bucket.Put([]byte(key), value); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

func (t *boltTx) Delete(key string) error {
	if t.readOnly {
		return ErrReadOnly
	}
	if err := t.bucket.Delete([]byte(key)); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
