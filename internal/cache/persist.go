package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/stationcache/internal/slice"
	"github.com/roach88/stationcache/internal/store"
	"github.com/roach88/stationcache/internal/value"
)

// SchemaVersion is the record store version this package reads and writes.
const SchemaVersion = 1

var errSeed = errors.New("seed defaults")

// SeedDefaults returns the store upgrade: every slice without a record gets its
// default value.
func SeedDefaults(reg *slice.Registry) store.UpgradeFunc {
	return func(tx store.Tx, oldVersion, newVersion int) error {
		for _, name := range reg.Names() {
			_, err := tx.Get(string(name))
			if err == nil {
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: %s: %w", errSeed, name, err)
			}
			data, err := value.Marshal(reg.Default(name))
			if err != nil {
				return fmt.Errorf("%w: %s: %w", errSeed, name, err)
			}
			if err := tx.Put(string(name), data); err != nil {
				return fmt.Errorf("%w: %s: %w", errSeed, name, err)
			}
		}
		return nil
	}
}

// Status describes how a cached record was found.
type Status int

const (
	// StatusOK means the record decoded and has the slice's shape.
	StatusOK Status = iota
	// StatusMissing means no record exists for the slice.
	StatusMissing
	// StatusCorrupt means the record did not decode or has the wrong shape.
	StatusCorrupt
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusCorrupt:
		return "corrupt"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Entry is one slice as read from the cache.
// Value is the slice default unless Status is StatusOK.
type Entry struct {
	Slice  slice.Name
	Value  value.Value
	Status Status
	// Err is the decode failure for a corrupt record.
	Err error
}

// ReadSlices reads every registered slice from one GetAll snapshot, in
// registry order. Missing and corrupt records are reported, not returned as
// errors; only an I/O failure is.
func ReadSlices(ctx context.Context, db store.DB, reg *slice.Registry) ([]Entry, error) {
	var records []store.Record
	err := db.View(ctx, func(tx store.Tx) error {
		var err error
		records, err = tx.GetAll()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read slices: %w", err)
	}

	byKey := make(map[string][]byte, len(records))
	for _, r := range records {
		byKey[r.Key] = r.Value
	}

	entries := make([]Entry, 0, len(reg.Names()))
	for _, name := range reg.Names() {
		data, ok := byKey[string(name)]
		if !ok {
			entries = append(entries, Entry{Slice: name, Value: reg.Default(name), Status: StatusMissing})
			continue
		}
		entries = append(entries, decodeEntry(reg, name, data))
	}
	return entries, nil
}

func decodeEntry(reg *slice.Registry, name slice.Name, data []byte) Entry {
	v, err := value.Unmarshal(data)
	if err != nil {
		return Entry{
			Slice:  name,
			Value:  reg.Default(name),
			Status: StatusCorrupt,
			Err:    &Error{Code: CodeDecodeFailed, Slice: name, Message: "undecodable record", Err: err},
		}
	}
	if !reg.Conforms(name, v) {
		spec, _ := reg.Lookup(name)
		return Entry{
			Slice:  name,
			Value:  reg.Default(name),
			Status: StatusCorrupt,
			Err:    &Error{Code: CodeDecodeFailed, Slice: name, Message: fmt.Sprintf("record is not a %s", spec.Shape)},
		}
	}
	return Entry{Slice: name, Value: v, Status: StatusOK}
}

// ReplaceSlice discards the cached record for name and stores v in its
// place, both in one write transaction.
func ReplaceSlice(ctx context.Context, db store.DB, name slice.Name, v value.Value) error {
	data, err := value.Marshal(v)
	if err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	err = db.Update(ctx, func(tx store.Tx) error {
		if err := tx.Delete(string(name)); err != nil {
			return err
		}
		return tx.Put(string(name), data)
	})
	if err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
