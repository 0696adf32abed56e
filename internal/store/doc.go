// Package store provides the durable key-value record store behind the
// state cache.
//
// A DB holds one record store: a flat set of (key, value) records where the
// value is opaque bytes. Every access goes through a scoped transaction:
//
//   - View: read-only; Put and Delete fail with ErrReadOnly
//   - Update: read-write; committed when the callback returns nil
//
// No transaction outlives its callback.
//
// # Versioning
//
// Open takes a schema version and an UpgradeFunc. When the stored version is
// lower than the requested one, the UpgradeFunc runs inside the same
// transaction that records the new version, so it runs at most once per
// version bump. Opening with a lower version than the stored one fails with
// ErrVersionDowngrade.
//
// # Backends
//
//   - sqlite: database/sql with either the cgo driver (github.com/mattn/go-sqlite3,
//     driver "sqlite3") or the pure Go driver (modernc.org/sqlite, driver "sqlite").
//     WAL mode, synchronous=NORMAL, busy timeout, one connection.
//     The schema version lives in PRAGMA user_version.
//   - bolt: go.etcd.io/bbolt with a "default" record bucket and a "meta"
//     bucket holding the version.
package store
