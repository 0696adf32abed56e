package store

import (
	"context"
	"path/filepath"
	"testing"
)

// backendCase opens a fresh DB of one backend flavor.
type backendCase struct {
	name string
	open func(t *testing.T, path string, version int, upgrade UpgradeFunc) (DB, error)
}

func backendCases() []backendCase {
	return []backendCase{
		{
			name: "sqlite-cgo",
			open: func(t *testing.T, path string, version int, upgrade UpgradeFunc) (DB, error) {
				return Open(context.Background(), Options{Backend: BackendSQLite, Path: path, Driver: DriverCGo}, version, upgrade)
			},
		},
		{
			name: "sqlite-purego",
			open: func(t *testing.T, path string, version int, upgrade UpgradeFunc) (DB, error) {
				return Open(context.Background(), Options{Backend: BackendSQLite, Path: path, Driver: DriverPureGo}, version, upgrade)
			},
		},
		{
			name: "bolt",
			open: func(t *testing.T, path string, version int, upgrade UpgradeFunc) (DB, error) {
				return Open(context.Background(), Options{Backend: BackendBolt, Path: path}, version, upgrade)
			},
		},
	}
}

// createTestDB opens a fresh DB at version 1 with no upgrade seeding.
func createTestDB(t *testing.T, bc backendCase) DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := bc.open(t, path, 1, nil)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func put(t *testing.T, db DB, key, value string) {
	t.Helper()
	err := db.Update(context.Background(), func(tx Tx) error {
		return tx.Put(key, []byte(value))
	})
	if err != nil {
		t.Fatalf("Put(%q) failed: %v", key, err)
	}
}
