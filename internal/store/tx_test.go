package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTx_PutGet(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			db := createTestDB(t, bc)
			put(t, db, "stations", `["a","b"]`)

			var got []byte
			err := db.View(context.Background(), func(tx Tx) error {
				var err error
				got, err = tx.Get("stations")
				return err
			})
			require.NoError(t, err)
			assert.Equal(t, `["a","b"]`, string(got))
		})
	}
}

func TestTx_GetMissing(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			db := createTestDB(t, bc)

			err := db.View(context.Background(), func(tx Tx) error {
				_, err := tx.Get("nope")
				return err
			})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestTx_PutReplaces(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			db := createTestDB(t, bc)
			put(t, db, "settings", `{"a":1,"b":2}`)
			put(t, db, "settings", `{"c":3}`)

			var records []Record
			require.NoError(t, db.View(context.Background(), func(tx Tx) error {
				var err error
				records, err = tx.GetAll()
				return err
			}))
			assert.Equal(t, []Record{{Key: "settings", Value: []byte(`{"c":3}`)}}, records)
		})
	}
}

func TestTx_DeleteThenPutInOneTransaction(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			db := createTestDB(t, bc)
			put(t, db, "dashboard", `[1]`)

			err := db.Update(context.Background(), func(tx Tx) error {
				if err := tx.Delete("dashboard"); err != nil {
					return err
				}
				if _, err := tx.Get("dashboard"); !errors.Is(err, ErrNotFound) {
					return errors.New("record still visible after delete")
				}
				return tx.Put("dashboard", []byte(`[2]`))
			})
			require.NoError(t, err)

			var got []byte
			require.NoError(t, db.View(context.Background(), func(tx Tx) error {
				var err error
				got, err = tx.Get("dashboard")
				return err
			}))
			assert.Equal(t, `[2]`, string(got))
		})
	}
}

func TestTx_DeleteMissingIsNoError(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			db := createTestDB(t, bc)
			err := db.Update(context.Background(), func(tx Tx) error {
				return tx.Delete("ghost")
			})
			assert.NoError(t, err)
		})
	}
}

func TestTx_GetAllOrderedByKey(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			db := createTestDB(t, bc)
			for _, k := range []string{"stations", "dashboard", "settings", "sensors"} {
				put(t, db, k, "[]")
			}

			var keys []string
			require.NoError(t, db.View(context.Background(), func(tx Tx) error {
				records, err := tx.GetAll()
				for _, r := range records {
					keys = append(keys, r.Key)
				}
				return err
			}))
			assert.Equal(t, []string{"dashboard", "sensors", "settings", "stations"}, keys)
		})
	}
}

func TestTx_ViewIsReadOnly(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			db := createTestDB(t, bc)

			err := db.View(context.Background(), func(tx Tx) error {
				return tx.Put("k", []byte("v"))
			})
			assert.ErrorIs(t, err, ErrReadOnly)

			err = db.View(context.Background(), func(tx Tx) error {
				return tx.Delete("k")
			})
			assert.ErrorIs(t, err, ErrReadOnly)
		})
	}
}

func TestTx_UpdateRollsBackOnError(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			db := createTestDB(t, bc)
			put(t, db, "stations", `["keep"]`)
			boom := errors.New("boom")

			err := db.Update(context.Background(), func(tx Tx) error {
				if err := tx.Delete("stations"); err != nil {
					return err
				}
				return boom
			})
			require.ErrorIs(t, err, boom)

			var got []byte
			require.NoError(t, db.View(context.Background(), func(tx Tx) error {
				var err error
				got, err = tx.Get("stations")
				return err
			}))
			assert.Equal(t, `["keep"]`, string(got))
		})
	}
}

func TestTx_CancelledContext(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			db := createTestDB(t, bc)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := db.Update(ctx, func(tx Tx) error {
				return tx.Put("k", []byte("v"))
			})
			assert.Error(t, err)
		})
	}
}
