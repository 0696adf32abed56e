package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/stationcache/internal/slice"
	"github.com/roach88/stationcache/internal/store"
	"github.com/roach88/stationcache/internal/testutil"
	"github.com/roach88/stationcache/internal/value"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openDB opens a seeded store at SchemaVersion.
func openDB(t *testing.T) store.DB {
	t.Helper()
	return testutil.OpenDB(t, store.BackendSQLite, SchemaVersion, SeedDefaults(slice.Default))
}

// newTestCache wraps db and closes the cache on cleanup.
func newTestCache(t *testing.T, db store.DB, opts ...Option) *Cache {
	t.Helper()
	c := New(db, append([]Option{WithLogger(quietLogger())}, opts...)...)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func seed(t *testing.T, db store.DB, name slice.Name, v value.Value) {
	t.Helper()
	require.NoError(t, ReplaceSlice(context.Background(), db, name, v))
}

// cached reads one slice back from db.
func cached(t *testing.T, db store.DB, name slice.Name) value.Value {
	t.Helper()
	entries, err := ReadSlices(context.Background(), db, slice.Default)
	require.NoError(t, err)
	for _, e := range entries {
		if e.Slice == name {
			return e.Value
		}
	}
	t.Fatalf("slice %s not read", name)
	return nil
}

func stations(n int) value.List {
	out := value.List{}
	for i := 0; i < n; i++ {
		out = out.Append(value.MapOf(
			value.P("id", value.String(string(rune('a'+i)))),
			value.P("name", value.String("Station "+string(rune('A'+i)))),
		))
	}
	return out
}

func decision(t *testing.T, r Report, name slice.Name) Decision {
	t.Helper()
	d, ok := r.Decision(name)
	require.True(t, ok, "no decision for %s", name)
	return d
}
