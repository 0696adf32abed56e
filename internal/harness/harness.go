package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/stationcache/internal/appstore"
	"github.com/roach88/stationcache/internal/cache"
	"github.com/roach88/stationcache/internal/slice"
	"github.com/roach88/stationcache/internal/store"
	"github.com/roach88/stationcache/internal/testutil"
	"github.com/roach88/stationcache/internal/value"
)

// Harness holds the pieces of one scenario run.
type Harness struct {
	db     store.DB
	rec    *testutil.RecordingDB
	app    *appstore.Store
	cache  *cache.Cache
	logger *slog.Logger

	phase  Phase
	result *Result
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh store in a temporary directory.
// Execution flow:
//  1. Open the store at the cache schema version and seed records
//  2. Commit network mutations
//  3. Attach the cache (hydration)
//  4. Commit the remaining mutations and wait for writes to settle
//  5. Read the cache back and evaluate expectations
//
// A returned error means the scenario could not run; failed expectations
// are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario, nil)
}

// RunContext is Run with a context and logger. A nil logger discards logs.
func RunContext(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	backend := store.BackendSQLite
	if scenario.Backend != "" {
		b, err := store.ParseBackend(scenario.Backend)
		if err != nil {
			return nil, err
		}
		backend = b
	}

	dir, err := os.MkdirTemp("", "stationcache-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario dir: %w", err)
	}
	defer os.RemoveAll(dir)

	opts := store.Options{Backend: backend, Path: filepath.Join(dir, "cache.db")}
	db, err := store.Open(ctx, opts, cache.SchemaVersion, cache.SeedDefaults(slice.Default))
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario store: %w", err)
	}
	defer db.Close()

	h := &Harness{
		db:     db,
		rec:    testutil.NewRecordingDB(db),
		app:    appstore.New(),
		logger: logger,
		result: NewResult(),
	}
	h.app.Subscribe(h.record)

	if err := h.seed(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to seed cache: %w", err)
	}

	h.phase = PhaseNetwork
	if err := h.commit("network", scenario.Network); err != nil {
		return nil, err
	}

	h.cache = cache.New(h.rec, cache.WithLogger(logger))
	defer h.cache.Close()

	h.phase = PhaseHydrate
	report, err := h.cache.Attach(ctx, h.app)
	if err != nil {
		return nil, fmt.Errorf("failed to attach cache: %w", err)
	}
	h.result.Decisions = report.Decisions

	h.phase = PhaseApp
	if err := h.commit("mutations", scenario.Mutations); err != nil {
		return nil, err
	}

	if err := h.cache.Flush(ctx); err != nil {
		return nil, fmt.Errorf("failed to flush cache: %w", err)
	}
	if err := h.collect(ctx); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateExpect(h.result, scenario.Expect) {
		h.result.AddError(msg)
	}

	logger.Info("scenario completed",
		"scenario", scenario.Name,
		"pass", h.result.Pass,
		"commits", len(h.result.Commits),
	)
	return h.result, nil
}

// seed writes cache records and corrupt records directly to the store, so
// they are not counted as writes.
func (h *Harness) seed(ctx context.Context, scenario *Scenario) error {
	for _, name := range sortedKeys(scenario.Cache) {
		v, err := value.FromAny(scenario.Cache[name])
		if err != nil {
			return fmt.Errorf("cache.%s: %w", name, err)
		}
		if err := cache.ReplaceSlice(ctx, h.db, slice.Name(name), v); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(scenario.Corrupt) {
		raw := []byte(scenario.Corrupt[name])
		err := h.db.Update(ctx, func(tx store.Tx) error {
			return tx.Put(name, raw)
		})
		if err != nil {
			return fmt.Errorf("corrupt.%s: %w", name, err)
		}
	}
	return nil
}

func (h *Harness) commit(section string, steps []Step) error {
	for i, step := range steps {
		kind, err := appstore.ParseMutationKind(step.Kind)
		if err != nil {
			return fmt.Errorf("%s[%d]: %w", section, i, err)
		}
		payload, err := value.FromAny(step.Payload)
		if err != nil {
			return fmt.Errorf("%s[%d]: %w", section, i, err)
		}
		if err := h.app.Commit(kind, payload); err != nil {
			return fmt.Errorf("%s[%d]: %w", section, i, err)
		}
	}
	return nil
}

// record is the app listener. Commits run on the scenario goroutine, so the
// current phase is the one that issued the mutation.
func (h *Harness) record(m appstore.Mutation, _ appstore.State) {
	h.result.Commits = append(h.result.Commits, CommitEvent{
		Phase: h.phase,
		Kind:  m.Kind.String(),
		Seq:   m.Seq,
	})
}

func (h *Harness) collect(ctx context.Context) error {
	entries, err := h.cache.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}
	state := h.app.State()
	for _, e := range entries {
		h.result.Cache[e.Slice] = e.Value
		h.result.State[e.Slice] = state.Slice(e.Slice)
		h.result.Writes[e.Slice] = len(h.rec.Puts(string(e.Slice)))
	}
	return nil
}
