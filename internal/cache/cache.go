package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/roach88/stationcache/internal/appstore"
	"github.com/roach88/stationcache/internal/slice"
	"github.com/roach88/stationcache/internal/store"
	"github.com/roach88/stationcache/internal/value"
)

// App is the part of the application store the cache needs.
// *appstore.Store and *appstore.Session both satisfy it.
type App interface {
	State() appstore.State
	Commit(kind appstore.MutationKind, payload value.Value) error
	Subscribe(fn appstore.Listener) (unsubscribe func())
}

// exclusiveApp is implemented by stores that can hold off other commits
// while hydration checks and adopts.
type exclusiveApp interface {
	Exclusive(fn func(*appstore.Session) error) error
}

// Cache persists the registered slices of one application store.
//
// Thread-safety model:
//   - Attach, Put, Read, Flush, Stats, Close: safe from any goroutine
//   - The mutation listener only enqueues; writes run on per-slice goroutines
type Cache struct {
	db      store.DB
	reg     *slice.Registry
	log     *slog.Logger
	onErr   func(error)
	writers map[slice.Name]*writer

	mu          sync.Mutex
	attached    bool
	closed      bool
	unsubscribe func()
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRegistry sets the slice registry. Defaults to slice.Default.
func WithRegistry(r *slice.Registry) Option {
	return func(c *Cache) {
		if r != nil {
			c.reg = r
		}
	}
}

// WithOnWriteError sets a hook called after each failed write. The error
// satisfies IsWriteError. The hook runs on the slice's writer goroutine.
func WithOnWriteError(fn func(error)) Option {
	return func(c *Cache) {
		c.onErr = fn
	}
}

// Open opens the record store at SchemaVersion, seeding slice defaults on
// first use, and returns a Cache over it. Any error is fatal.
func Open(ctx context.Context, opts store.Options, options ...Option) (*Cache, error) {
	c := newCache(options)

	db, err := store.Open(ctx, opts, SchemaVersion, SeedDefaults(c.reg))
	if err != nil {
		code := CodeOpenFailed
		if errors.Is(err, errSeed) || errors.Is(err, store.ErrVersionDowngrade) {
			code = CodeUpgradeFailed
		}
		return nil, &Error{Code: code, Message: fmt.Sprintf("open %s store %q", opts.Backend, opts.Path), Err: err}
	}

	c.start(db)
	c.log.Info("cache opened", "backend", string(opts.Backend), "path", opts.Path, "version", db.Version())
	return c, nil
}

// New returns a Cache over an already open DB. The Cache takes ownership of
// db and closes it in Close.
func New(db store.DB, options ...Option) *Cache {
	c := newCache(options)
	c.start(db)
	return c
}

func newCache(options []Option) *Cache {
	c := &Cache{
		reg: slice.Default,
		log: slog.Default(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Cache) start(db store.DB) {
	c.db = db
	c.writers = make(map[slice.Name]*writer, len(c.reg.Names()))
	for _, name := range c.reg.Names() {
		w := newWriter(name, db, c.log, c.onErr)
		c.writers[name] = w
		go w.run()
	}
}

// Attach hydrates app from the cache and then subscribes to its mutations.
// It may be called once. A returned error is fatal: nothing was hydrated
// and nothing subscribed.
func (c *Cache) Attach(ctx context.Context, app App) (Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Report{}, ErrClosed
	}
	if c.attached {
		return Report{}, ErrAlreadyAttached
	}

	entries, err := ReadSlices(ctx, c.db, c.reg)
	if err != nil {
		return Report{}, &Error{Code: CodeReadFailed, Message: "initial cache read", Err: err}
	}

	report := Report{Run: uuid.Must(uuid.NewV7()).String()}
	attach := func(a App) error {
		report.Decisions = c.hydrate(a, entries)
		c.unsubscribe = a.Subscribe(c.onMutation)
		return nil
	}

	if ex, ok := app.(exclusiveApp); ok {
		err = ex.Exclusive(func(x *appstore.Session) error { return attach(x) })
	} else {
		err = attach(app)
	}
	if err != nil {
		return Report{}, fmt.Errorf("attach: %w", err)
	}
	c.attached = true

	for _, d := range report.Decisions {
		c.log.Info("slice hydrated",
			"run", report.Run,
			"slice", string(d.Slice),
			"source", string(d.Source),
			"repaired", d.Repaired,
		)
	}
	return report, nil
}

// Flush waits until every write enqueued before the call has finished, or
// ctx is done.
func (c *Cache) Flush(ctx context.Context) error {
	var pending []<-chan struct{}
	for _, name := range c.reg.Names() {
		if done := c.writers[name].flush(); done != nil {
			pending = append(pending, done)
		}
	}
	for _, done := range pending {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Stats returns write counters per slice.
func (c *Cache) Stats() map[slice.Name]SliceStats {
	out := make(map[slice.Name]SliceStats, len(c.writers))
	for name, w := range c.writers {
		out[name] = w.snapshot()
	}
	return out
}

// Read returns every slice as currently stored, in registry order.
func (c *Cache) Read(ctx context.Context) ([]Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	entries, err := ReadSlices(ctx, c.db, c.reg)
	if err != nil {
		return nil, &Error{Code: CodeReadFailed, Message: "cache read", Err: err}
	}
	return entries, nil
}

// Put replace-writes one slice directly. It is meant for tooling and seeding
// and is rejected once the cache is attached, where the mutation stream owns
// every write.
func (c *Cache) Put(ctx context.Context, name slice.Name, v value.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.attached {
		return fmt.Errorf("put %s: %w", name, ErrAlreadyAttached)
	}
	spec, ok := c.reg.Lookup(name)
	if !ok {
		return fmt.Errorf("put: unknown slice %q", name)
	}
	if !c.reg.Conforms(name, v) {
		return fmt.Errorf("put %s: value is not a %s", name, spec.Shape)
	}
	if err := ReplaceSlice(ctx, c.db, name, v); err != nil {
		return &Error{Code: CodeWriteFailed, Slice: name, Message: "replace-write failed", Err: err}
	}
	return nil
}

// Close unsubscribes, waits for pending writes and closes the store.
// Safe to call more than once.
func (c *Cache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	unsubscribe := c.unsubscribe
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}

	var result *multierror.Error
	for _, name := range c.reg.Names() {
		for _, err := range c.writers[name].stop() {
			result = multierror.Append(result, err)
		}
	}
	if err := c.db.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close store: %w", err))
	}

	c.log.Info("cache closed")
	return result.ErrorOrNil()
}
