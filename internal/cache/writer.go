package cache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/stationcache/internal/slice"
	"github.com/roach88/stationcache/internal/store"
)

// SliceStats counts the replace-writes issued for one slice.
type SliceStats struct {
	Writes   int
	Failures int
	// LastSeq is the mutation sequence number of the last successful write.
	LastSeq int64
}

// writer owns every write to one slice's record. Jobs run one at a time in
// enqueue order.
type writer struct {
	name  slice.Name
	db    store.DB
	queue *jobQueue
	log   *slog.Logger
	onErr func(error)

	mu        sync.Mutex
	stats     SliceStats
	drainErrs []error

	exited chan struct{}
}

func newWriter(name slice.Name, db store.DB, log *slog.Logger, onErr func(error)) *writer {
	return &writer{
		name:   name,
		db:     db,
		queue:  newJobQueue(),
		log:    log.With("slice", string(name)),
		onErr:  onErr,
		exited: make(chan struct{}),
	}
}

// enqueue schedules j. It never blocks.
func (w *writer) enqueue(j writeJob) bool {
	if !w.queue.Enqueue(j) {
		w.log.Warn("write dropped: cache closed", "seq", j.seq, "origin", j.origin)
		return false
	}
	return true
}

// run processes jobs until the queue is closed and drained.
func (w *writer) run() {
	defer close(w.exited)

	for {
		if j, ok := w.queue.TryDequeue(); ok {
			w.handle(j)
			continue
		}
		if w.queue.Drained() {
			return
		}
		<-w.queue.Wait()
	}
}

func (w *writer) handle(j writeJob) {
	if j.barrier() {
		close(j.done)
		return
	}

	// Writes outlive the caller that triggered them
	err := ReplaceSlice(context.Background(), w.db, w.name, j.value)
	if err != nil {
		werr := &Error{Code: CodeWriteFailed, Slice: w.name, Message: "replace-write failed", Err: err}
		w.log.Error("cache write failed",
			"seq", j.seq,
			"origin", j.origin,
			"error", err,
		)
		w.mu.Lock()
		w.stats.Failures++
		if w.queue.Closed() {
			w.drainErrs = append(w.drainErrs, werr)
		}
		w.mu.Unlock()
		if w.onErr != nil {
			w.onErr(werr)
		}
		return
	}

	w.log.Debug("cache write",
		"seq", j.seq,
		"origin", j.origin,
	)
	w.mu.Lock()
	w.stats.Writes++
	w.stats.LastSeq = j.seq
	w.mu.Unlock()
}

// flush enqueues a barrier and returns its completion channel, or nil if
// the writer is closed.
func (w *writer) flush() <-chan struct{} {
	done := make(chan struct{})
	if !w.queue.Enqueue(writeJob{done: done}) {
		return nil
	}
	return done
}

// stop closes the queue and waits for pending jobs, returning the failures
// that happened while draining.
func (w *writer) stop() []error {
	w.queue.Close()
	<-w.exited

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.drainErrs
}

func (w *writer) snapshot() SliceStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
