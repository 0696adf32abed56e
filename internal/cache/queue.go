package cache

import (
	"sync"

	"github.com/roach88/stationcache/internal/value"
)

// writeJob is one pending replace-write, or a flush barrier when done is set.
type writeJob struct {
	value  value.Value
	seq    int64
	origin string // "hydrate", "mutation"

	done chan struct{}
}

func (j writeJob) barrier() bool { return j.done != nil }

// jobQueue is an unbounded thread-safe FIFO of write jobs.
//
// Listeners enqueue from inside Commit and must never block, so the queue
// grows instead of applying backpressure. The signal channel lets the writer
// wait without polling.
type jobQueue struct {
	mu     sync.Mutex
	jobs   []writeJob
	closed bool
	signal chan struct{} // buffered, size 1
}

func newJobQueue() *jobQueue {
	return &jobQueue{
		jobs:   make([]writeJob, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds a job to the back of the queue.
// Returns false if the queue is closed.
func (q *jobQueue) Enqueue(j writeJob) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.jobs = append(q.jobs, j)

	// Buffer of 1 coalesces signals
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front job without blocking.
func (q *jobQueue) TryDequeue() (writeJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		return writeJob{}, false
	}

	j := q.jobs[0]
	// Drop the reference so the slice value can be collected
	q.jobs[0] = writeJob{}
	if len(q.jobs) == 1 {
		q.jobs = q.jobs[:0]
	} else {
		q.jobs = q.jobs[1:]
	}
	return j, true
}

// Wait returns a channel that fires when jobs may be available.
// It is closed once the queue is closed.
func (q *jobQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued jobs.
func (q *jobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Drained reports whether the queue is closed and empty. A stale signal can
// wake the consumer with nothing queued, so emptiness alone does not mean
// the consumer may stop.
func (q *jobQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.jobs) == 0
}

// Closed reports whether Close has been called.
func (q *jobQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close stops further enqueues and wakes the consumer.
func (q *jobQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
