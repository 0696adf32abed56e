package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobQueue_FIFO(t *testing.T) {
	q := newJobQueue()
	for i := int64(1); i <= 3; i++ {
		require.True(t, q.Enqueue(writeJob{seq: i}))
	}
	assert.Equal(t, 3, q.Len())

	for i := int64(1); i <= 3; i++ {
		j, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, i, j.seq)
	}
	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestJobQueue_CloseRejectsEnqueue(t *testing.T) {
	q := newJobQueue()
	q.Close()
	q.Close() // idempotent

	assert.False(t, q.Enqueue(writeJob{seq: 1}))
	assert.True(t, q.Closed())
}

func TestJobQueue_DrainedOnlyWhenClosedAndEmpty(t *testing.T) {
	q := newJobQueue()
	assert.False(t, q.Drained(), "open empty queue is not drained")

	q.Enqueue(writeJob{seq: 1})
	q.Close()
	assert.False(t, q.Drained(), "closed queue with pending jobs is not drained")

	_, _ = q.TryDequeue()
	assert.True(t, q.Drained())
}

func TestJobQueue_StaleSignal(t *testing.T) {
	q := newJobQueue()
	q.Enqueue(writeJob{seq: 1})
	q.Enqueue(writeJob{seq: 2})
	_, _ = q.TryDequeue()
	_, _ = q.TryDequeue()

	// The coalesced signal is still buffered with nothing queued
	select {
	case <-q.Wait():
	default:
		t.Fatal("expected buffered signal")
	}
	assert.False(t, q.Drained())
}

func TestJobQueue_CloseWakesWaiter(t *testing.T) {
	q := newJobQueue()
	q.Close()
	_, open := <-q.Wait()
	assert.False(t, open)
}
