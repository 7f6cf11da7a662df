// Package queue holds matches waiting for analysis.
//
// The in-memory implementation is a bounded buffered channel. Producers never
// block; consumers range over Dequeue until the queue is closed and drained.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/ppda/internal/domain/model"
	"github.com/okian/ppda/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Job is one match to analyze. Seq is the match's position in its batch.
type Job struct {
	Seq   int
	Match model.Match
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job. Returns ErrFull or ErrClosed when it was not added.
	Enqueue(ctx context.Context, j Job) error

	// Dequeue returns a channel of jobs. It is closed once the queue is
	// closed and drained, or when ctx ends.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len() int

	// Close stops accepting jobs. Queued jobs stay available to Dequeue.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int
	metrics  *metrics.Manager

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity, metrics: metrics.Default()}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)
	q.metrics.UpdateQueueDepth(0)
	return q
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}

	select {
	case q.jobs <- j:
		q.metrics.UpdateQueueDepth(len(q.jobs))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("enqueue match %s: %w", j.Match.ID, ctx.Err())
	default:
		return fmt.Errorf("%w: capacity %d", ErrFull, q.capacity)
	}
}

// Dequeue returns a channel that receives jobs as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case j, ok := <-q.jobs:
				if !ok {
					return
				}
				select {
				case out <- j:
					q.metrics.UpdateQueueDepth(len(q.jobs))
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len() int {
	return len(q.jobs)
}

// Close stops the queue from accepting jobs. Closing twice is a no-op.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed reports whether Close has been called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
