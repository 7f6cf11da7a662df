// Package queue holds matches waiting for analysis.
package queue

import "github.com/okian/ppda/pkg/metrics"

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum number of queued jobs.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithMetrics records queue depth on m instead of the process-wide manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(q *InMemoryQueue) {
		if m != nil {
			q.metrics = m
		}
	}
}
