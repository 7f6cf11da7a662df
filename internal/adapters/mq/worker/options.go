// Package worker runs match analysis jobs drawn from a queue.
package worker

import (
	"github.com/okian/ppda/pkg/logger"
	"github.com/okian/ppda/pkg/metrics"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// PoolOption applies a configuration option to the Pool.
type PoolOption func(*Pool)

// WithPoolMetrics records the worker count on m instead of the process-wide manager.
func WithPoolMetrics(m *metrics.Manager) PoolOption {
	return func(p *Pool) {
		if m != nil {
			p.metrics = m
		}
	}
}
