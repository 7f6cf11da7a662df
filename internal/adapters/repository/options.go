package repository

import "github.com/okian/ppda/pkg/metrics"

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithMetrics records operation latencies on m instead of the process-wide manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *SQLiteStore) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithMaxOpenConns bounds the connection pool. SQLite serialises writers, so
// the default is one.
func WithMaxOpenConns(n int) Option {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}
