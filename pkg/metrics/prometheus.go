package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Manager owns the analysis metrics.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	ratioBuckets     []float64
	enabled          bool
	registry         prometheus.Registerer

	// Analysis outcomes
	matchesAnalyzed prometheus.Counter
	matchesFailed   *prometheus.CounterVec
	eventsProcessed prometheus.Counter
	analysisLatency prometheus.Histogram

	// PPDA inputs and outputs
	opponentPasses   prometheus.Counter
	defensiveActions prometheus.Counter
	ppdaUndefined    prometheus.Counter
	ppdaRatio        prometheus.Histogram

	// Game state
	goals *prometheus.CounterVec

	// Operational
	workerCount       prometheus.Gauge
	queueDepth        prometheus.Gauge
	repositoryLatency *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level helpers

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ppda",
		subsystem:        "analysis",
		histogramBuckets: prometheus.DefBuckets,
		ratioBuckets:     []float64{2, 4, 6, 8, 10, 12, 15, 20, 30},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// Default returns the process-wide manager.
func Default() *Manager { return globalManager }

// GetRegistry returns the registry backing the process-wide manager.
func GetRegistry() *prometheus.Registry { return customRegistry }

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.matchesAnalyzed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_analyzed_total",
		Help:      "Total number of matches analyzed successfully",
	})

	m.matchesFailed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_failed_total",
		Help:      "Total number of matches rejected, by reason",
	}, []string{"reason"})

	m.eventsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_processed_total",
		Help:      "Total number of match events analyzed",
	})

	m.analysisLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_latency_milliseconds",
		Help:      "Time to analyze one match in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.opponentPasses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "opponent_passes_total",
		Help:      "Opponent build-up passes counted as PPDA numerators",
	})

	m.defensiveActions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "defensive_actions_total",
		Help:      "Defensive actions counted as PPDA denominators",
	})

	m.ppdaUndefined = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ppda_undefined_total",
		Help:      "Team perspectives with no qualifying defensive actions",
	})

	m.ppdaRatio = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ppda_ratio",
		Help:      "Distribution of defined PPDA values",
		Buckets:   m.ratioBuckets,
	})

	m.goals = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "goals_total",
		Help:      "Goals seen while replaying game state, by kind",
	}, []string{"kind"})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of match analysis workers",
	})

	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_depth",
		Help:      "Matches waiting in the analysis queue",
	})

	m.repositoryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_latency_milliseconds",
		Help:      "Event repository operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"operation"})
}

// RecordMatchAnalyzed records a successful match and its size and latency.
func (m *Manager) RecordMatchAnalyzed(events int, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.matchesAnalyzed.Inc()
	m.eventsProcessed.Add(float64(events))
	m.analysisLatency.Observe(latencyMs)
}

// RecordMatchFailed counts a rejected match.
func (m *Manager) RecordMatchFailed(reason string) {
	if !m.enabled {
		return
	}
	m.matchesFailed.WithLabelValues(reason).Inc()
}

// RecordPPDA records one team perspective. defined is false for undefined ratios.
func (m *Manager) RecordPPDA(opponentPasses, defensiveActions int, ratio float64, defined bool) {
	if !m.enabled {
		return
	}
	m.opponentPasses.Add(float64(opponentPasses))
	m.defensiveActions.Add(float64(defensiveActions))
	if !defined {
		m.ppdaUndefined.Inc()
		return
	}
	m.ppdaRatio.Observe(ratio)
}

// RecordGoal counts a goal of the given kind.
func (m *Manager) RecordGoal(kind string) {
	if !m.enabled {
		return
	}
	m.goals.WithLabelValues(kind).Inc()
}

// UpdateWorkerCount sets the number of workers.
func (m *Manager) UpdateWorkerCount(n int) {
	if !m.enabled {
		return
	}
	m.workerCount.Set(float64(n))
}

// UpdateQueueDepth sets the number of queued matches.
func (m *Manager) UpdateQueueDepth(n int) {
	if !m.enabled {
		return
	}
	m.queueDepth.Set(float64(n))
}

// RecordRepositoryLatency records a repository operation latency.
func (m *Manager) RecordRepositoryLatency(operation string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.repositoryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordMatchAnalyzed records on the process-wide manager.
func RecordMatchAnalyzed(events int, latencyMs float64) {
	globalManager.RecordMatchAnalyzed(events, latencyMs)
}

// RecordMatchFailed records on the process-wide manager.
func RecordMatchFailed(reason string) { globalManager.RecordMatchFailed(reason) }

// RecordRepositoryLatency records on the process-wide manager.
func RecordRepositoryLatency(operation string, latencyMs float64) {
	globalManager.RecordRepositoryLatency(operation, latencyMs)
}

// UpdateQueueDepth sets the gauge on the process-wide manager.
func UpdateQueueDepth(n int) { globalManager.UpdateQueueDepth(n) }

// UpdateWorkerCount sets the gauge on the process-wide manager.
func UpdateWorkerCount(n int) { globalManager.UpdateWorkerCount(n) }

// Handler serves the process-wide registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return fmt.Errorf("%w: %w", ErrServeFailed, err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%w: %w", ErrServeFailed, err)
	}
	return nil
}
