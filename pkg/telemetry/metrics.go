package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for flowstate serialization and
// storage. A disabled Metrics instance is a safe no-op.
type Metrics struct {
	config MetricsConfig

	statesSerialized   *prometheus.CounterVec
	statesDeserialized *prometheus.CounterVec
	serializationErrs  *prometheus.CounterVec
	storeOpDuration    *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	cfg.ApplyDefaults()
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		statesSerialized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "states_serialized_total",
				Help:      "Total number of states serialized, by state type",
			},
			[]string{"state_type"},
		),
		statesDeserialized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "states_deserialized_total",
				Help:      "Total number of states deserialized, by state type",
			},
			[]string{"state_type"},
		),
		serializationErrs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "serialization_errors_total",
				Help:      "Total number of serialization failures, by error class",
			},
			[]string{"class"},
		),
		storeOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Duration of state store operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.statesSerialized,
		m.statesDeserialized,
		m.serializationErrs,
		m.storeOpDuration,
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	return m, nil
}

// RecordStateSerialized counts one successful Dump of the given state type.
func (m *Metrics) RecordStateSerialized(stateType string) {
	if m.statesSerialized != nil {
		m.statesSerialized.WithLabelValues(stateType).Inc()
	}
}

// RecordStateDeserialized counts one successful Load of the given state type.
func (m *Metrics) RecordStateDeserialized(stateType string) {
	if m.statesDeserialized != nil {
		m.statesDeserialized.WithLabelValues(stateType).Inc()
	}
}

// RecordSerializationError counts one failed Dump or Load by error class.
func (m *Metrics) RecordSerializationError(class string) {
	if m.serializationErrs != nil {
		m.serializationErrs.WithLabelValues(class).Inc()
	}
}

// RecordStoreOperation records the duration of one store operation.
func (m *Metrics) RecordStoreOperation(operation string, d time.Duration) {
	if m.storeOpDuration != nil {
		m.storeOpDuration.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// Handler returns the HTTP handler exposing the metrics registry, or nil
// when metrics are disabled.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartMetricsServer starts the metrics HTTP server if metrics are enabled.
// It returns immediately; the server runs until the process exits.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled || m.registry == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())
	go func() {
		_ = http.ListenAndServe(m.config.ListenAddress, mux)
	}()
	return nil
}
