package live

import (
	"github.com/courtbook/toastpop/pkg/toast"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "toastpop").
	Namespace string

	// Subsystem is the metrics subsystem (default: "live").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// Metrics holds the hub's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	activeSessions prometheus.Gauge
	sessionsTotal  *prometheus.CounterVec
	toastsTotal    *prometheus.CounterVec
	toastsDropped  prometheus.Counter
	toastsHidden   prometheus.Counter
	patchesSent    prometheus.Counter
	bytesSent      prometheus.Counter
	batchesDropped prometheus.Counter
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := MetricsConfig{
		Namespace: "toastpop",
		Subsystem: "live",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of connected pages",
			ConstLabels: cfg.ConstLabels,
		}),
		sessionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "handshakes_total",
			Help:        "Handshakes by result",
			ConstLabels: cfg.ConstLabels,
		}, []string{"status"}),
		toastsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "toasts_presented_total",
			Help:        "Toasts presented by kind",
			ConstLabels: cfg.ConstLabels,
		}, []string{"kind"}),
		toastsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "toasts_dropped_total",
			Help:        "Toasts skipped because the page has no overlay",
			ConstLabels: cfg.ConstLabels,
		}),
		toastsHidden: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "toasts_hidden_total",
			Help:        "Hide tasks that ran",
			ConstLabels: cfg.ConstLabels,
		}),
		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "patches_sent_total",
			Help:        "Patches written to pages",
			ConstLabels: cfg.ConstLabels,
		}),
		bytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "bytes_sent_total",
			Help:        "Frame bytes written to pages",
			ConstLabels: cfg.ConstLabels,
		}),
		batchesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "batches_dropped_total",
			Help:        "Patch batches too large to send",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// Presented implements toast.Observer.
func (m *Metrics) Presented(kind toast.Kind) {
	if m == nil {
		return
	}
	label := "other"
	switch kind {
	case toast.KindSuccess, toast.KindError:
		label = string(kind)
	}
	m.toastsTotal.WithLabelValues(label).Inc()
}

// Dropped implements toast.Observer.
func (m *Metrics) Dropped() {
	if m == nil {
		return
	}
	m.toastsDropped.Inc()
}

// Hidden implements toast.Observer.
func (m *Metrics) Hidden() {
	if m == nil {
		return
	}
	m.toastsHidden.Inc()
}

func (m *Metrics) handshake(status string) {
	if m == nil {
		return
	}
	m.sessionsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) sessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

func (m *Metrics) sessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

func (m *Metrics) framesSent(patches, bytes int) {
	if m == nil {
		return
	}
	m.patchesSent.Add(float64(patches))
	m.bytesSent.Add(float64(bytes))
}

func (m *Metrics) patchesDropped() {
	if m == nil {
		return
	}
	m.batchesDropped.Inc()
}
