package observe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/anchor/pkg/anchor"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "anchor").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for pass duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "anchor",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is an anchor.Observer exporting Prometheus metrics.
//
// Metrics collected:
//   - anchor_passes_total: Counter of notification passes
//   - anchor_pass_duration_seconds: Histogram of pass duration
//   - anchor_invocations_total: Counter of subscriptions visited by result
//   - anchor_subscriptions_registered_total: Counter of registrations
//   - anchor_subscriptions_removed_total: Counter of removals by reason
//   - anchor_handler_errors_total: Counter of handler panics
//   - anchor_live_subscriptions: Gauge of registered, not yet removed
//     subscriptions
type Metrics struct {
	passesTotal   prometheus.Counter
	passDuration  prometheus.Histogram
	invocations   *prometheus.CounterVec
	registered    prometheus.Counter
	removed       *prometheus.CounterVec
	handlerErrors prometheus.Counter
	live          prometheus.Gauge
}

var _ anchor.Observer = (*Metrics)(nil)

// Prometheus creates an observer registering its metrics on the configured
// registry. Each call registers a new set of metrics, so calling it twice
// with the same registry panics; pass WithRegistry to give each engine its
// own registry or share one Metrics between engines.
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		passesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "passes_total",
			Help:        "Total number of notification passes",
			ConstLabels: config.ConstLabels,
		}),

		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pass_duration_seconds",
			Help:        "Notification pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "invocations_total",
			Help:        "Subscriptions visited during notification passes by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		registered: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscriptions_registered_total",
			Help:        "Total number of subscriptions registered",
			ConstLabels: config.ConstLabels,
		}),

		removed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscriptions_removed_total",
			Help:        "Total number of subscriptions removed by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		handlerErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "handler_errors_total",
			Help:        "Total number of handler panics",
			ConstLabels: config.ConstLabels,
		}),

		live: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_subscriptions",
			Help:        "Number of registered subscriptions not yet removed",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObservePass implements anchor.Observer.
func (m *Metrics) ObservePass(info anchor.PassInfo) {
	m.passesTotal.Inc()
	m.passDuration.Observe(info.Duration.Seconds())

	ok := info.Invoked - info.Failed
	if ok > 0 {
		m.invocations.WithLabelValues("ok").Add(float64(ok))
	}
	if info.Failed > 0 {
		m.invocations.WithLabelValues("failed").Add(float64(info.Failed))
	}
	if info.Stale > 0 {
		m.invocations.WithLabelValues("stale").Add(float64(info.Stale))
	}
}

// ObserveRegistration implements anchor.Observer.
func (m *Metrics) ObserveRegistration(_, _ uint64, _ int) {
	m.registered.Inc()
	m.live.Inc()
}

// ObserveRemoval implements anchor.Observer.
func (m *Metrics) ObserveRemoval(_, _ uint64, reason anchor.RemoveReason) {
	m.removed.WithLabelValues(reason.String()).Inc()
	m.live.Dec()
}

// ObserveHandlerError implements anchor.Observer.
func (m *Metrics) ObserveHandlerError(_ *anchor.HandlerError) {
	m.handlerErrors.Inc()
}
