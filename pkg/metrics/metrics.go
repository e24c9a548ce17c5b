package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/rangeui/internal/errors"
	"github.com/vango-dev/rangeui/pkg/vdom"
)

// Config configures the Observer.
type Config struct {
	// Namespace is the metrics namespace (default: "rangeui").
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

// Option configures the Observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "rangeui",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer implements vdom.Observer on top of Prometheus collectors.
type Observer struct {
	mounted      *prometheus.CounterVec
	replaced     *prometheus.CounterVec
	patched      *prometheus.CounterVec
	appended     prometheus.Counter
	passes       *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	stateUpdates prometheus.Counter
	queued       prometheus.Counter
}

var _ vdom.Observer = (*Observer)(nil)

// New registers the collectors and returns an Observer. Registering twice
// against the same registry panics, as promauto does.
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}

	return &Observer{
		mounted:  counter("nodes_mounted_total", "Total number of host nodes created", "kind"),
		replaced: counter("nodes_replaced_total", "Total number of nodes rebuilt because they were incompatible", "kind"),
		patched:  counter("nodes_patched_total", "Total number of nodes kept in place by reconciliation", "kind"),

		appended: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "children_appended_total",
			Help:        "Total number of children mounted past the end of the old child list",
			ConstLabels: config.ConstLabels,
		}),

		passes: counter("passes_total", "Total number of render passes", "trigger", "status"),

		passDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pass_duration_seconds",
			Help:        "Render pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"trigger"}),

		stateUpdates: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "state_updates_total",
			Help:        "Total number of applied state updates",
			ConstLabels: config.ConstLabels,
		}),

		queued: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "queued_updates_total",
			Help:        "Total number of state updates deferred until the running pass completed",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// NodeMounted implements vdom.Observer.
func (o *Observer) NodeMounted(kind vdom.Kind) {
	o.mounted.WithLabelValues(kind.String()).Inc()
}

// NodeReplaced implements vdom.Observer.
func (o *Observer) NodeReplaced(kind vdom.Kind) {
	o.replaced.WithLabelValues(kind.String()).Inc()
}

// NodePatched implements vdom.Observer.
func (o *Observer) NodePatched(kind vdom.Kind) {
	o.patched.WithLabelValues(kind.String()).Inc()
}

// ChildAppended implements vdom.Observer.
func (o *Observer) ChildAppended() { o.appended.Inc() }

// PassCompleted implements vdom.Observer.
func (o *Observer) PassCompleted(trigger string, d time.Duration, err error) {
	o.passDuration.WithLabelValues(trigger).Observe(d.Seconds())
	o.passes.WithLabelValues(trigger, status(err)).Inc()
}

// StateUpdated implements vdom.Observer.
func (o *Observer) StateUpdated() { o.stateUpdates.Inc() }

// UpdateQueued implements vdom.Observer.
func (o *Observer) UpdateQueued() { o.queued.Inc() }

// status maps an error to a low-cardinality label: "success", the error code
// for coded errors, or "internal".
func status(err error) string {
	if err == nil {
		return "success"
	}
	if code := errors.Code(err); code != "" {
		return code
	}
	return "internal"
}
