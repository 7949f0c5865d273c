package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/labeled-input/pkg/runtime"
)

// Config configures the Prometheus collector.
type Config struct {
	// Namespace is the metrics namespace (default: "labeled_input").
	Namespace string

	// Subsystem is the metrics subsystem (default: "scheduler").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus collector.
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

// WithBuckets sets the flush duration buckets.
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
		Namespace: "labeled_input",
		Subsystem: "scheduler",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector records scheduler activity as Prometheus metrics. It is safe to
// share one Collector between schedulers.
//
// Metrics collected:
//   - labeled_input_scheduler_flushes_total: flushes by status (ok, fault)
//   - labeled_input_scheduler_flush_duration_seconds: flush duration
//   - labeled_input_scheduler_flush_rounds: drain rounds per flush
//   - labeled_input_scheduler_patches_total: instance patches by component
//   - labeled_input_scheduler_dirty_slots: dirty slots per patch
//   - labeled_input_scheduler_after_update_callbacks_total: callbacks run
type Collector struct {
	flushes    *prometheus.CounterVec
	duration   prometheus.Histogram
	rounds     prometheus.Histogram
	patches    *prometheus.CounterVec
	dirtySlots prometheus.Histogram
	callbacks  prometheus.Counter
}

// NewCollector registers the scheduler metrics and returns a Collector to
// pass to runtime.WithObserver.
func NewCollector(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		flushes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of scheduler flushes",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		rounds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_rounds",
			Help:        "Drain rounds until the dirty queue stabilized",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 3, 5, 8, 13},
		}),

		patches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_total",
			Help:        "Total number of instance patches",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		dirtySlots: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dirty_slots",
			Help:        "Dirty state slots per instance patch",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 4, 8, 16, 32},
		}),

		callbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "after_update_callbacks_total",
			Help:        "Total number of after-update callbacks run",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// FlushStarted implements runtime.Observer.
func (c *Collector) FlushStarted() {}

// InstancePatched implements runtime.Observer.
func (c *Collector) InstancePatched(component string, dirtySlots int) {
	if component == "" {
		component = "anonymous"
	}
	c.patches.WithLabelValues(component).Inc()
	c.dirtySlots.Observe(float64(dirtySlots))
}

// FlushFinished implements runtime.Observer.
func (c *Collector) FlushFinished(stats runtime.FlushStats, err error) {
	status := "ok"
	if err != nil {
		status = "fault"
	}
	c.flushes.WithLabelValues(status).Inc()
	c.duration.Observe(stats.Duration.Seconds())
	c.rounds.Observe(float64(stats.Rounds))
	c.callbacks.Add(float64(stats.Callbacks))
}

var _ runtime.Observer = (*Collector)(nil)
