// Package metrics exposes Prometheus collectors for project generation.
//
// Metrics collected:
//   - projgen_projects_generated_total: runs by result (success or error category)
//   - projgen_files_written_total: files committed into project directories
//   - projgen_generate_duration_seconds: end-to-end generation latency
//   - projgen_publish_total: uploads by result
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// namespace prefixes every metric name.
const namespace = "projgen"

// durationBuckets are the histogram buckets for generation duration.
// Generation touches six small files; most runs finish well under 100ms.
var durationBuckets = []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}

// Config configures the collectors.
type Config struct {
	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// Metrics holds the collectors.
type Metrics struct {
	generated    *prometheus.CounterVec
	filesWritten prometheus.Counter
	duration     prometheus.Histogram
	published    *prometheus.CounterVec
}

// New registers the collectors. Registering twice on the same registry panics,
// as with promauto.
func New(opts ...Option) *Metrics {
	cfg := Config{Registry: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		generated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projects_generated_total",
			Help:      "Total number of project generation runs",
		}, []string{"result"}),

		filesWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_written_total",
			Help:      "Total number of files committed into project directories",
		}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generate_duration_seconds",
			Help:      "Project generation duration in seconds",
			Buckets:   durationBuckets,
		}),

		published: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Total number of project uploads",
		}, []string{"result"}),
	}
}

// ObserveGenerate records one generation run.
func (m *Metrics) ObserveGenerate(result string, files int, d time.Duration) {
	if m == nil {
		return
	}
	m.generated.WithLabelValues(result).Inc()
	m.filesWritten.Add(float64(files))
	m.duration.Observe(d.Seconds())
}

// ObservePublish records one upload.
func (m *Metrics) ObservePublish(result string) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(result).Inc()
}
