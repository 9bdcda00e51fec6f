package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/scour-hq/scour/pkg/config"
)

// Collector owns the Prometheus registry and every metric family Scour
// exposes. Components receive their metric group from the collector instead
// of registering against a global registry, which keeps tests isolated.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	sweep *SweepMetrics
}

// NewCollector creates a metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "scour"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "sweeper"
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}
	c.sweep = NewSweepMetrics(cfg, registry)

	return c
}

// Sweep returns the sweep metric group.
func (c *Collector) Sweep() *SweepMetrics {
	return c.sweep
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
