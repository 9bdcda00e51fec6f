package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/scour-hq/scour/pkg/config"
)

// SweepMetrics tracks metrics for the orphaned-row sweeper.
//
// Metrics:
//   - scour_sweeper_deleted_rows_total: rows deleted, by data type and table kind
//   - scour_sweeper_data_type_duration_seconds: per-data-type sweep duration
//   - scour_sweeper_data_type_failures_total: isolated per-data-type failures
//   - scour_sweeper_runs_total: completed runs by outcome
//   - scour_sweeper_last_run_timestamp_seconds: end time of the last run
//
// All methods are safe on a nil receiver, so the sweeper can run without a
// collector (one-shot CLI invocations, tests).
type SweepMetrics struct {
	deletedRows      *prometheus.CounterVec
	dataTypeDuration *prometheus.HistogramVec
	dataTypeFailures *prometheus.CounterVec
	runsTotal        *prometheus.CounterVec
	lastRun          prometheus.Gauge
}

// NewSweepMetrics creates and registers sweep metrics with the provided
// registry.
func NewSweepMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SweepMetrics {
	sm := &SweepMetrics{
		deletedRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "deleted_rows_total",
				Help:      "Total number of orphaned rows deleted",
			},
			[]string{"data_type", "table_kind"},
		),

		dataTypeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "data_type_duration_seconds",
				Help:      "Wall-clock duration of sweeping one data type across both table kinds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"data_type"},
		),

		dataTypeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "data_type_failures_total",
				Help:      "Total number of per-data-type failures caught during sweeps",
			},
			[]string{"data_type"},
		),

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of sweep runs by outcome",
			},
			[]string{"outcome"},
		),

		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix timestamp of the last finished sweep run",
			},
		),
	}

	registry.MustRegister(
		sm.deletedRows,
		sm.dataTypeDuration,
		sm.dataTypeFailures,
		sm.runsTotal,
		sm.lastRun,
	)

	return sm
}

// RecordDeletedRows records rows deleted for one (data type, table kind)
// pair. Zero is recorded explicitly so a clean table is distinguishable
// from a skipped one.
func (sm *SweepMetrics) RecordDeletedRows(dataType, tableKind string, count int64) {
	if sm == nil {
		return
	}
	sm.deletedRows.WithLabelValues(dataType, tableKind).Add(float64(count))
}

// ObserveDataTypeDuration records how long one data type took to sweep.
func (sm *SweepMetrics) ObserveDataTypeDuration(dataType string, d time.Duration) {
	if sm == nil {
		return
	}
	sm.dataTypeDuration.WithLabelValues(dataType).Observe(d.Seconds())
}

// RecordDataTypeFailure counts an isolated per-data-type failure.
func (sm *SweepMetrics) RecordDataTypeFailure(dataType string) {
	if sm == nil {
		return
	}
	sm.dataTypeFailures.WithLabelValues(dataType).Inc()
}

// RecordRun counts a finished run. Outcome is "completed", "failed", or
// "skipped" (lease held elsewhere).
func (sm *SweepMetrics) RecordRun(outcome string) {
	if sm == nil {
		return
	}
	sm.runsTotal.WithLabelValues(outcome).Inc()
	sm.lastRun.SetToCurrentTime()
}
