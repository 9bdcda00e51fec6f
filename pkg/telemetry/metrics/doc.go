// Package metrics provides Prometheus metrics for the sweeper.
//
// # Metric Families
//
// All metrics live under the configured namespace and subsystem
// (default scour_sweeper):
//
//   - deleted_rows_total{data_type, table_kind}: orphaned rows deleted.
//     Emitted with value 0 for every table processed without deletions, so
//     dashboards can tell "clean" from "not swept".
//   - data_type_duration_seconds{data_type}: wall-clock duration of one
//     data type's sweep across both table kinds, recorded whether or not
//     the data type failed.
//   - data_type_failures_total{data_type}: failures caught at the
//     per-data-type boundary.
//   - runs_total{outcome}: finished runs by outcome (completed, failed,
//     skipped).
//   - last_run_timestamp_seconds: end time of the most recent run.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	sweeper := sweep.New(..., collector.Sweep())
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// Passing a nil *SweepMetrics to the sweeper disables metric emission
// without any conditional wiring; every method is nil-safe.
package metrics
