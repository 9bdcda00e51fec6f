package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scour-hq/scour/pkg/cache"
	"github.com/scour-hq/scour/pkg/registry"
	"github.com/scour-hq/scour/pkg/telemetry/metrics"
)

// Run outcomes recorded on the runs_total counter.
const (
	outcomeCompleted = "completed"
	outcomeFailed    = "failed"
	outcomeSkipped   = "skipped"
)

// Sweeper deletes orphaned rows from cache tables. One Sweeper serves
// the whole process; runs are strictly sequential and a second Sweep
// call while one is executing returns ErrRunInProgress.
type Sweeper struct {
	store    cache.Store
	leases   cache.LeaseStore
	registry *registry.Registry
	namer    cache.Namer
	config   *Config
	metrics  *metrics.SweepMetrics
	logger   *slog.Logger

	// holder identifies this instance on the sweep lease.
	holder string

	mu       sync.Mutex
	inFlight bool
}

// Result summarizes one sweep run.
type Result struct {
	// RunID is the unique identifier of this run, present on every log
	// line the run emitted.
	RunID string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Duration is the wall-clock time of the whole run.
	Duration time.Duration

	// DataTypes is the number of data types the run visited.
	DataTypes int

	// TablesSwept counts tables that were scanned (including ones that
	// turned out clean or missing).
	TablesSwept int

	// TablesSkipped counts table visits suppressed by the per-run
	// dedupe, when two data types derive the same physical name.
	TablesSkipped int

	// StaleRows is the total number of orphaned rows detected.
	StaleRows int64

	// RowsDeleted is the total number of rows actually deleted. In a
	// dry run it stays zero regardless of StaleRows.
	RowsDeleted int64

	// Failures counts data types whose sweep failed and was contained.
	Failures int

	// Skipped is true when the run gave way to another instance
	// holding the sweep lease. No tables were touched.
	Skipped bool

	// LeaseHeld is true when this run executed under the sweep lease.
	LeaseHeld bool

	// DryRun is true when deletions were suppressed.
	DryRun bool
}

// New creates a Sweeper. The namer may be nil, in which case the
// default cache naming scheme is used; cfg may be nil for defaults.
// sweepMetrics may be nil, which disables metric recording.
//
// If cfg enables the lease, store must also implement cache.LeaseStore;
// otherwise the lease is disabled with a warning.
func New(store cache.Store, reg *registry.Registry, namer cache.Namer, cfg *Config, sweepMetrics *metrics.SweepMetrics) *Sweeper {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.applyDefaults()

	if namer == nil {
		namer = cache.DefaultNaming()
	}

	logger := slog.Default().With("component", "sweeper")

	leases, _ := store.(cache.LeaseStore)
	if cfg.LeaseEnabled && leases == nil {
		logger.Warn("sweep lease enabled but store does not support leases, running without one")
	}

	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "scour"
	}

	return &Sweeper{
		store:    store,
		leases:   leases,
		registry: reg,
		namer:    namer,
		config:   cfg,
		metrics:  sweepMetrics,
		logger:   logger,
		holder:   fmt.Sprintf("%s-%s", hostname, uuid.NewString()[:8]),
	}
}

// Sweep executes one run: resolve ownership once, then visit every
// authoritative data type's primary and relationship tables, deleting
// rows whose owner is no longer in the catalog.
//
// Per-data-type failures are logged, counted, and contained; Sweep
// still returns a nil error for such runs, with the damage visible in
// Result.Failures. Setup failures and context cancellation abort the
// run and are returned.
func (s *Sweeper) Sweep(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrRunInProgress
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	started := time.Now()
	result := &Result{
		RunID:     uuid.NewString(),
		StartedAt: started,
		DryRun:    s.config.DryRun,
	}
	logger := s.logger.With("run_id", result.RunID)

	// Connectivity problems are a setup failure, not something to
	// rediscover once per data type.
	if err := s.store.Ping(ctx); err != nil {
		s.metrics.RecordRun(outcomeFailed)
		return nil, NewSetupError("ping", err)
	}

	if s.config.LeaseEnabled && s.leases != nil {
		acquired, err := s.leases.AcquireLease(ctx, JobName, s.holder, s.config.LeaseTTL)
		if err != nil {
			// The lease is advisory and sweeping is idempotent, so a
			// broken lease table must not stop cleanup.
			logger.Warn("sweep lease acquisition failed, continuing without lease", "error", err)
		} else if !acquired {
			logger.Info("sweep lease held by another instance, skipping run")
			s.metrics.RecordRun(outcomeSkipped)
			result.Skipped = true
			result.Duration = time.Since(started)
			return result, nil
		} else {
			result.LeaseHeld = true
			defer func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := s.leases.ReleaseLease(releaseCtx, JobName, s.holder); err != nil {
					logger.Warn("failed to release sweep lease", "error", err)
				}
			}()
		}
	}

	// Resolve exactly once; the frozen state is the run's only view of
	// the catalog.
	own, err := resolveOwnership(s.registry.Snapshot())
	if err != nil {
		s.metrics.RecordRun(outcomeFailed)
		return nil, NewSetupError("resolve", err)
	}
	state := newRunState(own.owners)
	result.DataTypes = len(own.dataTypes)

	logger.Info("sweep started",
		"valid_owners", len(own.owners),
		"data_types", len(own.dataTypes),
		"dry_run", s.config.DryRun,
		"lease_held", result.LeaseHeld)

	for _, dataType := range own.dataTypes {
		dtStart := time.Now()
		err := s.sweepDataType(ctx, logger, state, dataType, result)
		s.metrics.ObserveDataTypeDuration(dataType, time.Since(dtStart))
		if err == nil {
			continue
		}

		if ctx.Err() != nil {
			// Every remaining statement would fail the same way, so
			// abort instead of logging a failure per data type.
			logger.Warn("sweep run aborted",
				"data_type", dataType,
				"rows_deleted", result.RowsDeleted,
				"error", ctx.Err())
			s.metrics.RecordRun(outcomeFailed)
			return nil, ctx.Err()
		}

		result.Failures++
		s.metrics.RecordDataTypeFailure(dataType)
		logger.Error("data type sweep failed", "data_type", dataType, "error", err)
	}

	result.Duration = time.Since(started)
	s.metrics.RecordRun(outcomeCompleted)

	logger.Info("sweep completed",
		"duration", result.Duration,
		"data_types", result.DataTypes,
		"tables_swept", result.TablesSwept,
		"tables_skipped", result.TablesSkipped,
		"stale_rows", result.StaleRows,
		"rows_deleted", result.RowsDeleted,
		"failures", result.Failures)

	return result, nil
}

// sweepDataType processes both table kinds of one data type. An error
// from either kind aborts the data type; the caller decides whether it
// is contained or fatal.
func (s *Sweeper) sweepDataType(ctx context.Context, logger *slog.Logger, state *RunState, dataType string, result *Result) error {
	for _, kind := range cache.Kinds() {
		table := kind.TableName(s.namer, dataType)

		if state.Touched(table) {
			// Another data type already derived this physical name.
			// Skip entirely: no scan, no delete, no metric sample.
			logger.Debug("table already swept this run",
				"table", table,
				"data_type", dataType)
			result.TablesSkipped++
			continue
		}

		stale, owners, scanned, err := s.scanStale(ctx, state, table, kind)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", table, err)
		}

		logger.Debug("table scanned",
			"table", table,
			"data_type", dataType,
			"rows", scanned,
			"stale_rows", len(stale))

		var deleted int64
		if len(stale) > 0 {
			if s.config.DryRun {
				logger.Warn("orphaned rows detected, dry run",
					"table", table,
					"data_type", dataType,
					"stale_rows", len(stale),
					"stale_owners", owners)
			} else {
				deleted, err = s.deleteInBatches(ctx, table, kind.IDColumn(), stale)
				result.RowsDeleted += deleted
				if err != nil {
					return fmt.Errorf("deleting from %s: %w", table, err)
				}
				logger.Warn("orphaned rows deleted",
					"table", table,
					"data_type", dataType,
					"stale_rows", len(stale),
					"rows_deleted", deleted,
					"stale_owners", owners)
			}
		}

		state.MarkTouched(table)
		result.TablesSwept++
		result.StaleRows += int64(len(stale))

		// Zero is recorded on purpose: a clean table produces a sample,
		// a deduped skip produces none.
		s.metrics.RecordDeletedRows(dataType, kind.String(), deleted)
	}

	return nil
}

// Name implements scheduler.Job.
func (s *Sweeper) Name() string {
	return JobName
}

// Interval implements scheduler.Job.
func (s *Sweeper) Interval() time.Duration {
	return s.config.Interval
}

// Timeout implements scheduler.Job.
func (s *Sweeper) Timeout() time.Duration {
	return s.config.Timeout
}

// Run implements scheduler.Job. It discards the Result, which is
// already visible through logs and metrics.
func (s *Sweeper) Run(ctx context.Context) error {
	_, err := s.Sweep(ctx)
	return err
}
