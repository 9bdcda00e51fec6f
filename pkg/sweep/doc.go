// Package sweep removes orphaned rows from cache tables.
//
// Cache tables are populated by independently scheduled caching agents.
// When an agent is removed from the catalog, the rows it wrote stay
// behind with an owner value no live agent will ever refresh. The
// sweeper finds those rows and deletes them.
//
// # Run Model
//
// A run is single threaded and sequential. It resolves the valid owner
// set and the authoritative data type universe exactly once, up front,
// and freezes both in a RunState that is discarded when the run ends.
// Catalog changes made while a run is in flight apply to the next run,
// never the current one.
//
// For every data type the run visits the primary record table and the
// relationship table, in that order. Each physical table is processed
// at most once per run: distinct data types can collide onto the same
// table name after sanitization, and the second visit is skipped
// without scanning, deleting, or recording metrics.
//
// A row is orphaned when its owner column is not an exact match for
// any valid owner. Orphaned rows are deleted in batches of at most 100
// ids per statement; each batch is its own atomic statement and a
// failed batch aborts the remainder of that data type.
//
// # Failure Isolation
//
// Failures inside the per-data-type loop are logged, counted, and
// contained; the run moves on to the next data type. Failures before
// the loop (database unreachable, catalog unresolvable) abort the
// whole run with a SetupError. Context cancellation also aborts the
// run, since every later statement would fail the same way.
//
// # Basic Usage
//
//	sweeper := sweep.New(store, reg, nil, sweep.DefaultConfig(), collector.Sweep())
//	result, err := sweeper.Sweep(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("deleted %d rows across %d tables\n", result.RowsDeleted, result.TablesSwept)
//
// Sweeper also implements scheduler.Job, so it can be handed to the
// scheduler for periodic execution with the configured interval and
// timeout.
package sweep
