// Package storage provides cache store backends for the sweeper.
//
// # Backends
//
// The package implements the cache.Store and cache.LeaseStore interfaces
// twice:
//
//   - SQLStore: database/sql backend for the relational cache (SQLite, MySQL)
//   - MemoryStore: in-memory backend for testing
//
// # SQL Backend
//
// SQLStore wraps an existing *sql.DB rather than opening its own connection.
// The cache schema belongs to the caching agents, not to the sweeper, so
// SQLStore never creates or alters cache tables. The only table it manages
// is the optional sweep lease table, created lazily on first lease use.
//
// Scanning a table that does not exist yet is not an error: agents create
// their tables on first write, and a table that was never written holds no
// rows to collect. SQLStore classifies the driver's missing-table error and
// reports an empty scan instead.
//
// # Basic Usage
//
//	db, err := sql.Open("sqlite", "cache.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := storage.NewSQLStore(db)
//
//	err = store.ScanRows(ctx, "cache_v1_instances", "id", "agent", func(row cache.Row) error {
//	    fmt.Println(row.ID, row.Owner)
//	    return nil
//	})
//
// # Thread Safety
//
// Both backends are safe for concurrent use. SQLStore defers concurrency
// control to database/sql's connection pool; MemoryStore holds an internal
// lock around every operation.
package storage
