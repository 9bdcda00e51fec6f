// Package cache defines the data model of the agent-populated relational
// cache store: the two physical row shapes caching agents write, the naming
// scheme that maps logical data-type names onto physical tables, and the
// Store interface the rest of Scour uses to read and delete rows.
//
// # Row Shapes
//
// Every data type materializes as up to two tables:
//
//   - A primary-record table holding the normalized records themselves,
//     with an "id" column and an "agent" column naming the owner.
//   - A relationship table holding edges between records, with a "uuid"
//     column and a "rel_agent" column naming the owner.
//
// The owner column always carries the agent-type identifier of the caching
// agent that wrote the row. Scour never interprets row content beyond this
// two-column projection.
//
// # Table Naming
//
// Physical table names are derived from logical data-type names by a Namer.
// The default TableNaming scheme produces
//
//	<prefix>_v<version>_<sanitized dataType>        (primary records)
//	<prefix>_v<version>_<sanitized dataType>_rel    (relationships)
//
// where sanitization replaces every character outside [A-Za-z0-9_] with "_".
// Distinct logical names can therefore collapse onto one physical table;
// callers that iterate data types must deduplicate on the physical name.
//
// # Backends
//
// The storage subpackage provides a database/sql-backed Store and an
// in-memory Store for tests.
package cache
