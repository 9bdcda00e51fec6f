package cache

import (
	"context"
	"time"
)

// TableKind identifies one of the two physical row shapes a caching agent
// writes. The set is closed: cleanup logic switches over it rather than
// dispatching through an interface.
type TableKind int

const (
	// PrimaryRecord tables hold normalized records, keyed by an "id"
	// column and owned via an "agent" column.
	PrimaryRecord TableKind = iota

	// Relationship tables hold edges between records, keyed by a "uuid"
	// column and owned via a "rel_agent" column.
	Relationship
)

// Kinds returns both table kinds in processing order.
func Kinds() [2]TableKind {
	return [2]TableKind{PrimaryRecord, Relationship}
}

// String returns the label used for logs and metric dimensions.
func (k TableKind) String() string {
	switch k {
	case Relationship:
		return "relationship"
	default:
		return "primary"
	}
}

// IDColumn returns the name of the row-identifier column for this kind.
func (k TableKind) IDColumn() string {
	switch k {
	case Relationship:
		return "uuid"
	default:
		return "id"
	}
}

// OwnerColumn returns the name of the column holding the writing agent's
// type identifier.
func (k TableKind) OwnerColumn() string {
	switch k {
	case Relationship:
		return "rel_agent"
	default:
		return "agent"
	}
}

// TableName derives the physical table name for dataType under the given
// naming scheme.
func (k TableKind) TableName(n Namer, dataType string) string {
	switch k {
	case Relationship:
		return n.RelationshipTable(dataType)
	default:
		return n.PrimaryTable(dataType)
	}
}

// Row is the two-column projection read during a table scan: the row
// identifier and the agent-type identifier recorded as its owner. Rows are
// transient scan values; Scour never materializes full row content.
type Row struct {
	ID    string
	Owner string
}

// Store is the surface the sweeper needs from the cache database. Table
// names are dynamic and unbounded, so every operation takes the physical
// table and column names explicitly.
type Store interface {
	// ScanRows streams the (id, owner) projection of every row in table,
	// invoking fn once per row. A table that does not exist scans as zero
	// rows and returns nil; any other query failure is returned. An error
	// returned by fn aborts the scan and is returned unchanged.
	ScanRows(ctx context.Context, table, idColumn, ownerColumn string, fn func(Row) error) error

	// DeleteRows removes the rows of table whose idColumn value matches one
	// of ids, in a single atomic statement, and reports the number of rows
	// actually deleted. An empty id slice is a no-op: no statement is
	// issued and (0, nil) is returned.
	DeleteRows(ctx context.Context, table, idColumn string, ids []string) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error
}

// LeaseStore is an optional capability of a Store: a best-effort named
// lease used to suppress concurrent sweeps against the same database. The
// lease is advisory; sweeping is idempotent at the row level, so a lost or
// expired lease is never a correctness problem.
type LeaseStore interface {
	// AcquireLease attempts to take the named lease for holder with the
	// given time-to-live. It returns true when the lease was acquired or
	// already belongs to holder, and false when another live holder owns it.
	AcquireLease(ctx context.Context, name, holder string, ttl time.Duration) (bool, error)

	// ReleaseLease releases the named lease if it is held by holder.
	// Releasing a lease held by someone else is a no-op.
	ReleaseLease(ctx context.Context, name, holder string) error
}
