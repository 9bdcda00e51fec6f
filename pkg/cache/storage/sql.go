package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/scour-hq/scour/pkg/cache"
)

// leaseTable is the one table the sweeper owns in the cache database. It is
// created lazily on first lease use and never touched by a sweep.
const leaseTable = "scour_sweep_leases"

const leaseSchema = `
CREATE TABLE IF NOT EXISTS ` + leaseTable + ` (
	name       TEXT PRIMARY KEY,
	holder     TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);
`

// SQLStore implements cache.Store and cache.LeaseStore on top of an existing
// *sql.DB. It does not own the connection; closing the pool is the caller's
// responsibility.
type SQLStore struct {
	db     *sql.DB
	logger *slog.Logger

	leaseOnce sync.Once
	leaseErr  error
}

// NewSQLStore creates a store backed by the given database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		db:     db,
		logger: slog.Default().With("component", "cache.storage.sql"),
	}
}

// ScanRows streams the id and owner columns of every row in table to fn.
// A table that does not exist is reported as an empty scan: caching agents
// create tables on first write, so absence means no rows. An error returned
// by fn aborts the scan and is returned unchanged.
//
// Table and column names are interpolated into the statement. They never
// carry user input: tables come from cache.TableNaming, which restricts
// names to [A-Za-z0-9_], and columns are the fixed names of cache.TableKind.
func (s *SQLStore) ScanRows(ctx context.Context, table, idColumn, ownerColumn string, fn func(cache.Row) error) error {
	query := fmt.Sprintf("SELECT %s, %s FROM %s", idColumn, ownerColumn, table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		if isMissingTable(err) {
			s.logger.Debug("table not present, treating as empty", "table", table)
			return nil
		}
		return cache.NewStoreError("scan", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, owner sql.NullString
		if err := rows.Scan(&id, &owner); err != nil {
			return cache.NewStoreError("scan", table, err)
		}
		if err := fn(cache.Row{ID: id.String, Owner: owner.String}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return cache.NewStoreError("scan", table, err)
	}

	return nil
}

// DeleteRows removes the rows whose id column matches one of ids, in a single
// statement. An empty id list executes nothing. The returned count is the
// number of rows the database reports as actually deleted.
func (s *SQLStore) DeleteRows(ctx context.Context, table, idColumn string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)", table, idColumn, placeholders)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isMissingTable(err) {
			return 0, nil
		}
		return 0, cache.NewStoreError("delete", table, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, cache.NewStoreError("rows_affected", table, err)
	}

	return affected, nil
}

// Ping reports whether the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return cache.NewStoreError("ping", "", err)
	}
	return nil
}

// AcquireLease attempts to take the named lease for holder. It returns true
// when the lease was free, expired, or already held by the same holder; in
// the last two cases the expiry is extended to now+ttl.
func (s *SQLStore) AcquireLease(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
	if err := s.ensureLeaseTable(ctx); err != nil {
		return false, err
	}

	now := time.Now().Unix()
	expires := time.Now().Add(ttl).Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, cache.NewStoreError("acquire_lease", leaseTable, err)
	}
	defer tx.Rollback()

	var current string
	var expiresAt int64
	err = tx.QueryRowContext(ctx,
		"SELECT holder, expires_at FROM "+leaseTable+" WHERE name = ?", name,
	).Scan(&current, &expiresAt)

	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx,
			"INSERT INTO "+leaseTable+" (name, holder, expires_at) VALUES (?, ?, ?)",
			name, holder, expires,
		)
	case err != nil:
		return false, cache.NewStoreError("acquire_lease", leaseTable, err)
	case current == holder || expiresAt <= now:
		_, err = tx.ExecContext(ctx,
			"UPDATE "+leaseTable+" SET holder = ?, expires_at = ? WHERE name = ?",
			holder, expires, name,
		)
	default:
		// Held by someone else and not expired.
		return false, nil
	}

	if err != nil {
		return false, cache.NewStoreError("acquire_lease", leaseTable, err)
	}
	if err := tx.Commit(); err != nil {
		return false, cache.NewStoreError("acquire_lease", leaseTable, err)
	}

	return true, nil
}

// ReleaseLease frees the named lease if holder still owns it. Releasing a
// lease that expired or was taken over is not an error.
func (s *SQLStore) ReleaseLease(ctx context.Context, name, holder string) error {
	if err := s.ensureLeaseTable(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM "+leaseTable+" WHERE name = ? AND holder = ?", name, holder,
	)
	if err != nil {
		return cache.NewStoreError("release_lease", leaseTable, err)
	}
	return nil
}

// ensureLeaseTable creates the lease table on first use.
func (s *SQLStore) ensureLeaseTable(ctx context.Context) error {
	s.leaseOnce.Do(func() {
		if _, err := s.db.ExecContext(ctx, leaseSchema); err != nil {
			s.leaseErr = cache.NewStoreError("create_lease_table", leaseTable, err)
			return
		}
		s.logger.Debug("lease table ready", "table", leaseTable)
	})
	return s.leaseErr
}

// isMissingTable classifies driver errors that mean the target table does
// not exist. Covered drivers: mattn/go-sqlite3 and modernc.org/sqlite report
// "no such table", MySQL reports error 1146 "table ... doesn't exist", and
// PostgreSQL reports SQLSTATE 42P01 "relation ... does not exist".
func isMissingTable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "doesn't exist") ||
		strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "42p01") ||
		strings.Contains(msg, "error 1146")
}
