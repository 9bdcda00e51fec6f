package storage

import (
	"context"
	"sync"
	"time"

	"github.com/scour-hq/scour/pkg/cache"
)

// DeleteCall records one DeleteRows invocation against a MemoryStore. Tests
// use the recorded calls to assert batching behavior.
type DeleteCall struct {
	Table    string
	IDColumn string
	IDs      []string
}

type memLease struct {
	holder    string
	expiresAt time.Time
}

// MemoryStore implements cache.Store and cache.LeaseStore using in-memory
// maps. This implementation is intended for testing only and should not be
// used in production.
type MemoryStore struct {
	tables      map[string][]cache.Row
	deleteCalls []DeleteCall
	scanErrs    map[string]error
	deleteErrs  map[string]error
	pingErr     error
	leases      map[string]memLease
	mu          sync.RWMutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables:     make(map[string][]cache.Row),
		scanErrs:   make(map[string]error),
		deleteErrs: make(map[string]error),
		leases:     make(map[string]memLease),
	}
}

// SeedTable creates or replaces a table with the given rows.
func (s *MemoryStore) SeedTable(table string, rows ...cache.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables[table] = append([]cache.Row(nil), rows...)
}

// Rows returns a copy of the current contents of a table. A missing table
// yields nil.
func (s *MemoryStore) Rows(table string) []cache.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.tables[table]
	if !ok {
		return nil
	}
	return append([]cache.Row(nil), rows...)
}

// DeleteCalls returns a copy of every DeleteRows invocation seen so far, in
// order.
func (s *MemoryStore) DeleteCalls() []DeleteCall {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]DeleteCall(nil), s.deleteCalls...)
}

// FailScan makes every ScanRows call against table return err.
func (s *MemoryStore) FailScan(table string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scanErrs[table] = err
}

// FailDelete makes every DeleteRows call against table return err. The call
// is still recorded and the rows are left in place.
func (s *MemoryStore) FailDelete(table string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteErrs[table] = err
}

// SetPingError makes Ping return err.
func (s *MemoryStore) SetPingError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pingErr = err
}

// ScanRows streams the rows of table to fn. Missing tables are empty, not
// errors, matching the SQL backend.
func (s *MemoryStore) ScanRows(ctx context.Context, table, idColumn, ownerColumn string, fn func(cache.Row) error) error {
	s.mu.RLock()
	if err := s.scanErrs[table]; err != nil {
		s.mu.RUnlock()
		return err
	}
	rows := append([]cache.Row(nil), s.tables[table]...)
	s.mu.RUnlock()

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// DeleteRows removes the rows of table whose ID is in ids and returns the
// number actually removed. An empty id list executes nothing and is not
// recorded as a call.
func (s *MemoryStore) DeleteRows(ctx context.Context, table, idColumn string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteCalls = append(s.deleteCalls, DeleteCall{
		Table:    table,
		IDColumn: idColumn,
		IDs:      append([]string(nil), ids...),
	})

	if err := s.deleteErrs[table]; err != nil {
		return 0, err
	}

	doomed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}

	var kept []cache.Row
	var removed int64
	for _, row := range s.tables[table] {
		if _, ok := doomed[row.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	if _, ok := s.tables[table]; ok {
		s.tables[table] = kept
	}

	return removed, nil
}

// Ping reports the configured ping error, if any.
func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.pingErr
}

// AcquireLease implements cache.LeaseStore with the same semantics as the
// SQL backend.
func (s *MemoryStore) AcquireLease(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	lease, ok := s.leases[name]
	if ok && lease.holder != holder && lease.expiresAt.After(now) {
		return false, nil
	}

	s.leases[name] = memLease{holder: holder, expiresAt: now.Add(ttl)}
	return true, nil
}

// ReleaseLease frees the named lease if holder still owns it.
func (s *MemoryStore) ReleaseLease(ctx context.Context, name, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lease, ok := s.leases[name]; ok && lease.holder == holder {
		delete(s.leases, name)
	}
	return nil
}
