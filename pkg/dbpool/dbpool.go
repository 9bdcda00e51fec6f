// Package dbpool manages the named database connection pools declared in
// configuration. The sweeper routes each run to one named pool; further
// pools can coexist for tooling that shares the config file.
//
// Two SQLite drivers are registered: "sqlite" (modernc.org/sqlite, pure Go)
// and "sqlite3" (mattn/go-sqlite3, cgo). The modernc driver keeps the
// binary portable; the mattn driver remains available for deployments that
// already link cgo sqlite.
package dbpool

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/scour-hq/scour/pkg/config"
)

// supportedDrivers lists the database/sql driver names this build links.
var supportedDrivers = map[string]bool{
	"sqlite":  true,
	"sqlite3": true,
}

// Manager opens and caches the named pools lazily. Pools are opened on
// first use; sql.Open itself does not dial, so reachability is checked by
// the caller (the sweeper pings its pool at run start).
type Manager struct {
	configs map[string]config.PoolConfig
	logger  *slog.Logger

	mu    sync.Mutex
	pools map[string]*sql.DB
}

// NewManager creates a pool manager for the configured pools.
func NewManager(cfg config.DatabaseConfig) *Manager {
	return &Manager{
		configs: cfg.Pools,
		pools:   make(map[string]*sql.DB),
		logger:  slog.Default().With("component", "dbpool"),
	}
}

// Pool returns the database handle for a named pool, opening it on first
// use. The handle is shared; callers must not close it.
func (m *Manager) Pool(name string) (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, ok := m.pools[name]; ok {
		return db, nil
	}

	cfg, ok := m.configs[name]
	if !ok {
		return nil, fmt.Errorf("unknown database pool %q", name)
	}
	if !supportedDrivers[cfg.Driver] {
		return nil, fmt.Errorf("unsupported database driver %q for pool %q", cfg.Driver, name)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool %q: %w", name, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	m.pools[name] = db

	m.logger.Info("database pool opened",
		"pool", name,
		"driver", cfg.Driver,
		"max_open_conns", cfg.MaxOpenConns,
	)

	return db, nil
}

// Close closes every opened pool. The manager is unusable afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for name, db := range m.pools {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close pool %q: %w", name, err)
		}
		delete(m.pools, name)
	}
	return firstErr
}
