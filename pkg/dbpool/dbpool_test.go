package dbpool

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/scour-hq/scour/pkg/config"
)

func testManager(t *testing.T) *Manager {
	t.Helper()

	m := NewManager(config.DatabaseConfig{
		Pools: map[string]config.PoolConfig{
			"cache": {
				Driver:          "sqlite",
				DSN:             filepath.Join(t.TempDir(), "cache.db"),
				MaxOpenConns:    5,
				MaxIdleConns:    2,
				ConnMaxLifetime: time.Minute,
			},
			"broken": {
				Driver: "oracle",
				DSN:    "whatever",
			},
		},
	})
	t.Cleanup(func() { _ = m.Close() })

	return m
}

// TestManager_Pool tests opening and using a configured pool.
func TestManager_Pool(t *testing.T) {
	m := testManager(t)

	db, err := m.Pool("cache")
	if err != nil {
		t.Fatalf("Pool() error = %v", err)
	}

	if _, err := db.Exec("CREATE TABLE t (id TEXT)"); err != nil {
		t.Fatalf("pool handle unusable: %v", err)
	}
}

// TestManager_Pool_Cached verifies the same handle is returned on repeat
// calls.
func TestManager_Pool_Cached(t *testing.T) {
	m := testManager(t)

	first, err := m.Pool("cache")
	if err != nil {
		t.Fatalf("Pool() error = %v", err)
	}
	second, err := m.Pool("cache")
	if err != nil {
		t.Fatalf("Pool() error = %v", err)
	}
	if first != second {
		t.Error("Pool() returned distinct handles for the same name")
	}
}

// TestManager_Pool_Unknown tests the unknown-pool error path.
func TestManager_Pool_Unknown(t *testing.T) {
	m := testManager(t)

	if _, err := m.Pool("analytics"); err == nil {
		t.Fatal("Pool(analytics) error = nil, want unknown pool error")
	}
}

// TestManager_Pool_UnsupportedDriver tests the driver allowlist.
func TestManager_Pool_UnsupportedDriver(t *testing.T) {
	m := testManager(t)

	if _, err := m.Pool("broken"); err == nil {
		t.Fatal("Pool(broken) error = nil, want unsupported driver error")
	}
}

// TestManager_Close verifies pools are closed and the cache is emptied.
func TestManager_Close(t *testing.T) {
	m := testManager(t)

	db, err := m.Pool("cache")
	if err != nil {
		t.Fatalf("Pool() error = %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := db.Ping(); err == nil {
		t.Error("Ping() after Close() succeeded, want closed-database error")
	}
}
