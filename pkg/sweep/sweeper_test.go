package sweep

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/scour-hq/scour/pkg/cache"
	"github.com/scour-hq/scour/pkg/cache/storage"
	"github.com/scour-hq/scour/pkg/config"
	"github.com/scour-hq/scour/pkg/registry"
	"github.com/scour-hq/scour/pkg/telemetry/metrics"
)

func cachingAgent(agentType string, dataTypes ...string) registry.Agent {
	specs := make([]registry.DataTypeSpec, 0, len(dataTypes))
	for _, name := range dataTypes {
		specs = append(specs, registry.DataTypeSpec{Name: name, Authoritative: true})
	}
	return registry.Agent{Type: agentType, Caching: true, DataTypes: specs}
}

func catalogOf(agents ...registry.Agent) *registry.Catalog {
	return &registry.Catalog{
		Providers: []registry.Provider{{Name: "test", Agents: agents}},
	}
}

func testMetrics(t *testing.T) (*metrics.SweepMetrics, *prometheus.Registry) {
	t.Helper()

	reg := prometheus.NewRegistry()
	cfg := &config.MetricsConfig{Namespace: "test", Subsystem: "sweeper"}
	return metrics.NewSweepMetrics(cfg, reg), reg
}

func newTestSweeper(t *testing.T, store cache.Store, catalog *registry.Catalog, cfg *Config) (*Sweeper, *prometheus.Registry) {
	t.Helper()

	sm, reg := testMetrics(t)
	return New(store, registry.NewRegistry(catalog), nil, cfg, sm), reg
}

func ownersOf(rows []cache.Row) map[string]int {
	owners := make(map[string]int)
	for _, row := range rows {
		owners[row.Owner]++
	}
	return owners
}

func TestSweep_DeletesOrphanedRows(t *testing.T) {
	store := storage.NewMemoryStore()
	store.SeedTable("cache_v1_serverGroups",
		cache.Row{ID: "sg-1", Owner: "agentA"},
		cache.Row{ID: "sg-2", Owner: "agentB"},
		cache.Row{ID: "sg-3", Owner: "agentC"},
		cache.Row{ID: "sg-4", Owner: "agentC"},
	)
	store.SeedTable("cache_v1_serverGroups_rel",
		cache.Row{ID: "rel-1", Owner: "agentA"},
		cache.Row{ID: "rel-2", Owner: "agentC"},
	)

	catalog := catalogOf(
		cachingAgent("agentA", "serverGroups"),
		cachingAgent("agentB", "serverGroups"),
	)
	sweeper, reg := newTestSweeper(t, store, catalog, nil)

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if result.RowsDeleted != 3 {
		t.Errorf("RowsDeleted = %d, want 3", result.RowsDeleted)
	}
	if result.StaleRows != 3 {
		t.Errorf("StaleRows = %d, want 3", result.StaleRows)
	}
	if result.TablesSwept != 2 {
		t.Errorf("TablesSwept = %d, want 2", result.TablesSwept)
	}
	if result.Failures != 0 {
		t.Errorf("Failures = %d, want 0", result.Failures)
	}

	primary := ownersOf(store.Rows("cache_v1_serverGroups"))
	if primary["agentC"] != 0 || primary["agentA"] != 1 || primary["agentB"] != 1 {
		t.Errorf("unexpected primary table owners after sweep: %v", primary)
	}
	rel := ownersOf(store.Rows("cache_v1_serverGroups_rel"))
	if rel["agentC"] != 0 || rel["agentA"] != 1 {
		t.Errorf("unexpected relationship table owners after sweep: %v", rel)
	}

	expected := `
# HELP test_sweeper_deleted_rows_total Total number of orphaned rows deleted
# TYPE test_sweeper_deleted_rows_total counter
test_sweeper_deleted_rows_total{data_type="serverGroups",table_kind="primary"} 2
test_sweeper_deleted_rows_total{data_type="serverGroups",table_kind="relationship"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_sweeper_deleted_rows_total"); err != nil {
		t.Errorf("unexpected deleted_rows metrics: %v", err)
	}
}

func TestSweep_Idempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	store.SeedTable("cache_v1_images",
		cache.Row{ID: "img-1", Owner: "imageAgent"},
		cache.Row{ID: "img-2", Owner: "retiredAgent"},
	)

	catalog := catalogOf(cachingAgent("imageAgent", "images"))
	sweeper, _ := newTestSweeper(t, store, catalog, nil)

	first, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("first Sweep() error = %v", err)
	}
	if first.RowsDeleted != 1 {
		t.Fatalf("first run RowsDeleted = %d, want 1", first.RowsDeleted)
	}
	callsAfterFirst := len(store.DeleteCalls())

	second, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second Sweep() error = %v", err)
	}
	if second.RowsDeleted != 0 {
		t.Errorf("second run RowsDeleted = %d, want 0", second.RowsDeleted)
	}
	if second.StaleRows != 0 {
		t.Errorf("second run StaleRows = %d, want 0", second.StaleRows)
	}
	if got := len(store.DeleteCalls()); got != callsAfterFirst {
		t.Errorf("second run issued %d extra delete statements", got-callsAfterFirst)
	}
	if got := len(store.Rows("cache_v1_images")); got != 1 {
		t.Errorf("rows after second run = %d, want 1", got)
	}
}

func TestSweep_OwnerMatchIsExact(t *testing.T) {
	store := storage.NewMemoryStore()
	store.SeedTable("cache_v1_apps",
		cache.Row{ID: "a-1", Owner: "appAgent"},
		cache.Row{ID: "a-2", Owner: "AppAgent"},
		cache.Row{ID: "a-3", Owner: "appagent"},
		cache.Row{ID: "a-4", Owner: " appAgent"},
		cache.Row{ID: "a-5", Owner: "appAgent "},
		cache.Row{ID: "a-6", Owner: ""},
	)

	catalog := catalogOf(cachingAgent("appAgent", "apps"))
	sweeper, _ := newTestSweeper(t, store, catalog, nil)

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if result.RowsDeleted != 5 {
		t.Errorf("RowsDeleted = %d, want 5", result.RowsDeleted)
	}

	rows := store.Rows("cache_v1_apps")
	if len(rows) != 1 || rows[0].Owner != "appAgent" {
		t.Errorf("surviving rows = %+v, want exactly the exact-match owner", rows)
	}
}

func TestSweep_DeletesInBatches(t *testing.T) {
	store := storage.NewMemoryStore()

	want := make(map[string]struct{}, 250)
	rows := []cache.Row{{ID: "keep-1", Owner: "diskAgent"}}
	for i := 0; i < 250; i++ {
		id := fmt.Sprintf("disk-%03d", i)
		want[id] = struct{}{}
		rows = append(rows, cache.Row{ID: id, Owner: "ghostAgent"})
	}
	store.SeedTable("cache_v1_disks", rows...)

	catalog := catalogOf(cachingAgent("diskAgent", "disks"))
	sweeper, _ := newTestSweeper(t, store, catalog, nil)

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if result.RowsDeleted != 250 {
		t.Errorf("RowsDeleted = %d, want 250", result.RowsDeleted)
	}

	calls := store.DeleteCalls()
	if len(calls) != 3 {
		t.Fatalf("delete statements = %d, want 3", len(calls))
	}
	for i, wantLen := range []int{100, 100, 50} {
		if calls[i].Table != "cache_v1_disks" {
			t.Errorf("call %d table = %q, want cache_v1_disks", i, calls[i].Table)
		}
		if calls[i].IDColumn != "id" {
			t.Errorf("call %d id column = %q, want id", i, calls[i].IDColumn)
		}
		if len(calls[i].IDs) != wantLen {
			t.Errorf("call %d carried %d ids, want %d", i, len(calls[i].IDs), wantLen)
		}
	}

	// The union of all batches must be exactly the stale set.
	got := make(map[string]struct{})
	for _, call := range calls {
		for _, id := range call.IDs {
			if _, dup := got[id]; dup {
				t.Errorf("id %s deleted twice", id)
			}
			got[id] = struct{}{}
		}
	}
	if len(got) != len(want) {
		t.Fatalf("deleted %d distinct ids, want %d", len(got), len(want))
	}
	for id := range want {
		if _, ok := got[id]; !ok {
			t.Errorf("stale id %s never deleted", id)
		}
	}

	rows = store.Rows("cache_v1_disks")
	if len(rows) != 1 || rows[0].ID != "keep-1" {
		t.Errorf("surviving rows = %+v, want only keep-1", rows)
	}
}

func TestSweep_DedupesCollidingTableNames(t *testing.T) {
	// "aws/instances" and "aws:instances" sanitize to the same physical
	// table. The second visit must be skipped without a scan, a delete,
	// or a metric sample.
	store := storage.NewMemoryStore()
	store.SeedTable("cache_v1_aws_instances",
		cache.Row{ID: "i-1", Owner: "instanceAgent"},
		cache.Row{ID: "i-2", Owner: "goneAgent"},
	)

	catalog := catalogOf(cachingAgent("instanceAgent", "aws/instances", "aws:instances"))
	sweeper, reg := newTestSweeper(t, store, catalog, nil)

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if result.DataTypes != 2 {
		t.Errorf("DataTypes = %d, want 2", result.DataTypes)
	}
	if result.TablesSwept != 2 {
		t.Errorf("TablesSwept = %d, want 2", result.TablesSwept)
	}
	if result.TablesSkipped != 2 {
		t.Errorf("TablesSkipped = %d, want 2", result.TablesSkipped)
	}
	if result.RowsDeleted != 1 {
		t.Errorf("RowsDeleted = %d, want 1", result.RowsDeleted)
	}

	if calls := store.DeleteCalls(); len(calls) != 1 {
		t.Errorf("delete statements = %d, want 1", len(calls))
	}

	// Only the first data type (sorted order: "aws/instances") produced
	// samples; the deduped one produced none.
	expected := `
# HELP test_sweeper_deleted_rows_total Total number of orphaned rows deleted
# TYPE test_sweeper_deleted_rows_total counter
test_sweeper_deleted_rows_total{data_type="aws/instances",table_kind="primary"} 1
test_sweeper_deleted_rows_total{data_type="aws/instances",table_kind="relationship"} 0
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_sweeper_deleted_rows_total"); err != nil {
		t.Errorf("unexpected deleted_rows metrics: %v", err)
	}
}

func TestSweep_MissingTablesCountAsClean(t *testing.T) {
	store := storage.NewMemoryStore()

	catalog := catalogOf(cachingAgent("imageAgent", "images"))
	sweeper, reg := newTestSweeper(t, store, catalog, nil)

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if result.TablesSwept != 2 {
		t.Errorf("TablesSwept = %d, want 2", result.TablesSwept)
	}
	if result.RowsDeleted != 0 {
		t.Errorf("RowsDeleted = %d, want 0", result.RowsDeleted)
	}

	// Zero-valued samples are still emitted for visited tables.
	expected := `
# HELP test_sweeper_deleted_rows_total Total number of orphaned rows deleted
# TYPE test_sweeper_deleted_rows_total counter
test_sweeper_deleted_rows_total{data_type="images",table_kind="primary"} 0
test_sweeper_deleted_rows_total{data_type="images",table_kind="relationship"} 0
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_sweeper_deleted_rows_total"); err != nil {
		t.Errorf("unexpected deleted_rows metrics: %v", err)
	}
}

func TestSweep_IsolatesDataTypeFailures(t *testing.T) {
	store := storage.NewMemoryStore()
	store.SeedTable("cache_v1_alpha",
		cache.Row{ID: "a-1", Owner: "goneAgent"},
	)
	store.SeedTable("cache_v1_gamma",
		cache.Row{ID: "g-1", Owner: "goneAgent"},
		cache.Row{ID: "g-2", Owner: "keeper"},
	)
	store.FailScan("cache_v1_beta", errors.New("disk I/O error"))

	catalog := catalogOf(cachingAgent("keeper", "alpha", "beta", "gamma"))
	sweeper, reg := newTestSweeper(t, store, catalog, nil)

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v, want contained failure", err)
	}

	if result.Failures != 1 {
		t.Errorf("Failures = %d, want 1", result.Failures)
	}
	if result.RowsDeleted != 2 {
		t.Errorf("RowsDeleted = %d, want 2 (alpha and gamma still swept)", result.RowsDeleted)
	}
	if len(store.Rows("cache_v1_alpha")) != 0 {
		t.Error("alpha orphan survived a run that should have swept it")
	}
	if len(store.Rows("cache_v1_gamma")) != 1 {
		t.Error("gamma table not swept after beta failure")
	}

	expected := `
# HELP test_sweeper_data_type_failures_total Total number of per-data-type failures caught during sweeps
# TYPE test_sweeper_data_type_failures_total counter
test_sweeper_data_type_failures_total{data_type="beta"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_sweeper_data_type_failures_total"); err != nil {
		t.Errorf("unexpected failure metrics: %v", err)
	}

	// Duration is observed for every data type, including the failed one.
	count, err := testutil.GatherAndCount(reg, "test_sweeper_data_type_duration_seconds")
	if err != nil {
		t.Fatalf("gathering duration histogram: %v", err)
	}
	if count != 3 {
		t.Errorf("duration series = %d, want 3", count)
	}
}

func TestSweep_DeleteFailureStopsDataType(t *testing.T) {
	store := storage.NewMemoryStore()
	rows := make([]cache.Row, 0, 150)
	for i := 0; i < 150; i++ {
		rows = append(rows, cache.Row{ID: fmt.Sprintf("v-%03d", i), Owner: "goneAgent"})
	}
	store.SeedTable("cache_v1_volumes", rows...)
	store.FailDelete("cache_v1_volumes", errors.New("lock wait timeout"))

	catalog := catalogOf(cachingAgent("volumeAgent", "volumes"))
	sweeper, _ := newTestSweeper(t, store, catalog, nil)

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v, want contained failure", err)
	}

	if result.Failures != 1 {
		t.Errorf("Failures = %d, want 1", result.Failures)
	}
	// The first chunk failed, so the second was never attempted.
	if calls := store.DeleteCalls(); len(calls) != 1 {
		t.Errorf("delete statements = %d, want 1", len(calls))
	}
	if got := len(store.Rows("cache_v1_volumes")); got != 150 {
		t.Errorf("rows after failed delete = %d, want 150", got)
	}
}

func TestSweep_PingFailureAbortsRun(t *testing.T) {
	store := storage.NewMemoryStore()
	store.SeedTable("cache_v1_images", cache.Row{ID: "img-1", Owner: "goneAgent"})
	store.SetPingError(errors.New("connection refused"))

	catalog := catalogOf(cachingAgent("imageAgent", "images"))
	sweeper, reg := newTestSweeper(t, store, catalog, nil)

	_, err := sweeper.Sweep(context.Background())
	if err == nil {
		t.Fatal("Sweep() succeeded with an unreachable database")
	}

	var setupErr *SetupError
	if !errors.As(err, &setupErr) {
		t.Fatalf("error type = %T, want *SetupError", err)
	}
	if setupErr.Stage != "ping" {
		t.Errorf("Stage = %q, want ping", setupErr.Stage)
	}
	if len(store.DeleteCalls()) != 0 {
		t.Error("rows were deleted despite the aborted run")
	}

	expected := `
# HELP test_sweeper_runs_total Total number of sweep runs by outcome
# TYPE test_sweeper_runs_total counter
test_sweeper_runs_total{outcome="failed"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_sweeper_runs_total"); err != nil {
		t.Errorf("unexpected runs metrics: %v", err)
	}
}

func TestSweep_RefusesEmptyOwnerSet(t *testing.T) {
	store := storage.NewMemoryStore()
	store.SeedTable("cache_v1_images", cache.Row{ID: "img-1", Owner: "imageAgent"})

	// Only non-caching agents: the owner set resolves empty and the run
	// must refuse to classify everything as orphaned.
	catalog := catalogOf(registry.Agent{Type: "auditAgent", Caching: false})
	sweeper, _ := newTestSweeper(t, store, catalog, nil)

	_, err := sweeper.Sweep(context.Background())
	if err == nil {
		t.Fatal("Sweep() succeeded with an empty owner set")
	}

	var setupErr *SetupError
	if !errors.As(err, &setupErr) {
		t.Fatalf("error type = %T, want *SetupError", err)
	}
	if setupErr.Stage != "resolve" {
		t.Errorf("Stage = %q, want resolve", setupErr.Stage)
	}
	if got := len(store.Rows("cache_v1_images")); got != 1 {
		t.Errorf("rows after refused run = %d, want 1", got)
	}
}

func TestSweep_DryRunReportsWithoutDeleting(t *testing.T) {
	store := storage.NewMemoryStore()
	store.SeedTable("cache_v1_images",
		cache.Row{ID: "img-1", Owner: "imageAgent"},
		cache.Row{ID: "img-2", Owner: "goneAgent"},
		cache.Row{ID: "img-3", Owner: "goneAgent"},
	)

	cfg := DefaultConfig()
	cfg.DryRun = true

	catalog := catalogOf(cachingAgent("imageAgent", "images"))
	sweeper, _ := newTestSweeper(t, store, catalog, cfg)

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if !result.DryRun {
		t.Error("Result.DryRun = false, want true")
	}
	if result.StaleRows != 2 {
		t.Errorf("StaleRows = %d, want 2", result.StaleRows)
	}
	if result.RowsDeleted != 0 {
		t.Errorf("RowsDeleted = %d, want 0", result.RowsDeleted)
	}
	if len(store.DeleteCalls()) != 0 {
		t.Error("dry run issued delete statements")
	}
	if got := len(store.Rows("cache_v1_images")); got != 3 {
		t.Errorf("rows after dry run = %d, want 3", got)
	}
}

func TestSweep_SkipsWhenLeaseHeldElsewhere(t *testing.T) {
	store := storage.NewMemoryStore()
	store.SeedTable("cache_v1_images", cache.Row{ID: "img-1", Owner: "goneAgent"})

	ok, err := store.AcquireLease(context.Background(), JobName, "other-instance", time.Minute)
	if err != nil || !ok {
		t.Fatalf("seeding foreign lease: ok=%v err=%v", ok, err)
	}

	cfg := DefaultConfig()
	cfg.LeaseEnabled = true

	catalog := catalogOf(cachingAgent("imageAgent", "images"))
	sweeper, reg := newTestSweeper(t, store, catalog, cfg)

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if !result.Skipped {
		t.Error("Result.Skipped = false, want true")
	}
	if result.LeaseHeld {
		t.Error("Result.LeaseHeld = true, want false")
	}
	if result.TablesSwept != 0 {
		t.Errorf("TablesSwept = %d, want 0", result.TablesSwept)
	}
	if got := len(store.Rows("cache_v1_images")); got != 1 {
		t.Errorf("rows after skipped run = %d, want 1", got)
	}

	count, err := testutil.GatherAndCount(reg, "test_sweeper_deleted_rows_total")
	if err != nil {
		t.Fatalf("gathering deleted_rows: %v", err)
	}
	if count != 0 {
		t.Errorf("deleted_rows series = %d, want 0 for a skipped run", count)
	}

	expected := `
# HELP test_sweeper_runs_total Total number of sweep runs by outcome
# TYPE test_sweeper_runs_total counter
test_sweeper_runs_total{outcome="skipped"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_sweeper_runs_total"); err != nil {
		t.Errorf("unexpected runs metrics: %v", err)
	}
}

func TestSweep_ReleasesLeaseAfterRun(t *testing.T) {
	store := storage.NewMemoryStore()
	store.SeedTable("cache_v1_images", cache.Row{ID: "img-1", Owner: "goneAgent"})

	cfg := DefaultConfig()
	cfg.LeaseEnabled = true

	catalog := catalogOf(cachingAgent("imageAgent", "images"))
	sweeper, _ := newTestSweeper(t, store, catalog, cfg)

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if !result.LeaseHeld {
		t.Error("Result.LeaseHeld = false, want true")
	}
	if result.RowsDeleted != 1 {
		t.Errorf("RowsDeleted = %d, want 1", result.RowsDeleted)
	}

	// The lease must be free again once the run finished.
	ok, err := store.AcquireLease(context.Background(), JobName, "other-instance", time.Minute)
	if err != nil {
		t.Fatalf("AcquireLease() error = %v", err)
	}
	if !ok {
		t.Error("lease still held after the run finished")
	}
}

// blockingStore gates the first ScanRows call so tests can interleave
// work with an in-flight run.
type blockingStore struct {
	*storage.MemoryStore

	started chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func newBlockingStore() *blockingStore {
	return &blockingStore{
		MemoryStore: storage.NewMemoryStore(),
		started:     make(chan struct{}),
		gate:        make(chan struct{}),
	}
}

func (b *blockingStore) ScanRows(ctx context.Context, table, idColumn, ownerColumn string, fn func(cache.Row) error) error {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	return b.MemoryStore.ScanRows(ctx, table, idColumn, ownerColumn, fn)
}

func TestSweep_RejectsConcurrentRuns(t *testing.T) {
	store := newBlockingStore()
	store.SeedTable("cache_v1_images", cache.Row{ID: "img-1", Owner: "imageAgent"})

	catalog := catalogOf(cachingAgent("imageAgent", "images"))
	sweeper, _ := newTestSweeper(t, store, catalog, nil)

	done := make(chan error, 1)
	go func() {
		_, err := sweeper.Sweep(context.Background())
		done <- err
	}()

	select {
	case <-store.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first run never started scanning")
	}

	if _, err := sweeper.Sweep(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("concurrent Sweep() error = %v, want ErrRunInProgress", err)
	}

	close(store.gate)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first Sweep() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first run did not finish")
	}

	// With the first run finished the sweeper accepts work again.
	if _, err := sweeper.Sweep(context.Background()); err != nil {
		t.Errorf("follow-up Sweep() error = %v", err)
	}
}

func TestSweep_OwnershipFrozenPerRun(t *testing.T) {
	store := newBlockingStore()
	store.SeedTable("cache_v1_images",
		cache.Row{ID: "img-1", Owner: "imageAgent"},
		cache.Row{ID: "img-2", Owner: "lateAgent"},
	)

	reg := registry.NewRegistry(catalogOf(cachingAgent("imageAgent", "images")))
	sm, _ := testMetrics(t)
	sweeper := New(store, reg, nil, nil, sm)

	done := make(chan error, 1)
	var result *Result
	go func() {
		var err error
		result, err = sweeper.Sweep(context.Background())
		done <- err
	}()

	select {
	case <-store.started:
	case <-time.After(2 * time.Second):
		t.Fatal("run never started scanning")
	}

	// Ownership was already resolved. Adding lateAgent now must not
	// rescue its rows within the in-flight run.
	reg.Replace(catalogOf(
		cachingAgent("imageAgent", "images"),
		cachingAgent("lateAgent", "images"),
	))
	close(store.gate)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Sweep() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not finish")
	}

	if result.RowsDeleted != 1 {
		t.Errorf("RowsDeleted = %d, want 1 (frozen owner set)", result.RowsDeleted)
	}
	rows := store.Rows("cache_v1_images")
	if len(rows) != 1 || rows[0].Owner != "imageAgent" {
		t.Errorf("surviving rows = %+v, want only imageAgent's", rows)
	}
}

func TestSweep_ContextCancellationAbortsRun(t *testing.T) {
	store := storage.NewMemoryStore()
	store.SeedTable("cache_v1_images", cache.Row{ID: "img-1", Owner: "goneAgent"})

	catalog := catalogOf(cachingAgent("imageAgent", "images"))
	sweeper, reg := newTestSweeper(t, store, catalog, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sweeper.Sweep(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Sweep() error = %v, want context.Canceled", err)
	}
	if got := len(store.Rows("cache_v1_images")); got != 1 {
		t.Errorf("rows after cancelled run = %d, want 1", got)
	}

	expected := `
# HELP test_sweeper_runs_total Total number of sweep runs by outcome
# TYPE test_sweeper_runs_total counter
test_sweeper_runs_total{outcome="failed"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_sweeper_runs_total"); err != nil {
		t.Errorf("unexpected runs metrics: %v", err)
	}
}

func TestSweeper_SchedulingDefaults(t *testing.T) {
	store := storage.NewMemoryStore()
	catalog := catalogOf(cachingAgent("imageAgent", "images"))
	sweeper, _ := newTestSweeper(t, store, catalog, nil)

	if got := sweeper.Name(); got != "orphaned-row-sweeper" {
		t.Errorf("Name() = %q, want orphaned-row-sweeper", got)
	}
	if got := sweeper.Interval(); got != 2*time.Minute {
		t.Errorf("Interval() = %v, want 2m", got)
	}
	if got := sweeper.Timeout(); got != time.Minute {
		t.Errorf("Timeout() = %v, want 1m", got)
	}

	custom, _ := newTestSweeper(t, store, catalog, &Config{
		Interval: 5 * time.Minute,
		Timeout:  30 * time.Second,
	})
	if got := custom.Interval(); got != 5*time.Minute {
		t.Errorf("custom Interval() = %v, want 5m", got)
	}
	if got := custom.Timeout(); got != 30*time.Second {
		t.Errorf("custom Timeout() = %v, want 30s", got)
	}
}

func TestSweeper_RunReturnsSweepError(t *testing.T) {
	store := storage.NewMemoryStore()
	store.SetPingError(errors.New("connection refused"))

	catalog := catalogOf(cachingAgent("imageAgent", "images"))
	sweeper, _ := newTestSweeper(t, store, catalog, nil)

	if err := sweeper.Run(context.Background()); err == nil {
		t.Error("Run() = nil, want setup error")
	}
}
