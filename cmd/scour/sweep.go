package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scour-hq/scour/pkg/cache"
	"github.com/scour-hq/scour/pkg/cache/storage"
	"github.com/scour-hq/scour/pkg/cli"
	"github.com/scour-hq/scour/pkg/config"
	"github.com/scour-hq/scour/pkg/dbpool"
	"github.com/scour-hq/scour/pkg/registry"
	"github.com/scour-hq/scour/pkg/sweep"
	"github.com/scour-hq/scour/pkg/telemetry/logging"
)

var sweepFlags struct {
	dryRun bool
	format string
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a single sweep and exit",
	Long: `Run one orphaned-row sweep against the configured cache database.

The sweep resolves the live agent set from the catalog, scans every
cache table, and deletes rows owned by agents that no longer exist.

Examples:
  # Sweep once with the configured settings
  scour sweep

  # Report orphaned rows without deleting anything
  scour sweep --dry-run

  # Machine-readable output
  scour sweep --format json`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().BoolVar(&sweepFlags.dryRun, "dry-run", false, "report orphaned rows without deleting them")
	sweepCmd.Flags().StringVar(&sweepFlags.format, "format", "text", "output format: text, json")
}

// sweepOutput is the JSON rendering of a one-shot sweep.
type sweepOutput struct {
	RunID         string `json:"run_id"`
	Skipped       bool   `json:"skipped,omitempty"`
	DryRun        bool   `json:"dry_run,omitempty"`
	DataTypes     int    `json:"data_types"`
	TablesSwept   int    `json:"tables_swept"`
	TablesSkipped int    `json:"tables_skipped"`
	StaleRows     int64  `json:"stale_rows"`
	RowsDeleted   int64  `json:"rows_deleted"`
	Failures      int    `json:"failures"`
	Duration      string `json:"duration"`
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Logs go to stderr so stdout stays clean for the result.
	logger, err := logging.New(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
		Writer: os.Stderr,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.SetDefault()

	pools := dbpool.NewManager(cfg.Database)
	defer pools.Close()

	db, err := pools.Pool(cfg.Sweeper.Pool)
	if err != nil {
		return cli.NewCommandError("sweep", fmt.Errorf("opening database pool: %w", err))
	}
	store := storage.NewSQLStore(db)

	catalog, err := registry.LoadCatalog(cfg.Registry.CatalogPath)
	if err != nil {
		return cli.NewCommandError("sweep", fmt.Errorf("loading catalog: %w", err))
	}
	reg := registry.NewRegistry(catalog)

	naming := cache.TableNaming{
		Prefix:        cfg.Sweeper.TablePrefix,
		SchemaVersion: cfg.Sweeper.SchemaVersion,
	}
	sweeper := sweep.New(store, reg, naming, &sweep.Config{
		Interval:     cfg.Sweeper.Interval,
		Timeout:      cfg.Sweeper.Timeout,
		DryRun:       cfg.Sweeper.DryRun || sweepFlags.dryRun,
		LeaseEnabled: cfg.Sweeper.Lease.Enabled,
		LeaseTTL:     cfg.Sweeper.Lease.TTL,
	}, nil)

	ctx := cli.SetupSignalHandler()
	if cfg.Sweeper.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Sweeper.Timeout)
		defer cancel()
	}

	result, err := sweeper.Sweep(ctx)
	if err != nil {
		return cli.NewCommandError("sweep", err)
	}

	return printSweepResult(result)
}

func printSweepResult(result *sweep.Result) error {
	if sweepFlags.format == string(cli.FormatJSON) {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, sweepOutput{
			RunID:         result.RunID,
			Skipped:       result.Skipped,
			DryRun:        result.DryRun,
			DataTypes:     result.DataTypes,
			TablesSwept:   result.TablesSwept,
			TablesSkipped: result.TablesSkipped,
			StaleRows:     result.StaleRows,
			RowsDeleted:   result.RowsDeleted,
			Failures:      result.Failures,
			Duration:      result.Duration.String(),
		})
	}

	if result.Skipped {
		fmt.Println("Sweep skipped: lease held by another instance")
		return nil
	}

	if result.DryRun {
		fmt.Println("Dry run: orphaned rows were reported, not deleted")
		fmt.Println()
	}

	fmt.Printf("Run ID:         %s\n", result.RunID)
	fmt.Printf("Data types:     %d\n", result.DataTypes)
	fmt.Printf("Tables swept:   %d\n", result.TablesSwept)
	if result.TablesSkipped > 0 {
		fmt.Printf("Tables skipped: %d (shared physical tables)\n", result.TablesSkipped)
	}
	fmt.Printf("Orphaned rows:  %d\n", result.StaleRows)
	fmt.Printf("Rows deleted:   %d\n", result.RowsDeleted)
	if result.Failures > 0 {
		fmt.Printf("Failures:       %d (see logs)\n", result.Failures)
	}
	fmt.Printf("Duration:       %s\n", result.Duration.Round(time.Millisecond))

	return nil
}
