package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scour-hq/scour/pkg/cache"
	"github.com/scour-hq/scour/pkg/cache/storage"
	"github.com/scour-hq/scour/pkg/cli"
	"github.com/scour-hq/scour/pkg/config"
	"github.com/scour-hq/scour/pkg/dbpool"
	"github.com/scour-hq/scour/pkg/registry"
	"github.com/scour-hq/scour/pkg/scheduler"
	"github.com/scour-hq/scour/pkg/server"
	"github.com/scour-hq/scour/pkg/sweep"
	"github.com/scour-hq/scour/pkg/telemetry/health"
	"github.com/scour-hq/scour/pkg/telemetry/logging"
	"github.com/scour-hq/scour/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Scour sweeping daemon",
	Long: `Start the Scour daemon: periodic orphaned-row sweeps plus the admin
HTTP server with health, metrics, status, and manual trigger endpoints.

Examples:
  # Start with default config
  scour run

  # Start with custom config
  scour run --config /etc/scour/config.yaml

  # Override the admin listen address
  scour run --listen 0.0.0.0:8090`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override admin listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.SetDefault()

	printBanner(cfg)

	// Database pools
	pools := dbpool.NewManager(cfg.Database)
	defer pools.Close()

	db, err := pools.Pool(cfg.Sweeper.Pool)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("opening database pool: %w", err))
	}
	store := storage.NewSQLStore(db)
	fmt.Printf("✓ Database pool %q ready\n", cfg.Sweeper.Pool)

	// Agent catalog
	catalog, err := registry.LoadCatalog(cfg.Registry.CatalogPath)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("loading catalog: %w", err))
	}
	reg := registry.NewRegistry(catalog)
	fmt.Printf("✓ Catalog loaded (%d providers, %d agents)\n",
		len(catalog.Providers), catalog.AgentCount())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Catalog hot reload
	if cfg.Registry.Watch {
		watcher, err := registry.NewWatcher(registry.WatcherConfig{
			Path: cfg.Registry.CatalogPath,
		}, logger.Slog())
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("creating catalog watcher: %w", err))
		}
		defer watcher.Stop()

		go func() {
			err := watcher.Watch(ctx, func() error {
				reloaded, err := registry.LoadCatalog(cfg.Registry.CatalogPath)
				if err != nil {
					return err
				}
				reg.Replace(reloaded)
				return nil
			})
			if err != nil {
				logger.Error("catalog watcher exited", "error", err)
			}
		}()
		fmt.Println("✓ Catalog watcher started")
	}

	// Metrics
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	// Sweeper
	naming := cache.TableNaming{
		Prefix:        cfg.Sweeper.TablePrefix,
		SchemaVersion: cfg.Sweeper.SchemaVersion,
	}
	sweeper := sweep.New(store, reg, naming, &sweep.Config{
		Interval:     cfg.Sweeper.Interval,
		Timeout:      cfg.Sweeper.Timeout,
		DryRun:       cfg.Sweeper.DryRun,
		LeaseEnabled: cfg.Sweeper.Lease.Enabled,
		LeaseTTL:     cfg.Sweeper.Lease.TTL,
	}, collector.Sweep())

	// Scheduler
	sched := scheduler.New()
	if cfg.Sweeper.Enabled {
		if err := sched.AddJob(sweeper); err != nil {
			return cli.NewCommandError("run", err)
		}
		if err := sched.Start(ctx); err != nil {
			return cli.NewCommandError("run", err)
		}
		defer sched.Stop()
		fmt.Printf("✓ Sweeper scheduled (every %s, timeout %s)\n",
			cfg.Sweeper.Interval, cfg.Sweeper.Timeout)
	} else {
		fmt.Println("✓ Periodic sweeping disabled (manual triggers only)")
	}

	// Health checks
	checker := health.New(0)
	checker.RegisterCheck("database", store.Ping)
	checker.RegisterCheck("catalog", func(ctx context.Context) error {
		if len(reg.Snapshot().CachingAgents()) == 0 {
			return fmt.Errorf("catalog has no caching agents")
		}
		return nil
	})

	// Admin server
	srv := server.NewServer(cfg, server.Dependencies{
		Sweeper:   sweeper,
		Scheduler: sched,
		Registry:  reg,
		Collector: collector,
		Checker:   checker,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	fmt.Println()
	fmt.Printf("✓ Admin server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n",
			cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for shutdown signal or server error
	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Scour stopped")
		return nil
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Scour v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	if cfg.Sweeper.DryRun {
		fmt.Println("! Dry-run mode: orphaned rows are reported, not deleted")
	}
}
