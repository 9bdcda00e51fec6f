package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8090"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	// Pool defaults
	DefaultPoolMaxOpenConns    = 10
	DefaultPoolMaxIdleConns    = 5
	DefaultPoolConnMaxLifetime = 30 * time.Minute

	// Registry defaults
	DefaultCatalogPath   = "./catalog.yaml"
	DefaultRegistryWatch = false

	// Sweeper defaults
	DefaultSweeperEnabled = true
	DefaultSweepInterval  = 2 * time.Minute
	DefaultSweepTimeout   = 1 * time.Minute
	DefaultTablePrefix    = "cache"
	DefaultSchemaVersion  = 1
	DefaultSweepPool      = "cache"
	DefaultLeaseEnabled   = false
	DefaultLeaseTTL       = 90 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "scour"
	DefaultMetricsSubsystem = "sweeper"
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values, including the
// per-pool fields yaml unmarshalling cannot default because pool entries
// are map values. This function is idempotent and safe to call multiple
// times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Pool defaults - applied to each pool
	for name, pool := range cfg.Database.Pools {
		if pool.MaxOpenConns == 0 {
			pool.MaxOpenConns = DefaultPoolMaxOpenConns
		}
		if pool.MaxIdleConns == 0 {
			pool.MaxIdleConns = DefaultPoolMaxIdleConns
		}
		if pool.ConnMaxLifetime == 0 {
			pool.ConnMaxLifetime = DefaultPoolConnMaxLifetime
		}
		cfg.Database.Pools[name] = pool
	}

	// Registry defaults
	if cfg.Registry.CatalogPath == "" {
		cfg.Registry.CatalogPath = DefaultCatalogPath
	}

	// Sweeper defaults
	if cfg.Sweeper.Interval == 0 {
		cfg.Sweeper.Interval = DefaultSweepInterval
	}
	if cfg.Sweeper.Timeout == 0 {
		cfg.Sweeper.Timeout = DefaultSweepTimeout
	}
	if cfg.Sweeper.TablePrefix == "" {
		cfg.Sweeper.TablePrefix = DefaultTablePrefix
	}
	if cfg.Sweeper.SchemaVersion == 0 {
		cfg.Sweeper.SchemaVersion = DefaultSchemaVersion
	}
	if cfg.Sweeper.Pool == "" {
		cfg.Sweeper.Pool = DefaultSweepPool
	}
	if cfg.Sweeper.Lease.TTL == 0 {
		cfg.Sweeper.Lease.TTL = DefaultLeaseTTL
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
}
