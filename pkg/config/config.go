package config

import "time"

// Config is the root configuration structure for Scour.
// It contains all configuration sections for the admin server, database
// pools, the agent catalog, the sweeper, and telemetry.
type Config struct {
	// Server contains the admin HTTP server configuration (health, metrics,
	// manual sweep trigger).
	Server ServerConfig `yaml:"server"`

	// Database contains the named connection pools the sweeper can route
	// to. Keys are pool names (e.g., "cache").
	Database DatabaseConfig `yaml:"database"`

	// Registry contains the agent catalog location and reload behavior.
	Registry RegistryConfig `yaml:"registry"`

	// Sweeper contains the sweep schedule and table naming settings.
	Sweeper SweeperConfig `yaml:"sweeper"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the admin HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8090").
	// Default: "127.0.0.1:8090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out a response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle limit.
	// Default: 60s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains the named database pools.
type DatabaseConfig struct {
	// Pools maps a pool name to its connection settings. The sweeper
	// selects a pool by name (see SweeperConfig.Pool); additional pools can
	// be declared for tooling that shares this configuration.
	Pools map[string]PoolConfig `yaml:"pools"`
}

// PoolConfig contains connection settings for one database pool.
type PoolConfig struct {
	// Driver is the database/sql driver name.
	// Options: "sqlite" (modernc, pure Go), "sqlite3" (mattn, cgo).
	Driver string `yaml:"driver"`

	// DSN is the driver-specific data source name.
	DSN string `yaml:"dsn"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// ConnMaxLifetime is the maximum amount of time a connection may be
	// reused. Zero means unlimited.
	// Default: 30m
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RegistryConfig contains the agent catalog settings.
type RegistryConfig struct {
	// CatalogPath is the path to the agent catalog YAML file.
	// Default: "./catalog.yaml"
	CatalogPath string `yaml:"catalog_path"`

	// Watch reloads the catalog automatically when the file changes.
	// Default: false
	Watch bool `yaml:"watch"`
}

// SweeperConfig contains the sweep schedule and naming settings.
type SweeperConfig struct {
	// Enabled controls whether the periodic sweep runs at all. When false
	// the daemon still serves health and metrics and accepts manually
	// triggered sweeps.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Interval is the period between scheduled sweep runs.
	// Default: 2m
	Interval time.Duration `yaml:"interval"`

	// Timeout is the per-run budget. A run exceeding it is cancelled; the
	// next scheduled run picks up whatever was left behind.
	// Default: 1m
	Timeout time.Duration `yaml:"timeout"`

	// TablePrefix is the physical table name prefix shared with the
	// caching agents.
	// Default: "cache"
	TablePrefix string `yaml:"table_prefix"`

	// SchemaVersion is the schema version component of physical table
	// names, shared with the caching agents.
	// Default: 1
	SchemaVersion int `yaml:"schema_version"`

	// Pool names the database pool sweeps run against.
	// Default: "cache"
	Pool string `yaml:"pool"`

	// DryRun scans and reports orphaned rows without deleting them.
	// Default: false
	DryRun bool `yaml:"dry_run"`

	// Lease contains the optional cross-instance sweep lease.
	Lease LeaseConfig `yaml:"lease"`
}

// LeaseConfig contains the optional database-backed sweep lease. With the
// lease disabled, concurrent sweeps from multiple instances are safe but
// redundant; the lease suppresses the redundancy.
type LeaseConfig struct {
	// Enabled turns the lease on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// TTL is how long an acquired lease lasts. Must be at least the sweep
	// timeout, otherwise a slow run could lose the lease mid-sweep.
	// Default: 90s
	TTL time.Duration `yaml:"ttl"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "scour"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "sweeper"
	Subsystem string `yaml:"subsystem"`
}

// DefaultConfig returns a configuration populated with every default value.
// LoadConfig unmarshals the file on top of this, so absent fields keep
// their defaults, including booleans that default to true.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:   DefaultListenAddress,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Database: DatabaseConfig{
			Pools: map[string]PoolConfig{},
		},
		Registry: RegistryConfig{
			CatalogPath: DefaultCatalogPath,
			Watch:       DefaultRegistryWatch,
		},
		Sweeper: SweeperConfig{
			Enabled:       DefaultSweeperEnabled,
			Interval:      DefaultSweepInterval,
			Timeout:       DefaultSweepTimeout,
			TablePrefix:   DefaultTablePrefix,
			SchemaVersion: DefaultSchemaVersion,
			Pool:          DefaultSweepPool,
			Lease: LeaseConfig{
				Enabled: DefaultLeaseEnabled,
				TTL:     DefaultLeaseTTL,
			},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  DefaultLoggingLevel,
				Format: DefaultLoggingFormat,
			},
			Metrics: MetricsConfig{
				Enabled:   DefaultMetricsEnabled,
				Path:      DefaultMetricsPath,
				Namespace: DefaultMetricsNamespace,
				Subsystem: DefaultMetricsSubsystem,
			},
		},
	}
}
