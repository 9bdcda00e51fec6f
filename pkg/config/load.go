package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is unmarshalled on top of DefaultConfig, so absent fields keep
// their defaults; the result is validated before being returned. The
// configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Map-valued sections (database pools) bypass the default struct, so a
	// second defaulting pass is still required.
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention SCOUR_SECTION_FIELD (e.g., SCOUR_SWEEPER_INTERVAL).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML over defaults
// 2. Apply environment variable overrides
// 3. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format SCOUR_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("SCOUR_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}

	// Registry overrides
	if val := os.Getenv("SCOUR_REGISTRY_CATALOG_PATH"); val != "" {
		cfg.Registry.CatalogPath = val
	}
	if val := os.Getenv("SCOUR_REGISTRY_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Registry.Watch = b
		}
	}

	// Sweeper overrides
	if val := os.Getenv("SCOUR_SWEEPER_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Sweeper.Enabled = b
		}
	}
	if val := os.Getenv("SCOUR_SWEEPER_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Sweeper.Interval = d
		}
	}
	if val := os.Getenv("SCOUR_SWEEPER_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Sweeper.Timeout = d
		}
	}
	if val := os.Getenv("SCOUR_SWEEPER_TABLE_PREFIX"); val != "" {
		cfg.Sweeper.TablePrefix = val
	}
	if val := os.Getenv("SCOUR_SWEEPER_POOL"); val != "" {
		cfg.Sweeper.Pool = val
	}
	if val := os.Getenv("SCOUR_SWEEPER_DRY_RUN"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Sweeper.DryRun = b
		}
	}
	if val := os.Getenv("SCOUR_SWEEPER_LEASE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Sweeper.Lease.Enabled = b
		}
	}
	if val := os.Getenv("SCOUR_SWEEPER_LEASE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Sweeper.Lease.TTL = d
		}
	}

	// Database overrides. Pool entries are dynamic, so only the pool the
	// sweeper routes to can be overridden; this covers the common case of
	// injecting a secret DSN in a container environment.
	if val := os.Getenv("SCOUR_DATABASE_DSN"); val != "" {
		if pool, ok := cfg.Database.Pools[cfg.Sweeper.Pool]; ok {
			pool.DSN = val
			cfg.Database.Pools[cfg.Sweeper.Pool] = pool
		}
	}
	if val := os.Getenv("SCOUR_DATABASE_DRIVER"); val != "" {
		if pool, ok := cfg.Database.Pools[cfg.Sweeper.Pool]; ok {
			pool.Driver = val
			cfg.Database.Pools[cfg.Sweeper.Pool] = pool
		}
	}

	// Telemetry overrides
	if val := os.Getenv("SCOUR_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("SCOUR_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("SCOUR_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
