// Package config defines Scour's configuration structure, loading, and
// validation.
//
// # Configuration File
//
// Configuration is a single YAML file:
//
//	server:
//	  listen_address: "127.0.0.1:8090"
//
//	database:
//	  pools:
//	    cache:
//	      driver: sqlite
//	      dsn: "data/cache.db?_journal_mode=WAL"
//
//	registry:
//	  catalog_path: "./catalog.yaml"
//	  watch: true
//
//	sweeper:
//	  interval: 2m
//	  timeout: 1m
//	  table_prefix: cache
//	  schema_version: 1
//	  pool: cache
//
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//	  metrics:
//	    enabled: true
//
// Every field has a default; the minimal viable file declares one database
// pool and the catalog path.
//
// # Loading Sequence
//
// LoadConfig unmarshals the file over DefaultConfig, applies the remaining
// defaults, and validates. LoadConfigWithEnvOverrides additionally applies
// SCOUR_SECTION_FIELD environment variables (e.g. SCOUR_SWEEPER_INTERVAL,
// SCOUR_DATABASE_DSN) after the file, then re-validates.
//
// # Validation
//
// Validate collects every violation into a single ValidationError rather
// than stopping at the first, so a bad config file is fixable in one pass.
package config
