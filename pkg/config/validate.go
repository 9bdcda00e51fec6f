package config

import (
	"fmt"
	"net"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "sweeper.interval").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateDatabase(&cfg.Database)...)
	errs = append(errs, validateRegistry(&cfg.Registry)...)
	errs = append(errs, validateSweeper(cfg)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates the admin server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid host:port address: %v", err),
		})
	}

	return errs
}

// validateDatabase validates the pool definitions.
func validateDatabase(cfg *DatabaseConfig) []FieldError {
	var errs []FieldError

	if len(cfg.Pools) == 0 {
		errs = append(errs, FieldError{
			Field:   "database.pools",
			Message: "at least one database pool is required",
		})
		return errs
	}

	for name, pool := range cfg.Pools {
		field := func(f string) string { return fmt.Sprintf("database.pools.%s.%s", name, f) }

		if pool.Driver == "" {
			errs = append(errs, FieldError{Field: field("driver"), Message: "driver is required"})
		}
		if pool.DSN == "" {
			errs = append(errs, FieldError{Field: field("dsn"), Message: "dsn is required"})
		}
		if pool.MaxOpenConns <= 0 {
			errs = append(errs, FieldError{Field: field("max_open_conns"), Message: "must be positive"})
		}
		if pool.MaxIdleConns < 0 {
			errs = append(errs, FieldError{Field: field("max_idle_conns"), Message: "must not be negative"})
		}
		if pool.MaxIdleConns > pool.MaxOpenConns {
			errs = append(errs, FieldError{
				Field:   field("max_idle_conns"),
				Message: "must not exceed max_open_conns",
			})
		}
	}

	return errs
}

// validateRegistry validates the catalog settings.
func validateRegistry(cfg *RegistryConfig) []FieldError {
	var errs []FieldError

	if cfg.CatalogPath == "" {
		errs = append(errs, FieldError{
			Field:   "registry.catalog_path",
			Message: "catalog path is required",
		})
	}

	return errs
}

// validateSweeper validates the sweep settings. It takes the whole Config
// because the pool reference crosses sections.
func validateSweeper(cfg *Config) []FieldError {
	var errs []FieldError
	sw := &cfg.Sweeper

	if sw.Interval <= 0 {
		errs = append(errs, FieldError{Field: "sweeper.interval", Message: "must be positive"})
	}
	if sw.Timeout <= 0 {
		errs = append(errs, FieldError{Field: "sweeper.timeout", Message: "must be positive"})
	}

	if sw.TablePrefix == "" {
		errs = append(errs, FieldError{Field: "sweeper.table_prefix", Message: "table prefix is required"})
	} else if !isIdentifier(sw.TablePrefix) {
		// The prefix is interpolated into SQL statements, so it is held to
		// identifier characters only.
		errs = append(errs, FieldError{
			Field:   "sweeper.table_prefix",
			Message: "must contain only letters, digits, and underscores",
		})
	}

	if sw.SchemaVersion < 1 {
		errs = append(errs, FieldError{Field: "sweeper.schema_version", Message: "must be at least 1"})
	}

	if sw.Pool == "" {
		errs = append(errs, FieldError{Field: "sweeper.pool", Message: "pool name is required"})
	} else if len(cfg.Database.Pools) > 0 {
		if _, ok := cfg.Database.Pools[sw.Pool]; !ok {
			errs = append(errs, FieldError{
				Field:   "sweeper.pool",
				Message: fmt.Sprintf("references undefined pool %q", sw.Pool),
			})
		}
	}

	if sw.Lease.Enabled {
		if sw.Lease.TTL <= 0 {
			errs = append(errs, FieldError{Field: "sweeper.lease.ttl", Message: "must be positive"})
		} else if sw.Lease.TTL < sw.Timeout {
			errs = append(errs, FieldError{
				Field:   "sweeper.lease.ttl",
				Message: "must be at least sweeper.timeout, or a slow run loses its lease mid-sweep",
			})
		}
	}

	return errs
}

// validateTelemetry validates logging and metrics settings.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid level %q (must be debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid format %q (must be json or text)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "must start with /",
			})
		}
		if cfg.Metrics.Namespace == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.namespace",
				Message: "namespace is required when metrics are enabled",
			})
		}
	}

	return errs
}

// isIdentifier reports whether s contains only SQL identifier characters.
func isIdentifier(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return len(s) > 0
}
