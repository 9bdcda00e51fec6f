package sweep

import "time"

// JobName is the stable identifier under which the sweeper registers
// with the scheduler and takes its database lease.
const JobName = "orphaned-row-sweeper"

// Default scheduling parameters, consumed by the scheduler when the
// sweeper is registered as a periodic job.
const (
	// DefaultInterval is how often a sweep run starts.
	DefaultInterval = 2 * time.Minute

	// DefaultTimeout bounds a single run. The scheduler cancels the
	// run's context when it elapses.
	DefaultTimeout = 1 * time.Minute

	// DefaultLeaseTTL is how long an acquired sweep lease is honored
	// before other instances may take it over.
	DefaultLeaseTTL = 90 * time.Second
)

// Config holds the sweeper's runtime settings.
type Config struct {
	// Interval is the period between scheduled runs.
	Interval time.Duration

	// Timeout bounds a single run.
	Timeout time.Duration

	// DryRun reports orphaned rows without deleting them.
	DryRun bool

	// LeaseEnabled gates the advisory database lease that suppresses
	// concurrent sweeps from multiple instances. Requires a store that
	// implements cache.LeaseStore.
	LeaseEnabled bool

	// LeaseTTL is the time-to-live of the sweep lease.
	LeaseTTL time.Duration
}

// DefaultConfig returns the sweeper defaults: a two-minute interval, a
// one-minute timeout, deletions enabled, lease disabled.
func DefaultConfig() *Config {
	return &Config{
		Interval: DefaultInterval,
		Timeout:  DefaultTimeout,
		LeaseTTL: DefaultLeaseTTL,
	}
}

// applyDefaults fills zero values with defaults so a partially
// populated Config behaves predictably.
func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = DefaultLeaseTTL
	}
}
