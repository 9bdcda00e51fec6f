// Scour removes orphaned rows from cloud-cache databases.
//
// Cache tables are written by independently scheduled caching agents,
// one owner column per row. When an agent is retired from the catalog,
// its rows linger forever; Scour sweeps them out on a fixed interval.
//
// Usage:
//
//	# Start the sweeping daemon with default configuration
//	scour run
//
//	# Start with a custom configuration file
//	scour run --config /etc/scour/config.yaml
//
//	# Run a single sweep and exit
//	scour sweep
//
//	# Report orphaned rows without deleting anything
//	scour sweep --dry-run
//
//	# Check the configuration and catalog
//	scour validate
//
//	# Show version information
//	scour version
//
// For complete documentation, see: https://github.com/scour-hq/scour
package main

func main() {
	Execute()
}
