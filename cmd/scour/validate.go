package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/scour-hq/scour/pkg/cache"
	"github.com/scour-hq/scour/pkg/cli"
	"github.com/scour-hq/scour/pkg/config"
	"github.com/scour-hq/scour/pkg/registry"
)

var validateFlags struct {
	showTables bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and catalog",
	Long: `Check the configuration file and the agent catalog without touching
the database.

The validate command loads and validates both files, then reports the
catalog shape the sweeper would operate on: providers, agents, data
types, and the physical cache tables derived from them. Data types
whose names sanitize to the same physical table are flagged, since
they share rows and are swept together.

Examples:
  # Validate the default config and its catalog
  scour validate

  # Validate an alternate config
  scour validate --config /etc/scour/config.yaml

  # Also list every derived table name
  scour validate --show-tables`,
	RunE: validateSetup,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.showTables, "show-tables", false, "list every derived cache table name")
}

func validateSetup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	fmt.Printf("✓ Configuration valid (%s)\n", cfgFile)

	catalog, err := registry.LoadCatalog(cfg.Registry.CatalogPath)
	if err != nil {
		return cli.NewConfigError("registry.catalog_path", fmt.Sprintf("failed to load catalog: %v", err))
	}
	fmt.Printf("✓ Catalog valid (%s)\n", cfg.Registry.CatalogPath)
	fmt.Println()

	cachingAgents := catalog.CachingAgents()

	dataTypes := make(map[string]struct{})
	for _, agent := range cachingAgents {
		for _, dt := range agent.DataTypes {
			if dt.Authoritative {
				dataTypes[dt.Name] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(dataTypes))
	for name := range dataTypes {
		names = append(names, name)
	}
	sort.Strings(names)

	naming := cache.TableNaming{
		Prefix:        cfg.Sweeper.TablePrefix,
		SchemaVersion: cfg.Sweeper.SchemaVersion,
	}

	// Data types whose names differ only in sanitized characters collapse
	// onto one physical table.
	tableOwners := make(map[string][]string)
	tables := make([]string, 0, len(names)*2)
	for _, name := range names {
		for _, kind := range cache.Kinds() {
			table := kind.TableName(naming, name)
			if len(tableOwners[table]) == 0 {
				tables = append(tables, table)
			}
			tableOwners[table] = append(tableOwners[table], name)
		}
	}

	fmt.Printf("Providers:      %d\n", len(catalog.Providers))
	fmt.Printf("Agents:         %d (%d caching)\n", catalog.AgentCount(), len(cachingAgents))
	fmt.Printf("Data types:     %d\n", len(names))
	fmt.Printf("Cache tables:   %d\n", len(tables))

	if len(cachingAgents) == 0 {
		fmt.Println()
		fmt.Println("! No caching agents: every sweep would abort rather than treat all rows as orphaned")
	}

	collisions := 0
	for _, table := range tables {
		owners := tableOwners[table]
		if len(owners) > 1 {
			if collisions == 0 {
				fmt.Println()
			}
			collisions++
			fmt.Printf("! Shared table %s: data types %v\n", table, owners)
		}
	}

	if validateFlags.showTables {
		fmt.Println()
		fmt.Println("Tables:")
		sort.Strings(tables)
		for _, table := range tables {
			fmt.Printf("  %s\n", table)
		}
	}

	fmt.Println()
	if collisions > 0 {
		fmt.Printf("Summary: valid, %d shared table(s) will be swept once per run\n", collisions)
	} else {
		fmt.Println("Summary: configuration and catalog are valid")
	}

	return nil
}
