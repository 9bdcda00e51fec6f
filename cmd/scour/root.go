package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile is the configuration path shared by every subcommand.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "scour",
	Short: "Scour - orphaned-row sweeper for cloud-cache databases",
	Long: `Scour deletes cache rows whose owning caching agent no longer exists.

Caching agents populate relational cache tables and stamp every row with
their agent type. When an agent is removed from the catalog, its rows are
never refreshed or expired again. Scour resolves the set of live agents,
scans every cache table, and deletes rows owned by agents that are gone.

For more information, visit: https://github.com/scour-hq/scour`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
}
