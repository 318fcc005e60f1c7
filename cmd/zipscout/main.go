package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zipscout/zipscout/internal/version"
)

func main() {
	// Local overrides only; a missing .env is the normal case.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:     "zipscout",
		Short:   "zipscout resolves a business address for every (zipcode, state) pair in a master table",
		Version: version.Current,
		Long: `zipscout walks a master table of (zipcode, state) pairs, searches an online
map for well-known place types in each zip, extracts and validates a street
address, and persists results into per-shard CSV tables that can be merged.

Runs are sharded and resumable: each shard owns a contiguous slice of the
pending rows and checkpoints its output table as it goes.`,
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(selectCmd())
	rootCmd.AddCommand(repairCmd())
	rootCmd.AddCommand(mergeCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
