package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zipscout/zipscout/internal/store"
)

// mergeCmd returns the merge command: combine shard output tables into one
// file. Later shards win on duplicate keys.
func mergeCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "merge <shard.csv> [shard.csv...]",
		Short: "Merge shard output tables into a single table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.Merge(out, args...); err != nil {
				return err
			}
			fmt.Printf("merged %d shard tables into %s\n", len(args), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "merged.csv", "output table path")
	return cmd
}
