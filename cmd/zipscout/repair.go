package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zipscout/zipscout/internal/store"
)

// repairCmd returns the repair command: rewrite a table in place with the
// canonical header, short rows backfilled, and unkeyed rows dropped.
func repairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair <table.csv>",
		Short: "Repair a master or shard table in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.Repair(args[0]); err != nil {
				return err
			}
			fmt.Printf("repaired %s\n", args[0])
			return nil
		},
	}
}
