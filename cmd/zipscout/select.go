package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zipscout/zipscout/internal/config"
	"github.com/zipscout/zipscout/internal/store"
)

// selectCmd returns the select command: a dry run that prints the units a
// shard would process without opening a browser or writing anything.
func selectCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Print the work units this shard would process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			units, err := store.SelectWorkUnits(cfg.MasterPath, cfg.Selection())
			if err != nil {
				return err
			}
			for _, u := range units {
				fmt.Println(u)
			}
			fmt.Printf("%d units for shard %d/%d\n", len(units), cfg.ShardIndex, cfg.TotalShards)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "run config YAML (default zipscout.yaml if present)")
	return cmd
}
