package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zipscout/zipscout/internal/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the zipscout version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("zipscout " + version.Current)
		},
	}
}
