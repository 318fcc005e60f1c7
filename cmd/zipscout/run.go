package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zipscout/zipscout/internal/archive"
	"github.com/zipscout/zipscout/internal/browser"
	"github.com/zipscout/zipscout/internal/config"
	"github.com/zipscout/zipscout/internal/runner"
	"github.com/zipscout/zipscout/internal/search"
	"github.com/zipscout/zipscout/internal/store"
	"github.com/zipscout/zipscout/internal/version"
)

// runCmd returns the run command: a full shard run against the master table.
func runCmd() *cobra.Command {
	var (
		configPath  string
		shardIndex  int
		totalShards int
		maxPerShard int
		states      string
		headless    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve this shard's pending units and write its output table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			// Flags beat environment; only explicitly set flags apply.
			if cmd.Flags().Changed("shard-index") {
				cfg.ShardIndex = shardIndex
			}
			if cmd.Flags().Changed("total-shards") {
				cfg.TotalShards = totalShards
			}
			if cmd.Flags().Changed("max-per-shard") {
				cfg.MaxPerShard = maxPerShard
			}
			if cmd.Flags().Changed("state") {
				cfg.States = store.ParseStates(states)
			}
			if cmd.Flags().Changed("headless") {
				cfg.Headless = headless
			}
			if cfg.TotalShards < 1 || cfg.ShardIndex < 0 || cfg.ShardIndex >= cfg.TotalShards {
				return fmt.Errorf("shard index %d out of range [0,%d)", cfg.ShardIndex, cfg.TotalShards)
			}
			return runShard(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "run config YAML (default zipscout.yaml if present)")
	cmd.Flags().IntVar(&shardIndex, "shard-index", 0, "this shard's index")
	cmd.Flags().IntVar(&totalShards, "total-shards", 1, "total shard count")
	cmd.Flags().IntVar(&maxPerShard, "max-per-shard", 0, "cap on units processed this run")
	cmd.Flags().StringVar(&states, "state", "", "target states: ALL, NY, or NY,CA")
	cmd.Flags().BoolVar(&headless, "headless", true, "run Chrome headless")
	return cmd
}

func runShard(parent context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stdout, fmt.Sprintf("[shard %d] ", cfg.ShardIndex), log.LstdFlags)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var arc *archive.Archive
	if cfg.ArchivePath != "" {
		runID := fmt.Sprintf("shard%d-%s", cfg.ShardIndex, time.Now().UTC().Format("20060102T150405Z"))
		a, err := archive.Open(cfg.ArchivePath, runID)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer a.Close()
		arc = a
	}

	b := browser.New(ctx, browser.Options{Headless: cfg.Headless})
	defer b.Close()

	orch := &search.Orchestrator{
		Entry: search.EntryPolicy{
			Terms:          cfg.SearchTerms,
			EntriesPerTerm: cfg.EntriesPerTerm,
		},
		NavTimeout:    cfg.NavTimeout,
		ScreenshotDir: cfg.OutputDir,
		Logf:          logger.Printf,
	}

	r := &runner.Runner{
		Cfg:        cfg,
		Resolver:   orch,
		NewSession: b.NewSession,
		Archive:    arc,
		Logf:       logger.Printf,
	}

	logger.Printf("zipscout %s starting", version.Current)
	sum, err := r.Run(ctx)
	if err != nil {
		return err
	}
	printSummary(sum)

	if cfg.CI && sum.Errors > 0 {
		return fmt.Errorf("%d units resolved with errors", sum.Errors)
	}
	return nil
}

func printSummary(sum runner.Summary) {
	fmt.Println()
	color.New(color.Bold).Println("Run summary")
	fmt.Printf("  selected:  %d\n", sum.Selected)
	color.Green("  valid:     %d", sum.Valid)
	color.Yellow("  not found: %d", sum.NotFound)
	if sum.Errors > 0 {
		color.Red("  errors:    %d", sum.Errors)
	} else {
		fmt.Printf("  errors:    %d\n", sum.Errors)
	}
	if sum.Dropped > 0 {
		color.Red("  dropped:   %d", sum.Dropped)
	}
	if sum.Interrupted {
		color.Yellow("  interrupted: progress kept up to the last checkpoint")
	}
}
