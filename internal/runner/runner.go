// Package runner drives one shard process end to end: select the shard's
// work units, seed the output table, resolve units in rate-limited batches,
// and checkpoint results so a crash costs at most the batches since the
// last save.
package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zipscout/zipscout/internal/archive"
	"github.com/zipscout/zipscout/internal/browser"
	"github.com/zipscout/zipscout/internal/config"
	"github.com/zipscout/zipscout/internal/search"
	"github.com/zipscout/zipscout/internal/store"
	"github.com/zipscout/zipscout/internal/worker"
)

// Resolver turns one work unit into a terminal outcome. Implemented by
// search.Orchestrator; faked in tests.
type Resolver interface {
	ResolveWithRetry(ctx context.Context, newSession func() browser.Session, unit store.WorkUnit, policy search.UnitRetryPolicy) store.Outcome
}

// Summary is what one shard run produced.
type Summary struct {
	Selected    int
	Valid       int
	NotFound    int
	Errors      int
	Dropped     int
	Interrupted bool
}

// Runner owns the per-shard control loop.
type Runner struct {
	Cfg        config.Config
	Resolver   Resolver
	NewSession func() browser.Session

	// Archive is optional; nil disables archiving.
	Archive *archive.Archive

	// Logf defaults to log.Printf.
	Logf func(format string, args ...any)
}

func (r *Runner) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Run executes the shard. The returned error covers setup and persistence
// failures only; per-unit failures land in the summary and the output
// table, never here.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	cfg := r.Cfg

	units, err := store.SelectWorkUnits(cfg.MasterPath, cfg.Selection())
	if err != nil {
		return Summary{}, fmt.Errorf("select work units: %w", err)
	}
	sum := Summary{Selected: len(units)}
	r.logf("shard %d/%d: %d units selected", cfg.ShardIndex, cfg.TotalShards, len(units))
	if len(units) == 0 {
		return sum, nil
	}

	table, err := store.Seed(cfg.OutputPath(), units)
	if err != nil {
		return Summary{}, fmt.Errorf("seed output table: %w", err)
	}

	policy := search.UnitRetryPolicy{
		MaxRetries:     cfg.MaxUnitRetries,
		BackoffInitial: cfg.BackoffInitial,
		BackoffMax:     cfg.BackoffMax,
		JitterFrac:     0.2,
	}

	process := func(ctx context.Context, unit store.WorkUnit) (store.Outcome, error) {
		return r.Resolver.ResolveWithRetry(ctx, r.NewSession, unit, policy), nil
	}

	// Outcomes are merged into the table from the completion loop, which is
	// single-goroutine, so no locking is needed around the table.
	absorb := func(res worker.Result[store.WorkUnit, store.Outcome]) {
		out := res.Output
		if res.Err != nil {
			// Only cancellation reaches here; record what we know.
			out = store.Outcome{Unit: res.Input, Status: store.StatusError, ErrorDetail: res.Err.Error()}
		}
		switch out.Status {
		case store.StatusValid:
			sum.Valid++
		case store.StatusNotFound:
			sum.NotFound++
		default:
			sum.Errors++
		}
		if !table.Upsert(out) {
			sum.Dropped++
			r.logf("unit %s: no owning row in %s, outcome dropped", out.Unit, cfg.OutputPath())
		}
		if r.Archive != nil {
			if err := r.Archive.Record(out); err != nil {
				r.logf("archive: %v", err)
			}
		}
	}

	checkpointEvery := cfg.CheckpointEvery
	if checkpointEvery < 1 {
		checkpointEvery = 1
	}

	batches := chunk(units, cfg.Concurrency)
	for bi, batch := range batches {
		if ctx.Err() != nil {
			sum.Interrupted = true
			break
		}

		r.logf("batch %d/%d: %d units", bi+1, len(batches), len(batch))
		_, err := worker.ProcessAllWithCallback(ctx, batch, process, absorb, worker.Options{
			Workers:        len(batch),
			RequestTimeout: cfg.UnitTimeout,
			RateLimitRPS:   cfg.RateLimitRPS,
		})
		if err != nil {
			sum.Interrupted = true
			break
		}

		if (bi+1)%checkpointEvery == 0 {
			if err := table.Save(); err != nil {
				return sum, fmt.Errorf("checkpoint save: %w", err)
			}
			r.logf("checkpoint: saved after batch %d", bi+1)
		}

		if bi < len(batches)-1 && cfg.BatchDelay > 0 {
			if !sleepCtx(ctx, cfg.BatchDelay) {
				sum.Interrupted = true
				break
			}
		}
	}

	// An interrupt exits at the last checkpoint; only a clean finish gets
	// the final flush.
	if !sum.Interrupted {
		if err := table.Save(); err != nil {
			return sum, fmt.Errorf("final save: %w", err)
		}
	}

	r.logf("shard %d done: %d valid, %d not found, %d errors, %d dropped (interrupted=%t)",
		cfg.ShardIndex, sum.Valid, sum.NotFound, sum.Errors, sum.Dropped, sum.Interrupted)
	return sum, nil
}

func chunk(units []store.WorkUnit, size int) [][]store.WorkUnit {
	if size < 1 {
		size = 1
	}
	var out [][]store.WorkUnit
	for start := 0; start < len(units); start += size {
		end := start + size
		if end > len(units) {
			end = len(units)
		}
		out = append(out, units[start:end])
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
