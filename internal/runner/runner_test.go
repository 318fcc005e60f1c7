package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zipscout/zipscout/internal/browser"
	"github.com/zipscout/zipscout/internal/config"
	"github.com/zipscout/zipscout/internal/runner"
	"github.com/zipscout/zipscout/internal/search"
	"github.com/zipscout/zipscout/internal/store"
)

// scriptedResolver resolves units from a fixed outcome map.
type scriptedResolver struct {
	mu       sync.Mutex
	outcomes map[store.WorkUnit]store.Outcome
	calls    map[store.WorkUnit]int
}

func (r *scriptedResolver) ResolveWithRetry(_ context.Context, _ func() browser.Session, unit store.WorkUnit, _ search.UnitRetryPolicy) store.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[store.WorkUnit]int{}
	}
	r.calls[unit]++
	if out, ok := r.outcomes[unit]; ok {
		return out
	}
	return store.Outcome{Unit: unit, Status: store.StatusNotFound}
}

func noSession() browser.Session { return nil }

func writeMaster(t *testing.T, dir string, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, "master.csv")
	content := "zipcode,state,address,city\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func baseConfig(dir, master string) config.Config {
	return config.Config{
		MasterPath:      master,
		OutputDir:       dir,
		TotalShards:     1,
		MaxPerShard:     100,
		Concurrency:     2,
		CheckpointEvery: 1,
		UnitTimeout:     5 * time.Second,
	}
}

func TestRunPersistsOutcomes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	master := writeMaster(t, dir,
		"10001,NY,,",
		"10002,NY,,",
		"10003,NY,,",
	)

	resolver := &scriptedResolver{outcomes: map[store.WorkUnit]store.Outcome{
		{Zipcode: "10001", State: "NY"}: {
			Unit:        store.WorkUnit{Zipcode: "10001", State: "NY"},
			AddressLine: "421 8th Ave",
			City:        "New York",
			Status:      store.StatusValid,
		},
		{Zipcode: "10003", State: "NY"}: {
			Unit:        store.WorkUnit{Zipcode: "10003", State: "NY"},
			Status:      store.StatusError,
			ErrorDetail: "nav timeout",
		},
	}}

	r := &runner.Runner{
		Cfg:        baseConfig(dir, master),
		Resolver:   resolver,
		NewSession: noSession,
		Logf:       func(string, ...any) {},
	}

	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Selected != 3 || sum.Valid != 1 || sum.NotFound != 1 || sum.Errors != 1 {
		t.Fatalf("summary = %+v", sum)
	}

	tab, err := store.Load(filepath.Join(dir, "shard_0.csv"))
	if err != nil {
		t.Fatal(err)
	}
	valid, _ := tab.Lookup(store.WorkUnit{Zipcode: "10001", State: "NY"})
	if valid.Address != "421 8th Ave" || valid.City != "New York" {
		t.Fatalf("valid row = %#v", valid)
	}
	nf, _ := tab.Lookup(store.WorkUnit{Zipcode: "10002", State: "NY"})
	if nf.Address != store.SentinelNotFound {
		t.Fatalf("not-found row = %#v", nf)
	}
	errRow, _ := tab.Lookup(store.WorkUnit{Zipcode: "10003", State: "NY"})
	if errRow.Address != store.SentinelError {
		t.Fatalf("error row = %#v", errRow)
	}
}

func TestRunEachUnitResolvedOnce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var rows []string
	for i := 0; i < 7; i++ {
		rows = append(rows, "6060"+string(rune('0'+i))+",IL,,")
	}
	master := writeMaster(t, dir, rows...)

	resolver := &scriptedResolver{}
	cfg := baseConfig(dir, master)
	cfg.Concurrency = 3

	r := &runner.Runner{Cfg: cfg, Resolver: resolver, NewSession: noSession, Logf: func(string, ...any) {}}
	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Selected != 7 {
		t.Fatalf("selected %d", sum.Selected)
	}

	resolver.mu.Lock()
	defer resolver.mu.Unlock()
	if len(resolver.calls) != 7 {
		t.Fatalf("resolved %d distinct units", len(resolver.calls))
	}
	for u, n := range resolver.calls {
		if n != 1 {
			t.Fatalf("unit %s resolved %d times", u, n)
		}
	}
}

func TestRunShardOwnsOnlyItsSlice(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	master := writeMaster(t, dir,
		"10001,NY,,",
		"10002,NY,,",
	)

	cfg := baseConfig(dir, master)
	cfg.TotalShards = 2
	cfg.ShardIndex = 0
	cfg.MaxPerShard = 1

	resolver := &scriptedResolver{}
	r := &runner.Runner{Cfg: cfg, Resolver: resolver, NewSession: noSession, Logf: func(string, ...any) {}}
	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Selected != 1 {
		t.Fatalf("selected %d", sum.Selected)
	}

	tab, err := store.Load(filepath.Join(dir, "shard_0.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if tab.Len() != 1 {
		t.Fatalf("shard table has %d rows", tab.Len())
	}
	if _, ok := tab.Lookup(store.WorkUnit{Zipcode: "10001", State: "NY"}); !ok {
		t.Fatal("shard 0 should own 10001")
	}
}

func TestRunInterruptSkipsFinalFlush(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	master := writeMaster(t, dir, "10001,NY,,", "10002,NY,,")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resolver := &scriptedResolver{}
	r := &runner.Runner{Cfg: baseConfig(dir, master), Resolver: resolver, NewSession: noSession, Logf: func(string, ...any) {}}
	sum, err := r.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Interrupted {
		t.Fatal("expected interrupted summary")
	}

	// Seeding already wrote pending rows; no outcome may have landed.
	tab, err := store.Load(filepath.Join(dir, "shard_0.csv"))
	if err != nil {
		t.Fatal(err)
	}
	for _, row := range tab.Rows() {
		if !row.Pending() {
			t.Fatalf("outcome flushed past checkpoint: %#v", row)
		}
	}
}

func TestRunEmptySelection(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	master := writeMaster(t, dir, "10001,NY,421 8th Ave,New York")

	r := &runner.Runner{
		Cfg:        baseConfig(dir, master),
		Resolver:   &scriptedResolver{},
		NewSession: noSession,
		Logf:       func(string, ...any) {},
	}
	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Selected != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	if _, err := os.Stat(filepath.Join(dir, "shard_0.csv")); !os.IsNotExist(err) {
		t.Fatal("no shard table should be created for an empty selection")
	}
}
