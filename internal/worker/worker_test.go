package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zipscout/zipscout/internal/worker"
)

func TestProcessAllRetriesTransient(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	calls := 0

	fn := func(_ context.Context, _ string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls <= 2 {
			return "", worker.Transient(errors.New("try again"))
		}
		return "ok", nil
	}

	out, err := worker.ProcessAll(context.Background(), []string{"10001"}, fn, worker.Options{
		Workers:           1,
		MaxRetries:        3,
		RequestTimeout:    time.Second,
		BackoffInitial:    time.Millisecond,
		BackoffMax:        2 * time.Millisecond,
		BackoffJitterFrac: 0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Err != nil || out[0].Output != "ok" {
		t.Fatalf("unexpected output: %#v", out)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestProcessAllDoesNotRetryPermanent(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	calls := 0

	fn := func(_ context.Context, _ string) (string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return "", errors.New("permanent")
	}

	out, err := worker.ProcessAll(context.Background(), []string{"10001"}, fn, worker.Options{
		Workers:           1,
		MaxRetries:        10,
		BackoffInitial:    time.Millisecond,
		BackoffMax:        time.Millisecond,
		BackoffJitterFrac: 0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Err == nil || out[0].Err.Error() != "permanent" {
		t.Fatalf("unexpected output: %#v", out)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestProcessAllExhaustsRetryBudget(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	calls := 0

	fn := func(_ context.Context, _ string) (string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return "", worker.Transient(errors.New("still down"))
	}

	out, err := worker.ProcessAll(context.Background(), []string{"10001"}, fn, worker.Options{
		Workers:           1,
		MaxRetries:        2,
		BackoffInitial:    time.Millisecond,
		BackoffMax:        time.Millisecond,
		BackoffJitterFrac: 0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Err == nil {
		t.Fatal("expected final error")
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 3 {
		t.Fatalf("expected 1 initial + 2 retries = 3 calls, got %d", calls)
	}
}

func TestProcessAllPreservesInputOrder(t *testing.T) {
	t.Parallel()

	items := []int{0, 1, 2, 3, 4, 5, 6, 7}
	fn := func(_ context.Context, n int) (int, error) {
		// Stagger completions so completion order differs from input order.
		time.Sleep(time.Duration(len(items)-n) * time.Millisecond)
		return n * 10, nil
	}

	out, err := worker.ProcessAll(context.Background(), items, fn, worker.Options{Workers: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, res := range out {
		if res.Input != i || res.Output != i*10 {
			t.Fatalf("slot %d holds %#v", i, res)
		}
	}
}

func TestProcessAllCallbackSeesEveryCompletion(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	seen := map[int]bool{}

	fn := func(_ context.Context, n int) (int, error) { return n, nil }
	onResult := func(res worker.Result[int, int]) {
		mu.Lock()
		seen[res.Input] = true
		mu.Unlock()
	}

	_, err := worker.ProcessAllWithCallback(context.Background(), []int{1, 2, 3}, fn, onResult, worker.Options{Workers: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("callback saw %d items, want 3", len(seen))
	}
}

func TestProcessAllCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := worker.ProcessAll(ctx, []string{"a", "b"}, func(context.Context, string) (string, error) {
		return "", nil
	}, worker.Options{Workers: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
