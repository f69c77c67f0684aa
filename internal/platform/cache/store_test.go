package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, ttl time.Duration, opts ...Option) *Store {
	t.Helper()
	store, err := NewStore(ttl, opts...)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestStore_ConcurrentAbsentGets_SingleCompute(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "artifact", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	values := make([]any, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			<-start
			values[i], errs[i] = store.GetOrLoad(context.Background(), "same-key", loader)
		}(i)
	}

	close(start)
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: unexpected error: %v", i, errs[i])
		}
		if values[i] != "artifact" {
			t.Fatalf("worker %d: unexpected value %v", i, values[i])
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_FreshValueSkipsLoader(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_StaleServesOldAndRefreshesInBackground(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	store := newTestStore(t, time.Minute, WithNow(clock.Now))

	var generation atomic.Int32
	loader := func(context.Context) (any, error) {
		return int(generation.Add(1)), nil
	}

	first, err := store.GetOrLoad(context.Background(), "evolution", loader)
	if err != nil {
		t.Fatalf("initial load: %v", err)
	}
	if first != 1 {
		t.Fatalf("unexpected initial value: %v", first)
	}

	clock.Advance(90 * time.Second)

	// Past TTL: the stale artifact comes back without blocking.
	stale, err := store.GetOrLoad(context.Background(), "evolution", loader)
	if err != nil {
		t.Fatalf("stale get: %v", err)
	}
	if stale != 1 {
		t.Fatalf("expected stale value 1, got %v", stale)
	}

	eventually(t, func() bool {
		v, err := store.GetOrLoad(context.Background(), "evolution", loader)
		if err != nil {
			return false
		}
		gen, ok := v.(int)
		return ok && gen > 1
	}, "background refresh never produced a fresh artifact")
}

func TestStore_InvalidateForcesRecompute(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, time.Hour)

	var generation atomic.Int32
	loader := func(context.Context) (any, error) {
		return int(generation.Add(1)), nil
	}

	if _, err := store.GetOrLoad(context.Background(), "ranking", loader); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	store.Invalidate("ranking")

	got, err := store.GetOrLoad(context.Background(), "ranking", loader)
	if err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected recomputed value 2 after invalidate, got %v", got)
	}
}

func TestStore_FailedRecomputeKeepsLastGood(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, time.Hour)
	errLoad := errors.New("source file missing")

	var fail atomic.Bool
	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		calls.Add(1)
		if fail.Load() {
			return nil, errLoad
		}
		return "good", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "summary", loader); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	fail.Store(true)
	store.Invalidate("summary")

	got, err := store.GetOrLoad(context.Background(), "summary", loader)
	if err != nil {
		t.Fatalf("expected fallback to last good artifact, got error: %v", err)
	}
	if got != "good" {
		t.Fatalf("expected last good artifact, got %v", got)
	}

	// The entry stays retryable: a later access recomputes once loading
	// works again.
	fail.Store(false)
	before := calls.Load()
	if _, err := store.GetOrLoad(context.Background(), "summary", loader); err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
	if calls.Load() == before {
		t.Fatal("expected a retry after recovery")
	}
}

func TestStore_FailureWithoutPriorArtifactPropagates(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, time.Minute)
	errLoad := errors.New("unreadable workbook")

	_, err := store.GetOrLoad(context.Background(), "missing", func(context.Context) (any, error) {
		return nil, errLoad
	})
	if !errors.Is(err, errLoad) {
		t.Fatalf("expected loader error, got %v", err)
	}
}

func TestStore_ComputeTimeout(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, time.Minute, WithComputeTimeout(30*time.Millisecond))

	_, err := store.GetOrLoad(context.Background(), "slow", func(ctx context.Context) (any, error) {
		select {
		case <-time.After(time.Second):
			return "late", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	// The key must not stay locked after the timeout.
	got, err := store.GetOrLoad(context.Background(), "slow", func(context.Context) (any, error) {
		return "fast", nil
	})
	if err != nil {
		t.Fatalf("get after timeout: %v", err)
	}
	if got != "fast" {
		t.Fatalf("expected fresh value after timeout, got %v", got)
	}
}

func TestStore_SweepExpired(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	store := newTestStore(t, time.Minute, WithNow(clock.Now))

	loader := func(context.Context) (any, error) { return "v", nil }
	if _, err := store.GetOrLoad(context.Background(), "a", loader); err != nil {
		t.Fatalf("load a: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "b", loader); err != nil {
		t.Fatalf("load b: %v", err)
	}

	clock.Advance(2 * time.Minute)

	if removed := store.SweepExpired(); removed != 2 {
		t.Fatalf("expected 2 entries swept, got %d", removed)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d entries", store.Len())
	}
}

func TestStore_LastStored(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	store := newTestStore(t, time.Minute, WithNow(clock.Now))

	if _, ok := store.LastStored(); ok {
		t.Fatal("expected no stored timestamp before first load")
	}

	if _, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (any, error) {
		return "v", nil
	}); err != nil {
		t.Fatalf("load: %v", err)
	}

	stored, ok := store.LastStored()
	if !ok {
		t.Fatal("expected stored timestamp after load")
	}
	if !stored.Equal(clock.Now()) {
		t.Fatalf("unexpected stored timestamp: %v", stored)
	}
}
