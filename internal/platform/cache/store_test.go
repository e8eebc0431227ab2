package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "list_latest_status_186732484", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "list_latest_status_1", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "list_latest_status_1", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiresEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2015, 8, 29, 18, 0, 0, 0, time.UTC)
	store := NewStore(time.Hour)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	store.Set(ctx, "list_latest_status_1", int64(42))
	store.Set(ctx, "list_latest_status_2", int64(7), 2*time.Hour)

	now = now.Add(90 * time.Minute)
	if _, ok := store.Get(ctx, "list_latest_status_1"); ok {
		t.Fatalf("expected default ttl entry to expire")
	}
	if v, ok := store.Get(ctx, "list_latest_status_2"); !ok || v.(int64) != 7 {
		t.Fatalf("expected custom ttl entry to survive: got=%v ok=%v", v, ok)
	}

	store.Delete(ctx, "list_latest_status_2")
	if _, ok := store.Get(ctx, "list_latest_status_2"); ok {
		t.Fatalf("expected delete to drop entry")
	}
}

func TestStore_MergeIsAtomic(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	ctx := context.Background()
	maxOf := func(candidate int64) func(any, bool) any {
		return func(current any, ok bool) any {
			if prev, isInt := current.(int64); ok && isInt && prev > candidate {
				return prev
			}
			return candidate
		}
	}

	var wg sync.WaitGroup
	for i := int64(1); i <= 64; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			store.Merge(ctx, "list_latest_status_1", maxOf(id))
		}(i)
	}
	wg.Wait()

	if v, ok := store.Get(ctx, "list_latest_status_1"); !ok || v.(int64) != 64 {
		t.Fatalf("expected the highest id to win: got=%v ok=%v", v, ok)
	}
}

func TestFetch_TypedValues(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()
	store.Set(ctx, "managed_lists", 42)

	var calls atomic.Int32
	got, err := Fetch(ctx, store, "managed_lists", func(context.Context) ([]string, error) {
		calls.Add(1)
		return []string{"usau-open"}, nil
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 || got[0] != "usau-open" {
		t.Fatalf("unexpected value: %v", got)
	}

	if _, err := Fetch(ctx, store, "managed_lists", func(context.Context) ([]string, error) {
		calls.Add(1)
		return nil, errors.New("must not reload")
	}); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("loader called %d times, want 1", calls.Load())
	}

	_, err = Fetch(ctx, store, "teams", func(context.Context) (string, error) {
		return "", errors.New("db down")
	})
	if err == nil {
		t.Fatalf("expected loader error")
	}
	if _, ok := store.Get(ctx, "teams"); ok {
		t.Fatalf("loader errors must not be cached")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
