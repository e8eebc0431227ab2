package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/platform/resilience"
)

type entry struct {
	value     any
	expiresAt time.Time
}

func (e entry) live(now time.Time) bool {
	return e.expiresAt.IsZero() || e.expiresAt.After(now)
}

// Store is an in-process TTL cache shared by the repository decorators.
// A zero TTL keeps entries until they are deleted.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	flight  resilience.SingleFlight[any]
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupLocked(key)
}

func (s *Store) lookupLocked(key string) (any, bool) {
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !e.live(s.now()) {
		delete(s.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under the default TTL, or ttl when one is given.
func (s *Store) Set(_ context.Context, key string, value any, ttl ...time.Duration) {
	if key == "" {
		return
	}

	s.mu.Lock()
	s.entries[key] = s.entryFor(value, ttl)
	s.mu.Unlock()
}

// Merge replaces the entry with fn(current) under one lock, so concurrent
// writers cannot interleave a read and a write.
func (s *Store) Merge(_ context.Context, key string, fn func(current any, ok bool) any, ttl ...time.Duration) {
	if key == "" || fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.lookupLocked(key)
	s.entries[key] = s.entryFor(fn(current, ok), ttl)
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *Store) entryFor(value any, ttl []time.Duration) entry {
	d := s.ttl
	if len(ttl) > 0 {
		d = ttl[0]
	}
	e := entry{value: value}
	if d > 0 {
		e.expiresAt = s.now().Add(d)
	}
	return e
}

// GetOrLoad runs loader at most once per key across concurrent callers and
// caches its result. Loader errors are not cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Fetch is GetOrLoad with a typed result. A cached value of another type is
// treated as a miss and reloaded.
func Fetch[T any](ctx context.Context, s *Store, key string, loader func(context.Context) (T, error)) (T, error) {
	var zero T
	if cached, ok := s.Get(ctx, key); ok {
		if typed, ok := cached.(T); ok {
			return typed, nil
		}
		s.Delete(ctx, key)
	}

	value, err := s.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("cache key %s holds %T", key, value)
	}
	return typed, nil
}
