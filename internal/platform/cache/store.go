package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/logging"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/resilience"
)

// ErrTimeout is returned when a computation exceeds the configured bound.
var ErrTimeout = errors.New("cache: compute timed out")

const (
	defaultComputeTimeout = 30 * time.Second
	defaultRefreshWorkers = 4
)

// Loader computes the value for a key. It must be a pure function of the
// underlying sources so results can be memoized on key identity alone.
type Loader func(ctx context.Context) (any, error)

type entry struct {
	value     any
	createdAt time.Time
	// forced marks an entry explicitly invalidated: the next reader blocks
	// on a synchronous recompute instead of the stale-while-revalidate path.
	forced bool
}

// Store memoizes computed artifacts per key.
//
// A key moves through three states: absent (first reader blocks and
// computes), fresh (age below TTL, served directly) and stale (served
// immediately while one background refresh runs). At most one computation
// is in flight per key; concurrent readers of an absent key attach to the
// running one. A failed or timed-out recompute keeps the last good value
// and leaves the entry retryable.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry

	ttl            time.Duration
	computeTimeout time.Duration
	nowFn          func() time.Time

	flight resilience.SingleFlight
	pool   *ants.Pool
	logger *logging.Logger

	lastStore atomic.Int64
}

type Option func(*Store)

// WithNow injects the clock, so tests can move time without sleeping.
func WithNow(nowFn func() time.Time) Option {
	return func(s *Store) {
		if nowFn != nil {
			s.nowFn = nowFn
		}
	}
}

func WithComputeTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.computeTimeout = d
		}
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewStore(ttl time.Duration, opts ...Option) (*Store, error) {
	s := &Store{
		entries:        make(map[string]*entry),
		ttl:            ttl,
		computeTimeout: defaultComputeTimeout,
		nowFn:          time.Now,
		logger:         logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	pool, err := ants.NewPool(defaultRefreshWorkers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create refresh pool: %w", err)
	}
	s.pool = pool

	return s, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// GetOrLoad returns the cached value for key, computing it when needed.
//
// Absent and explicitly invalidated keys block the caller until one shared
// computation finishes. Expired keys return the old value immediately and
// schedule a single background refresh. A recompute failure falls back to
// the last good value when one exists; otherwise the error propagates.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader Loader) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	s.mu.Lock()
	e, ok := s.entries[key]
	if ok && !e.forced && !s.expiredLocked(e) {
		value := e.value
		s.mu.Unlock()
		return value, nil
	}
	if ok && !e.forced {
		// Stale: serve the old artifact, refresh off the request path.
		value := e.value
		s.mu.Unlock()
		s.scheduleRefresh(key, loader)
		return value, nil
	}
	s.mu.Unlock()

	value, err, _ := s.flight.Do(key, func() (any, error) {
		s.mu.Lock()
		if cur, exists := s.entries[key]; exists && !cur.forced && !s.expiredLocked(cur) {
			value := cur.value
			s.mu.Unlock()
			return value, nil
		}
		s.mu.Unlock()

		return s.computeBounded(ctx, key, loader)
	})
	if err != nil {
		if prior, exists := s.lastGood(key); exists {
			s.logger.WarnContext(ctx, "recompute failed, serving last good artifact", "key", key, "error", err)
			return prior, nil
		}
		return nil, err
	}

	return value, nil
}

// Invalidate forces the key out of the fresh state. The value is retained
// as the failure fallback, but the next reader always recomputes.
func (s *Store) Invalidate(key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		e.forced = true
	}
	s.mu.Unlock()
}

func (s *Store) InvalidatePrefix(prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	for key, e := range s.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			e.forced = true
		}
	}
	s.mu.Unlock()
}

func (s *Store) InvalidateAll() {
	s.mu.Lock()
	for _, e := range s.entries {
		e.forced = true
	}
	s.mu.Unlock()
}

// SweepExpired drops entries past their TTL and reports how many were
// removed. Forced entries are kept: they still hold the failure fallback.
func (s *Store) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if !e.forced && s.expiredLocked(e) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// LastStored reports when any key last stored a successful computation.
func (s *Store) LastStored() (time.Time, bool) {
	nanos := s.lastStore.Load()
	if nanos == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, nanos), true
}

func (s *Store) expiredLocked(e *entry) bool {
	if s.ttl <= 0 {
		return false
	}
	return !s.nowFn().Before(e.createdAt.Add(s.ttl))
}

func (s *Store) lastGood(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		return e.value, true
	}
	return nil, false
}

func (s *Store) store(key string, value any) {
	now := s.nowFn()
	s.mu.Lock()
	s.entries[key] = &entry{value: value, createdAt: now}
	s.mu.Unlock()
	s.lastStore.Store(now.UnixNano())
}

// computeBounded runs the loader with a hard deadline. The loader runs in
// its own goroutine so a loader that ignores its context cannot pin the
// key forever; if it eventually succeeds its result still lands, and the
// latest successful store wins.
func (s *Store) computeBounded(ctx context.Context, key string, loader Loader) (any, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.computeTimeout)
	defer cancel()

	type result struct {
		value any
		err   error
	}
	done := make(chan result, 1)

	go func() {
		value, err := loader(ctx)
		if err == nil {
			s.store(key, value)
		}
		done <- result{value: value, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: key %q exceeded %s", ErrTimeout, key, s.computeTimeout)
	}
}

func (s *Store) scheduleRefresh(key string, loader Loader) {
	if s.flight.InFlight(key) {
		return
	}

	task := func() {
		s.flight.DoIfIdle(key, func() (any, error) {
			value, err := s.computeBounded(context.Background(), key, loader)
			if err != nil {
				// Entry stays stale and retries on next access.
				s.logger.Warn("background refresh failed", "key", key, "error", err)
				return nil, err
			}
			return value, nil
		})
	}

	if err := s.pool.Submit(task); err != nil {
		// Pool saturated or released; the stale value keeps serving and the
		// next access retries.
		s.logger.Warn("background refresh not scheduled", "key", key, "error", err)
	}
}
