package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/floorpulse/floorpulse/internal/logger"
)

// Entry is a single cached value with its expiry and access metadata.
type Entry struct {
	Data         any
	CreatedAt    time.Time
	ExpiresAt    time.Time
	AccessCount  int64
	LastAccessed time.Time
}

// Stats represents a snapshot of cache statistics.
type Stats struct {
	Size            int     `json:"size"`
	MaxSize         int     `json:"max_size"`
	HitRate         float64 `json:"hit_rate"`
	TotalRequests   uint64  `json:"total_requests"`
	Hits            uint64  `json:"hits"`
	Misses          uint64  `json:"misses"`
	Evictions       uint64  `json:"evictions"`
	ExpiredRemovals uint64  `json:"expired_removals"`
}

// Store is an in-process TTL cache bounded by entry count with LRU eviction.
// Expired entries are removed lazily on read and eagerly by the background
// sweeper. All operations are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry

	maxSize    int
	defaultTTL time.Duration

	hits            uint64
	misses          uint64
	evictions       uint64
	expiredRemovals uint64

	sweepInterval time.Duration
	stop          chan struct{}
	startOnce     sync.Once
	stopOnce      sync.Once
	sweeping      bool
	done          chan struct{}

	// overridable in tests
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithSweepInterval sets how often the background sweeper runs.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// New creates a Store holding at most maxSize entries, with defaultTTL
// applied to entries stored without an explicit TTL.
func New(maxSize int, defaultTTL time.Duration, opts ...Option) *Store {
	if maxSize <= 0 {
		maxSize = 1000
	}
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	s := &Store{
		entries:       make(map[string]*Entry),
		maxSize:       maxSize,
		defaultTTL:    defaultTTL,
		sweepInterval: 5 * time.Minute,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves a value by key. Returns the value and true only if the key
// is present and not expired. An expired entry is removed on the spot and
// counted as both a miss and an expired removal.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, false
	}

	now := s.now()
	if !now.Before(e.ExpiresAt) {
		delete(s.entries, key)
		s.expiredRemovals++
		s.misses++
		return nil, false
	}

	s.hits++
	e.AccessCount++
	e.LastAccessed = now
	return e.Data, true
}

// Set stores a value under key. A ttl of 0 (or negative) uses the store's
// default. Inserting a new key when the store is full evicts the
// least-recently-used entry first; overwriting an existing key never evicts.
func (s *Store) Set(key string, data any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxSize {
		s.evictLRULocked()
	}

	now := s.now()
	s.entries[key] = &Entry{
		Data:         data,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		LastAccessed: now,
	}
}

// evictLRULocked removes the entry with the oldest LastAccessed time.
// Ties are broken by the lexicographically smallest key so eviction order
// is stable within a process. Caller must hold s.mu.
func (s *Store) evictLRULocked() {
	if len(s.entries) == 0 {
		return
	}
	var lruKey string
	var lruTime time.Time
	first := true
	for key, e := range s.entries {
		if first || e.LastAccessed.Before(lruTime) ||
			(e.LastAccessed.Equal(lruTime) && key < lruKey) {
			lruKey = key
			lruTime = e.LastAccessed
			first = false
		}
	}
	delete(s.entries, lruKey)
	s.evictions++
	logger.Debug("evicted LRU cache entry", "key", truncateKey(lruKey))
}

// Delete removes a key and reports whether it was present.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

// DeletePrefix removes every entry whose key starts with prefix and returns
// the number removed.
func (s *Store) DeletePrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Clear removes all entries unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*Entry)
}

// CleanupExpired removes every expired entry and returns the count removed.
// The background sweeper calls this periodically so memory is reclaimed
// even for keys nobody reads again.
func (s *Store) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, e := range s.entries {
		if !e.ExpiresAt.After(now) {
			delete(s.entries, key)
			s.expiredRemovals++
			removed++
		}
	}
	return removed
}

// Len returns the current number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stats returns a snapshot of cache statistics. HitRate is a percentage
// and is 0 when no requests have been made.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.hits + s.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(s.hits) / float64(total) * 100
	}
	return Stats{
		Size:            len(s.entries),
		MaxSize:         s.maxSize,
		HitRate:         hitRate,
		TotalRequests:   total,
		Hits:            s.hits,
		Misses:          s.misses,
		Evictions:       s.evictions,
		ExpiredRemovals: s.expiredRemovals,
	}
}

// StartSweeper launches the periodic expiry sweep goroutine. It runs until
// the context is cancelled or Shutdown is called. Safe to call once.
func (s *Store) StartSweeper(ctx context.Context) {
	s.startOnce.Do(func() {
		s.mu.Lock()
		s.sweeping = true
		s.mu.Unlock()
		go s.sweepLoop(ctx)
	})
}

func (s *Store) sweepLoop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

// sweepOnce runs a single sweep iteration. A failure is logged and never
// fatal; the next tick retries.
func (s *Store) sweepOnce() {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("cache sweep iteration failed", "panic", r)
		}
	}()
	if removed := s.CleanupExpired(); removed > 0 {
		logger.Info("cleaned up expired cache entries", "removed", removed)
	}
}

// Shutdown stops the sweeper, waits for it to exit, and clears all entries.
func (s *Store) Shutdown() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.mu.Lock()
	sweeping := s.sweeping
	s.mu.Unlock()
	if sweeping {
		<-s.done
	}
	s.Clear()
	logger.Info("cache store shutdown complete")
}

func truncateKey(key string) string {
	if len(key) > 50 {
		return key[:50] + "..."
	}
	return key
}
