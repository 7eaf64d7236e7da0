// Package failmem remembers which translation providers reported that they
// are disabled, per session scope (one browser tab), so that later requests
// in the same scope skip them instead of paying for a doomed round trip.
//
// Entries expire after a TTL. Expiry is lazy: IsDisabled drops a stale entry
// for the pair it is asked about, and MarkDisabled sweeps every stale entry
// before inserting. A scope can also be torn down at once with ForgetScope.
package failmem

import (
	"sync"
	"time"
)

const (
	DefaultTTL        = 3 * time.Hour
	DefaultMaxEntries = 1024
)

type entryKey struct {
	provider string
	scope    string
}

// Store is safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	entries    map[entryKey]time.Time
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTTL sets how long an entry blocks its provider. Non-positive values
// keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxEntries bounds the store. When the bound is reached after a sweep,
// the oldest entry is evicted to make room.
func WithMaxEntries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		entries:    make(map[entryKey]time.Time),
		now:        time.Now,
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured expiry.
func (s *Store) TTL() time.Duration { return s.ttl }

// IsDisabled reports whether provider is disabled in scope. An expired entry
// is removed before answering.
func (s *Store) IsDisabled(provider, scope string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := entryKey{provider, scope}
	at, ok := s.entries[k]
	if !ok {
		return false
	}
	if s.expired(at, s.now()) {
		delete(s.entries, k)
		return false
	}
	return true
}

// MarkDisabled records provider as disabled in scope, refreshing the
// timestamp if an entry already exists.
func (s *Store) MarkDisabled(provider, scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	k := entryKey{provider, scope}
	if _, ok := s.entries[k]; !ok && len(s.entries) >= s.maxEntries {
		s.evictOldestLocked()
	}
	s.entries[k] = now
}

// ForgetScope drops every entry of scope and returns how many were removed.
func (s *Store) ForgetScope(scope string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k := range s.entries {
		if k.scope == scope {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included until
// they are swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// expired is strict: an entry exactly TTL old still blocks.
func (s *Store) expired(at, now time.Time) bool {
	return now.Sub(at) > s.ttl
}

func (s *Store) sweepLocked(now time.Time) {
	for k, at := range s.entries {
		if s.expired(at, now) {
			delete(s.entries, k)
		}
	}
}

func (s *Store) evictOldestLocked() {
	var (
		oldest   entryKey
		oldestAt time.Time
		found    bool
	)
	for k, at := range s.entries {
		if !found || at.Before(oldestAt) {
			oldest, oldestAt, found = k, at, true
		}
	}
	if found {
		delete(s.entries, oldest)
	}
}
