package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yurixander/minimal/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed holder can block a key.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Locks serializes read-modify-write cycles per key. Entries are reference
// counted and dropped once nobody holds or waits for them.
type Locks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry

	locker ports.Locker
	ttl    time.Duration
	logger *slog.Logger
}

// LocksOption configures Locks.
type LocksOption func(*Locks)

// WithLocker also takes a cross-process lock while the local one is held.
func WithLocker(locker ports.Locker) LocksOption {
	return func(l *Locks) {
		l.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) LocksOption {
	return func(l *Locks) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithLocksLogger reports unlock failures.
func WithLocksLogger(logger *slog.Logger) LocksOption {
	return func(l *Locks) {
		l.logger = logger
	}
}

// NewLocks returns an empty lock table.
func NewLocks(opts ...LocksOption) *Locks {
	l := &Locks{
		entries: make(map[string]*lockEntry),
		ttl:     DefaultLockTTL,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// acquire gets or creates the entry and increments its reference count.
// The caller must lock entry.mu and call release after unlocking.
func (l *Locks) acquire(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		entry = &lockEntry{}
		l.entries[key] = entry
	}
	entry.refs++
	return entry
}

func (l *Locks) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.entries, key)
	}
}

// Len reports how many keys are currently held or awaited.
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// WithLock runs fn while holding the lock for key.
func (l *Locks) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := l.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		l.release(key)
	}()

	if l.locker != nil {
		unlock, err := l.locker.Lock(ctx, key, l.ttl)
		if err != nil {
			return fmt.Errorf("failed to acquire lock for %s: %w", key, err)
		}
		defer func() {
			// The caller's ctx may already be done; unlocking must still run.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				l.logger.Warn("failed to release lock (will expire via TTL)", "key", key, "err", err)
			}
		}()
	}

	return fn(ctx)
}
