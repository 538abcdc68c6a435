package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker coordinates access to a key across processes, e.g. two shells
// sharing one Redis-backed store.
type Locker interface {
	// Lock blocks until the lock for key is held or ctx ends. The lock
	// expires after ttl if never released. The returned UnlockFunc MUST be
	// called to release it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
