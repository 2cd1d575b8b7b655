package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// Locker defines the interface for cross-process concurrency control.
// It lets several engine instances share one backend without interleaving runs.
type Locker interface {
	// Lock blocks until the lock for key is acquired or ctx is done.
	// The lock expires after ttl if it is never released.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// KeepAliveLocker is a Locker that renews a held lock until it is released.
// lost is called at most once, from another goroutine, when the lock could not be
// renewed in time or is now held by someone else.
type KeepAliveLocker interface {
	Locker
	LockKeepAlive(ctx context.Context, key string, ttl time.Duration, lost func(error)) (UnlockFunc, error)
}
