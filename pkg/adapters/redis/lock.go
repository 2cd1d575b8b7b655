package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/accelerate/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")
)

// unlockScript deletes the lock only if it still holds our token.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// renewScript extends the lock only if it still holds our token.
const renewScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`

// Locker implements ports.KeepAliveLocker using Redis.
// A held lock is renewed every third of its ttl until it is released, so a run may
// outlast the ttl; the ttl only bounds how long a crashed holder blocks others.
type Locker struct {
	client   *backend.Client
	prefix   string
	interval time.Duration
}

var _ ports.KeepAliveLocker = (*Locker)(nil)

// NewLocker creates a Redis locker whose keys live under prefix + "lock:".
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client:   client,
		prefix:   prefix,
		interval: 100 * time.Millisecond,
	}
}

// Key returns the Redis key that holds the lock for key.
func (l *Locker) Key(key string) string {
	return l.prefix + "lock:" + key
}

// Lock acquires the lock for key, polling until it is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	return l.LockKeepAlive(ctx, key, ttl, nil)
}

// LockKeepAlive is Lock with a callback for a lock that could not be renewed.
func (l *Locker) LockKeepAlive(ctx context.Context, key string, ttl time.Duration, lost func(error)) (ports.UnlockFunc, error) {
	lockKey := l.Key(key)
	token := uuid.NewString()

	if err := l.acquire(ctx, lockKey, token, ttl); err != nil {
		return nil, err
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	if ttl > 0 {
		go func() {
			defer close(done)
			l.keepAlive(lockKey, token, ttl, stop, lost)
		}()
	} else {
		close(done)
	}

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() { close(stop) })
		<-done
		return l.client.Eval(ctx, unlockScript, []string{lockKey}, token).Err()
	}, nil
}

func (l *Locker) acquire(ctx context.Context, lockKey, token string, ttl time.Duration) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %v", ErrLockAcquire, err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// keepAlive renews the lock until stop is closed. It gives up, reporting to lost,
// once the token is gone or no renewal succeeded for a whole ttl.
func (l *Locker) keepAlive(lockKey, token string, ttl time.Duration, stop <-chan struct{}, lost func(error)) {
	every := max(ttl/3, time.Millisecond)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	renewed := time.Now()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), every)
		n, err := l.client.Eval(ctx, renewScript, []string{lockKey}, token, ttl.Milliseconds()).Int()
		cancel()

		switch {
		case err == nil && n == 1:
			renewed = time.Now()
		case err == nil:
			report(lost, fmt.Errorf("%s expired or is held by another owner", lockKey))
			return
		case time.Since(renewed) >= ttl:
			report(lost, fmt.Errorf("%s not renewed within %s: %w", lockKey, ttl, err))
			return
		}
	}
}

func report(lost func(error), err error) {
	if lost != nil {
		lost(err)
	}
}
