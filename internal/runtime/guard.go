package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/aretw0/accelerate/pkg/ports"
)

// withRun serializes fn against every other run on this engine and, when a Locker
// is configured, against other processes sharing the same backend.
// Compound operations (Redo, Reset) hold the guard for both of their phases.
//
// If the Locker reports the lock as lost, the context given to fn is cancelled with
// domain.ErrLockLost so that no further step starts.
func (e *Engine) withRun(ctx context.Context, fn func(ctx context.Context) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.locker != nil {
		runCtx, cancel := context.WithCancelCause(ctx)
		defer cancel(nil)

		unlock, err := e.lock(runCtx, func(err error) {
			e.logger.ErrorContext(ctx, "run lock lost", "key", e.lockKey, "error", err)
			cancel(fmt.Errorf("%w: %v", domain.ErrLockLost, err))
		})
		if err != nil {
			return fmt.Errorf("failed to acquire run lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				e.logger.WarnContext(ctx, "failed to release run lock", "key", e.lockKey, "error", err)
			}
		}()
		ctx = runCtx
	}

	if err := e.ensureInit(ctx); err != nil {
		return err
	}
	return fn(ctx)
}

// lock takes the run lock, asking for renewal when the Locker supports it.
func (e *Engine) lock(ctx context.Context, lost func(error)) (ports.UnlockFunc, error) {
	if kl, ok := e.locker.(ports.KeepAliveLocker); ok {
		return kl.LockKeepAlive(ctx, e.lockKey, e.lockTTL, lost)
	}
	return e.locker.Lock(ctx, e.lockKey, e.lockTTL)
}

// ensureInit runs the driver's Init once. It has its own mutex so that cursor reads
// do not wait for a run in progress.
func (e *Engine) ensureInit(ctx context.Context) error {
	e.initMu.Lock()
	defer e.initMu.Unlock()

	if e.initialized {
		return nil
	}
	if err := e.driver.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize driver: %w", err)
	}
	e.initialized = true
	return nil
}
