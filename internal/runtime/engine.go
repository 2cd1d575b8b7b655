package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/aretw0/accelerate/internal/logging"
	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/aretw0/accelerate/pkg/ports"
)

const (
	// DefaultLockKey is the Locker key used when none is configured.
	DefaultLockKey = "accelerate"
	// DefaultLockTTL bounds how long a crashed process can hold the run lock.
	DefaultLockTTL = 10 * time.Minute
)

var _ ports.Accelerator = (*Engine)(nil)

// Engine moves a driver's cursor through an immutable motion catalog.
type Engine struct {
	driver  *adapter
	motions []domain.Motion
	hooks   []domain.LifecycleHooks
	logger  *slog.Logger

	locker  ports.Locker
	lockKey string
	lockTTL time.Duration

	// mu serializes runs; initMu guards the lazy driver Init.
	mu          sync.Mutex
	initMu      sync.Mutex
	initialized bool
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observers. It may be given several times; every
// registered set is notified, in registration order.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = append(e.hooks, hooks)
	}
}

// WithLocker serializes runs across processes using key.
// Empty key and zero ttl fall back to DefaultLockKey and DefaultLockTTL.
func WithLocker(locker ports.Locker, key string, ttl time.Duration) EngineOption {
	return func(e *Engine) {
		e.locker = locker
		if key != "" {
			e.lockKey = key
		}
		if ttl > 0 {
			e.lockTTL = ttl
		}
	}
}

// NewEngine creates an engine for the given driver and motions.
// The motions are copied; the catalog cannot change for the engine's lifetime.
func NewEngine(driver ports.Driver, motions []domain.Motion, opts ...EngineOption) *Engine {
	catalog := make([]domain.Motion, len(motions))
	copy(catalog, motions)

	e := &Engine{
		driver:  newAdapter(driver, len(catalog)),
		motions: catalog,
		logger:  logging.NewNop(),
		lockKey: DefaultLockKey,
		lockTTL: DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Motions returns a copy of the catalog.
func (e *Engine) Motions() []domain.Motion {
	motions := make([]domain.Motion, len(e.motions))
	copy(motions, e.motions)
	return motions
}

// Status returns the driver's current cursor, 0 when nothing was recorded yet.
// It does not wait for a run in progress; it sees the last recorded checkpoint.
func (e *Engine) Status(ctx context.Context) (int, error) {
	if err := e.ensureInit(ctx); err != nil {
		return 0, err
	}
	return e.status(ctx)
}

// Move starts at the current status and executes |delta| motions, "add" motions for a
// positive delta and "sub" motions for a negative one, stopping at the catalog bounds.
func (e *Engine) Move(ctx context.Context, delta int) error {
	return e.withRun(ctx, func(ctx context.Context) error {
		return e.move(ctx, delta)
	})
}

// Goto executes as many motions as needed so that the motion at position is the last
// one applied. Positions outside the catalog are clamped; -1 means none applied.
func (e *Engine) Goto(ctx context.Context, position int) error {
	return e.withRun(ctx, func(ctx context.Context) error {
		start, err := e.status(ctx)
		if err != nil {
			return err
		}
		n := len(e.motions)
		finish := domain.Clamp(position, -1, n-1) + 1
		return e.execute(ctx, start, finish)
	})
}

// Up applies every remaining "add" motion.
func (e *Engine) Up(ctx context.Context) error {
	return e.Move(ctx, math.MaxInt)
}

// Down applies every "sub" motion down to an empty cursor.
func (e *Engine) Down(ctx context.Context) error {
	return e.Move(ctx, math.MinInt)
}

// Add applies the next motion.
func (e *Engine) Add(ctx context.Context) error {
	return e.Move(ctx, domain.Forward.Unit())
}

// Sub reverts the last applied motion.
func (e *Engine) Sub(ctx context.Context) error {
	return e.Move(ctx, domain.Backward.Unit())
}

// Redo reverts the last applied motion and then applies it again.
// With nothing applied there is nothing to redo, and the cursor stays at 0.
func (e *Engine) Redo(ctx context.Context) error {
	return e.withRun(ctx, func(ctx context.Context) error {
		start, err := e.status(ctx)
		if err != nil {
			return err
		}
		start = domain.Clamp(start, 0, len(e.motions))
		back := domain.Offset(start, domain.Backward.Unit(), len(e.motions))
		if err := e.execute(ctx, start, back); err != nil {
			return err
		}
		return e.execute(ctx, back, start)
	})
}

// Reset reverts every applied motion and then applies them all again.
// If reverting fails, nothing is re-applied.
func (e *Engine) Reset(ctx context.Context) error {
	return e.withRun(ctx, func(ctx context.Context) error {
		start, err := e.status(ctx)
		if err != nil {
			return err
		}
		if err := e.execute(ctx, start, 0); err != nil {
			return err
		}
		return e.execute(ctx, 0, start)
	})
}

func (e *Engine) move(ctx context.Context, delta int) error {
	start, err := e.status(ctx)
	if err != nil {
		return err
	}
	n := len(e.motions)
	finish := domain.Offset(domain.Clamp(start, 0, n), delta, n)
	return e.execute(ctx, start, finish)
}

func (e *Engine) status(ctx context.Context) (int, error) {
	status, err := e.driver.Status(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read status: %w", err)
	}
	return status, nil
}
