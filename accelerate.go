package accelerate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/accelerate/internal/runtime"
	"github.com/aretw0/accelerate/pkg/catalog"
	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/aretw0/accelerate/pkg/drivers"
	"github.com/aretw0/accelerate/pkg/ports"
)

// Version is the release version, overridden at build time with -ldflags.
var Version = "dev"

var _ ports.Accelerator = (*Engine)(nil)

// ErrNoDriver is returned by New when neither WithDriver nor WithTarget is given.
var ErrNoDriver = errors.New("no driver configured: use WithDriver or WithTarget")

// Engine is the high-level entry point for the accelerate library.
// It wraps the internal runtime and owns the driver when it opened it from a target.
type Engine struct {
	runtime *runtime.Engine

	driver  ports.Driver
	closer  io.Closer
	target  string
	motions []domain.Motion
	loaded  bool

	hooks   []domain.LifecycleHooks
	logger  *slog.Logger
	locker  ports.Locker
	lockKey string
	lockTTL time.Duration

	Dir string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithMotions uses the given catalog instead of discovering one in the directory.
func WithMotions(motions []domain.Motion) Option {
	return func(e *Engine) {
		e.motions = motions
		e.loaded = true
	}
}

// WithDriver injects a driver. The caller keeps ownership: Close does not close it.
func WithDriver(d ports.Driver) Option {
	return func(e *Engine) {
		e.driver = d
	}
}

// WithTarget opens the driver registered for the target URL scheme,
// e.g. "sqlite://app.db" or "redis://localhost:6379/0".
func WithTarget(target string) Option {
	return func(e *Engine) {
		e.target = target
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. May be given several times.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = append(e.hooks, hooks)
	}
}

// WithLocker serializes runs across processes. Drivers that share state between
// processes (redis) provide their own locker, used when this option is absent.
func WithLocker(locker ports.Locker, key string, ttl time.Duration) Option {
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

// WithLockKey sets the lock key and ttl without replacing the locker, so a driver's
// own locker can be tuned. Zero values keep the defaults.
func WithLockKey(key string, ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockKey = key
		e.lockTTL = ttl
	}
}

// lockerProvider is implemented by drivers that can lock their own backend.
type lockerProvider interface {
	Locker() ports.Locker
}

// New initializes a new accelerate Engine over the motions found in dir.
func New(dir string, opts ...Option) (*Engine, error) {
	eng := &Engine{Dir: dir}
	for _, opt := range opts {
		opt(eng)
	}

	if !eng.loaded {
		if dir == "" {
			return nil, fmt.Errorf("a motion directory is required when no motions are provided")
		}
		motions, err := catalog.Discover(dir)
		if err != nil {
			return nil, err
		}
		eng.motions = motions
	}

	if eng.driver == nil {
		if eng.target == "" {
			return nil, ErrNoDriver
		}
		d, err := drivers.Open(context.Background(), eng.target)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", eng.target, err)
		}
		eng.driver = d
		eng.closer = d
	}

	if eng.locker == nil {
		if lp, ok := eng.driver.(lockerProvider); ok {
			eng.locker = lp.Locker()
		}
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if dir != "" {
		eng.logger = eng.logger.With("catalog", filepath.Base(dir))
	}

	runtimeOpts := []runtime.EngineOption{runtime.WithLogger(eng.logger)}
	for _, h := range eng.hooks {
		runtimeOpts = append(runtimeOpts, runtime.WithLifecycleHooks(h))
	}
	if eng.locker != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithLocker(eng.locker, eng.lockKey, eng.lockTTL))
	}

	eng.runtime = runtime.NewEngine(eng.driver, eng.motions, runtimeOpts...)
	return eng, nil
}

// Status returns the number of applied motions.
func (e *Engine) Status(ctx context.Context) (int, error) {
	return e.runtime.Status(ctx)
}

// Motions returns a copy of the catalog, in application order.
func (e *Engine) Motions() []domain.Motion {
	return e.runtime.Motions()
}

// Move applies |delta| motions forward (delta > 0) or backward (delta < 0),
// stopping at either end of the catalog.
func (e *Engine) Move(ctx context.Context, delta int) error {
	return e.runtime.Move(ctx, delta)
}

// Goto moves so that the motion at position is the last one applied.
// Use -1 to revert everything.
func (e *Engine) Goto(ctx context.Context, position int) error {
	return e.runtime.Goto(ctx, position)
}

// Up applies every pending motion.
func (e *Engine) Up(ctx context.Context) error {
	return e.runtime.Up(ctx)
}

// Down reverts every applied motion.
func (e *Engine) Down(ctx context.Context) error {
	return e.runtime.Down(ctx)
}

// Add applies the next motion.
func (e *Engine) Add(ctx context.Context) error {
	return e.runtime.Add(ctx)
}

// Sub reverts the last applied motion.
func (e *Engine) Sub(ctx context.Context) error {
	return e.runtime.Sub(ctx)
}

// Redo reverts and re-applies the last applied motion.
func (e *Engine) Redo(ctx context.Context) error {
	return e.runtime.Redo(ctx)
}

// Reset reverts every applied motion and applies them again.
func (e *Engine) Reset(ctx context.Context) error {
	return e.runtime.Reset(ctx)
}

// Driver returns the driver the engine moves.
func (e *Engine) Driver() ports.Driver {
	return e.driver
}

// Close releases the driver if New opened it from a target.
func (e *Engine) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// Create scaffolds a new motion pair in dir from its template and returns it.
func Create(dir, name string) (domain.Motion, error) {
	return catalog.Create(dir, name)
}

// Discover reads the motion catalog in dir.
func Discover(dir string) ([]domain.Motion, error) {
	return catalog.Discover(dir)
}
