package memory

import (
	"context"
	"sync"

	"github.com/aretw0/accelerate/pkg/domain"
)

// ExecFunc applies a step for the in-memory driver. Returning an error rejects the step.
type ExecFunc func(ctx context.Context, step domain.Step) error

// Driver implements ports.Driver in memory.
// It records every executed step, in order, and is safe for concurrent use.
type Driver struct {
	mu       sync.RWMutex
	status   int
	recorded bool
	log      []domain.Step
	history  []int
	exec     ExecFunc
}

// Option configures the Driver.
type Option func(*Driver)

// WithExec sets the function used to apply steps.
// By default every step succeeds.
func WithExec(fn ExecFunc) Option {
	return func(d *Driver) {
		d.exec = fn
	}
}

// WithStatus seeds the driver with an already recorded status.
func WithStatus(status int) Option {
	return func(d *Driver) {
		d.status = status
		d.recorded = true
	}
}

// NewDriver creates a new in-memory driver.
func NewDriver(opts ...Option) *Driver {
	d := &Driver{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Status returns the last recorded status.
func (d *Driver) Status(ctx context.Context) (int, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status, d.recorded, nil
}

// SetStatus records the status.
func (d *Driver) SetStatus(ctx context.Context, status int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = status
	d.recorded = true
	d.history = append(d.history, status)
	return nil
}

// Execute applies the step through the configured ExecFunc and logs it on success.
// The lock is not held while the ExecFunc runs.
func (d *Driver) Execute(ctx context.Context, step domain.Step) error {
	if d.exec != nil {
		if err := d.exec(ctx, step); err != nil {
			return err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.log = append(d.log, step)
	return nil
}

// Steps returns a copy of the successfully executed steps, in execution order.
func (d *Driver) Steps() []domain.Step {
	d.mu.RLock()
	defer d.mu.RUnlock()

	steps := make([]domain.Step, len(d.log))
	copy(steps, d.log)
	return steps
}

// History returns every status written so far, oldest first.
func (d *Driver) History() []int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	history := make([]int, len(d.history))
	copy(history, d.history)
	return history
}

// Close is a no-op; it lets the driver be used where an io.Closer is expected.
func (d *Driver) Close() error {
	return nil
}
