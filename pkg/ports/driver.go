package ports

import (
	"context"

	"github.com/aretw0/accelerate/pkg/domain"
)

// Driver is anything that can be accelerated: a database, a key-value store, or any
// system that can apply reversible text patches and remember how many it has applied.
type Driver interface {
	// Status returns the last recorded cursor. ok is false when nothing has been
	// recorded yet; the engine then treats the cursor as 0.
	Status(ctx context.Context) (status int, ok bool, err error)

	// SetStatus records a new cursor. Must be safe to repeat with the same value.
	SetStatus(ctx context.Context, status int) error

	// Execute applies one half of a motion. It does not discriminate between
	// add and sub steps; a failed step must not leave changes beyond what it attempted.
	Execute(ctx context.Context, step domain.Step) error
}

// Initializer is implemented by drivers that need to prepare their own bookkeeping
// (tables, keys) before the first status read.
type Initializer interface {
	Init(ctx context.Context) error
}
