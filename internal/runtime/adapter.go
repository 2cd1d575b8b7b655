package runtime

import (
	"context"

	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/aretw0/accelerate/pkg/ports"
)

// adapter normalizes a driver before the executor talks to it:
// a missing status reads as 0 and every written status is clamped to [0, max].
type adapter struct {
	inner ports.Driver
	max   int
}

func newAdapter(inner ports.Driver, max int) *adapter {
	return &adapter{inner: inner, max: max}
}

func (a *adapter) Status(ctx context.Context) (int, error) {
	status, ok, err := a.inner.Status(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return status, nil
}

func (a *adapter) SetStatus(ctx context.Context, status int) error {
	return a.inner.SetStatus(ctx, domain.Clamp(status, 0, a.max))
}

func (a *adapter) Execute(ctx context.Context, step domain.Step) error {
	return a.inner.Execute(ctx, step)
}

func (a *adapter) Init(ctx context.Context) error {
	if init, ok := a.inner.(ports.Initializer); ok {
		return init.Init(ctx)
	}
	return nil
}
