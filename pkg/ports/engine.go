package ports

import (
	"context"

	"github.com/aretw0/accelerate/pkg/domain"
)

// Accelerator is the surface exposed to adapters (HTTP, CLI) that drive an engine
// without knowing how it is wired.
type Accelerator interface {
	Status(ctx context.Context) (int, error)
	Motions() []domain.Motion

	Move(ctx context.Context, delta int) error
	Goto(ctx context.Context, position int) error
	Up(ctx context.Context) error
	Down(ctx context.Context) error
	Add(ctx context.Context) error
	Sub(ctx context.Context) error
	Redo(ctx context.Context) error
	Reset(ctx context.Context) error
}
