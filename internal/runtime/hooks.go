package runtime

import (
	"context"

	"github.com/aretw0/accelerate/pkg/domain"
)

func (e *Engine) emitRunStart(ctx context.Context, ev *domain.RunEvent) {
	for _, h := range e.hooks {
		if h.OnRunStart != nil {
			e.safeHook(ctx, string(domain.EventRunStart), func() { h.OnRunStart(ctx, ev) })
		}
	}
}

func (e *Engine) emitStep(ctx context.Context, ev *domain.StepEvent) {
	for _, h := range e.hooks {
		if h.OnStep != nil {
			e.safeHook(ctx, string(domain.EventStep), func() { h.OnStep(ctx, ev) })
		}
	}
}

func (e *Engine) emitRunFinish(ctx context.Context, ev *domain.RunEvent) {
	for _, h := range e.hooks {
		if h.OnRunFinish != nil {
			e.safeHook(ctx, string(domain.EventRunFinish), func() { h.OnRunFinish(ctx, ev) })
		}
	}
}

// safeHook runs an observer callback. A panicking observer is logged and skipped;
// it never stops a run.
func (e *Engine) safeHook(ctx context.Context, event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WarnContext(ctx, "lifecycle hook panicked", "event", event, "panic", r)
		}
	}()
	fn()
}
