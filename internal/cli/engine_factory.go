package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/accelerate"
	"github.com/aretw0/accelerate/internal/config"
	"github.com/aretw0/accelerate/pkg/domain"
)

// createEngine initializes an accelerate engine with standard CLI conventions.
func createEngine(cfg config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*accelerate.Engine, error) {
	if cfg.Target == "" {
		return nil, fmt.Errorf("no target configured: pass --target or set %sTARGET", config.EnvPrefix)
	}

	engineOpts := []accelerate.Option{
		accelerate.WithTarget(cfg.Target),
		accelerate.WithLogger(logger),
		accelerate.WithLifecycleHooks(createDebugHooks(logger)),
	}
	for _, h := range hooks {
		engineOpts = append(engineOpts, accelerate.WithLifecycleHooks(h))
	}
	if cfg.LockKey != "" || cfg.LockTTL > 0 {
		engineOpts = append(engineOpts, accelerate.WithLockKey(cfg.LockKey, cfg.LockTTL))
	}

	engine, err := accelerate.New(cfg.Directory, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.Debug("Run Start", "run_id", e.RunID, "start", e.Start, "finish", e.Finish)
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Step", "run_id", e.RunID, "motion", e.Motion, "operation", e.Operation, "status", e.Status, "duration", e.Duration)
		},
		OnRunFinish: func(ctx context.Context, e *domain.RunEvent) {
			if e.Err != nil {
				logger.Debug("Run Finish (Error)", "run_id", e.RunID, "reached", e.Reached, "err", e.Err)
			} else {
				logger.Debug("Run Finish (Success)", "run_id", e.RunID, "reached", e.Reached)
			}
		},
	}
}
