package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/google/uuid"
)

// motionIndex maps the cursor a step leaves from to the motion it applies.
// Going forward from cursor v applies motion v; going backward from v undoes motion v-1.
func motionIndex(op domain.Operation, cursor int) int {
	if op == domain.Backward {
		return cursor - 1
	}
	return cursor
}

// execute walks the cursor from start to finish, one motion at a time.
// It is not to be confused with the driver's Execute, which applies a single step.
//
// Both bounds are clamped to the catalog. Each step completes before the next begins,
// and the first failure, or a done ctx, stops the walk. The reached cursor is always recorded,
// even when the run fails, so a later call resumes from real progress.
func (e *Engine) execute(ctx context.Context, start, finish int) error {
	n := len(e.motions)
	start = domain.Clamp(start, 0, n)
	finish = domain.Clamp(finish, 0, n)
	op := domain.Resolve(finish - start)

	runID := newRunID()
	logger := e.logger.With("run_id", runID)
	logger.InfoContext(ctx, "run started", "start", start, "finish", finish, "operation", op)

	e.emitRunStart(ctx, &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunStart, RunID: runID},
		Start:     start,
		Finish:    finish,
		Operation: op,
	})

	reached := start
	var stepErr error
	for cursor := start; cursor != finish; cursor += op.Unit() {
		i := motionIndex(op, cursor)
		step := domain.NewStep(i, e.motions[i], op)

		if cause := context.Cause(ctx); cause != nil {
			logger.WarnContext(ctx, "run stopped", "index", i, "motion", step.Name, "error", cause)
			stepErr = fmt.Errorf("stopped before motion %d (%s): %w", i, step.Name, cause)
			break
		}

		logger.DebugContext(ctx, "executing motion", "index", i, "motion", step.Name, "operation", op)
		began := time.Now()
		if err := e.driver.Execute(ctx, step); err != nil {
			logger.ErrorContext(ctx, "motion failed", "index", i, "motion", step.Name, "operation", op, "error", err)
			stepErr = &domain.StepError{Index: i, Motion: step.Name, Operation: op, Err: err}
			break
		}
		reached += op.Unit()

		e.emitStep(ctx, &domain.StepEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStep, RunID: runID},
			Index:     i,
			Motion:    step.Name,
			Operation: op,
			Status:    reached,
			Duration:  time.Since(began),
		})
	}

	err := e.checkpoint(ctx, reached, stepErr)
	if err != nil {
		logger.ErrorContext(ctx, "run failed", "reached", reached, "error", err)
	} else {
		logger.InfoContext(ctx, "run finished", "reached", reached)
	}

	e.emitRunFinish(ctx, &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunFinish, RunID: runID},
		Start:     start,
		Finish:    finish,
		Operation: op,
		Reached:   reached,
		Err:       err,
	})
	return err
}

// checkpoint records the reached cursor. The write ignores cancellation of ctx:
// progress that really happened must be recorded.
func (e *Engine) checkpoint(ctx context.Context, reached int, stepErr error) error {
	if err := e.driver.SetStatus(context.WithoutCancel(ctx), reached); err != nil {
		if stepErr != nil {
			return &domain.CheckpointError{Status: reached, Err: err, Cause: stepErr}
		}
		return fmt.Errorf("failed to record status %d: %w", reached, err)
	}
	return stepErr
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
