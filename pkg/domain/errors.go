package domain

import (
	"errors"
	"fmt"
)

// ErrBackendUnavailable is wrapped by drivers when the backend cannot be reached
// or refuses a status read/write.
var ErrBackendUnavailable = errors.New("backend unavailable")

// ErrInvalidCatalog is wrapped by every motion catalog discovery or creation failure.
var ErrInvalidCatalog = errors.New("invalid motion catalog")

// ErrUnknownDriver is returned when no driver is registered for a target scheme.
var ErrUnknownDriver = errors.New("unknown driver")

// ErrLockLost stops a run whose cross-process lock expired or was taken by another holder.
var ErrLockLost = errors.New("run lock lost")

// StepError reports a motion step rejected by the driver.
type StepError struct {
	Index     int
	Motion    string
	Operation Operation
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("motion %d (%s) %s failed: %v", e.Index, e.Motion, e.Operation, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// CheckpointError reports that the cursor could not be written after a run stopped early.
// Cause holds the step failure that stopped the run.
type CheckpointError struct {
	Status int
	Err    error
	Cause  error
}

func (e *CheckpointError) Error() string {
	return fmt.Sprintf("failed to record status %d: %v (after: %v)", e.Status, e.Err, e.Cause)
}

// Unwrap exposes both the write failure and the original step failure.
func (e *CheckpointError) Unwrap() []error {
	return []error{e.Err, e.Cause}
}
