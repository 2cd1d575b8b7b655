package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart  EventType = "run_start"
	EventStep      EventType = "step"
	EventRunFinish EventType = "run_finish"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// RunEvent marks the start or the end of a run between two cursor values.
type RunEvent struct {
	EventBase
	Start     int       `json:"start"`
	Finish    int       `json:"finish"`
	Operation Operation `json:"operation"`
	// Reached is only meaningful on EventRunFinish.
	Reached int   `json:"reached"`
	Err     error `json:"-"`
}

// StepEvent is emitted after a motion step completed successfully.
type StepEvent struct {
	EventBase
	Index     int           `json:"index"`
	Motion    string        `json:"motion"`
	Operation Operation     `json:"operation"`
	Status    int           `json:"status"`
	Duration  time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any field may be nil. Hooks are called synchronously from the run and must not block.
type LifecycleHooks struct {
	OnRunStart  func(context.Context, *RunEvent)
	OnStep      func(context.Context, *StepEvent)
	OnRunFinish func(context.Context, *RunEvent)
}
