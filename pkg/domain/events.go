package domain

import (
	"context"
	"time"
)

// PointEvent is emitted around each solver launch.
type PointEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Index     int           `json:"index"`
	Field     FieldVector   `json:"field"`
	Dir       string        `json:"dir"`
	Outcome   Outcome       `json:"outcome,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// TransitionEvent is emitted whenever the pipeline status changes.
type TransitionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	Index     int       `json:"index"`
}

// LifecycleHooks defines callbacks for pipeline observability.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnPointStart func(context.Context, *PointEvent)
	OnPointDone  func(context.Context, *PointEvent)
}
