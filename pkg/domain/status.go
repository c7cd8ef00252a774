package domain

// Status is the mode of the pipeline.
type Status string

const (
	StatusIdle           Status = "idle"
	StatusRunning        Status = "running"
	StatusPausedForInput Status = "paused_for_input" // Waiting for an operator to supply a corrected input
	StatusCompleted      Status = "completed"
	StatusStopped        Status = "stopped"
)

// Terminal reports whether the pipeline will not advance from this status by itself.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusStopped
}

// InputRequest describes a paused point waiting for a replacement input.
type InputRequest struct {
	Index int         `json:"index"`
	Dir   string      `json:"dir"`
	Field FieldVector `json:"field"`
	Cause string      `json:"cause"`
}

// Snapshot is a read-only view of the pipeline for interactive surfaces.
type Snapshot struct {
	Status        Status        `json:"status"`
	Index         int           `json:"index"`
	Total         int           `json:"total"`
	LastCompleted int           `json:"last_completed_index"`
	Pending       *InputRequest `json:"pending,omitempty"`
}
