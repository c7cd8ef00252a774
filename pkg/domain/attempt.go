package domain

import "time"

// Outcome classifies a single solver attempt.
type Outcome string

const (
	OutcomeSucceeded   Outcome = "succeeded"
	OutcomeFailed      Outcome = "failed"
	OutcomeLaunchError Outcome = "launch_error"
	OutcomePaused      Outcome = "paused"
)

// Attempt is one entry of the attempt ledger.
type Attempt struct {
	ID        string        `json:"id"`
	SweepID   string        `json:"sweep_id"`
	Index     int           `json:"index"`
	Field     FieldVector   `json:"field"`
	Dir       string        `json:"dir"`
	Outcome   Outcome       `json:"outcome"`
	ExitCode  int           `json:"exit_code"`
	Duration  time.Duration `json:"duration"`
	Verdict   Verdict       `json:"verdict,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Error     string        `json:"error,omitempty"`
}
