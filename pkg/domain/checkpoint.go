package domain

import (
	"slices"
	"time"
)

// DefaultBaseDir is the directory point directories are created under when none is configured.
const DefaultBaseDir = "electric_field_calculations"

// Checkpoint is the durable state of a sweep.
// It is written after every successful point and read once at startup.
type Checkpoint struct {
	// InputFile is the active solver input. It starts as the user's base file
	// and is replaced when an operator supplies a corrected input.
	InputFile string   `json:"fdf_path"`
	AuxFiles  []string `json:"psf_files"`
	Script    string   `json:"siesta_script"`

	Fields []FieldVector `json:"fields"`
	Axes   *SweepConfig  `json:"axes,omitempty"`

	BaseDir string `json:"base_dir_name"`

	// LastCompleted is the index of the last point that exited cleanly, -1 for none.
	LastCompleted int `json:"last_completed_index"`

	UpdatedAt time.Time `json:"updated_at"`
	Checksum  string    `json:"checksum,omitempty"`
}

// NewCheckpoint creates a checkpoint with nothing completed yet.
func NewCheckpoint(input string, aux []string, script string, fields []FieldVector) *Checkpoint {
	return &Checkpoint{
		InputFile:     input,
		AuxFiles:      aux,
		Script:        script,
		Fields:        fields,
		BaseDir:       DefaultBaseDir,
		LastCompleted: -1,
	}
}

// NextIndex is the index the sweep resumes at.
func (c *Checkpoint) NextIndex() int {
	return c.LastCompleted + 1
}

// Finished reports whether every point has completed.
func (c *Checkpoint) Finished() bool {
	return len(c.Fields) > 0 && c.LastCompleted >= len(c.Fields)-1
}

// Clone returns a deep copy.
func (c *Checkpoint) Clone() *Checkpoint {
	if c == nil {
		return nil
	}
	out := *c
	out.AuxFiles = slices.Clone(c.AuxFiles)
	out.Fields = slices.Clone(c.Fields)
	if c.Axes != nil {
		axes := *c.Axes
		out.Axes = &axes
	}
	return &out
}
