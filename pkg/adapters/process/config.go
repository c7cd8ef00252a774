package process

import "time"

// Config describes how the solver is launched in a point directory.
//
// Occurrences of "{dir}" in Args are replaced by the point directory, which
// is also the working directory of the process and is exported as
// FIELDSWEEP_DIR.
type Config struct {
	Command string            `yaml:"command" json:"command" mapstructure:"command" validate:"required"`
	Args    []string          `yaml:"args" json:"args" mapstructure:"args"`
	Env     map[string]string `yaml:"env" json:"env" mapstructure:"env"`
	// Timeout bounds a single run. Zero means no limit.
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout" validate:"gte=0"`
	// CompletionMarker is the file a successful run leaves behind.
	CompletionMarker string `yaml:"completion_marker" json:"completion_marker" mapstructure:"completion_marker"`
}

// DefaultCompletionMarker is the sentinel written by the bundled solver wrapper.
const DefaultCompletionMarker = "concluido.txt"
