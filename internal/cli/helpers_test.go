package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const baseInput = `SystemName water
SystemLabel water
%block LatticeVectors
  10.0  0.0  0.0
   0.0 10.0  0.0
   0.0  0.0 10.0
%endblock LatticeVectors
%block AtomicCoordinatesAndAtomicSpecies
  0.0 0.0 0.0 1
%endblock AtomicCoordinatesAndAtomicSpecies
`

const relaxedLog = `siesta: begin
outcoor: Relaxed atomic coordinates (Ang):
    0.50000000    0.60000000    0.70000000   1       1  O
outcell: Unit cell vectors (Ang):
       11.000000    0.000000    0.000000
        0.000000   11.000000    0.000000
        0.000000    0.000000   11.000000
siesta: The run has finished
`

// project lays out a working directory with a base input, a relaxed solver
// log and a config whose solver copies that log next to the newest input.
func project(t *testing.T, extra string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("solver fake needs sh")
	}
	dir := t.TempDir()
	write(t, filepath.Join(dir, "base.fdf"), baseInput)
	logPath := filepath.Join(dir, "relaxed.log")
	write(t, logPath, relaxedLog)

	script := `for f in *.fdf; do last=$f; done; cp '` + logPath + `' "${last%.fdf}.out"; touch concluido.txt`
	cfg := strings.Join([]string{
		"input: base.fdf",
		"solver:",
		"  command: sh",
		"  args: [\"-c\", " + quote(script) + "]",
		extra,
	}, "\n")
	write(t, filepath.Join(dir, "fieldsweep.yaml"), cfg)
	return dir
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setup(t *testing.T, dir string) (*App, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	app, err := Setup(Globals{
		Dir:     dir,
		Stdin:   strings.NewReader(""),
		Stdout:  out,
		Stderr:  &bytes.Buffer{},
		Environ: []string{},
	})
	require.NoError(t, err)
	return app, out
}

func boolPtr(b bool) *bool { return &b }
