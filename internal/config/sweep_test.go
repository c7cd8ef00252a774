package config_test

import (
	"testing"

	"github.com/aretw0/fieldsweep/internal/config"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/sweep"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSweep(t *testing.T) {
	path := writeFile(t, "sweep.hcl", `
axis "x" {
  start = 0
  end   = 0.002
  step  = 0.001
}

points = [[0.5, 0, 0]]
`)
	s, err := config.LoadSweep(path)
	require.NoError(t, err)

	assert.True(t, s.Axes.X.Active)
	assert.False(t, s.Axes.Z.Active)
	want := []domain.FieldVector{{0, 0, 0}, {0.001, 0, 0}, {0.002, 0, 0}, {0.5, 0, 0}}
	if diff := cmp.Diff(want, s.Fields()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSweep_Errors(t *testing.T) {
	_, err := config.LoadSweep(writeFile(t, "bad.hcl", `axis "w" { start = 1 }`))
	assert.ErrorContains(t, err, "unknown axis")

	_, err = config.LoadSweep(writeFile(t, "bad.hcl", `points = [[1, 2]]`))
	assert.ErrorContains(t, err, "want 3")

	_, err = config.LoadSweep(writeFile(t, "bad.hcl", `axis "x" {`))
	assert.ErrorContains(t, err, "failed to parse")
}

func TestSweep_Fields(t *testing.T) {
	assert.Equal(t, []domain.FieldVector{{0, 0, 0}}, config.Sweep{}.Fields())

	manual := config.Sweep{Points: []domain.FieldVector{{1, 2, 3}}}
	assert.Equal(t, []domain.FieldVector{{1, 2, 3}}, manual.Fields())
}

func TestParseAxis(t *testing.T) {
	a, err := config.ParseAxis("0:0.5:0.1")
	require.NoError(t, err)
	assert.Equal(t, domain.AxisSpec{Start: 0, End: 0.5, Step: 0.1, Active: true}, a)

	a, err = config.ParseAxis("0.3")
	require.NoError(t, err)
	assert.Equal(t, domain.AxisSpec{Start: 0.3, End: 0.3, Active: true}, a)

	_, err = config.ParseAxis("1:2")
	assert.Error(t, err)
	_, err = config.ParseAxis("a:b:c")
	assert.Error(t, err)

	var s config.Sweep
	require.NoError(t, s.SetAxisFlag("y", "0:1:0.5"))
	assert.Len(t, s.Fields(), 3)
}

func TestParseAxis_RejectsUnboundedAxes(t *testing.T) {
	for _, in := range []string{"0:inf:0.1", "0:nan:0.1", "0:1:nan", "-Inf:0:1", "NaN", "0:1e12:1e-9"} {
		t.Run(in, func(t *testing.T) {
			_, err := config.ParseAxis(in)
			assert.ErrorIs(t, err, sweep.ErrInvalidAxis)
		})
	}
}

func TestLoadSweep_RejectsOversizedAxis(t *testing.T) {
	_, err := config.LoadSweep(writeFile(t, "huge.hcl", `
axis "z" {
  start = 0
  end   = 1000000
  step  = 0.000001
}
`))
	assert.ErrorIs(t, err, sweep.ErrInvalidAxis)
}
