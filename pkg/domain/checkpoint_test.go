package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpoint_JSONKeys(t *testing.T) {
	cp := domain.NewCheckpoint("in.fdf", []string{"C.psf"}, "run.sh", []domain.FieldVector{{0, 0, 0.1}})

	data, err := json.Marshal(cp)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"fdf_path", "psf_files", "siesta_script", "fields", "base_dir_name", "last_completed_index", "updated_at"} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, float64(-1), raw["last_completed_index"])
	assert.Equal(t, domain.DefaultBaseDir, raw["base_dir_name"])
	assert.Equal(t, []any{0.0, 0.0, 0.1}, raw["fields"].([]any)[0])
}

func TestCheckpoint_Progress(t *testing.T) {
	cp := domain.NewCheckpoint("in.fdf", nil, "", make([]domain.FieldVector, 3))
	assert.Equal(t, 0, cp.NextIndex())
	assert.False(t, cp.Finished())

	cp.LastCompleted = 2
	assert.Equal(t, 3, cp.NextIndex())
	assert.True(t, cp.Finished())
}

func TestCheckpoint_CloneIsDeep(t *testing.T) {
	cp := domain.NewCheckpoint("in.fdf", []string{"a.psf"}, "", []domain.FieldVector{{1, 2, 3}})
	cp.Axes = &domain.SweepConfig{X: domain.AxisSpec{Active: true, End: 1, Step: 0.5}}

	clone := cp.Clone()
	clone.AuxFiles[0] = "b.psf"
	clone.Fields[0][0] = 9
	clone.Axes.X.Step = 0.1

	assert.Equal(t, "a.psf", cp.AuxFiles[0])
	assert.Equal(t, 1.0, cp.Fields[0][0])
	assert.Equal(t, 0.5, cp.Axes.X.Step)
}
