package fdf_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/fdf"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(s string) []string {
	return fdf.SplitLines(strings.TrimPrefix(s, "\n"))
}

func TestLocate(t *testing.T) {
	input := lines(`
SystemName water
%block ExternalElectricField
0.0 0.0 0.0 V/Ang
%endblock ExternalElectricField
MeshCutoff 200 Ry`)

	nb, err := fdf.Locate(input, fdf.ElectricField)
	require.NoError(t, err)
	assert.Equal(t, fdf.NamedBlock{Start: 1, End: 3}, nb)
}

func TestLocate_Commented(t *testing.T) {
	input := lines(`
SystemName water
  #%block ExternalElectricField
#0.0 0.0 0.0 V/Ang
#%endblock ExternalElectricField`)

	nb, err := fdf.Locate(input, fdf.ElectricField)
	require.NoError(t, err)
	assert.True(t, nb.Commented)
	assert.Equal(t, 1, nb.Start)
	assert.Equal(t, 3, nb.End)
}

func TestLocate_Errors(t *testing.T) {
	_, err := fdf.Locate(lines("SystemName water"), fdf.ElectricField)
	assert.ErrorIs(t, err, domain.ErrBlockNotFound)

	_, err = fdf.Locate(lines("%block ExternalElectricField\n0 0 0 V/Ang"), fdf.ElectricField)
	assert.ErrorIs(t, err, domain.ErrMalformedBlock)
}

func TestReplace_ExistingBlock(t *testing.T) {
	input := lines(`
SystemName water
%block ExternalElectricField
0.0 0.0 0.0 V/Ang
%endblock ExternalElectricField
MeshCutoff 200 Ry`)

	out, err := fdf.Replace(input, fdf.FieldBlock(domain.FieldVector{0, 0, 0.1}, false))
	require.NoError(t, err)

	want := lines(`
SystemName water
%block ExternalElectricField
0.000000 0.000000 0.100000 V/Ang
%endblock ExternalElectricField
MeshCutoff 200 Ry`)
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("Replace() mismatch (-want +got):\n%s", diff)
	}
}

func TestReplace_CommentedBlockBecomesActive(t *testing.T) {
	input := lines(`
SystemName water
#%block ExternalElectricField
#0.0 0.0 0.0 V/Ang
#%endblock ExternalElectricField`)

	out, err := fdf.Replace(input, fdf.FieldBlock(domain.FieldVector{0.5, 0, 0}, false))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"SystemName water",
		"%block ExternalElectricField",
		"0.500000 0.000000 0.000000 V/Ang",
		"%endblock ExternalElectricField",
	}, out)
}

func TestReplace_MissingBlockInsertedBeforeFirstStatement(t *testing.T) {
	input := lines(`
# water molecule
! generated

SystemName water`)

	out, err := fdf.Replace(input, fdf.FieldBlock(domain.FieldVector{0, 0, -0.2}, false))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"# water molecule",
		"! generated",
		"",
		"# -- ELECTRIC FIELD --",
		"%block ExternalElectricField",
		"0.000000 0.000000 -0.200000 V/Ang",
		"%endblock ExternalElectricField",
		"SystemName water",
	}, out)
}

func TestReplace_Twice(t *testing.T) {
	input := lines("SystemName water")

	once, err := fdf.Replace(input, fdf.FieldBlock(domain.FieldVector{0, 0, 0.1}, false))
	require.NoError(t, err)
	twice, err := fdf.Replace(once, fdf.FieldBlock(domain.FieldVector{0, 0, 0.3}, false))
	require.NoError(t, err)

	text := strings.Join(twice, "\n")
	assert.Equal(t, 1, strings.Count(text, "%block ExternalElectricField"))
	assert.Equal(t, 1, strings.Count(text, "%endblock ExternalElectricField"))
	assert.Contains(t, text, "0.000000 0.000000 0.300000 V/Ang")
	assert.NotContains(t, text, "0.100000")
}

func TestReplace_MalformedLeavesInputUntouched(t *testing.T) {
	input := lines("%block ExternalElectricField\n0 0 0 V/Ang\nMeshCutoff 200 Ry")
	before := append([]string(nil), input...)

	out, err := fdf.Replace(input, fdf.FieldBlock(domain.FieldVector{1, 1, 1}, false))
	assert.ErrorIs(t, err, domain.ErrMalformedBlock)
	assert.Equal(t, before, out)
	assert.Equal(t, before, input)
}

func TestReadWriteLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.fdf")
	require.NoError(t, fdf.WriteLines(path, []string{"a", "", "b"}))

	got, err := fdf.ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "b"}, got)
}
