package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCheckpointStoreContract runs a suite of tests to verify that a CheckpointStore
// implementation adheres to the defined interface contract.
func RunCheckpointStoreContract(t *testing.T, store CheckpointStore) {
	ctx := context.Background()
	sweepID := "contract-sweep-" + time.Now().Format("20060102150405")

	sample := func() *domain.Checkpoint {
		cp := domain.NewCheckpoint("/work/water.fdf", []string{"/work/O.psf", "/work/H.psf"}, "/work/run.sh",
			[]domain.FieldVector{{0, 0, 0}, {0, 0, 0.001}, {0, 0, -0.002}})
		cp.Axes = &domain.SweepConfig{Z: domain.AxisSpec{Active: true, Start: 0, End: 0.002, Step: 0.001}}
		cp.LastCompleted = 1
		cp.UpdatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		return cp
	}

	t.Run("Save and Load", func(t *testing.T) {
		cp := sample()
		require.NoError(t, store.Save(ctx, sweepID, cp), "Save should not return error")

		loaded, err := store.Load(ctx, sweepID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, cp.InputFile, loaded.InputFile)
		assert.Equal(t, cp.AuxFiles, loaded.AuxFiles)
		assert.Equal(t, cp.Script, loaded.Script)
		assert.Equal(t, cp.Fields, loaded.Fields)
		assert.Equal(t, cp.Axes, loaded.Axes)
		assert.Equal(t, cp.BaseDir, loaded.BaseDir)
		assert.Equal(t, 1, loaded.LastCompleted)
		assert.True(t, cp.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		cp := sample()
		cp.LastCompleted = 2
		require.NoError(t, store.Save(ctx, sweepID, cp))

		loaded, err := store.Load(ctx, sweepID)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.LastCompleted)
	})

	t.Run("Load Returns Independent Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sweepID)
		require.NoError(t, err)
		loaded.Fields[0][0] = 42

		again, err := store.Load(ctx, sweepID)
		require.NoError(t, err)
		assert.Equal(t, 0.0, again.Fields[0][0])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sweepID)
		assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := sweepID + "-1"
		id2 := sweepID + "-2"
		require.NoError(t, store.Save(ctx, id1, sample()))
		require.NoError(t, store.Save(ctx, id2, sample()))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sweepID, sample()))
		require.NoError(t, store.Delete(ctx, sweepID), "Delete should not return error")

		_, err := store.Load(ctx, sweepID)
		assert.ErrorIs(t, err, domain.ErrCheckpointNotFound, "Load after Delete should return ErrCheckpointNotFound")

		assert.NoError(t, store.Delete(ctx, sweepID), "Delete should be idempotent")
	})

	if marker, ok := store.(AutostartMarker); ok {
		t.Run("Autostart Marker", func(t *testing.T) {
			id := sweepID + "-auto"
			on, err := marker.Autostart(ctx, id)
			require.NoError(t, err)
			assert.False(t, on)

			require.NoError(t, marker.SetAutostart(ctx, id, true))
			on, err = marker.Autostart(ctx, id)
			require.NoError(t, err)
			assert.True(t, on)

			require.NoError(t, marker.SetAutostart(ctx, id, false))
			on, err = marker.Autostart(ctx, id)
			require.NoError(t, err)
			assert.False(t, on)

			assert.NoError(t, marker.SetAutostart(ctx, id, false), "clearing twice is not an error")
		})
	}
}
