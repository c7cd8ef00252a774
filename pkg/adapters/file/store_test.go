package file_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/fieldsweep/pkg/adapters/file"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunCheckpointStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cp := domain.NewCheckpoint("in.fdf", nil, "", []domain.FieldVector{{0, 0, 0}})
		cp.LastCompleted = i - 1
		require.NoError(t, store.Save(ctx, "default", cp))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "default.json", entries[0].Name())
}

func TestFileStore_ListIgnoresMarkersAndTemps(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", domain.NewCheckpoint("in.fdf", nil, "", nil)))
	require.NoError(t, store.SetAutostart(ctx, "a", true))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp-a-123"), []byte("{"), 0o644))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
	assert.FileExists(t, filepath.Join(dir, "a.autostart"))
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	_, err := file.New(dir).Load(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrCorruptCheckpoint)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	ids, err := file.New(filepath.Join(t.TempDir(), "absent")).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileStore_OverwriteIsNeverMissing(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	cp := domain.NewCheckpoint("in.fdf", nil, "", []domain.FieldVector{{0, 0, 0}, {0, 0, 1}})
	require.NoError(t, store.Save(ctx, "default", cp))

	done := make(chan struct{})
	missing := make(chan int, 1)
	go func() {
		n := 0
		for {
			select {
			case <-done:
				missing <- n
				return
			default:
			}
			if _, err := store.Load(ctx, "default"); errors.Is(err, domain.ErrCheckpointNotFound) {
				n++
			}
		}
	}()

	for i := 0; i < 500; i++ {
		cp.LastCompleted = i % 2
		require.NoError(t, store.Save(ctx, "default", cp))
	}
	close(done)
	assert.Zero(t, <-missing, "a reader saw no checkpoint while it was being overwritten")
}
