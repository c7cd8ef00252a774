package badger_test

import (
	"context"
	"testing"

	"github.com/aretw0/fieldsweep/pkg/adapters/badger"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerStore_Contract(t *testing.T) {
	store, err := badger.OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	ports.RunCheckpointStoreContract(t, store)
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := badger.Open(badger.Config{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	cp := domain.NewCheckpoint("in.fdf", nil, "", []domain.FieldVector{{0, 0, 0.1}})
	cp.LastCompleted = 0
	require.NoError(t, store.Save(ctx, "water", cp))
	require.NoError(t, store.SetAutostart(ctx, "water", true))
	require.NoError(t, store.Close())

	store, err = badger.Open(badger.Config{Path: dir})
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load(ctx, "water")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.LastCompleted)

	on, err := store.Autostart(ctx, "water")
	require.NoError(t, err)
	assert.True(t, on)
}

func TestBadgerStore_RequiresPath(t *testing.T) {
	_, err := badger.Open(badger.Config{})
	assert.Error(t, err)
}
