package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/fieldsweep/pkg/adapters/redis"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunCheckpointStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("lab:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "water", domain.NewCheckpoint("in.fdf", nil, "", nil)))
	require.NoError(t, store.SetAutostart(ctx, "water", true))

	assert.True(t, mr.Exists("lab:checkpoint:water"))
	assert.True(t, mr.Exists("lab:autostart:water"))
	assert.True(t, mr.Exists("lab:index"))
}

func TestRedisStore_ListOrderedByUpdate(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	newer := domain.NewCheckpoint("in.fdf", nil, "", nil)
	newer.UpdatedAt = time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	older := domain.NewCheckpoint("in.fdf", nil, "", nil)
	older.UpdatedAt = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, "b", newer))
	require.NoError(t, store.Save(ctx, "a", older))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestRedisStore_Corrupt(t *testing.T) {
	mr, client := newClient(t)
	require.NoError(t, mr.Set("fieldsweep:checkpoint:bad", "{"))

	_, err := redis.NewFromClient(client).Load(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrCorruptCheckpoint)
}
