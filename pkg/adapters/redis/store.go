package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/fieldsweep/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "fieldsweep:"

// Store implements ports.Store using Redis.
//
// Checkpoints live at <prefix>checkpoint:<id>, markers at
// <prefix>autostart:<id>, and a sorted set at <prefix>index scores each
// sweep ID by the time of its last save.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client so a Locker can share the connection.
func (s *Store) Client() *backend.Client { return s.client }

func (s *Store) key(sweepID string) string       { return s.prefix + "checkpoint:" + sweepID }
func (s *Store) markerKey(sweepID string) string { return s.prefix + "autostart:" + sweepID }
func (s *Store) indexKey() string                { return s.prefix + "index" }

// Save persists the checkpoint with a single SET and records it in the index.
func (s *Store) Save(ctx context.Context, sweepID string, cp *domain.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	updated := cp.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(sweepID), data, 0)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(updated.Unix()),
		Member: sweepID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the checkpoint from Redis.
func (s *Store) Load(ctx context.Context, sweepID string) (*domain.Checkpoint, error) {
	val, err := s.client.Get(ctx, s.key(sweepID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var cp domain.Checkpoint
	if err := json.Unmarshal(val, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w: %w", domain.ErrCorruptCheckpoint, err)
	}
	return &cp, nil
}

// Delete removes the checkpoint and its index entry.
func (s *Store) Delete(ctx context.Context, sweepID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(sweepID))
	pipe.ZRem(ctx, s.indexKey(), sweepID)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns sweep IDs ordered by last save, oldest first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	return ids, nil
}

// SetAutostart sets or clears the marker key.
func (s *Store) SetAutostart(ctx context.Context, sweepID string, on bool) error {
	if on {
		return s.client.Set(ctx, s.markerKey(sweepID), "1", 0).Err()
	}
	return s.client.Del(ctx, s.markerKey(sweepID)).Err()
}

// Autostart reports whether the marker key exists.
func (s *Store) Autostart(ctx context.Context, sweepID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.markerKey(sweepID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check autostart marker: %w", err)
	}
	return n > 0, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
