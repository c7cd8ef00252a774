package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/fieldsweep/internal/logging"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed process keeps a sweep locked.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates checkpoint access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.Store

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional cross-process locker
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables cross-process locking through Hold.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of the cross-process lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the clock used to stamp UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new checkpoint Manager over the given store.
func NewManager(store ports.Store, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sweepID) after unlocking.
func (m *Manager) acquire(sweepID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sweepID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sweepID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sweepID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sweepID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sweepID)
	}
}

// WithLock executes fn while holding the in-process lock for the sweep.
func (m *Manager) WithLock(ctx context.Context, sweepID string, fn func(context.Context) error) error {
	entry := m.acquire(sweepID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sweepID)
	}()
	return fn(ctx)
}

// Hold takes the cross-process lock of a sweep for as long as it runs.
// It waits at most one lock TTL for a previous holder to go away.
// Without a configured locker it returns a no-op release.
func (m *Manager) Hold(ctx context.Context, sweepID string) (release func(), err error) {
	if m.locker == nil {
		return func() {}, nil
	}
	waitCtx, cancel := context.WithTimeout(ctx, m.lockTTL)
	defer cancel()
	unlock, err := m.locker.Lock(waitCtx, "sweep:"+sweepID, m.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("sweep %s is held by another process: %w", sweepID, err)
	}
	return func() {
		if err := unlock(context.Background()); err != nil {
			m.logger.Warn("failed to release sweep lock (will expire via TTL)",
				"sweep_id", sweepID,
				"err", err,
			)
		}
	}, nil
}

// Load retrieves a checkpoint. A missing one is domain.ErrCheckpointNotFound.
func (m *Manager) Load(ctx context.Context, sweepID string) (*domain.Checkpoint, error) {
	var cp *domain.Checkpoint
	err := m.WithLock(ctx, sweepID, func(ctx context.Context) error {
		var err error
		cp, err = m.store.Load(ctx, sweepID)
		return err
	})
	return cp, err
}

// Exists reports whether a checkpoint is stored for the sweep.
func (m *Manager) Exists(ctx context.Context, sweepID string) (bool, error) {
	_, err := m.Load(ctx, sweepID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrCheckpointNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Save stamps and persists the checkpoint.
func (m *Manager) Save(ctx context.Context, sweepID string, cp *domain.Checkpoint) error {
	return m.WithLock(ctx, sweepID, func(ctx context.Context) error {
		cp.UpdatedAt = m.now().UTC()
		return m.store.Save(ctx, sweepID, cp)
	})
}

// Delete removes the checkpoint from the store.
func (m *Manager) Delete(ctx context.Context, sweepID string) error {
	return m.WithLock(ctx, sweepID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sweepID)
	})
}

// Reset deletes the checkpoint and clears the autostart marker.
func (m *Manager) Reset(ctx context.Context, sweepID string) error {
	return m.WithLock(ctx, sweepID, func(ctx context.Context) error {
		if err := m.store.Delete(ctx, sweepID); err != nil {
			return err
		}
		return m.store.SetAutostart(ctx, sweepID, false)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// SetAutostart sets or clears the autostart marker.
func (m *Manager) SetAutostart(ctx context.Context, sweepID string, on bool) error {
	return m.WithLock(ctx, sweepID, func(ctx context.Context) error {
		return m.store.SetAutostart(ctx, sweepID, on)
	})
}

// Autostart reports whether the autostart marker is set.
func (m *Manager) Autostart(ctx context.Context, sweepID string) (bool, error) {
	return m.store.Autostart(ctx, sweepID)
}
