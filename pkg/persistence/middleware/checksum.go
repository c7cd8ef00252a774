package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/ports"
)

// ChecksumOption configures the checksum middleware.
type ChecksumOption func(*checksumMiddleware)

// AllowUnsigned accepts checkpoints saved without a checksum, such as those
// written by hand or by an older version.
func AllowUnsigned() ChecksumOption {
	return func(m *checksumMiddleware) {
		m.allowUnsigned = true
	}
}

type checksumMiddleware struct {
	ports.Store
	allowUnsigned bool
}

// NewChecksumMiddleware creates a middleware that seals every checkpoint with a
// SHA-256 digest on save and verifies it on load.
// A mismatch is reported as domain.ErrCorruptCheckpoint.
func NewChecksumMiddleware(opts ...ChecksumOption) Middleware {
	return func(next ports.Store) ports.Store {
		m := &checksumMiddleware{Store: next}
		for _, opt := range opts {
			opt(m)
		}
		return m
	}
}

func (m *checksumMiddleware) Save(ctx context.Context, sweepID string, cp *domain.Checkpoint) error {
	sealed := cp.Clone()
	sum, err := Checksum(sealed)
	if err != nil {
		return err
	}
	sealed.Checksum = sum
	return m.Store.Save(ctx, sweepID, sealed)
}

func (m *checksumMiddleware) Load(ctx context.Context, sweepID string) (*domain.Checkpoint, error) {
	cp, err := m.Store.Load(ctx, sweepID)
	if err != nil {
		return nil, err
	}
	if cp.Checksum == "" {
		if m.allowUnsigned {
			return cp, nil
		}
		return nil, fmt.Errorf("checkpoint %s has no checksum: %w", sweepID, domain.ErrCorruptCheckpoint)
	}

	want, err := Checksum(cp)
	if err != nil {
		return nil, err
	}
	if want != cp.Checksum {
		return nil, fmt.Errorf("checkpoint %s checksum mismatch: %w", sweepID, domain.ErrCorruptCheckpoint)
	}
	return cp, nil
}

// Checksum returns the hex SHA-256 of cp's JSON encoding with the checksum field cleared.
func Checksum(cp *domain.Checkpoint) (string, error) {
	c := *cp
	c.Checksum = ""
	data, err := json.Marshal(&c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal checkpoint: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
