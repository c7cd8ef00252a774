package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/fieldsweep/pkg/adapters/inputs"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitPending(t *testing.T, m *inputs.Mailbox) *domain.InputRequest {
	t.Helper()
	var req *domain.InputRequest
	require.Eventually(t, func() bool {
		req = m.Pending()
		return req != nil
	}, 2*time.Second, 5*time.Millisecond)
	return req
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("Nothing Stored", func(t *testing.T) {
		e := newEnv(t, zAxis(2)...)
		cp, err := pipeline.Bootstrap(ctx, e.mgr, "default", inputs.AutoConfirm(true))
		require.NoError(t, err)
		assert.Nil(t, cp)
	})

	t.Run("Autostart Resumes Without Asking", func(t *testing.T) {
		e := newEnv(t, zAxis(2)...)
		e.cp.LastCompleted = 0
		require.NoError(t, e.mgr.Save(ctx, "default", e.cp))
		require.NoError(t, e.mgr.SetAutostart(ctx, "default", true))

		cp, err := pipeline.Bootstrap(ctx, e.mgr, "default", inputs.AutoConfirm(false))
		require.NoError(t, err)
		require.NotNil(t, cp)
		assert.Equal(t, 1, cp.NextIndex())
	})

	t.Run("Confirmed", func(t *testing.T) {
		e := newEnv(t, zAxis(2)...)
		require.NoError(t, e.mgr.Save(ctx, "default", e.cp))

		cp, err := pipeline.Bootstrap(ctx, e.mgr, "default", inputs.AutoConfirm(true))
		require.NoError(t, err)
		assert.NotNil(t, cp)
	})

	t.Run("Declined Deletes Checkpoint", func(t *testing.T) {
		e := newEnv(t, zAxis(2)...)
		require.NoError(t, e.mgr.Save(ctx, "default", e.cp))

		cp, err := pipeline.Bootstrap(ctx, e.mgr, "default", inputs.AutoConfirm(false))
		require.NoError(t, err)
		assert.Nil(t, cp)

		exists, err := e.mgr.Exists(ctx, "default")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Marker Without Checkpoint", func(t *testing.T) {
		e := newEnv(t, zAxis(2)...)
		require.NoError(t, e.mgr.SetAutostart(ctx, "default", true))

		_, err := pipeline.Bootstrap(ctx, e.mgr, "default", nil)
		assert.ErrorIs(t, err, domain.ErrChecksumlessCheckpoint)

		auto, err := e.mgr.Autostart(ctx, "default")
		require.NoError(t, err)
		assert.False(t, auto, "marker cleared")
	})
}
