package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/fieldsweep/pkg/adapters/memory"
	"github.com/aretw0/fieldsweep/pkg/checkpoint"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *checkpoint.Manager) {
	t.Helper()
	mgr := checkpoint.NewManager(memory.NewStore())
	return NewServer(mgr, "test"), mgr
}

func TestListAndInspect(t *testing.T) {
	ctx := context.Background()
	s, mgr := newTestServer(t)

	list, err := s.handleList(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Empty(t, list.Checkpoints)

	cp := domain.NewCheckpoint("water.fdf", nil, "", []domain.FieldVector{{0, 0, 0}, {0, 0, 0.1}, {0, 0, 0.2}})
	cp.LastCompleted = 0
	require.NoError(t, mgr.Save(ctx, "water", cp))
	require.NoError(t, mgr.SetAutostart(ctx, "water", true))

	list, err = s.handleList(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, list.Checkpoints, 1)
	sum := list.Checkpoints[0]
	assert.Equal(t, "water", sum.ID)
	assert.Equal(t, 0, sum.LastCompleted)
	assert.Equal(t, 3, sum.Total)
	assert.True(t, sum.Autostart)

	resp, err := s.handleInspect(ctx, mcp.CallToolRequest{}, map[string]interface{}{"id": "water"})
	require.NoError(t, err)
	assert.Equal(t, "water.fdf", resp.Checkpoint.InputFile)
	require.NotNil(t, resp.Next)
	assert.Equal(t, 1, resp.Next.Index)
	assert.Equal(t, "E_0p0000_0p0000_0p1000", resp.Next.Dir)

	_, err = s.handleInspect(ctx, mcp.CallToolRequest{}, map[string]interface{}{"id": "missing"})
	assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)

	_, err = s.handleInspect(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	s, _ := newTestServer(t)

	resp, err := s.handlePreview(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"z": "0:1.1:0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, 12, resp.Count)
	assert.Len(t, resp.Points, PreviewLimit)
	assert.Equal(t, 2, resp.Remaining)

	resp, err = s.handlePreview(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"points": "[[0.1, 0, 0], [0.2, 0, 0]]",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, domain.FieldVector{0.2, 0, 0}, resp.Points[1].Field)

	_, err = s.handlePreview(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"x": "1:2"})
	assert.Error(t, err)
}
