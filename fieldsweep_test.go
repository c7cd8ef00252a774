package fieldsweep_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aretw0/fieldsweep"
	"github.com/aretw0/fieldsweep/pkg/adapters/inputs"
	"github.com/aretw0/fieldsweep/pkg/adapters/memory"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	dirs []string
}

func (r *recorder) Run(ctx context.Context, dir string) (ports.SolverResult, error) {
	r.mu.Lock()
	r.dirs = append(r.dirs, filepath.Base(dir))
	r.mu.Unlock()
	return ports.SolverResult{}, nil
}

func TestNew_RequiresSolver(t *testing.T) {
	_, err := fieldsweep.New(nil)
	assert.Error(t, err)
}

func TestEngine_SnapshotBeforeRun(t *testing.T) {
	e, err := fieldsweep.New(&recorder{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, e.Snapshot().Status)
	e.Stop()
}

func TestEngine_StartRejectsEmptySweep(t *testing.T) {
	e, err := fieldsweep.New(&recorder{})
	require.NoError(t, err)
	err = e.Start(context.Background(), domain.NewCheckpoint("in.fdf", nil, "", nil))
	assert.Error(t, err)
}

func TestEngine_ResumeWithoutCheckpoint(t *testing.T) {
	e, err := fieldsweep.New(&recorder{})
	require.NoError(t, err)
	resumed, err := e.Resume(context.Background(), inputs.AutoConfirm(true))
	require.NoError(t, err)
	assert.False(t, resumed)
}

func TestEngine_StopsWhenPointCannotChain(t *testing.T) {
	work := t.TempDir()
	input := filepath.Join(work, "water.fdf")
	require.NoError(t, os.WriteFile(input, []byte("SystemLabel water\n"), 0o644))

	store := memory.NewStore()
	solver := &recorder{}
	e, err := fieldsweep.New(solver, fieldsweep.WithStore(store), fieldsweep.WithRoot(work), fieldsweep.WithSweepID("w"))
	require.NoError(t, err)

	// The solver leaves no log, so point 1 has nothing to chain from and the
	// default input provider declines.
	cp := domain.NewCheckpoint(input, nil, "", []domain.FieldVector{{0, 0, 0}, {0, 0, 0.1}})
	require.NoError(t, e.Start(context.Background(), cp))

	snap := e.Snapshot()
	assert.Equal(t, domain.StatusStopped, snap.Status)
	assert.Equal(t, 0, snap.LastCompleted)
	assert.Len(t, solver.dirs, 1)

	stored, err := e.Checkpoints().Load(context.Background(), "w")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.LastCompleted)

	resumed, err := e.Resume(context.Background(), inputs.AutoConfirm(true))
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, domain.StatusStopped, e.Snapshot().Status)
	assert.Len(t, solver.dirs, 1, "the unchainable point is not launched")
}
