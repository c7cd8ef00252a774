package inputs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/fieldsweep/pkg/adapters/inputs"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	path string
	err  error
}

func startWatch(t *testing.T, w *inputs.Watcher) <-chan result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	ch := make(chan result, 1)
	go func() {
		path, err := w.RequestInput(ctx, domain.InputRequest{Index: 1})
		ch <- result{path, err}
	}()
	// Give fsnotify time to register the directory.
	time.Sleep(100 * time.Millisecond)
	return ch
}

func TestWatcher(t *testing.T) {
	t.Run("Accepts Dropped FDF", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "drop")
		w := inputs.NewWatcher(dir, inputs.WithDebounce(20*time.Millisecond))
		ch := startWatch(t, w)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
		target := filepath.Join(dir, "fixed.fdf")
		require.NoError(t, os.WriteFile(target, []byte("SystemLabel x\n"), 0644))

		r := <-ch
		require.NoError(t, r.err)
		assert.Equal(t, target, r.path)
	})

	t.Run("Decline File", func(t *testing.T) {
		dir := t.TempDir()
		w := inputs.NewWatcher(dir)
		ch := startWatch(t, w)

		require.NoError(t, os.WriteFile(filepath.Join(dir, inputs.DeclineFile), nil, 0644))

		r := <-ch
		assert.ErrorIs(t, r.err, domain.ErrInputDeclined)
		assert.NoFileExists(t, filepath.Join(dir, inputs.DeclineFile))
	})

	t.Run("Canceled", func(t *testing.T) {
		w := inputs.NewWatcher(t.TempDir())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := w.RequestInput(ctx, domain.InputRequest{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
