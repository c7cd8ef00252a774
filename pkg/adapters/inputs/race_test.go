package inputs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/fieldsweep/pkg/adapters/inputs"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerFunc func(ctx context.Context, req domain.InputRequest) (string, error)

func (f providerFunc) RequestInput(ctx context.Context, req domain.InputRequest) (string, error) {
	return f(ctx, req)
}

func blocking() providerFunc {
	return func(ctx context.Context, _ domain.InputRequest) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
}

func TestRace(t *testing.T) {
	t.Run("Single Provider Passthrough", func(t *testing.T) {
		p := inputs.Decline{}
		assert.Equal(t, p, inputs.Race(p))
	})

	t.Run("First Answer Wins", func(t *testing.T) {
		m := inputs.NewMailbox()
		r := inputs.Race(blocking(), m)

		done := make(chan string, 1)
		go func() {
			path, err := r.RequestInput(context.Background(), domain.InputRequest{})
			assert.NoError(t, err)
			done <- path
		}()
		waitPending(t, m)
		require.NoError(t, m.Deliver("a.fdf"))

		select {
		case path := <-done:
			assert.Equal(t, "a.fdf", path)
		case <-time.After(time.Second):
			t.Fatal("race did not return")
		}
	})

	t.Run("Decline Wins", func(t *testing.T) {
		r := inputs.Race(blocking(), inputs.Decline{})
		_, err := r.RequestInput(context.Background(), domain.InputRequest{})
		assert.ErrorIs(t, err, domain.ErrInputDeclined)
	})

	t.Run("Failures Drop Out", func(t *testing.T) {
		boom := errors.New("boom")
		failing := providerFunc(func(context.Context, domain.InputRequest) (string, error) { return "", boom })
		r := inputs.Race(failing, failing)
		_, err := r.RequestInput(context.Background(), domain.InputRequest{})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("Failure Then Answer", func(t *testing.T) {
		failing := providerFunc(func(context.Context, domain.InputRequest) (string, error) { return "", errors.New("tty gone") })
		slow := providerFunc(func(context.Context, domain.InputRequest) (string, error) {
			time.Sleep(10 * time.Millisecond)
			return "b.fdf", nil
		})
		path, err := inputs.Race(failing, slow).RequestInput(context.Background(), domain.InputRequest{})
		require.NoError(t, err)
		assert.Equal(t, "b.fdf", path)
	})
}
