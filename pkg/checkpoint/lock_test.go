package checkpoint

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/fieldsweep/pkg/adapters/memory"
	"github.com/aretw0/fieldsweep/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("sweep-%d", i)
		_ = mgr.Save(ctx, id, domain.NewCheckpoint("in.fdf", nil, "", nil))
		_ = mgr.Delete(ctx, id)
	}

	if n := len(mgr.locks); n != 0 {
		t.Errorf("lock map leaked %d entries", n)
	}
}
