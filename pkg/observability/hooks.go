package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/fieldsweep/pkg/domain"
)

// CombineHooks fans every event out to all hook sets, in order.
func CombineHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			for _, s := range sets {
				if s.OnTransition != nil {
					s.OnTransition(ctx, e)
				}
			}
		},
		OnPointStart: func(ctx context.Context, e *domain.PointEvent) {
			for _, s := range sets {
				if s.OnPointStart != nil {
					s.OnPointStart(ctx, e)
				}
			}
		},
		OnPointDone: func(ctx context.Context, e *domain.PointEvent) {
			for _, s := range sets {
				if s.OnPointDone != nil {
					s.OnPointDone(ctx, e)
				}
			}
		},
	}
}

// LoggingHooks logs transitions and point outcomes at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.DebugContext(ctx, "status", "from", e.From, "to", e.To, "index", e.Index)
		},
		OnPointStart: func(ctx context.Context, e *domain.PointEvent) {
			logger.DebugContext(ctx, "point_start", "index", e.Index, "dir", e.Dir)
		},
		OnPointDone: func(ctx context.Context, e *domain.PointEvent) {
			logger.DebugContext(ctx, "point_done",
				"index", e.Index,
				"outcome", e.Outcome,
				"duration", e.Duration,
			)
		},
	}
}
