package services

import (
	"context"

	"github.com/Scroti/want-to-watch/internal/logging"
	"github.com/Scroti/want-to-watch/internal/metrics"
	"github.com/Scroti/want-to-watch/internal/types"
)

// ActivityStore is the write side the activity writer needs.
type ActivityStore interface {
	InsertActivity(ctx context.Context, a *types.Activity) error
}

// ActivityWriter appends activity rows after a successful mutation. It never
// fails the caller: errors are logged and counted.
type ActivityWriter struct {
	store ActivityStore
}

func NewActivityWriter(store ActivityStore) *ActivityWriter {
	return &ActivityWriter{store: store}
}

// Record writes exactly one activity row for actorID.
func (w *ActivityWriter) Record(ctx context.Context, actorID string, activityType types.ActivityType, targetID string, targetType types.TargetType, metadata map[string]any) {
	a := &types.Activity{
		UserID:       actorID,
		ActivityType: activityType,
		TargetID:     targetID,
		TargetType:   targetType,
		Metadata:     metadata,
	}
	// Outlives request cancellation; the primary write has already committed.
	if err := w.store.InsertActivity(context.WithoutCancel(ctx), a); err != nil {
		metrics.RecordSideEffectFailure("activity")
		logging.Ctx(ctx).Warn().Err(err).
			Str("activity_type", string(activityType)).
			Str("target_id", targetID).
			Msg("failed to record activity")
	}
}
