package services

import (
	"context"

	"github.com/Scroti/want-to-watch/internal/logging"
	"github.com/Scroti/want-to-watch/internal/metrics"
	"github.com/Scroti/want-to-watch/internal/types"
)

type NotificationStore interface {
	InsertNotification(ctx context.Context, n *types.Notification) error
}

// NotificationWriter delivers notifications with the same degrade-silently
// policy as ActivityWriter.
type NotificationWriter struct {
	store NotificationStore
}

func NewNotificationWriter(store NotificationStore) *NotificationWriter {
	return &NotificationWriter{store: store}
}

// Notify stores n for n.UserID. Users are never notified about their own actions.
func (w *NotificationWriter) Notify(ctx context.Context, n *types.Notification) {
	if n.FromUserID != nil && *n.FromUserID == n.UserID {
		return
	}
	if err := w.store.InsertNotification(context.WithoutCancel(ctx), n); err != nil {
		metrics.RecordSideEffectFailure("notification")
		logging.Ctx(ctx).Warn().Err(err).
			Str("notification_type", string(n.NotificationType)).
			Str("recipient", n.UserID).
			Msg("failed to deliver notification")
	}
}

// NotifyFollow tells followingID that followerID started following them.
func (w *NotificationWriter) NotifyFollow(ctx context.Context, followerID, followingID string) {
	w.Notify(ctx, &types.Notification{
		UserID:           followingID,
		NotificationType: types.NotificationFollow,
		FromUserID:       &followerID,
		TargetID:         followerID,
		TargetType:       types.TargetUser,
		Title:            "New Follower",
		Message:          "started following you",
	})
}

// NotifyRecommendation tells the recipient about a recommended title.
func (w *NotificationWriter) NotifyRecommendation(ctx context.Context, rec *types.Recommendation) {
	message := rec.Message
	if message == "" {
		message = "recommended this to you"
	}
	from := rec.FromUserID
	w.Notify(ctx, &types.Notification{
		UserID:           rec.ToUserID,
		NotificationType: types.NotificationRecommendation,
		FromUserID:       &from,
		TargetID:         rec.MediaID,
		TargetType:       types.TargetMedia,
		Title:            "New Recommendation",
		Message:          message,
	})
}
