package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Scroti/want-to-watch/internal/metrics"
	"github.com/Scroti/want-to-watch/internal/types"
)

type recordingStore struct {
	mu            sync.Mutex
	err           error
	activities    []*types.Activity
	notifications []*types.Notification
}

func (s *recordingStore) InsertActivity(_ context.Context, a *types.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.activities = append(s.activities, a)
	return nil
}

func (s *recordingStore) InsertNotification(_ context.Context, n *types.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.notifications = append(s.notifications, n)
	return nil
}

func TestActivityWriterRecordsOneRow(t *testing.T) {
	store := &recordingStore{}
	w := NewActivityWriter(store)

	w.Record(context.Background(), "a", types.ActivityCreatedList, "list-1", types.TargetList, map[string]any{"name": "Faves"})

	require.Len(t, store.activities, 1)
	got := store.activities[0]
	assert.Equal(t, "a", got.UserID)
	assert.Equal(t, types.ActivityCreatedList, got.ActivityType)
	assert.Equal(t, "Faves", got.Metadata["name"])
}

func TestActivityWriterSwallowsFailures(t *testing.T) {
	store := &recordingStore{err: errors.New("disk full")}
	w := NewActivityWriter(store)
	before := testutil.ToFloat64(metrics.SideEffectFailures.WithLabelValues("activity"))

	assert.NotPanics(t, func() {
		w.Record(context.Background(), "a", types.ActivityAddedItem, "550-movie", types.TargetMedia, nil)
	})
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SideEffectFailures.WithLabelValues("activity")))
}

func TestActivityWriterIgnoresCancelledRequest(t *testing.T) {
	store := &recordingStore{}
	w := NewActivityWriter(store)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w.Record(ctx, "a", types.ActivityAddedItem, "550-movie", types.TargetMedia, nil)
	assert.Len(t, store.activities, 1)
}

func TestNotifyFollow(t *testing.T) {
	store := &recordingStore{}
	w := NewNotificationWriter(store)

	w.NotifyFollow(context.Background(), "a", "b")

	require.Len(t, store.notifications, 1)
	n := store.notifications[0]
	assert.Equal(t, "b", n.UserID)
	assert.Equal(t, types.NotificationFollow, n.NotificationType)
	require.NotNil(t, n.FromUserID)
	assert.Equal(t, "a", *n.FromUserID)
	assert.Equal(t, "New Follower", n.Title)
	assert.Equal(t, "started following you", n.Message)
}

func TestNotifyRecommendationDefaultsMessage(t *testing.T) {
	store := &recordingStore{}
	w := NewNotificationWriter(store)

	w.NotifyRecommendation(context.Background(), &types.Recommendation{FromUserID: "a", ToUserID: "b", MediaID: "550-movie"})
	w.NotifyRecommendation(context.Background(), &types.Recommendation{FromUserID: "a", ToUserID: "b", MediaID: "550-movie", Message: "watch this"})

	require.Len(t, store.notifications, 2)
	assert.Equal(t, "recommended this to you", store.notifications[0].Message)
	assert.Equal(t, "watch this", store.notifications[1].Message)
	assert.Equal(t, "550-movie", store.notifications[1].TargetID)
	assert.Equal(t, types.TargetMedia, store.notifications[1].TargetType)
}

func TestNotifySkipsSelf(t *testing.T) {
	store := &recordingStore{}
	w := NewNotificationWriter(store)

	w.NotifyFollow(context.Background(), "a", "a")
	assert.Empty(t, store.notifications)
}

func TestNotificationWriterSwallowsFailures(t *testing.T) {
	store := &recordingStore{err: errors.New("locked")}
	w := NewNotificationWriter(store)
	before := testutil.ToFloat64(metrics.SideEffectFailures.WithLabelValues("notification"))

	w.NotifyFollow(context.Background(), "a", "b")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SideEffectFailures.WithLabelValues("notification")))
}
