package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Scroti/want-to-watch/internal/types"
)

const activityColumns = `id, user_id, activity_type, target_id, target_type, metadata, created_at`

// InsertActivity appends one row to the activity log. ID and CreatedAt are
// filled in when empty.
func (s *Store) InsertActivity(ctx context.Context, a *types.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
	}
	if a.Metadata == nil {
		a.Metadata = map[string]any{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (`+activityColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.UserID, a.ActivityType, a.TargetID, a.TargetType, encodeJSON(a.Metadata), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListUserActivities returns userID's own activities, newest first.
func (s *Store) ListUserActivities(ctx context.Context, userID string, limit, offset int) ([]*types.Activity, error) {
	return s.queryActivities(ctx, `
		SELECT `+activityColumns+` FROM activities
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?
	`, userID, limit, offset)
}

// ListFeed returns the activities of everyone viewerID follows, newest first.
func (s *Store) ListFeed(ctx context.Context, viewerID string, limit, offset int) ([]*types.Activity, error) {
	return s.queryActivities(ctx, `
		SELECT `+activityColumns+` FROM activities
		WHERE user_id IN (SELECT following_id FROM follows WHERE follower_id = ?)
		ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?
	`, viewerID, limit, offset)
}

func (s *Store) queryActivities(ctx context.Context, query string, args ...any) ([]*types.Activity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := []*types.Activity{}
	var actorIDs []string
	for rows.Next() {
		var (
			a        types.Activity
			metadata string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.ActivityType, &a.TargetID, &a.TargetType, &metadata, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Metadata = decodeJSON[map[string]any](metadata)
		activities = append(activities, &a)
		actorIDs = append(actorIDs, a.UserID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	profiles, err := s.ProfilesByIDs(ctx, actorIDs)
	if err != nil {
		return nil, err
	}
	for _, a := range activities {
		a.User = profiles[a.UserID]
	}
	return activities, nil
}
