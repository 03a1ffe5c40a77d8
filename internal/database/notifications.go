package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Scroti/want-to-watch/internal/types"
)

const notificationColumns = `id, user_id, notification_type, from_user_id, target_id, target_type, title, message, read, created_at`

// InsertNotification stores a notification for n.UserID.
func (s *Store) InsertNotification(ctx context.Context, n *types.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.NotificationType, n.FromUserID, n.TargetID, n.TargetType, n.Title, n.Message, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns userID's notifications newest first with the
// sender hydrated.
func (s *Store) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*types.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*types.Notification{}
	var senderIDs []string
	for rows.Next() {
		var (
			n    types.Notification
			from sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.NotificationType, &from, &n.TargetID, &n.TargetType,
			&n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if from.Valid {
			n.FromUserID = &from.String
			senderIDs = append(senderIDs, from.String)
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	profiles, err := s.ProfilesByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	for _, n := range notifications {
		if n.FromUserID != nil {
			n.FromUser = profiles[*n.FromUserID]
		}
	}
	return notifications, nil
}

// MarkNotificationsRead marks the given notifications of userID read and
// returns how many rows changed. Ids belonging to other users are ignored.
func (s *Store) MarkNotificationsRead(ctx context.Context, userID string, ids []string) (int64, error) {
	ids = uniqueStrings(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	args := append([]any{userID}, stringArgs(ids)...)
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE user_id = ? AND id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return res.RowsAffected()
}

// MarkNotificationRead marks a single notification; ErrNotFound when it is
// missing or belongs to someone else.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: notification", ErrNotFound)
	}
	return nil
}
