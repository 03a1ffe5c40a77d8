package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Scroti/want-to-watch/internal/types"
)

const commentColumns = `id, user_id, media_id, parent_id, content, contains_spoilers, created_at, updated_at`

func scanComment(row scanner) (*types.Comment, error) {
	var (
		c        types.Comment
		parentID sql.NullString
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.MediaID, &parentID, &c.Content, &c.ContainsSpoilers, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	return &c, nil
}

func (s *Store) GetComment(ctx context.Context, id string) (*types.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: comment", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return c, nil
}

// CreateComment adds a top-level comment or a reply. Replies nest one level:
// the parent must be a top-level comment on the same media.
func (s *Store) CreateComment(ctx context.Context, userID string, req types.CreateCommentRequest) (*types.Comment, error) {
	if req.ParentID != nil {
		parent, err := s.GetComment(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.MediaID != req.MediaID {
			return nil, fmt.Errorf("%w: parent comment belongs to another title", ErrInvalid)
		}
		if parent.ParentID != nil {
			return nil, fmt.Errorf("%w: replies cannot be nested", ErrInvalid)
		}
	}

	ts := now()
	c := &types.Comment{
		ID:               uuid.NewString(),
		UserID:           userID,
		MediaID:          req.MediaID,
		ParentID:         req.ParentID,
		Content:          req.Content,
		ContainsSpoilers: req.ContainsSpoilers,
		CreatedAt:        ts,
		UpdatedAt:        ts,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (`+commentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.MediaID, c.ParentID, c.Content, c.ContainsSpoilers, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	profiles, err := s.ProfilesByIDs(ctx, []string{userID})
	if err != nil {
		return nil, err
	}
	c.User = profiles[userID]
	return c, nil
}

// ListComments returns the top-level comments on mediaID newest first, each
// with its replies oldest first.
func (s *Store) ListComments(ctx context.Context, mediaID string) ([]*types.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE media_id = ? ORDER BY created_at ASC, rowid ASC`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var (
		all     []*types.Comment
		userIDs []string
	)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		all = append(all, c)
		userIDs = append(userIDs, c.UserID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	profiles, err := s.ProfilesByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*types.Comment)
	var topLevel []*types.Comment
	for _, c := range all {
		c.User = profiles[c.UserID]
		if c.ParentID == nil {
			c.Replies = []*types.Comment{}
			byID[c.ID] = c
			topLevel = append(topLevel, c)
		}
	}
	for _, c := range all {
		if c.ParentID == nil {
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, c)
			parent.ReplyCount++
		}
	}

	out := make([]*types.Comment, 0, len(topLevel))
	for i := len(topLevel) - 1; i >= 0; i-- {
		out = append(out, topLevel[i])
	}
	return out, nil
}

// DeleteComment removes userID's comment together with its replies.
func (s *Store) DeleteComment(ctx context.Context, userID, id string) error {
	c, err := s.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return fmt.Errorf("%w: not your comment", ErrForbidden)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE parent_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete replies: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
