package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Scroti/want-to-watch/internal/types"
)

// Follow makes followerID follow followingID.
func (s *Store) Follow(ctx context.Context, followerID, followingID string) (*types.Follow, error) {
	if followerID == followingID {
		return nil, fmt.Errorf("%w: cannot follow yourself", ErrInvalid)
	}
	if ok, err := s.ProfileExists(ctx, followingID); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	following, err := s.IsFollowing(ctx, followerID, followingID)
	if err != nil {
		return nil, err
	}
	if following {
		return nil, fmt.Errorf("%w: already following this user", ErrConflict)
	}

	f := &types.Follow{FollowerID: followerID, FollowingID: followingID, CreatedAt: now()}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, ?)`,
		f.FollowerID, f.FollowingID, f.CreatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: already following this user", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert follow: %w", err)
	}
	return f, nil
}

// Unfollow removes the relationship. Unfollowing someone not followed is not an error.
func (s *Store) Unfollow(ctx context.Context, followerID, followingID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND following_id = ?`, followerID, followingID,
	); err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return nil
}

func (s *Store) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM follows WHERE follower_id = ? AND following_id = ?`, followerID, followingID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return true, nil
}

// ListFollowers returns the profiles following userID, most recent first.
func (s *Store) ListFollowers(ctx context.Context, userID string) ([]*types.Profile, error) {
	return s.followProfiles(ctx, `
		SELECT p.user_id, p.username, p.display_name, p.bio, p.avatar_url, p.favorite_genres, p.created_at, p.updated_at
		FROM follows f JOIN profiles p ON p.user_id = f.follower_id
		WHERE f.following_id = ? ORDER BY f.created_at DESC, f.rowid DESC
	`, userID)
}

// ListFollowing returns the profiles userID follows, most recent first.
func (s *Store) ListFollowing(ctx context.Context, userID string) ([]*types.Profile, error) {
	return s.followProfiles(ctx, `
		SELECT p.user_id, p.username, p.display_name, p.bio, p.avatar_url, p.favorite_genres, p.created_at, p.updated_at
		FROM follows f JOIN profiles p ON p.user_id = f.following_id
		WHERE f.follower_id = ? ORDER BY f.created_at DESC, f.rowid DESC
	`, userID)
}

func (s *Store) followProfiles(ctx context.Context, query, userID string) ([]*types.Profile, error) {
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}
	defer rows.Close()

	profiles := []*types.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
