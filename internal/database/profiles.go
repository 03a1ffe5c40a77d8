package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Scroti/want-to-watch/internal/types"
)

const profileColumns = `user_id, username, display_name, bio, avatar_url, favorite_genres, created_at, updated_at`

func scanProfile(row scanner) (*types.Profile, error) {
	var (
		p        types.Profile
		username sql.NullString
		genres   string
	)
	if err := row.Scan(&p.UserID, &username, &p.DisplayName, &p.Bio, &p.AvatarURL, &genres, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if username.Valid {
		p.Username = &username.String
	}
	p.FavoriteGenres = decodeJSON[[]int](genres)
	if p.FavoriteGenres == nil {
		p.FavoriteGenres = []int{}
	}
	return &p, nil
}

// GetProfile returns the profile of userID or ErrNotFound.
func (s *Store) GetProfile(ctx context.Context, userID string) (*types.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: profile", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// GetProfileByUsername looks the profile up by username and falls back to
// treating the value as a user id.
func (s *Store) GetProfileByUsername(ctx context.Context, username string) (*types.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE username = ?`, username)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return s.GetProfile(ctx, username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// BootstrapProfile creates a profile with a null username the first time a
// user is seen. It reports whether a row was inserted.
func (s *Store) BootstrapProfile(ctx context.Context, userID, displayName, avatarURL string) (*types.Profile, bool, error) {
	ts := now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, display_name, avatar_url, favorite_genres, created_at, updated_at)
		VALUES (?, ?, ?, '[]', ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`, userID, displayName, avatarURL, ts, ts)
	if err != nil {
		return nil, false, fmt.Errorf("failed to bootstrap profile: %w", err)
	}
	n, _ := res.RowsAffected()

	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return p, n > 0, nil
}

// ProfileExists reports whether userID has a profile row.
func (s *Store) ProfileExists(ctx context.Context, userID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM profiles WHERE user_id = ?`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check profile: %w", err)
	}
	return true, nil
}

// UpsertProfile applies a partial update to the caller's profile, creating it
// if needed. A username can be set once and must not belong to another user.
func (s *Store) UpsertProfile(ctx context.Context, userID string, req types.UpdateProfileRequest) (*types.Profile, error) {
	current, _, err := s.BootstrapProfile(ctx, userID, "", "")
	if err != nil {
		return nil, err
	}

	// An empty username means "not provided" so it cannot lock the profile.
	if req.Username != nil && *req.Username != "" {
		if current.Username != nil && *current.Username != *req.Username {
			return nil, fmt.Errorf("%w: username cannot be changed once set", ErrInvalid)
		}
		var owner string
		err := s.db.QueryRowContext(ctx,
			`SELECT user_id FROM profiles WHERE username = ? AND user_id <> ?`,
			*req.Username, userID,
		).Scan(&owner)
		switch {
		case err == nil:
			return nil, fmt.Errorf("%w: username already taken", ErrConflict)
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		current.Username = req.Username
	}
	if req.DisplayName != nil {
		current.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		current.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		current.AvatarURL = *req.AvatarURL
	}
	if req.FavoriteGenres != nil {
		current.FavoriteGenres = req.FavoriteGenres
	}
	current.UpdatedAt = now()

	_, err = s.db.ExecContext(ctx, `
		UPDATE profiles
		SET username = ?, display_name = ?, bio = ?, avatar_url = ?, favorite_genres = ?, updated_at = ?
		WHERE user_id = ?
	`, current.Username, current.DisplayName, current.Bio, current.AvatarURL,
		encodeJSON(current.FavoriteGenres), current.UpdatedAt, userID)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: username already taken", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return current, nil
}

// ProfilesByIDs loads the profiles for ids. Missing ids are absent from the map.
func (s *Store) ProfilesByIDs(ctx context.Context, ids []string) (map[string]*types.Profile, error) {
	ids = uniqueStrings(ids)
	out := make(map[string]*types.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		out[p.UserID] = p
	}
	return out, rows.Err()
}

// SearchProfiles matches q case-insensitively against username, display name
// and user id. An empty q returns the newest profiles.
func (s *Store) SearchProfiles(ctx context.Context, q string, limit int) ([]*types.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles`
	var args []any
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query += ` WHERE LOWER(COALESCE(username, '')) LIKE ? OR LOWER(display_name) LIKE ? OR LOWER(user_id) LIKE ?`
		args = append(args, like, like, like)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
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

// ProfileStats derives watchlist, review, follow and list counts for userID.
func (s *Store) ProfileStats(ctx context.Context, userID string) (*types.UserStats, error) {
	if ok, err := s.ProfileExists(ctx, userID); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("%w: profile", ErrNotFound)
	}

	var (
		stats types.UserStats
		avg   sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status IN ('watched', 'completed') THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'want_to_watch' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'currently_watching' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'dropped' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			AVG(rating)
		FROM watchlist_items WHERE user_id = ?
	`, userID).Scan(
		&stats.TotalItems, &stats.WatchedCount, &stats.WantToWatchCount,
		&stats.CurrentlyWatchingCount, &stats.DroppedCount, &stats.CompletedCount, &avg,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count watchlist: %w", err)
	}
	if avg.Valid {
		v := avg.Float64
		stats.AverageRating = &v
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM reviews WHERE user_id = ?),
			(SELECT COUNT(*) FROM follows WHERE following_id = ?),
			(SELECT COUNT(*) FROM follows WHERE follower_id = ?),
			(SELECT COUNT(*) FROM custom_lists WHERE user_id = ?)
	`, userID, userID, userID, userID).Scan(
		&stats.ReviewsCount, &stats.FollowersCount, &stats.FollowingCount, &stats.ListsCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count social stats: %w", err)
	}
	return &stats, nil
}
