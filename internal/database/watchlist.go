package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Scroti/want-to-watch/internal/types"
)

const watchlistColumns = `id, user_id, tmdb_id, media_type, title, overview, poster_path, release_date,
	first_air_date, status, rating, watched_date, tags, priority, notes, added_at, updated_at`

// WatchlistItemID builds the "{tmdb_id}-{media_type}" item id.
func WatchlistItemID(tmdbID int, mediaType types.MediaType) string {
	return strconv.Itoa(tmdbID) + "-" + string(mediaType)
}

// ParseMediaID splits a "{tmdb_id}-{media_type}" id.
func ParseMediaID(id string) (int, types.MediaType, error) {
	idx := strings.LastIndex(id, "-")
	if idx <= 0 {
		return 0, "", fmt.Errorf("%w: malformed media id %q", ErrInvalid, id)
	}
	tmdbID, err := strconv.Atoi(id[:idx])
	if err != nil || tmdbID <= 0 {
		return 0, "", fmt.Errorf("%w: malformed media id %q", ErrInvalid, id)
	}
	mediaType := types.MediaType(id[idx+1:])
	if mediaType != types.MediaTypeMovie && mediaType != types.MediaTypeTV {
		return 0, "", fmt.Errorf("%w: unknown media type %q", ErrInvalid, mediaType)
	}
	return tmdbID, mediaType, nil
}

func scanWatchlistItem(row scanner) (*types.WatchlistItem, error) {
	var (
		item        types.WatchlistItem
		rating      sql.NullInt64
		watchedDate sql.NullString
		tags        string
	)
	err := row.Scan(&item.ID, &item.UserID, &item.TMDBID, &item.MediaType, &item.Title, &item.Overview,
		&item.PosterPath, &item.ReleaseDate, &item.FirstAirDate, &item.Status, &rating, &watchedDate,
		&tags, &item.Priority, &item.Notes, &item.AddedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if rating.Valid {
		r := int(rating.Int64)
		item.Rating = &r
	}
	if watchedDate.Valid {
		item.WatchedDate = &watchedDate.String
	}
	item.Tags = decodeJSON[[]string](tags)
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return &item, nil
}

// AddWatchlistItem inserts a new item for userID. A second add of the same
// title and media type returns ErrConflict and leaves the first untouched.
func (s *Store) AddWatchlistItem(ctx context.Context, userID string, req types.AddWatchlistItemRequest) (*types.WatchlistItem, error) {
	id := WatchlistItemID(req.TMDBID, req.MediaType)

	if _, err := s.GetWatchlistItem(ctx, userID, id); err == nil {
		return nil, fmt.Errorf("%w: item already in watchlist", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	ts := now()
	item := &types.WatchlistItem{
		ID:           id,
		UserID:       userID,
		TMDBID:       req.TMDBID,
		MediaType:    req.MediaType,
		Title:        req.Title,
		Overview:     req.Overview,
		PosterPath:   req.PosterPath,
		ReleaseDate:  req.ReleaseDate,
		FirstAirDate: req.FirstAirDate,
		Status:       req.Status,
		Rating:       req.Rating,
		Tags:         req.Tags,
		Priority:     req.Priority,
		Notes:        req.Notes,
		AddedAt:      ts,
		UpdatedAt:    ts,
	}
	if item.Status == "" {
		item.Status = types.StatusWantToWatch
	}
	if item.Priority == "" {
		item.Priority = types.PriorityMedium
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if item.Status.IsWatched() {
		d := ts.Format("2006-01-02")
		item.WatchedDate = &d
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watchlist_items (`+watchlistColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.UserID, item.TMDBID, item.MediaType, item.Title, item.Overview, item.PosterPath,
		item.ReleaseDate, item.FirstAirDate, item.Status, item.Rating, item.WatchedDate,
		encodeJSON(item.Tags), item.Priority, item.Notes, item.AddedAt, item.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: item already in watchlist", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert watchlist item: %w", err)
	}
	return item, nil
}

func (s *Store) GetWatchlistItem(ctx context.Context, userID, id string) (*types.WatchlistItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+watchlistColumns+` FROM watchlist_items WHERE user_id = ? AND id = ?`, userID, id)
	item, err := scanWatchlistItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: watchlist item", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist item: %w", err)
	}
	return item, nil
}

// ListWatchlist returns userID's items, newest first, optionally filtered by status.
func (s *Store) ListWatchlist(ctx context.Context, userID string, status types.WatchStatus) ([]*types.WatchlistItem, error) {
	query := `SELECT ` + watchlistColumns + ` FROM watchlist_items WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY added_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	defer rows.Close()

	items := []*types.WatchlistItem{}
	for rows.Next() {
		item, err := scanWatchlistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateWatchlistItem patches an item and returns it with the status it had
// before the update.
func (s *Store) UpdateWatchlistItem(ctx context.Context, userID, id string, req types.UpdateWatchlistItemRequest) (*types.WatchlistItem, types.WatchStatus, error) {
	item, err := s.GetWatchlistItem(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	previous := item.Status

	if req.Status != nil {
		item.Status = *req.Status
	}
	switch {
	case req.ClearRating && req.Rating != nil:
		return nil, "", fmt.Errorf("%w: rating and clear_rating are mutually exclusive", ErrInvalid)
	case req.ClearRating:
		item.Rating = nil
	case req.Rating != nil:
		item.Rating = req.Rating
	}
	if req.Tags != nil {
		item.Tags = req.Tags
	}
	if req.Priority != nil {
		item.Priority = *req.Priority
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	if req.WatchedDate != nil {
		item.WatchedDate = req.WatchedDate
	} else if item.Status.IsWatched() && !previous.IsWatched() {
		d := now().Format("2006-01-02")
		item.WatchedDate = &d
	}
	item.UpdatedAt = now()

	res, err := s.db.ExecContext(ctx, `
		UPDATE watchlist_items
		SET status = ?, rating = ?, watched_date = ?, tags = ?, priority = ?, notes = ?, updated_at = ?
		WHERE user_id = ? AND id = ?
	`, item.Status, item.Rating, item.WatchedDate, encodeJSON(item.Tags), item.Priority, item.Notes,
		item.UpdatedAt, userID, id)
	if err != nil {
		return nil, "", fmt.Errorf("failed to update watchlist item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, "", fmt.Errorf("%w: watchlist item", ErrNotFound)
	}
	return item, previous, nil
}

func (s *Store) DeleteWatchlistItem(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM watchlist_items WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: watchlist item", ErrNotFound)
	}
	return nil
}

// watchlistItemsByIDs loads ownerID's items keyed by item id.
func (s *Store) watchlistItemsByIDs(ctx context.Context, ownerID string, ids []string) (map[string]*types.WatchlistItem, error) {
	ids = uniqueStrings(ids)
	out := make(map[string]*types.WatchlistItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := append([]any{ownerID}, stringArgs(ids)...)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+watchlistColumns+` FROM watchlist_items WHERE user_id = ? AND id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanWatchlistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist item: %w", err)
		}
		out[item.ID] = item
	}
	return out, rows.Err()
}
