package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Scroti/want-to-watch/internal/types"
)

const listColumns = `id, user_id, name, description, is_public, cover_image_url, items_count, created_at, updated_at`

func scanList(row scanner) (*types.CustomList, error) {
	var l types.CustomList
	err := row.Scan(&l.ID, &l.UserID, &l.Name, &l.Description, &l.IsPublic, &l.CoverImageURL,
		&l.ItemsCount, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) CreateList(ctx context.Context, userID string, req types.CreateListRequest) (*types.CustomList, error) {
	ts := now()
	l := &types.CustomList{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          req.Name,
		Description:   req.Description,
		IsPublic:      true,
		CoverImageURL: req.CoverImageURL,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	if req.IsPublic != nil {
		l.IsPublic = *req.IsPublic
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO custom_lists (`+listColumns+`) VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
	`, l.ID, l.UserID, l.Name, l.Description, l.IsPublic, l.CoverImageURL, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert list: %w", err)
	}
	return l, nil
}

func (s *Store) GetList(ctx context.Context, id string) (*types.CustomList, error) {
	l, err := scanList(s.db.QueryRowContext(ctx, `SELECT `+listColumns+` FROM custom_lists WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: list", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	return l, nil
}

// ownedList loads a list and checks that userID owns it. A missing list wins
// over a foreign one.
func (s *Store) ownedList(ctx context.Context, userID, id string) (*types.CustomList, error) {
	l, err := s.GetList(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.UserID != userID {
		return nil, fmt.Errorf("%w: not your list", ErrForbidden)
	}
	return l, nil
}

type ListFilter struct {
	// OwnerID restricts to one user's lists. Empty means all public lists.
	OwnerID    string
	ViewerID   string
	PublicOnly bool
}

// ListLists returns lists newest first with the owner hydrated. Private
// lists are only returned to their owner.
func (s *Store) ListLists(ctx context.Context, f ListFilter) ([]*types.CustomList, error) {
	query := `SELECT ` + listColumns + ` FROM custom_lists`
	var args []any
	switch {
	case f.OwnerID == "":
		query += ` WHERE is_public = 1`
	case f.PublicOnly || f.OwnerID != f.ViewerID:
		query += ` WHERE user_id = ? AND is_public = 1`
		args = append(args, f.OwnerID)
	default:
		query += ` WHERE user_id = ?`
		args = append(args, f.OwnerID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT 200`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	defer rows.Close()

	lists := []*types.CustomList{}
	var ownerIDs []string
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, l)
		ownerIDs = append(ownerIDs, l.UserID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	profiles, err := s.ProfilesByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	for _, l := range lists {
		l.User = profiles[l.UserID]
	}
	return lists, nil
}

// GetListWithItems returns a list, its owner and its items with each item's
// media taken from the owner's watchlist. Private lists are forbidden to
// anyone but the owner.
func (s *Store) GetListWithItems(ctx context.Context, id, viewerID string) (*types.CustomList, error) {
	l, err := s.GetList(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.IsPublic && l.UserID != viewerID {
		return nil, fmt.Errorf("%w: list is private", ErrForbidden)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT list_id, media_id, added_at FROM custom_list_items
		WHERE list_id = ? ORDER BY added_at DESC, rowid DESC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	l.Items = []*types.CustomListItem{}
	var mediaIDs []string
	for rows.Next() {
		var item types.CustomListItem
		if err := rows.Scan(&item.ListID, &item.MediaID, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan list item: %w", err)
		}
		l.Items = append(l.Items, &item)
		mediaIDs = append(mediaIDs, item.MediaID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	media, err := s.watchlistItemsByIDs(ctx, l.UserID, mediaIDs)
	if err != nil {
		return nil, err
	}
	for _, item := range l.Items {
		item.Media = media[item.MediaID]
	}

	profiles, err := s.ProfilesByIDs(ctx, []string{l.UserID})
	if err != nil {
		return nil, err
	}
	l.User = profiles[l.UserID]
	return l, nil
}

func (s *Store) UpdateList(ctx context.Context, userID, id string, req types.UpdateListRequest) (*types.CustomList, error) {
	l, err := s.ownedList(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		l.Name = *req.Name
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.IsPublic != nil {
		l.IsPublic = *req.IsPublic
	}
	if req.CoverImageURL != nil {
		l.CoverImageURL = *req.CoverImageURL
	}
	l.UpdatedAt = now()

	_, err = s.db.ExecContext(ctx, `
		UPDATE custom_lists SET name = ?, description = ?, is_public = ?, cover_image_url = ?, updated_at = ?
		WHERE id = ?
	`, l.Name, l.Description, l.IsPublic, l.CoverImageURL, l.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update list: %w", err)
	}
	return s.GetList(ctx, id)
}

func (s *Store) DeleteList(ctx context.Context, userID, id string) error {
	if _, err := s.ownedList(ctx, userID, id); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM custom_list_items WHERE list_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete list items: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM custom_lists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	return nil
}

// AddListItem appends mediaID to userID's list and bumps items_count in the
// same statement sequence. The media is hydrated from the owner's watchlist.
func (s *Store) AddListItem(ctx context.Context, userID, listID, mediaID string) (*types.CustomListItem, error) {
	if _, err := s.ownedList(ctx, userID, listID); err != nil {
		return nil, err
	}

	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM custom_list_items WHERE list_id = ? AND media_id = ?`, listID, mediaID,
	).Scan(&one)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: item already in list", ErrConflict)
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to check list item: %w", err)
	}

	item := &types.CustomListItem{ListID: listID, MediaID: mediaID, AddedAt: now()}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO custom_list_items (list_id, media_id, added_at) VALUES (?, ?, ?)`,
		item.ListID, item.MediaID, item.AddedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: item already in list", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert list item: %w", err)
	}

	s.adjustCounter(ctx, "items_count", listID,
		`UPDATE custom_lists SET items_count = items_count + 1, updated_at = ? WHERE id = ?`, now(), listID)

	media, err := s.watchlistItemsByIDs(ctx, userID, []string{mediaID})
	if err != nil {
		return nil, err
	}
	item.Media = media[mediaID]
	return item, nil
}

// RemoveListItem drops mediaID from the list. Removing an absent item is a
// no-op and items_count never drops below zero.
func (s *Store) RemoveListItem(ctx context.Context, userID, listID, mediaID string) error {
	if _, err := s.ownedList(ctx, userID, listID); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM custom_list_items WHERE list_id = ? AND media_id = ?`, listID, mediaID)
	if err != nil {
		return fmt.Errorf("failed to delete list item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	s.adjustCounter(ctx, "items_count", listID,
		`UPDATE custom_lists SET items_count = MAX(items_count - 1, 0), updated_at = ? WHERE id = ?`, now(), listID)
	return nil
}
