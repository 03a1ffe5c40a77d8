package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Scroti/want-to-watch/internal/types"
)

const reviewColumns = `id, user_id, media_id, rating, title, content, contains_spoilers, likes_count, created_at, updated_at`

func scanReview(row scanner) (*types.Review, error) {
	var r types.Review
	err := row.Scan(&r.ID, &r.UserID, &r.MediaID, &r.Rating, &r.Title, &r.Content,
		&r.ContainsSpoilers, &r.LikesCount, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReview stores userID's review of a media item. One review per user
// and media; a second one returns ErrConflict.
func (s *Store) CreateReview(ctx context.Context, userID string, req types.CreateReviewRequest) (*types.Review, error) {
	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM reviews WHERE user_id = ? AND media_id = ?`, userID, req.MediaID,
	).Scan(&existing)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: you have already reviewed this title", ErrConflict)
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to check review: %w", err)
	}

	ts := now()
	review := &types.Review{
		ID:               uuid.NewString(),
		UserID:           userID,
		MediaID:          req.MediaID,
		Rating:           req.Rating,
		Title:            req.Title,
		Content:          req.Content,
		ContainsSpoilers: req.ContainsSpoilers,
		CreatedAt:        ts,
		UpdatedAt:        ts,
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reviews (`+reviewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
	`, review.ID, review.UserID, review.MediaID, review.Rating, review.Title, review.Content,
		review.ContainsSpoilers, review.CreatedAt, review.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: you have already reviewed this title", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert review: %w", err)
	}
	return review, nil
}

func (s *Store) GetReview(ctx context.Context, id string) (*types.Review, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id)
	r, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: review", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return r, nil
}

type ReviewFilter struct {
	MediaID string
	UserID  string
	// ViewerID, when set, fills Review.Liked for that user.
	ViewerID string
	Limit    int
}

// ListReviews returns reviews newest first with the author hydrated.
func (s *Store) ListReviews(ctx context.Context, f ReviewFilter) ([]*types.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE 1 = 1`
	var args []any
	if f.MediaID != "" {
		query += ` AND media_id = ?`
		args = append(args, f.MediaID)
	}
	if f.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*types.Review{}
	var authorIDs, reviewIDs []string
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
		authorIDs = append(authorIDs, r.UserID)
		reviewIDs = append(reviewIDs, r.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	profiles, err := s.ProfilesByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	var liked map[string]bool
	if f.ViewerID != "" {
		if liked, err = s.likedReviews(ctx, f.ViewerID, reviewIDs); err != nil {
			return nil, err
		}
	}
	for _, r := range reviews {
		r.User = profiles[r.UserID]
		if liked != nil {
			l := liked[r.ID]
			r.Liked = &l
		}
	}
	return reviews, nil
}

func (s *Store) likedReviews(ctx context.Context, userID string, reviewIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(reviewIDs) == 0 {
		return out, nil
	}
	args := append([]any{userID}, stringArgs(reviewIDs)...)
	rows, err := s.db.QueryContext(ctx,
		`SELECT review_id FROM review_likes WHERE user_id = ? AND review_id IN (`+placeholders(len(reviewIDs))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load review likes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// ownedReview loads a review and checks that userID wrote it. A missing
// review wins over a foreign one.
func (s *Store) ownedReview(ctx context.Context, userID, id string) (*types.Review, error) {
	r, err := s.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, fmt.Errorf("%w: not your review", ErrForbidden)
	}
	return r, nil
}

func (s *Store) UpdateReview(ctx context.Context, userID, id string, req types.UpdateReviewRequest) (*types.Review, error) {
	r, err := s.ownedReview(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.Rating != nil {
		r.Rating = *req.Rating
	}
	if req.Title != nil {
		r.Title = *req.Title
	}
	if req.Content != nil {
		r.Content = *req.Content
	}
	if req.ContainsSpoilers != nil {
		r.ContainsSpoilers = *req.ContainsSpoilers
	}
	r.UpdatedAt = now()

	_, err = s.db.ExecContext(ctx, `
		UPDATE reviews SET rating = ?, title = ?, content = ?, contains_spoilers = ?, updated_at = ?
		WHERE id = ?
	`, r.Rating, r.Title, r.Content, r.ContainsSpoilers, r.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	// likes_count may have moved since the read.
	return s.GetReview(ctx, id)
}

func (s *Store) DeleteReview(ctx context.Context, userID, id string) error {
	if _, err := s.ownedReview(ctx, userID, id); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM review_likes WHERE review_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete review likes: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

// LikeReview records a like by userID. The counter moves only when a new
// like row was inserted.
func (s *Store) LikeReview(ctx context.Context, reviewID, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO review_likes (review_id, user_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT(review_id, user_id) DO NOTHING
	`, reviewID, userID, now())
	if err != nil {
		return false, fmt.Errorf("failed to insert review like: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}
	s.adjustCounter(ctx, "likes_count", reviewID,
		`UPDATE reviews SET likes_count = likes_count + 1 WHERE id = ?`, reviewID)
	return true, nil
}

// UnlikeReview removes userID's like. The counter never drops below zero.
func (s *Store) UnlikeReview(ctx context.Context, reviewID, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM review_likes WHERE review_id = ? AND user_id = ?`, reviewID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete review like: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}
	s.adjustCounter(ctx, "likes_count", reviewID,
		`UPDATE reviews SET likes_count = MAX(likes_count - 1, 0) WHERE id = ?`, reviewID)
	return true, nil
}

// ToggleReviewLike flips userID's like on a review and returns the new state
// with the current count.
func (s *Store) ToggleReviewLike(ctx context.Context, reviewID, userID string) (bool, int, error) {
	if _, err := s.GetReview(ctx, reviewID); err != nil {
		return false, 0, err
	}

	removed, err := s.UnlikeReview(ctx, reviewID, userID)
	if err != nil {
		return false, 0, err
	}
	liked := false
	if !removed {
		if _, err := s.LikeReview(ctx, reviewID, userID); err != nil {
			return false, 0, err
		}
		liked = true
	}

	r, err := s.GetReview(ctx, reviewID)
	if err != nil {
		return false, 0, err
	}
	return liked, r.LikesCount, nil
}
