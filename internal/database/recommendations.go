package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Scroti/want-to-watch/internal/types"
)

const recommendationColumns = `id, from_user_id, to_user_id, media_id, message, created_at`

// CreateRecommendation records fromUserID recommending a title to another user.
func (s *Store) CreateRecommendation(ctx context.Context, fromUserID string, req types.CreateRecommendationRequest) (*types.Recommendation, error) {
	if req.ToUserID == fromUserID {
		return nil, fmt.Errorf("%w: cannot recommend to yourself", ErrInvalid)
	}
	if ok, err := s.ProfileExists(ctx, req.ToUserID); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	r := &types.Recommendation{
		ID:         uuid.NewString(),
		FromUserID: fromUserID,
		ToUserID:   req.ToUserID,
		MediaID:    req.MediaID,
		Message:    req.Message,
		CreatedAt:  now(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recommendations (`+recommendationColumns+`) VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.FromUserID, r.ToUserID, r.MediaID, r.Message, r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recommendation: %w", err)
	}
	return r, nil
}

// ListRecommendationsReceived returns recommendations sent to userID, newest
// first, with the sender and the sender's watchlist entry hydrated.
func (s *Store) ListRecommendationsReceived(ctx context.Context, userID string, limit int) ([]*types.Recommendation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recommendationColumns+` FROM recommendations
		WHERE to_user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	recs := []*types.Recommendation{}
	var senderIDs []string
	for rows.Next() {
		var r types.Recommendation
		if err := rows.Scan(&r.ID, &r.FromUserID, &r.ToUserID, &r.MediaID, &r.Message, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, &r)
		senderIDs = append(senderIDs, r.FromUserID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	profiles, err := s.ProfilesByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}

	mediaBySender := make(map[string][]string)
	for _, r := range recs {
		mediaBySender[r.FromUserID] = append(mediaBySender[r.FromUserID], r.MediaID)
	}
	media := make(map[string]map[string]*types.WatchlistItem, len(mediaBySender))
	for sender, ids := range mediaBySender {
		items, err := s.watchlistItemsByIDs(ctx, sender, ids)
		if err != nil {
			return nil, err
		}
		media[sender] = items
	}

	for _, r := range recs {
		r.FromUser = profiles[r.FromUserID]
		r.Media = media[r.FromUserID][r.MediaID]
	}
	return recs, nil
}
