package types

// Request bodies. Pointer fields in the Update* types mean "leave unchanged when absent".

type UpdateProfileRequest struct {
	Username       *string `json:"username" validate:"omitempty,username"`
	DisplayName    *string `json:"display_name" validate:"omitempty,max=100"`
	Bio            *string `json:"bio" validate:"omitempty,max=500"`
	AvatarURL      *string `json:"avatar_url" validate:"omitempty,url"`
	FavoriteGenres []int   `json:"favorite_genres" validate:"omitempty,max=50"`
}

type AddWatchlistItemRequest struct {
	TMDBID       int         `json:"tmdb_id" validate:"required,gt=0"`
	Title        string      `json:"title" validate:"required,max=500"`
	MediaType    MediaType   `json:"media_type" validate:"required,oneof=movie tv"`
	Overview     string      `json:"overview" validate:"max=5000"`
	PosterPath   string      `json:"poster_path" validate:"max=500"`
	ReleaseDate  string      `json:"release_date" validate:"max=32"`
	FirstAirDate string      `json:"first_air_date" validate:"max=32"`
	Status       WatchStatus `json:"status" validate:"omitempty,oneof=want_to_watch currently_watching watched dropped completed"`
	Rating       *int        `json:"rating" validate:"omitempty,min=1,max=5"`
	Priority     Priority    `json:"priority" validate:"omitempty,oneof=high medium low"`
	Tags         []string    `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Notes        string      `json:"notes" validate:"max=5000"`
}

type UpdateWatchlistItemRequest struct {
	Status      *WatchStatus `json:"status" validate:"omitempty,oneof=want_to_watch currently_watching watched dropped completed"`
	Rating      *int         `json:"rating" validate:"omitempty,min=1,max=5"`
	ClearRating bool         `json:"clear_rating"`
	WatchedDate *string      `json:"watched_date" validate:"omitempty,max=32"`
	Tags        []string     `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Priority    *Priority    `json:"priority" validate:"omitempty,oneof=high medium low"`
	Notes       *string      `json:"notes" validate:"omitempty,max=5000"`
}

type CreateReviewRequest struct {
	MediaID          string `json:"media_id" validate:"required,max=64"`
	Rating           int    `json:"rating" validate:"required,min=1,max=5"`
	Title            string `json:"title" validate:"max=200"`
	Content          string `json:"content" validate:"max=10000"`
	ContainsSpoilers bool   `json:"contains_spoilers"`
}

type UpdateReviewRequest struct {
	Rating           *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Title            *string `json:"title" validate:"omitempty,max=200"`
	Content          *string `json:"content" validate:"omitempty,max=10000"`
	ContainsSpoilers *bool   `json:"contains_spoilers"`
}

type CreateCommentRequest struct {
	MediaID          string  `json:"media_id" validate:"required,max=64"`
	Content          string  `json:"content" validate:"required,max=5000"`
	ParentID         *string `json:"parent_id" validate:"omitempty,uuid4"`
	ContainsSpoilers bool    `json:"contains_spoilers"`
}

type CreateListRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	Description   string `json:"description" validate:"max=1000"`
	IsPublic      *bool  `json:"is_public"`
	CoverImageURL string `json:"cover_image_url" validate:"omitempty,url"`
}

type UpdateListRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description   *string `json:"description" validate:"omitempty,max=1000"`
	IsPublic      *bool   `json:"is_public"`
	CoverImageURL *string `json:"cover_image_url" validate:"omitempty,url"`
}

type AddListItemRequest struct {
	MediaID string `json:"media_id" validate:"required,max=64"`
}

type FollowRequest struct {
	FollowingID string `json:"following_id" validate:"required"`
}

type MarkNotificationsReadRequest struct {
	NotificationIDs []string `json:"notification_ids" validate:"omitempty,max=200"`
	MarkAllRead     bool     `json:"mark_all_read"`
}

type CreateRecommendationRequest struct {
	ToUserID string `json:"to_user_id" validate:"required"`
	MediaID  string `json:"media_id" validate:"required,max=64"`
	Message  string `json:"message" validate:"max=500"`
}
