package types

import "time"

type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

type WatchStatus string

const (
	StatusWantToWatch       WatchStatus = "want_to_watch"
	StatusCurrentlyWatching WatchStatus = "currently_watching"
	StatusWatched           WatchStatus = "watched"
	StatusDropped           WatchStatus = "dropped"
	StatusCompleted         WatchStatus = "completed"
)

// IsWatched reports whether the status counts as watched. "watched" and
// "completed" are treated as the same state for stats and activity.
func (s WatchStatus) IsWatched() bool {
	return s == StatusWatched || s == StatusCompleted
}

func (s WatchStatus) Valid() bool {
	switch s {
	case StatusWantToWatch, StatusCurrentlyWatching, StatusWatched, StatusDropped, StatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type ActivityType string

const (
	ActivityAddedItem    ActivityType = "added_item"
	ActivityWatchedItem  ActivityType = "watched_item"
	ActivityReviewed     ActivityType = "reviewed"
	ActivityFollowedUser ActivityType = "followed_user"
	ActivityCreatedList  ActivityType = "created_list"
	ActivityAddedToList  ActivityType = "added_to_list"
)

type TargetType string

const (
	TargetMedia TargetType = "media"
	TargetUser  TargetType = "user"
	TargetList  TargetType = "list"
)

type NotificationType string

// Only follow and recommendation are emitted today; the others are reserved.
const (
	NotificationFollow         NotificationType = "follow"
	NotificationReview         NotificationType = "review"
	NotificationComment        NotificationType = "comment"
	NotificationLikeReview     NotificationType = "like_review"
	NotificationLikeComment    NotificationType = "like_comment"
	NotificationRecommendation NotificationType = "recommendation"
	NotificationActivity       NotificationType = "activity"
)

type Profile struct {
	UserID         string    `json:"user_id"`
	Username       *string   `json:"username"`
	DisplayName    string    `json:"display_name"`
	Bio            string    `json:"bio"`
	AvatarURL      string    `json:"avatar_url"`
	FavoriteGenres []int     `json:"favorite_genres"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type WatchlistItem struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	TMDBID       int         `json:"tmdb_id"`
	MediaType    MediaType   `json:"media_type"`
	Title        string      `json:"title"`
	Overview     string      `json:"overview"`
	PosterPath   string      `json:"poster_path"`
	ReleaseDate  string      `json:"release_date"`
	FirstAirDate string      `json:"first_air_date"`
	Status       WatchStatus `json:"status"`
	Rating       *int        `json:"rating"`
	WatchedDate  *string     `json:"watched_date"`
	Tags         []string    `json:"tags"`
	Priority     Priority    `json:"priority"`
	Notes        string      `json:"notes"`
	AddedAt      time.Time   `json:"added_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type Review struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	MediaID          string    `json:"media_id"`
	Rating           int       `json:"rating"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	ContainsSpoilers bool      `json:"contains_spoilers"`
	LikesCount       int       `json:"likes_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	User             *Profile  `json:"user"`
	// Liked is set only when the list was requested by an authenticated caller.
	Liked *bool `json:"liked,omitempty"`
}

type Comment struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	MediaID          string     `json:"media_id"`
	ParentID         *string    `json:"parent_id"`
	Content          string     `json:"content"`
	ContainsSpoilers bool       `json:"contains_spoilers"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	User             *Profile   `json:"user"`
	Replies          []*Comment `json:"replies,omitempty"`
	ReplyCount       int        `json:"reply_count"`
}

type CustomList struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	IsPublic      bool              `json:"is_public"`
	CoverImageURL string            `json:"cover_image_url"`
	ItemsCount    int               `json:"items_count"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	User          *Profile          `json:"user,omitempty"`
	Items         []*CustomListItem `json:"items,omitempty"`
}

type CustomListItem struct {
	ListID  string         `json:"list_id"`
	MediaID string         `json:"media_id"`
	AddedAt time.Time      `json:"added_at"`
	Media   *WatchlistItem `json:"media"`
}

type Follow struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type Activity struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	ActivityType ActivityType   `json:"activity_type"`
	TargetID     string         `json:"target_id"`
	TargetType   TargetType     `json:"target_type"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
	User         *Profile       `json:"user"`
}

type Notification struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	NotificationType NotificationType `json:"notification_type"`
	FromUserID       *string          `json:"from_user_id"`
	TargetID         string           `json:"target_id"`
	TargetType       TargetType       `json:"target_type"`
	Title            string           `json:"title"`
	Message          string           `json:"message"`
	Read             bool             `json:"read"`
	CreatedAt        time.Time        `json:"created_at"`
	FromUser         *Profile         `json:"from_user"`
}

type Recommendation struct {
	ID         string         `json:"id"`
	FromUserID string         `json:"from_user_id"`
	ToUserID   string         `json:"to_user_id"`
	MediaID    string         `json:"media_id"`
	Message    string         `json:"message"`
	CreatedAt  time.Time      `json:"created_at"`
	FromUser   *Profile       `json:"from_user"`
	Media      *WatchlistItem `json:"media"`
}

// UserStats is derived on read from the primary tables.
type UserStats struct {
	TotalItems             int      `json:"total_items"`
	WatchedCount           int      `json:"watched_count"`
	WantToWatchCount       int      `json:"want_to_watch_count"`
	CurrentlyWatchingCount int      `json:"currently_watching_count"`
	DroppedCount           int      `json:"dropped_count"`
	CompletedCount         int      `json:"completed_count"`
	ReviewsCount           int      `json:"reviews_count"`
	FollowersCount         int      `json:"followers_count"`
	FollowingCount         int      `json:"following_count"`
	ListsCount             int      `json:"lists_count"`
	AverageRating          *float64 `json:"average_rating"`
}

// MediaSummary is one search hit from the metadata provider.
type MediaSummary struct {
	ID           int       `json:"id"`
	MediaType    MediaType `json:"media_type"`
	Title        string    `json:"title"`
	Overview     string    `json:"overview"`
	PosterPath   *string   `json:"poster_path"`
	BackdropPath *string   `json:"backdrop_path"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	FirstAirDate string    `json:"first_air_date,omitempty"`
	VoteAverage  float64   `json:"vote_average"`
	VoteCount    int       `json:"vote_count"`
	Popularity   float64   `json:"popularity"`
	GenreIDs     []int     `json:"genre_ids"`
}

type SearchResults struct {
	Page         int             `json:"page"`
	Results      []*MediaSummary `json:"results"`
	TotalPages   int             `json:"total_pages"`
	TotalResults int             `json:"total_results"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Trailer struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// MediaDetail merges TMDB movie and tv details into one shape.
type MediaDetail struct {
	ID               string    `json:"id"`
	TMDBID           int       `json:"tmdb_id"`
	MediaType        MediaType `json:"media_type"`
	Title            string    `json:"title"`
	Overview         string    `json:"overview"`
	Tagline          string    `json:"tagline"`
	PosterPath       *string   `json:"poster_path"`
	BackdropPath     *string   `json:"backdrop_path"`
	ReleaseDate      string    `json:"release_date,omitempty"`
	FirstAirDate     string    `json:"first_air_date,omitempty"`
	Runtime          int       `json:"runtime,omitempty"`
	NumberOfSeasons  int       `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int       `json:"number_of_episodes,omitempty"`
	Genres           []Genre   `json:"genres"`
	Status           string    `json:"status"`
	VoteAverage      float64   `json:"vote_average"`
	VoteCount        int       `json:"vote_count"`
	Trailer          *Trailer  `json:"trailer"`
}
