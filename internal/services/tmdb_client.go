package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Scroti/want-to-watch/internal/config"
	"github.com/Scroti/want-to-watch/internal/logging"
	"github.com/Scroti/want-to-watch/internal/metrics"
	"github.com/Scroti/want-to-watch/internal/types"
)

var (
	// ErrUpstream means TMDB could not be reached or answered with an error.
	ErrUpstream = errors.New("metadata provider unavailable")
	// ErrMediaNotFound means TMDB answered 404 for the requested title.
	ErrMediaNotFound = errors.New("media not found")
)

const breakerName = "tmdb"

type TMDBClient struct {
	APIKey  string
	BaseURL string
	client  *http.Client
	limiter *TMDBRateLimiter
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// TMDB wire types. Movies carry title/release_date, tv shows name/first_air_date.
type tmdbSearchResponse struct {
	Page         int          `json:"page"`
	Results      []tmdbResult `json:"results"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
}

type tmdbResult struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int   `json:"genre_ids"`
}

type tmdbDetails struct {
	tmdbResult
	Tagline          string        `json:"tagline"`
	Runtime          int           `json:"runtime"`
	EpisodeRunTime   []int         `json:"episode_run_time"`
	NumberOfSeasons  int           `json:"number_of_seasons"`
	NumberOfEpisodes int           `json:"number_of_episodes"`
	Genres           []types.Genre `json:"genres"`
	Status           string        `json:"status"`
}

type tmdbVideo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type tmdbVideosResponse struct {
	Results []tmdbVideo `json:"results"`
}

type upstreamStatusError struct {
	status int
}

func (e *upstreamStatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d", e.status)
}

func NewTMDBClient(cfg config.TMDBConfig) *TMDBClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			var statusErr *upstreamStatusError
			if errors.As(err, &statusErr) && statusErr.status == http.StatusNotFound {
				return true
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	return &TMDBClient{
		APIKey:  cfg.APIKey,
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: NewTMDBRateLimiter(cfg.RequestsPerWindow, cfg.Window),
		breaker: breaker,
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Stats describes the outbound limiter and breaker.
func (c *TMDBClient) Stats() map[string]any {
	stats := c.limiter.GetStats()
	stats["breaker_state"] = c.breaker.State().String()
	return stats
}

// makeRequest performs one rate-limited, breaker-guarded GET and decodes the
// body into out.
func (c *TMDBClient) makeRequest(ctx context.Context, endpoint string, params map[string]string, out any) error {
	u, err := url.Parse(c.BaseURL + endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	query := u.Query()
	query.Set("api_key", c.APIKey)
	for key, value := range params {
		query.Set(key, value)
	}
	u.RawQuery = query.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", ErrUpstream, err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, &upstreamStatusError{status: resp.StatusCode}
		}
		return io.ReadAll(resp.Body)
	})

	route := metricsRoute(endpoint)
	var statusErr *upstreamStatusError
	switch {
	case err == nil:
		metrics.RecordUpstream(route, "success")
	case errors.As(err, &statusErr) && statusErr.status == http.StatusNotFound:
		metrics.RecordUpstream(route, "not_found")
		return ErrMediaNotFound
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordUpstream(route, "rejected")
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	default:
		metrics.RecordUpstream(route, "error")
		return fmt.Errorf("%w: %s: %v", ErrUpstream, route, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", ErrUpstream, route, err)
	}
	return nil
}

// metricsRoute collapses numeric path segments so ids don't explode label cardinality.
func metricsRoute(endpoint string) string {
	parts := strings.Split(endpoint, "/")
	for i, p := range parts {
		if _, err := strconv.Atoi(p); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// Search queries movies and tv shows in parallel and merges the pages:
// movies first, then shows, each tagged with its media type.
func (c *TMDBClient) Search(ctx context.Context, query string, page int) (*types.SearchResults, error) {
	if page <= 0 {
		page = 1
	}
	params := map[string]string{
		"query":         query,
		"page":          strconv.Itoa(page),
		"include_adult": "false",
	}

	var movies, shows tmdbSearchResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.makeRequest(gctx, "/search/movie", params, &movies) })
	g.Go(func() error { return c.makeRequest(gctx, "/search/tv", params, &shows) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &types.SearchResults{
		Page:         page,
		Results:      make([]*types.MediaSummary, 0, len(movies.Results)+len(shows.Results)),
		TotalPages:   max(movies.TotalPages, shows.TotalPages),
		TotalResults: movies.TotalResults + shows.TotalResults,
	}
	for _, r := range movies.Results {
		out.Results = append(out.Results, toSummary(r, types.MediaTypeMovie))
	}
	for _, r := range shows.Results {
		out.Results = append(out.Results, toSummary(r, types.MediaTypeTV))
	}
	return out, nil
}

func toSummary(r tmdbResult, mediaType types.MediaType) *types.MediaSummary {
	s := &types.MediaSummary{
		ID:           r.ID,
		MediaType:    mediaType,
		Title:        r.Title,
		Overview:     r.Overview,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		ReleaseDate:  r.ReleaseDate,
		FirstAirDate: r.FirstAirDate,
		VoteAverage:  r.VoteAverage,
		VoteCount:    r.VoteCount,
		Popularity:   r.Popularity,
		GenreIDs:     r.GenreIDs,
	}
	if mediaType == types.MediaTypeTV {
		s.Title = r.Name
	}
	if s.GenreIDs == nil {
		s.GenreIDs = []int{}
	}
	return s
}

// GetMedia fetches details and videos for one title. A failed videos call
// only drops the trailer.
func (c *TMDBClient) GetMedia(ctx context.Context, tmdbID int, mediaType types.MediaType) (*types.MediaDetail, error) {
	base := fmt.Sprintf("/%s/%d", mediaType, tmdbID)

	var (
		details   tmdbDetails
		videos    tmdbVideosResponse
		videosErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.makeRequest(gctx, base, nil, &details) })
	g.Go(func() error {
		videosErr = c.makeRequest(gctx, base+"/videos", nil, &videos)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if videosErr != nil {
		logging.Ctx(ctx).Warn().Err(videosErr).Int("tmdb_id", tmdbID).Msg("failed to load videos, trailer omitted")
	}

	detail := &types.MediaDetail{
		ID:               strconv.Itoa(tmdbID) + "-" + string(mediaType),
		TMDBID:           tmdbID,
		MediaType:        mediaType,
		Title:            details.Title,
		Overview:         details.Overview,
		Tagline:          details.Tagline,
		PosterPath:       details.PosterPath,
		BackdropPath:     details.BackdropPath,
		ReleaseDate:      details.ReleaseDate,
		FirstAirDate:     details.FirstAirDate,
		Runtime:          details.Runtime,
		NumberOfSeasons:  details.NumberOfSeasons,
		NumberOfEpisodes: details.NumberOfEpisodes,
		Genres:           details.Genres,
		Status:           details.Status,
		VoteAverage:      details.VoteAverage,
		VoteCount:        details.VoteCount,
		Trailer:          pickTrailer(videos.Results),
	}
	if mediaType == types.MediaTypeTV {
		detail.Title = details.Name
		if detail.Runtime == 0 && len(details.EpisodeRunTime) > 0 {
			detail.Runtime = details.EpisodeRunTime[0]
		}
	}
	if detail.Genres == nil {
		detail.Genres = []types.Genre{}
	}
	return detail, nil
}

// pickTrailer prefers a YouTube trailer, then any trailer.
func pickTrailer(videos []tmdbVideo) *types.Trailer {
	var fallback *tmdbVideo
	for i := range videos {
		v := &videos[i]
		if v.Type != "Trailer" {
			continue
		}
		if strings.EqualFold(v.Site, "YouTube") {
			return &types.Trailer{Key: v.Key, Name: v.Name, Site: v.Site, Type: v.Type}
		}
		if fallback == nil {
			fallback = v
		}
	}
	if fallback == nil {
		return nil
	}
	return &types.Trailer{Key: fallback.Key, Name: fallback.Name, Site: fallback.Site, Type: fallback.Type}
}
