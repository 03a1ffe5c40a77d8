package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Scroti/want-to-watch/internal/config"
	"github.com/Scroti/want-to-watch/internal/types"
)

func newTestTMDB(t *testing.T, handler http.HandlerFunc) *TMDBClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewTMDBClient(config.TMDBConfig{
		APIKey:            "test-key",
		BaseURL:           srv.URL,
		Timeout:           2 * time.Second,
		RequestsPerWindow: 100,
		Window:            time.Second,
		BreakerFailures:   3,
		BreakerTimeout:    time.Minute,
	})
}

func TestSearchMergesMoviesAndShows(t *testing.T) {
	t.Parallel()
	client := newTestTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "fight", r.URL.Query().Get("query"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		switch r.URL.Path {
		case "/search/movie":
			w.Write([]byte(`{"page":2,"total_pages":3,"total_results":41,"results":[{"id":550,"title":"Fight Club","release_date":"1999-10-15","genre_ids":[18]}]}`))
		case "/search/tv":
			w.Write([]byte(`{"page":2,"total_pages":5,"total_results":7,"results":[{"id":1,"name":"Fight Show","first_air_date":"2001-01-01"}]}`))
		default:
			http.NotFound(w, r)
		}
	})

	res, err := client.Search(context.Background(), "fight", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 5, res.TotalPages)
	assert.Equal(t, 48, res.TotalResults)
	require.Len(t, res.Results, 2)

	assert.Equal(t, types.MediaTypeMovie, res.Results[0].MediaType)
	assert.Equal(t, "Fight Club", res.Results[0].Title)
	assert.Equal(t, []int{18}, res.Results[0].GenreIDs)

	assert.Equal(t, types.MediaTypeTV, res.Results[1].MediaType)
	assert.Equal(t, "Fight Show", res.Results[1].Title)
	assert.Equal(t, []int{}, res.Results[1].GenreIDs)
}

func TestSearchUpstreamFailure(t *testing.T) {
	t.Parallel()
	client := newTestTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search/tv" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"results":[]}`))
	})

	_, err := client.Search(context.Background(), "x", 1)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestGetMediaPicksYouTubeTrailer(t *testing.T) {
	t.Parallel()
	client := newTestTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/550":
			w.Write([]byte(`{"id":550,"title":"Fight Club","runtime":139,"genres":[{"id":18,"name":"Drama"}],"tagline":"Mischief. Mayhem. Soap."}`))
		case "/movie/550/videos":
			w.Write([]byte(`{"results":[
				{"key":"t1","site":"Vimeo","type":"Trailer"},
				{"key":"c1","site":"YouTube","type":"Clip"},
				{"key":"y1","site":"YouTube","type":"Trailer","name":"Official Trailer"}
			]}`))
		default:
			http.NotFound(w, r)
		}
	})

	m, err := client.GetMedia(context.Background(), 550, types.MediaTypeMovie)
	require.NoError(t, err)
	assert.Equal(t, "550-movie", m.ID)
	assert.Equal(t, "Fight Club", m.Title)
	assert.Equal(t, 139, m.Runtime)
	require.NotNil(t, m.Trailer)
	assert.Equal(t, "y1", m.Trailer.Key)
}

func TestGetMediaTVAndVideoFailure(t *testing.T) {
	t.Parallel()
	client := newTestTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tv/1399":
			w.Write([]byte(`{"id":1399,"name":"Game of Thrones","episode_run_time":[60],"number_of_seasons":8}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	})

	m, err := client.GetMedia(context.Background(), 1399, types.MediaTypeTV)
	require.NoError(t, err)
	assert.Equal(t, "Game of Thrones", m.Title)
	assert.Equal(t, 60, m.Runtime)
	assert.Equal(t, 8, m.NumberOfSeasons)
	assert.Nil(t, m.Trailer)
	assert.Equal(t, []types.Genre{}, m.Genres)
}

func TestGetMediaNotFound(t *testing.T) {
	t.Parallel()
	client := newTestTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.GetMedia(context.Background(), 1, types.MediaTypeMovie)
	assert.ErrorIs(t, err, ErrMediaNotFound)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	client := newTestTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	var out tmdbSearchResponse
	for i := 0; i < 3; i++ {
		err := client.makeRequest(context.Background(), "/search/movie", nil, &out)
		require.ErrorIs(t, err, ErrUpstream)
	}
	err := client.makeRequest(context.Background(), "/search/movie", nil, &out)
	require.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, int32(3), calls.Load(), "open breaker short-circuits")
	assert.Equal(t, "open", client.Stats()["breaker_state"])
}

func TestPickTrailer(t *testing.T) {
	t.Parallel()
	assert.Nil(t, pickTrailer(nil))
	assert.Nil(t, pickTrailer([]tmdbVideo{{Key: "a", Type: "Teaser", Site: "YouTube"}}))

	got := pickTrailer([]tmdbVideo{{Key: "a", Type: "Trailer", Site: "Vimeo"}, {Key: "b", Type: "Trailer", Site: "Vimeo"}})
	require.NotNil(t, got)
	assert.Equal(t, "a", got.Key)

	got = pickTrailer([]tmdbVideo{{Key: "a", Type: "Trailer", Site: "Vimeo"}, {Key: "b", Type: "Trailer", Site: "Youtube"}})
	require.NotNil(t, got)
	assert.Equal(t, "b", got.Key)
}

func TestMetricsRoute(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "/movie/:id/videos", metricsRoute("/movie/550/videos"))
	assert.Equal(t, "/search/tv", metricsRoute("/search/tv"))
}
