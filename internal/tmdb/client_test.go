package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"movieranker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key")
	c.baseURL = srv.URL
	return c
}

func TestDiscoverMoviesMapsFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/movie", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "en-US", r.URL.Query().Get("language"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"page":1,"results":[
			{"id":603,"title":"The Matrix","overview":"hacker discovers reality","vote_average":8.2,"vote_count":24000,"popularity":85.3,"poster_path":"/matrix.jpg","release_date":"1999-03-31","original_language":"en","genre_ids":[28,878]}
		]}`))
	})

	movies, err := c.DiscoverMovies(context.Background(), 0) // page <= 0 => 1
	require.NoError(t, err)
	require.Len(t, movies, 1)

	m := movies[0]
	assert.Equal(t, 603, m.MovieID)
	assert.Equal(t, "The Matrix", m.Title)
	assert.Equal(t, models.MediaTypeMovie, m.MediaType)
	assert.Equal(t, "1999-03-31", m.ReleaseDate)
	assert.Equal(t, []int{28, 878}, m.GenreIDs)
}

func TestDiscoverTVUsesNameAndFirstAirDate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/tv", r.URL.Path)
		w.Write([]byte(`{"page":1,"results":[
			{"id":1396,"name":"Breaking Bad","overview":"teacher turns to crime","first_air_date":"2008-01-20"}
		]}`))
	})

	shows, err := c.DiscoverTV(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, shows, 1)
	assert.Equal(t, "Breaking Bad", shows[0].Title)
	assert.Equal(t, models.MediaTypeTV, shows[0].MediaType)
	assert.Equal(t, "2008-01-20", shows[0].ReleaseDate)
	assert.Equal(t, "en", shows[0].OriginalLanguage) // default cuando falta
}

func TestSearchMultiFiltersPeople(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/multi", r.URL.Path)
		assert.Equal(t, "Batman", r.URL.Query().Get("query"))
		w.Write([]byte(`{"page":1,"results":[
			{"id":268,"title":"Batman","media_type":"movie","overview":"dark knight rises"},
			{"id":2975,"name":"Christian Bale","media_type":"person"},
			{"id":2287,"name":"Batman: The Animated Series","media_type":"tv","first_air_date":"1992-09-05"}
		]}`))
	})

	results, err := c.SearchMulti(context.Background(), "Batman")
	require.NoError(t, err)
	require.Len(t, results, 2, "las personas se descartan")
	assert.Equal(t, "Batman", results[0].Title)
	assert.Equal(t, "Batman: The Animated Series", results[1].Title)
}

func TestClientErrorOnNon200(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := c.DiscoverMovies(context.Background(), 1)
	require.Error(t, err)
}

func TestClientRequiresAPIKey(t *testing.T) {
	c := NewClient("")
	_, err := c.DiscoverMovies(context.Background(), 1)
	require.Error(t, err)
}
