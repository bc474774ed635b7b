// internal/tmdb/client.go
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"movieranker/internal/models"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// Client habla con la API v3 de TMDB. Todas las llamadas llevan timeout
// acotado: si TMDB no responde, el caller lo trata como "fuente no
// disponible", nunca como error fatal.
type Client struct {
	apiKey   string
	language string
	baseURL  string
	http     *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:   apiKey,
		language: "en-US",
		baseURL:  defaultBaseURL,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// ---- formas crudas de la API ----

type rawItem struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Name             string  `json:"name"` // series usan name en vez de title
	Overview         string  `json:"overview"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	MediaType        string  `json:"media_type"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	OriginalLanguage string  `json:"original_language"`
	GenreIDs         []int   `json:"genre_ids"`
}

type rawPage struct {
	Page    int       `json:"page"`
	Results []rawItem `json:"results"`
}

type rawGenres struct {
	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// toMovieDoc convierte una respuesta de TMDB a nuestro documento de catálogo,
// con defaults en cero para todo lo opcional.
func toMovieDoc(it rawItem, mediaType string) models.MovieDoc {
	if it.MediaType != "" {
		mediaType = it.MediaType
	}
	title := it.Title
	release := it.ReleaseDate
	if mediaType == models.MediaTypeTV {
		title = it.Name
		release = it.FirstAirDate
	}
	lang := it.OriginalLanguage
	if lang == "" {
		lang = "en"
	}
	return models.MovieDoc{
		MovieID:          it.ID,
		Title:            title,
		Overview:         it.Overview,
		VoteAverage:      it.VoteAverage,
		VoteCount:        it.VoteCount,
		Popularity:       it.Popularity,
		PosterPath:       it.PosterPath,
		BackdropPath:     it.BackdropPath,
		MediaType:        mediaType,
		ReleaseDate:      release,
		OriginalLanguage: lang,
		GenreIDs:         it.GenreIDs,
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, dest any) error {
	if c.apiKey == "" {
		return fmt.Errorf("tmdb: api key no configurada")
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	u := c.baseURL + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb: %s devolvió %d", endpoint, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// DiscoverMovies trae las películas populares del momento (endpoint discover).
func (c *Client) DiscoverMovies(ctx context.Context, page int) ([]models.MovieDoc, error) {
	if page <= 0 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", fmt.Sprintf("%d", page))

	var data rawPage
	if err := c.get(ctx, "/discover/movie", params, &data); err != nil {
		return nil, err
	}

	out := make([]models.MovieDoc, 0, len(data.Results))
	for _, it := range data.Results {
		out = append(out, toMovieDoc(it, models.MediaTypeMovie))
	}
	return out, nil
}

// DiscoverTV trae las series populares del momento.
func (c *Client) DiscoverTV(ctx context.Context, page int) ([]models.MovieDoc, error) {
	if page <= 0 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", fmt.Sprintf("%d", page))

	var data rawPage
	if err := c.get(ctx, "/discover/tv", params, &data); err != nil {
		return nil, err
	}

	out := make([]models.MovieDoc, 0, len(data.Results))
	for _, it := range data.Results {
		out = append(out, toMovieDoc(it, models.MediaTypeTV))
	}
	return out, nil
}

// SearchMulti busca por título en películas y series (endpoint search/multi).
// Descarta personas y cualquier media_type que no manejamos.
func (c *Client) SearchMulti(ctx context.Context, query string) ([]models.MovieDoc, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")

	var data rawPage
	if err := c.get(ctx, "/search/multi", params, &data); err != nil {
		return nil, err
	}

	var out []models.MovieDoc
	for _, it := range data.Results {
		if it.MediaType != models.MediaTypeMovie && it.MediaType != models.MediaTypeTV {
			continue
		}
		out = append(out, toMovieDoc(it, it.MediaType))
	}
	return out, nil
}

// Genres devuelve el mapa id -> nombre combinando géneros de cine y TV.
func (c *Client) Genres(ctx context.Context) (map[int]string, error) {
	genreMap := make(map[int]string)

	var movieGenres rawGenres
	if err := c.get(ctx, "/genre/movie/list", nil, &movieGenres); err != nil {
		return nil, err
	}
	for _, g := range movieGenres.Genres {
		genreMap[g.ID] = g.Name
	}

	var tvGenres rawGenres
	if err := c.get(ctx, "/genre/tv/list", nil, &tvGenres); err != nil {
		// los géneros de cine ya sirven; lo dejamos logueado
		log.Printf("[tmdb] error trayendo géneros de TV: %v", err)
		return genreMap, nil
	}
	for _, g := range tvGenres.Genres {
		genreMap[g.ID] = g.Name
	}
	return genreMap, nil
}
