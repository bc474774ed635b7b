// internal/service/movie_service.go
package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"movieranker/internal/models"
	"movieranker/internal/repository"
	"movieranker/internal/tmdb"
)

var ErrMovieAlreadyExists = errors.New("ya existe una película con ese id")

type MovieService struct {
	movies *repository.MovieRepository
	tmdb   *tmdb.Client
}

func NewMovieService(m *repository.MovieRepository, t *tmdb.Client) *MovieService {
	return &MovieService{movies: m, tmdb: t}
}

func (s *MovieService) GetMovie(ctx context.Context, id int) (*models.MovieDoc, error) {
	return s.movies.GetByID(ctx, id)
}

func (s *MovieService) Search(ctx context.Context, q, mediaType string, limit, offset int) ([]models.MovieDoc, error) {
	return s.movies.Search(ctx, q, mediaType, limit, offset)
}

func (s *MovieService) Top(ctx context.Context, metric string, limit int) ([]models.MovieDoc, error) {
	return s.movies.Top(ctx, metric, limit)
}

// SearchTMDB busca directo en TMDB (para descubrir títulos que todavía no
// están en el catálogo, p.e. desde el buscador del frontend).
func (s *MovieService) SearchTMDB(ctx context.Context, query string) ([]models.MovieDoc, error) {
	return s.tmdb.SearchMulti(ctx, query)
}

// DiscoverTMDB lista lo popular del momento en TMDB, mezclando cine y TV
// ordenado por popularidad.
func (s *MovieService) DiscoverTMDB(ctx context.Context, page int) ([]models.MovieDoc, error) {
	movies, err := s.tmdb.DiscoverMovies(ctx, page)
	if err != nil {
		return nil, err
	}
	shows, err := s.tmdb.DiscoverTV(ctx, page)
	if err != nil {
		// con las películas alcanza; TV es un extra
		shows = nil
	}

	return mergeByPopularity(movies, shows), nil
}

// mergeByPopularity junta las dos listas ordenadas por popularidad descendente.
func mergeByPopularity(movies, shows []models.MovieDoc) []models.MovieDoc {
	out := append(movies, shows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Popularity > out[j].Popularity
	})
	return out
}

// Genres devuelve el mapa id -> nombre de géneros TMDB (cine + TV), para que
// el frontend resuelva los genreIds del catálogo.
func (s *MovieService) Genres(ctx context.Context) (map[int]string, error) {
	return s.tmdb.Genres(ctx)
}

// CreateMovie da de alta una película a mano (endpoint admin).
func (s *MovieService) CreateMovie(ctx context.Context, req *models.MovieCreateRequest) (*models.MovieDoc, error) {
	movieID := req.MovieID
	if movieID == 0 {
		next, err := s.movies.GetNextMovieID(ctx)
		if err != nil {
			return nil, err
		}
		movieID = next
	} else {
		existing, err := s.movies.GetByID(ctx, movieID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrMovieAlreadyExists
		}
	}

	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = models.MediaTypeMovie
	}

	now := time.Now().UTC().Format(time.RFC3339)
	m := &models.MovieDoc{
		MovieID:     movieID,
		Title:       req.Title,
		Overview:    req.Overview,
		VoteAverage: req.VoteAverage,
		VoteCount:   req.VoteCount,
		Popularity:  req.Popularity,
		PosterPath:  req.PosterPath,
		MediaType:   mediaType,
		ReleaseDate: req.ReleaseDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.movies.Upsert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
