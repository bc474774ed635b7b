package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"movieranker/internal/models"
	"movieranker/internal/recommender"
	"movieranker/internal/repository"
)

type RatingService struct {
	ratings *repository.RatingRepository
	movies  *repository.MovieRepository
	engine  *recommender.Engine
}

func NewRatingService(r *repository.RatingRepository, m *repository.MovieRepository, e *recommender.Engine) *RatingService {
	return &RatingService{
		ratings: r,
		movies:  m,
		engine:  e,
	}
}

// AddOrUpdate guarda/actualiza el rating, mantiene las stats de la película y
// dispara el rebuild del modelo (los ratings nuevos cambian qué se recomienda).
func (s *RatingService) AddOrUpdate(ctx context.Context, userID, movieID int, rating float64) error {
	if rating < 0 || rating > 5 {
		return fmt.Errorf("rating fuera de rango (0-5): %v", rating)
	}

	// 1) Ver si ya existía un rating previo
	prev, err := s.ratings.GetOne(ctx, userID, movieID)
	if err != nil {
		return err
	}
	existedBefore := prev != nil

	// 2) Upsert del rating (guarda timestamp como epoch)
	if err := s.ratings.UpsertRating(ctx, userID, movieID, rating); err != nil {
		return err
	}

	// 3) Actualizar stats de la película
	movie, err := s.movies.GetByID(ctx, movieID)
	if err != nil {
		return err
	}
	if movie == nil {
		return fmt.Errorf("movie %d no encontrada", movieID)
	}

	if movie.RatingStats == nil {
		movie.RatingStats = &models.RatingStats{}
	}
	rs := movie.RatingStats

	if !existedBefore {
		// rating nuevo
		total := rs.Average*float64(rs.Count) + rating
		rs.Count++
		if rs.Count > 0 {
			rs.Average = total / float64(rs.Count)
		}
	} else {
		// update de rating existente, count no cambia
		total := rs.Average*float64(rs.Count) - prev.Rating + rating
		if rs.Count > 0 {
			rs.Average = total / float64(rs.Count)
		}
	}

	nowStr := time.Now().Format(time.RFC3339)
	rs.LastRatedAt = nowStr
	movie.UpdatedAt = nowStr

	if err := s.movies.Update(ctx, movie); err != nil {
		return err
	}

	// 4) Rebuild del modelo con el catálogo al día. Si falla sigue sirviendo
	// el modelo anterior, el rating ya quedó guardado.
	if s.engine != nil {
		if _, err := s.engine.Rebuild(ctx); err != nil {
			log.Printf("[ratings] rebuild tras rating user=%d movie=%d falló: %v", userID, movieID, err)
		}
	}

	return nil
}

func (s *RatingService) GetByUser(ctx context.Context, userID, limit, offset int) ([]models.RatingDoc, error) {
	return s.ratings.GetByUser(ctx, userID, limit, offset)
}
