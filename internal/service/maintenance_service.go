package service

import (
	"context"
	"log"
	"time"

	"movieranker/internal/models"
	"movieranker/internal/recommender"
)

// MaintenanceService expone las operaciones admin sobre el ciclo de vida del
// modelo: estado, rebuild forzado y sembrado del catálogo desde TMDB.
type MaintenanceService struct {
	engine   *recommender.Engine
	catalog  CatalogWriter
	external ExternalSource
}

func NewMaintenanceService(e *recommender.Engine, c CatalogWriter, x ExternalSource) *MaintenanceService {
	return &MaintenanceService{engine: e, catalog: c, external: x}
}

// Status describe el modelo vivo (o su ausencia).
func (s *MaintenanceService) Status(ctx context.Context) *models.ModelStatus {
	m := s.engine.Model()
	if m == nil {
		return &models.ModelStatus{Available: false}
	}
	return &models.ModelStatus{
		Available:      true,
		Movies:         m.Len(),
		VocabularySize: m.VocabularySize(),
		BuiltAt:        m.BuiltAt().UTC().Format(time.RFC3339),
	}
}

// Rebuild fuerza la reconstrucción completa del modelo.
func (s *MaintenanceService) Rebuild(ctx context.Context) (*models.RebuildResult, error) {
	start := time.Now()
	m, err := s.engine.Rebuild(ctx)
	if err != nil {
		return nil, err
	}
	return &models.RebuildResult{
		Movies:         m.Len(),
		VocabularySize: m.VocabularySize(),
		ElapsedMS:      time.Since(start).Milliseconds(),
		BuiltAt:        m.BuiltAt().UTC().Format(time.RFC3339),
	}, nil
}

// SeedPopular puebla el catálogo con lo popular de TMDB más las franquicias
// conocidas, y reconstruye el modelo si entró algo nuevo. Pensado para
// catálogos recién creados o muy chicos.
func (s *MaintenanceService) SeedPopular(ctx context.Context) (*models.SeedPopularResult, error) {
	res := &models.SeedPopularResult{}

	discovered, err := s.external.DiscoverMovies(ctx, 1)
	if err != nil {
		log.Printf("[admin] TMDB discover no disponible: %v", err)
	}
	for i := range discovered {
		m := discovered[i]
		if err := s.catalog.Upsert(ctx, &m); err != nil {
			log.Printf("[admin] error persistiendo movie=%d: %v", m.MovieID, err)
			continue
		}
		res.Discover++
		res.Added++
	}

	for _, term := range franchiseSearchTerms {
		results, err := s.external.SearchMulti(ctx, term)
		if err != nil {
			log.Printf("[admin] TMDB search %q no disponible: %v", term, err)
			continue
		}
		if len(results) > 2 {
			results = results[:2]
		}
		for i := range results {
			m := results[i]
			if err := s.catalog.Upsert(ctx, &m); err != nil {
				log.Printf("[admin] error persistiendo movie=%d: %v", m.MovieID, err)
				continue
			}
			res.Searched++
			res.Added++
		}
	}

	if res.Added > 0 {
		if _, err := s.engine.Rebuild(ctx); err != nil {
			log.Printf("[admin] rebuild tras seed falló (sigue el modelo anterior): %v", err)
		} else {
			res.Rebuilt = true
		}
	}

	return res, nil
}
