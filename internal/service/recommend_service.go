package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"movieranker/internal/cache"
	"movieranker/internal/models"
	"movieranker/internal/recommender"
)

const (
	DefaultTopN = 10
	MaxTopN     = 50 // por seguridad, no deja pedir 1000 ítems

	// LikedMinRating separa "le gustó" de "lo vio": ratings >= 3.0 alimentan
	// el nivel personalizado.
	LikedMinRating = 3.0

	cacheTTLSeconds = 60 * 60
)

// Búsquedas fijas de franquicias taquilleras para el nivel externo, cuando
// ni el modelo ni la popularidad local alcanzan.
var franchiseSearchTerms = []string{
	"Avengers", "Batman", "Spider-Man", "Iron Man", "Captain America", "Wonder Woman",
}

// Contratos con los colaboradores. El servicio no sabe de Mongo ni de HTTP:
// los repos y el cliente TMDB los implementan.

type RatingStore interface {
	GetAllByUser(ctx context.Context, userID int) ([]models.RatingDoc, error)
	GetLikedByUser(ctx context.Context, userID int, minRating float64) ([]models.LikedMovie, error)
}

type CatalogWriter interface {
	Upsert(ctx context.Context, m *models.MovieDoc) error
}

type ExternalSource interface {
	DiscoverMovies(ctx context.Context, page int) ([]models.MovieDoc, error)
	SearchMulti(ctx context.Context, query string) ([]models.MovieDoc, error)
}

type HistoryStore interface {
	Insert(ctx context.Context, rec *models.Recommendation) error
	FindByUser(ctx context.Context, userID int, limit int64) ([]models.Recommendation, error)
}

// RecommendService implementa la cascada de tres niveles:
// personalizado -> popularidad -> TMDB.
type RecommendService struct {
	engine   *recommender.Engine
	ratings  RatingStore
	catalog  CatalogWriter
	history  HistoryStore
	external ExternalSource
}

func NewRecommendService(
	engine *recommender.Engine,
	ratings RatingStore,
	catalog CatalogWriter,
	history HistoryStore,
	external ExternalSource,
) *RecommendService {
	return &RecommendService{
		engine:   engine,
		ratings:  ratings,
		catalog:  catalog,
		history:  history,
		external: external,
	}
}

// ====== Petición de recomendaciones ======

type RecRequest struct {
	UserID  int
	TopN    int
	Seed    int64 // 0 = sin seed (orden determinístico por score)
	Refresh bool
}

func cacheKey(req RecRequest) string {
	// cachea por usuario + n (refresh solo decide si usar el cache)
	return fmt.Sprintf("rec:user:%d:n:%d", req.UserID, req.TopN)
}

// containsExcluded detecta una lista cacheada obsoleta: algún ítem ya entró al
// historial de ratings del usuario después de cachearla.
func containsExcluded(recs []models.RecMovie, exclude map[int]bool) bool {
	for _, r := range recs {
		if exclude[r.MovieID] {
			return true
		}
	}
	return false
}

// RecommendForUser corre la cascada completa. Garantiza len(result) <= TopN;
// devolver menos que TopN es un resultado normal con catálogos chicos, no un
// error. Un usuario inexistente simplemente no tiene ratings.
func (s *RecommendService) RecommendForUser(ctx context.Context, req RecRequest) ([]models.RecMovie, error) {
	return s.recommend(ctx, req, nil)
}

// RecommendForUserProgress es la variante para WebSocket: notifica cuántos
// ítems aportó cada nivel a medida que la cascada avanza.
func (s *RecommendService) RecommendForUserProgress(
	ctx context.Context,
	req RecRequest,
	progress func(tier string, count int),
) ([]models.RecMovie, error) {
	return s.recommend(ctx, req, progress)
}

func (s *RecommendService) recommend(
	ctx context.Context,
	req RecRequest,
	progress func(tier string, count int),
) ([]models.RecMovie, error) {
	notify := func(tier string, count int) {
		if progress != nil {
			progress(tier, count)
		}
	}
	// defaults y límites
	if req.TopN <= 0 {
		req.TopN = DefaultTopN
	} else if req.TopN > MaxTopN {
		req.TopN = MaxTopN
	}

	// 1) Historial completo de ratings: todo lo que el usuario ya vio queda
	// excluido de los tres niveles, le haya gustado o no. Se carga antes que
	// el cache porque también valida las listas cacheadas.
	allRatings, err := s.ratings.GetAllByUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	exclude := make(map[int]bool, len(allRatings))
	for _, r := range allRatings {
		exclude[r.MovieID] = true
	}

	// 2) Cache Redis (solo sin refresh y sin seed explícito). Un rating
	// posterior al cacheo deja la lista con títulos ya vistos: cualquier
	// colisión con el historial fresco descarta el cache y se recalcula.
	if !req.Refresh && req.Seed == 0 {
		var cached []models.RecMovie
		if ok, err := cache.GetJSON(ctx, cacheKey(req), &cached); err == nil && ok {
			if !containsExcluded(cached, exclude) {
				return cached, nil
			}
			log.Printf("[recsys] cache obsoleto para user=%d (rating nuevo), se recalcula", req.UserID)
		}
	}

	liked, err := s.ratings.GetLikedByUser(ctx, req.UserID, LikedMinRating)
	if err != nil {
		return nil, err
	}

	model := s.engine.Model()

	var result []models.RecMovie
	var tiers []models.TierInfo
	// used arranca como copia del historial y va acumulando lo ya recomendado
	used := make(map[int]bool, len(exclude))
	for id := range exclude {
		used[id] = true
	}

	appendNew := func(recs []models.RecMovie) int {
		added := 0
		for _, rec := range recs {
			if len(result) >= req.TopN || used[rec.MovieID] {
				continue
			}
			used[rec.MovieID] = true
			result = append(result, rec)
			added++
		}
		return added
	}

	// ---- Nivel 1: personalizado ----
	if model != nil && len(liked) > 0 {
		titles := make([]string, 0, len(liked))
		for _, lm := range liked {
			titles = append(titles, lm.Title)
		}
		n := appendNew(model.Rank(titles, req.TopN, exclude, req.Seed))
		tiers = append(tiers, models.TierInfo{Tier: "personalized", Count: n})
		notify("personalized", n)
		log.Printf("[recsys] user=%d nivel=personalized liked=%d aportó=%d", req.UserID, len(liked), n)
	}

	// ---- Nivel 2: popularidad ----
	if model != nil && len(result) < req.TopN {
		need := req.TopN - len(result)
		n := appendNew(model.Popular(need, used, req.Seed))
		tiers = append(tiers, models.TierInfo{Tier: "popular", Count: n})
		notify("popular", n)
		log.Printf("[recsys] user=%d nivel=popular aportó=%d", req.UserID, n)
	}

	// ---- Nivel 3: TMDB ----
	// Solo para usuarios con historial: a un usuario sin ratings le basta la
	// popularidad local. Cualquier falla de TMDB degrada el conteo, nunca el
	// request.
	if len(result) < req.TopN && len(allRatings) > 0 {
		n := s.augmentFromExternal(ctx, req.TopN, &result, used)
		tiers = append(tiers, models.TierInfo{Tier: "external", Count: n})
		notify("external", n)
		log.Printf("[recsys] user=%d nivel=external aportó=%d", req.UserID, n)
	}

	// 3) Historial en Mongo (best effort, no rompemos la respuesta si falla)
	if s.history != nil {
		hist := &models.Recommendation{
			UserID: req.UserID,
			Algo:   "content-tfidf",
			Params: map[string]any{
				"topN":    req.TopN,
				"seed":    req.Seed,
				"refresh": req.Refresh,
			},
			Tiers:     tiers,
			Items:     result,
			CreatedAt: time.Now(),
		}
		if err := s.history.Insert(ctx, hist); err != nil {
			log.Printf("[recsys] error guardando historial en Mongo: %v", err)
		}
	}

	// 4) Cachear en Redis (1 hora)
	if req.Seed == 0 {
		if err := cache.SetJSON(ctx, cacheKey(req), result, cacheTTLSeconds); err != nil {
			log.Printf("[recsys] error cacheando recomendación en Redis: %v", err)
		}
	}

	return result, nil
}

// History lista las últimas recomendaciones servidas al usuario.
func (s *RecommendService) History(ctx context.Context, userID int, limit int64) ([]models.Recommendation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.history.FindByUser(ctx, userID, limit)
}

// augmentFromExternal completa el resultado con TMDB: primero las populares
// del momento (discover), después las franquicias conocidas. Todo lo nuevo se
// persiste en el catálogo para que el próximo rebuild ya las incluya.
// Devuelve cuántos ítems aportó.
func (s *RecommendService) augmentFromExternal(
	ctx context.Context,
	topN int,
	result *[]models.RecMovie,
	used map[int]bool,
) int {
	if s.external == nil {
		return 0
	}

	// timeout propio: una falla acá es "fuente no disponible", no un 500
	extCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	added := 0
	persisted := 0

	discovered, err := s.external.DiscoverMovies(extCtx, 1)
	if err != nil {
		log.Printf("[recsys] TMDB discover no disponible: %v", err)
	}
	for i := range discovered {
		if len(*result) >= topN {
			break
		}
		m := discovered[i]
		if used[m.MovieID] {
			continue
		}
		used[m.MovieID] = true
		*result = append(*result, m.ToRecMovie())
		added++

		if err := s.catalog.Upsert(ctx, &m); err != nil {
			log.Printf("[recsys] error persistiendo movie=%d desde TMDB: %v", m.MovieID, err)
		} else {
			persisted++
		}
	}

	for _, term := range franchiseSearchTerms {
		if len(*result) >= topN {
			break
		}
		results, err := s.external.SearchMulti(extCtx, term)
		if err != nil {
			log.Printf("[recsys] TMDB search %q no disponible: %v", term, err)
			continue
		}
		// top 2 por búsqueda
		if len(results) > 2 {
			results = results[:2]
		}
		for i := range results {
			m := results[i]
			if used[m.MovieID] {
				continue
			}
			used[m.MovieID] = true

			if err := s.catalog.Upsert(ctx, &m); err != nil {
				log.Printf("[recsys] error persistiendo movie=%d desde TMDB: %v", m.MovieID, err)
			} else {
				persisted++
			}

			if len(*result) < topN {
				*result = append(*result, m.ToRecMovie())
				added++
			}
		}
	}

	// el catálogo mutó: el próximo modelo tiene que incluir lo nuevo
	if persisted > 0 {
		if _, err := s.engine.Rebuild(ctx); err != nil {
			log.Printf("[recsys] rebuild tras ingesta TMDB falló (sigue el modelo anterior): %v", err)
		}
	}

	return added
}
