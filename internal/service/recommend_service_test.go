package service

import (
	"context"
	"errors"
	"testing"

	"movieranker/internal/cache"
	"movieranker/internal/config"
	"movieranker/internal/models"
	"movieranker/internal/recommender"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ====== fakes en memoria ======

// fakeCatalog implementa recommender.CatalogStore y CatalogWriter.
type fakeCatalog struct {
	movies []models.MovieDoc
}

func (f *fakeCatalog) ListWithOverview(ctx context.Context) ([]models.MovieDoc, error) {
	var out []models.MovieDoc
	for _, m := range f.movies {
		if m.Title != "" && m.Overview != "" {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeCatalog) Upsert(ctx context.Context, m *models.MovieDoc) error {
	for _, existing := range f.movies {
		if existing.MovieID == m.MovieID {
			return nil // ya existe, no-op como el upsert real
		}
	}
	f.movies = append(f.movies, *m)
	return nil
}

func (f *fakeCatalog) titleOf(movieID int) string {
	for _, m := range f.movies {
		if m.MovieID == movieID {
			return m.Title
		}
	}
	return ""
}

type fakeRatings struct {
	catalog *fakeCatalog
	ratings []models.RatingDoc
}

func (f *fakeRatings) GetAllByUser(ctx context.Context, userID int) ([]models.RatingDoc, error) {
	var out []models.RatingDoc
	for _, r := range f.ratings {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRatings) GetLikedByUser(ctx context.Context, userID int, minRating float64) ([]models.LikedMovie, error) {
	var out []models.LikedMovie
	for _, r := range f.ratings {
		if r.UserID != userID || r.Rating < minRating {
			continue
		}
		title := f.catalog.titleOf(r.MovieID)
		if title == "" {
			continue // sin join con el catálogo no hay liked
		}
		out = append(out, models.LikedMovie{MovieID: r.MovieID, Title: title, Rating: r.Rating})
	}
	return out, nil
}

type fakeHistory struct {
	inserted []*models.Recommendation
}

func (f *fakeHistory) Insert(ctx context.Context, rec *models.Recommendation) error {
	f.inserted = append(f.inserted, rec)
	return nil
}

func (f *fakeHistory) FindByUser(ctx context.Context, userID int, limit int64) ([]models.Recommendation, error) {
	var out []models.Recommendation
	for _, rec := range f.inserted {
		if rec.UserID == userID && int64(len(out)) < limit {
			out = append(out, *rec)
		}
	}
	return out, nil
}

type fakeExternal struct {
	discover []models.MovieDoc
	search   map[string][]models.MovieDoc
	err      error
}

func (f *fakeExternal) DiscoverMovies(ctx context.Context, page int) ([]models.MovieDoc, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.discover, nil
}

func (f *fakeExternal) SearchMulti(ctx context.Context, query string) ([]models.MovieDoc, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.search[query], nil
}

// ====== fixture ======

func testCatalog() *fakeCatalog {
	return &fakeCatalog{movies: []models.MovieDoc{
		{MovieID: 1, Title: "Star Quest", Overview: "space adventure galaxy crew explores distant planets", VoteAverage: 8.0, VoteCount: 1000, Popularity: 50},
		{MovieID: 2, Title: "Galaxy Raiders", Overview: "space adventure crew raids galaxy outposts", VoteAverage: 7.5, VoteCount: 800, Popularity: 40},
		{MovieID: 3, Title: "Cooking Show", Overview: "chef prepares pasta dishes kitchen", VoteAverage: 6.0, VoteCount: 200, Popularity: 10},
	}}
}

func newTestService(t *testing.T, catalog *fakeCatalog, ratings *fakeRatings, external ExternalSource) (*RecommendService, *recommender.Engine, *fakeHistory) {
	t.Helper()
	engine := recommender.NewEngine(catalog)
	_, err := engine.Rebuild(context.Background())
	require.NoError(t, err)

	history := &fakeHistory{}
	svc := NewRecommendService(engine, ratings, catalog, history, external)
	return svc, engine, history
}

// ====== tests de la cascada ======

func TestRecommendNoRatingsFallsBackToPopularity(t *testing.T) {
	catalog := testCatalog()
	ratings := &fakeRatings{catalog: catalog}
	external := &fakeExternal{err: errors.New("no debería llamarse")}
	svc, _, history := newTestService(t, catalog, ratings, external)

	recs, err := svc.RecommendForUser(context.Background(), RecRequest{UserID: 99, TopN: 2})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// puro nivel de popularidad: sin ratings no hay personalizado ni TMDB
	assert.Equal(t, 1, recs[0].MovieID)
	assert.Equal(t, 2, recs[1].MovieID)

	require.Len(t, history.inserted, 1)
	tiers := history.inserted[0].Tiers
	for _, ti := range tiers {
		assert.NotEqual(t, "external", ti.Tier, "usuario sin ratings no llega a TMDB")
	}
}

func TestRecommendWithoutModelIsEmptyNotFatal(t *testing.T) {
	// catálogo vacío: nunca hubo rebuild exitoso, Model() es nil
	catalog := &fakeCatalog{}
	engine := recommender.NewEngine(catalog)
	ratings := &fakeRatings{catalog: catalog}
	svc := NewRecommendService(engine, ratings, catalog, &fakeHistory{}, &fakeExternal{})

	recs, err := svc.RecommendForUser(context.Background(), RecRequest{UserID: 1, TopN: 5})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommendPersonalizedTier(t *testing.T) {
	catalog := testCatalog()
	ratings := &fakeRatings{catalog: catalog, ratings: []models.RatingDoc{
		{UserID: 7, MovieID: 1, Rating: 5.0},
	}}
	svc, _, _ := newTestService(t, catalog, ratings, &fakeExternal{})

	recs, err := svc.RecommendForUser(context.Background(), RecRequest{UserID: 7, TopN: 2})
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	// lo más parecido a Star Quest primero, y Star Quest nunca vuelve
	assert.Equal(t, 2, recs[0].MovieID)
	for _, r := range recs {
		assert.NotEqual(t, 1, r.MovieID)
	}
}

func TestRecommendLowRatingsDontFeedPersonalized(t *testing.T) {
	catalog := testCatalog()
	// rating bajo: se vio, no gustó. Queda excluido pero no alimenta el nivel 1.
	ratings := &fakeRatings{catalog: catalog, ratings: []models.RatingDoc{
		{UserID: 7, MovieID: 1, Rating: 1.0},
	}}
	svc, _, history := newTestService(t, catalog, ratings, &fakeExternal{})

	recs, err := svc.RecommendForUser(context.Background(), RecRequest{UserID: 7, TopN: 3})
	require.NoError(t, err)

	for _, r := range recs {
		assert.NotEqual(t, 1, r.MovieID, "lo ya visto nunca se recomienda")
	}
	require.Len(t, history.inserted, 1)
	for _, ti := range history.inserted[0].Tiers {
		assert.NotEqual(t, "personalized", ti.Tier)
	}
}

func TestRecommendNeverExceedsTopN(t *testing.T) {
	catalog := testCatalog()
	ratings := &fakeRatings{catalog: catalog, ratings: []models.RatingDoc{
		{UserID: 7, MovieID: 1, Rating: 5.0},
	}}
	svc, _, _ := newTestService(t, catalog, ratings, &fakeExternal{})

	recs, err := svc.RecommendForUser(context.Background(), RecRequest{UserID: 7, TopN: 1})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRecommendAllRatedDegradesToEmpty(t *testing.T) {
	catalog := testCatalog()
	// el usuario ya vio todo el catálogo y TMDB está caído: resultado vacío,
	// nunca un error
	ratings := &fakeRatings{catalog: catalog, ratings: []models.RatingDoc{
		{UserID: 7, MovieID: 1, Rating: 5.0},
		{UserID: 7, MovieID: 2, Rating: 4.0},
		{UserID: 7, MovieID: 3, Rating: 2.0},
	}}
	external := &fakeExternal{err: errors.New("tmdb timeout")}
	svc, _, history := newTestService(t, catalog, ratings, external)

	recs, err := svc.RecommendForUser(context.Background(), RecRequest{UserID: 7, TopN: 5})
	require.NoError(t, err)
	assert.Empty(t, recs)

	// el nivel externo corrió (el usuario tiene historial) pero aportó cero
	require.Len(t, history.inserted, 1)
	var sawExternal bool
	for _, ti := range history.inserted[0].Tiers {
		if ti.Tier == "external" {
			sawExternal = true
			assert.Zero(t, ti.Count)
		}
	}
	assert.True(t, sawExternal)
}

func TestRecommendExternalTierPersistsAndRebuilds(t *testing.T) {
	catalog := testCatalog()
	ratings := &fakeRatings{catalog: catalog, ratings: []models.RatingDoc{
		{UserID: 7, MovieID: 1, Rating: 5.0},
		{UserID: 7, MovieID: 2, Rating: 4.0},
		{UserID: 7, MovieID: 3, Rating: 4.0},
	}}
	external := &fakeExternal{
		discover: []models.MovieDoc{
			{MovieID: 100, Title: "Estreno Uno", Overview: "fresh blockbuster premiere spectacle", VoteAverage: 7, VoteCount: 500, Popularity: 80},
			{MovieID: 101, Title: "Estreno Dos", Overview: "another premiere everyone talks", VoteAverage: 7, VoteCount: 400, Popularity: 70},
		},
	}
	svc, engine, _ := newTestService(t, catalog, ratings, external)

	recs, err := svc.RecommendForUser(context.Background(), RecRequest{UserID: 7, TopN: 2})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 100, recs[0].MovieID)
	assert.Equal(t, 101, recs[1].MovieID)

	// lo traído se persistió y el modelo se reconstruyó incluyéndolo
	assert.Len(t, catalog.movies, 5)
	assert.Equal(t, 5, engine.Model().Len())
}

func TestRecommendFranchiseSearchTopTwo(t *testing.T) {
	catalog := testCatalog()
	ratings := &fakeRatings{catalog: catalog, ratings: []models.RatingDoc{
		{UserID: 7, MovieID: 1, Rating: 5.0},
		{UserID: 7, MovieID: 2, Rating: 4.0},
		{UserID: 7, MovieID: 3, Rating: 4.0},
	}}
	// discover vacío: todo sale de las búsquedas de franquicias, top 2 por término
	external := &fakeExternal{
		search: map[string][]models.MovieDoc{
			"Avengers": {
				{MovieID: 200, Title: "Avengers Uno", Overview: "heroes assemble save world"},
				{MovieID: 201, Title: "Avengers Dos", Overview: "heroes assemble again bigger threat"},
				{MovieID: 202, Title: "Avengers Tres", Overview: "ignored beyond top two"},
			},
		},
	}
	svc, _, _ := newTestService(t, catalog, ratings, external)

	recs, err := svc.RecommendForUser(context.Background(), RecRequest{UserID: 7, TopN: 5})
	require.NoError(t, err)

	ids := make(map[int]bool)
	for _, r := range recs {
		ids[r.MovieID] = true
	}
	assert.True(t, ids[200])
	assert.True(t, ids[201])
	assert.False(t, ids[202], "solo top 2 por búsqueda")
}

func TestRecommendTopNClamped(t *testing.T) {
	catalog := testCatalog()
	ratings := &fakeRatings{catalog: catalog}
	svc, _, history := newTestService(t, catalog, ratings, &fakeExternal{})

	_, err := svc.RecommendForUser(context.Background(), RecRequest{UserID: 1, TopN: 1000})
	require.NoError(t, err)
	require.Len(t, history.inserted, 1)
	assert.Equal(t, MaxTopN, history.inserted[0].Params["topN"])

	_, err = svc.RecommendForUser(context.Background(), RecRequest{UserID: 1, TopN: 0})
	require.NoError(t, err)
	require.Len(t, history.inserted, 2)
	assert.Equal(t, DefaultTopN, history.inserted[1].Params["topN"])
}

func TestCachedListDiscardedAfterNewRating(t *testing.T) {
	// Redis real (en memoria): el camino de cache tiene que respetar la
	// invariante de exclusión aunque el TTL no haya vencido.
	mr := miniredis.RunT(t)
	cache.InitRedis(&config.Config{RedisAddr: mr.Addr()})
	t.Cleanup(cache.Close)

	catalog := testCatalog()
	ratings := &fakeRatings{catalog: catalog}
	svc, _, _ := newTestService(t, catalog, ratings, &fakeExternal{})

	// primera llamada: sin ratings, se cachea la lista de popularidad
	first, err := svc.RecommendForUser(context.Background(), RecRequest{UserID: 77, TopN: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, 1, first[0].MovieID)

	// el usuario califica la película 1: la lista cacheada quedó obsoleta
	ratings.ratings = append(ratings.ratings, models.RatingDoc{UserID: 77, MovieID: 1, Rating: 4.5})

	second, err := svc.RecommendForUser(context.Background(), RecRequest{UserID: 77, TopN: 2})
	require.NoError(t, err)
	require.NotEmpty(t, second)
	for _, r := range second {
		assert.NotEqual(t, 1, r.MovieID, "una película ya calificada no puede volver desde el cache")
	}

	// la tercera llamada sirve el cache ya saneado
	third, err := svc.RecommendForUser(context.Background(), RecRequest{UserID: 77, TopN: 2})
	require.NoError(t, err)
	assert.Equal(t, second, third)
}

func TestHistoryRecordsServedRecommendations(t *testing.T) {
	catalog := testCatalog()
	ratings := &fakeRatings{catalog: catalog}
	svc, _, _ := newTestService(t, catalog, ratings, &fakeExternal{})

	_, err := svc.RecommendForUser(context.Background(), RecRequest{UserID: 5, TopN: 2})
	require.NoError(t, err)

	hist, err := svc.History(context.Background(), 5, 0) // 0 => default 20
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "content-tfidf", hist[0].Algo)
	assert.Len(t, hist[0].Items, 2)

	otros, err := svc.History(context.Background(), 6, 0)
	require.NoError(t, err)
	assert.Empty(t, otros)
}

func TestRecommendProgressCallback(t *testing.T) {
	catalog := testCatalog()
	ratings := &fakeRatings{catalog: catalog, ratings: []models.RatingDoc{
		{UserID: 7, MovieID: 1, Rating: 5.0},
	}}
	svc, _, _ := newTestService(t, catalog, ratings, &fakeExternal{})

	var tiers []string
	_, err := svc.RecommendForUserProgress(context.Background(), RecRequest{UserID: 7, TopN: 5}, func(tier string, count int) {
		tiers = append(tiers, tier)
	})
	require.NoError(t, err)
	assert.Contains(t, tiers, "personalized")
}
