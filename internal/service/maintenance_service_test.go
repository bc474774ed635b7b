package service

import (
	"context"
	"errors"
	"testing"

	"movieranker/internal/models"
	"movieranker/internal/recommender"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusWithoutModel(t *testing.T) {
	engine := recommender.NewEngine(&fakeCatalog{})
	svc := NewMaintenanceService(engine, &fakeCatalog{}, &fakeExternal{})

	st := svc.Status(context.Background())
	assert.False(t, st.Available)
	assert.Zero(t, st.Movies)
}

func TestStatusAndRebuild(t *testing.T) {
	catalog := testCatalog()
	engine := recommender.NewEngine(catalog)
	svc := NewMaintenanceService(engine, catalog, &fakeExternal{})

	res, err := svc.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Movies)
	assert.NotZero(t, res.VocabularySize)
	assert.NotEmpty(t, res.BuiltAt)

	st := svc.Status(context.Background())
	assert.True(t, st.Available)
	assert.Equal(t, 3, st.Movies)
}

func TestSeedPopularPersistsAndRebuilds(t *testing.T) {
	catalog := testCatalog()
	engine := recommender.NewEngine(catalog)
	external := &fakeExternal{
		discover: []models.MovieDoc{
			{MovieID: 500, Title: "Seed Uno", Overview: "seeded blockbuster"},
		},
		search: map[string][]models.MovieDoc{
			"Batman": {
				{MovieID: 600, Title: "Batman", Overview: "dark knight"},
				{MovieID: 601, Title: "Batman Returns", Overview: "dark knight returns"},
				{MovieID: 602, Title: "Batman Forever", Overview: "beyond top two"},
			},
		},
	}
	svc := NewMaintenanceService(engine, catalog, external)

	res, err := svc.SeedPopular(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Discover)
	assert.Equal(t, 2, res.Searched, "top 2 por franquicia")
	assert.Equal(t, 3, res.Added)
	assert.True(t, res.Rebuilt)

	// el modelo nuevo incluye lo sembrado
	require.NotNil(t, engine.Model())
	assert.Equal(t, 6, engine.Model().Len())
}

func TestSeedPopularSourceDownIsNotFatal(t *testing.T) {
	catalog := testCatalog()
	engine := recommender.NewEngine(catalog)
	external := &fakeExternal{err: errors.New("tmdb caído")}
	svc := NewMaintenanceService(engine, catalog, external)

	res, err := svc.SeedPopular(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Added)
	assert.False(t, res.Rebuilt)
}
