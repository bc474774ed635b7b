package recommender

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"movieranker/internal/models"
)

// CatalogStore es el contrato mínimo con la persistencia del catálogo que
// necesita el ciclo de vida del modelo.
type CatalogStore interface {
	ListWithOverview(ctx context.Context) ([]models.MovieDoc, error)
}

// Engine es el dueño del modelo vivo. Los lectores toman la referencia con
// Model() sin bloquearse; Rebuild construye un modelo completamente nuevo y
// recién al final hace el swap atómico. Un rebuild fallido deja el modelo
// anterior intacto y sirviendo.
type Engine struct {
	catalog CatalogStore

	mu    sync.Mutex // serializa rebuilds, no lecturas
	model atomic.Pointer[Model]
}

func NewEngine(catalog CatalogStore) *Engine {
	return &Engine{catalog: catalog}
}

// Model devuelve el modelo vivo. Puede ser nil si nunca se construyó (catálogo
// vacío al arrancar): los callers lo tratan como "modelo no disponible".
func (e *Engine) Model() *Model {
	return e.model.Load()
}

// Rebuild reconstruye el modelo entero desde un snapshot fresco del catálogo.
// No hay invalidación parcial: vocabulario, filas, índice de títulos y matriz
// de similitud se reemplazan juntos o no se reemplaza nada.
func (e *Engine) Rebuild(ctx context.Context) (*Model, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.catalog.ListWithOverview(ctx)
	if err != nil {
		return nil, err
	}

	m, err := Build(snapshot)
	if err != nil {
		return nil, err
	}

	e.model.Store(m)
	log.Printf("[recsys] modelo reconstruido: %d películas, vocabulario=%d", m.Len(), m.VocabularySize())
	return m, nil
}
