package recommender

import (
	"math/rand"
	"sort"
	"time"

	"movieranker/internal/models"
)

// Model es un snapshot inmutable del catálogo con sus cuatro estructuras
// derivadas: filas TF-IDF, vocabulario, índice título->fila y matriz de
// similitud. Nunca se muta en sitio: un rebuild crea un Model nuevo completo.
type Model struct {
	movies   []models.MovieDoc
	rows     [][]termWeight
	vocab    map[string]int
	titleIdx map[string]int
	sim      [][]float64
	builtAt  time.Time
}

// Build construye un modelo desde un snapshot del catálogo. Devuelve
// ErrEmptyCatalog si no hay películas.
func Build(snapshot []models.MovieDoc) (*Model, error) {
	rows, vocab, err := vectorize(snapshot)
	if err != nil {
		return nil, err
	}

	// títulos duplicados: gana la primera aparición del snapshot
	titleIdx := make(map[string]int, len(snapshot))
	for i, m := range snapshot {
		if _, ok := titleIdx[m.Title]; !ok {
			titleIdx[m.Title] = i
		}
	}

	return &Model{
		movies:   snapshot,
		rows:     rows,
		vocab:    vocab,
		titleIdx: titleIdx,
		sim:      cosineMatrix(rows),
		builtAt:  time.Now(),
	}, nil
}

func (m *Model) Len() int            { return len(m.movies) }
func (m *Model) VocabularySize() int { return len(m.vocab) }
func (m *Model) BuiltAt() time.Time  { return m.builtAt }

// Similarity devuelve la celda (i,j) de la matriz de similitud.
func (m *Model) Similarity(i, j int) float64 { return m.sim[i][j] }

// sampleOrHead aplica la disciplina de diversidad: con seed != 0 se muestrea
// pseudo-aleatorio reproducible desde el over-sample; sin seed se trunca la
// cabeza. cands ya viene ordenado por score.
func sampleOrHead(cands []int, topN int, seed int64) []int {
	if len(cands) <= topN {
		return cands
	}
	if seed == 0 {
		return cands[:topN]
	}
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(cands))
	out := make([]int, 0, topN)
	for _, p := range perm[:topN] {
		out = append(out, cands[p])
	}
	return out
}

// Rank recomienda en base a una lista de títulos que al usuario le gustaron.
//
//   - títulos que no están en el catálogo se saltan en silencio (los ratings
//     y el catálogo se construyen por separado)
//   - si ningún título resuelve, devuelve vacío: el caller decide el fallback
//   - excludeIDs es TODO el historial de ratings del usuario, no solo los
//     likes: nunca se recomienda algo ya visto
//   - seed != 0 hace el muestreo de diversidad reproducible
func (m *Model) Rank(likedTitles []string, topN int, excludeIDs map[int]bool, seed int64) []models.RecMovie {
	if topN <= 0 {
		return nil
	}

	resolved := make(map[int]bool)
	for _, title := range likedTitles {
		if idx, ok := m.titleIdx[title]; ok {
			resolved[idx] = true
		}
	}
	if len(resolved) == 0 {
		return nil
	}

	// score de cada candidata = promedio de sus filas de similitud
	n := len(m.movies)
	scores := make([]float64, n)
	for idx := range resolved {
		row := m.sim[idx]
		for j := 0; j < n; j++ {
			scores[j] += row[j]
		}
	}
	k := float64(len(resolved))
	for j := range scores {
		scores[j] /= k
	}

	// ranking descendente; empates conservan el orden del snapshot
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	var candidates []int
	for _, idx := range order {
		if resolved[idx] {
			continue
		}
		if excludeIDs[m.movies[idx].MovieID] {
			continue
		}
		candidates = append(candidates, idx)
	}
	if len(candidates) == 0 {
		// "no hay más candidatas", distinto de "no hay modelo"
		return nil
	}

	// over-sample de 3x para meter variedad sin rankear solo por score crudo
	over := 3 * topN
	if over > len(candidates) {
		over = len(candidates)
	}
	picked := sampleOrHead(candidates[:over], topN, seed)

	out := make([]models.RecMovie, 0, len(picked))
	for _, idx := range picked {
		out = append(out, m.movies[idx].ToRecMovie())
	}
	return out
}

// Popular rankea por el score compuesto voteAverage × voteCount × popularity.
// Sin normalizar: es el comportamiento histórico del ranker (ítems con cero
// votos o cero popularity quedan al fondo, nunca se divide por nada).
func (m *Model) Popular(topN int, excludeIDs map[int]bool, seed int64) []models.RecMovie {
	if topN <= 0 {
		return nil
	}

	n := len(m.movies)
	scores := make([]float64, n)
	for i, mv := range m.movies {
		scores[i] = mv.VoteAverage * float64(mv.VoteCount) * mv.Popularity
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	var candidates []int
	for _, idx := range order {
		if excludeIDs[m.movies[idx].MovieID] {
			continue
		}
		candidates = append(candidates, idx)
	}
	if len(candidates) == 0 {
		return nil
	}

	// over-sample de 2x y muestreo hacia abajo para variedad
	over := 2 * topN
	if over > len(candidates) {
		over = len(candidates)
	}
	picked := sampleOrHead(candidates[:over], topN, seed)

	out := make([]models.RecMovie, 0, len(picked))
	for _, idx := range picked {
		out = append(out, m.movies[idx].ToRecMovie())
	}
	return out
}
