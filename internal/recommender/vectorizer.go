package recommender

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"

	"movieranker/internal/models"
)

// MaxVocabulary acota el vocabulario a los términos más frecuentes del corpus.
const MaxVocabulary = 5000

// ErrEmptyCatalog indica que no hay películas vectorizables: el modelo queda
// "no disponible", el caller decide qué hacer (no es un crash).
var ErrEmptyCatalog = errors.New("recommender: catálogo vacío, no hay nada que vectorizar")

// termWeight es una celda de la fila sparse TF-IDF: índice de término en el
// vocabulario + peso. Las filas se guardan ordenadas por term.
type termWeight struct {
	term int
	w    float64
}

// tokenize pasa a minúsculas, corta por todo lo que no sea letra o dígito,
// descarta tokens de un solo carácter y stop-words.
func tokenize(text string) []string {
	text = strings.ToLower(text)

	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() >= 2 {
			tok := b.String()
			if !stopWords[tok] {
				tokens = append(tokens, tok)
			}
		}
		b.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// buildVocabulary elige los MaxVocabulary términos con mayor frecuencia total
// en el corpus. Empates se rompen alfabéticamente para que el vocabulario sea
// determinístico.
func buildVocabulary(docs [][]string) map[string]int {
	freq := make(map[string]int)
	for _, doc := range docs {
		for _, tok := range doc {
			freq[tok]++
		}
	}

	terms := make([]string, 0, len(freq))
	for t := range freq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > MaxVocabulary {
		terms = terms[:MaxVocabulary]
	}

	vocab := make(map[string]int, len(terms))
	// el índice final es alfabético, como acostumbran los vectorizadores
	sort.Strings(terms)
	for i, t := range terms {
		vocab[t] = i
	}
	return vocab
}

// vectorize construye las filas TF-IDF (normalizadas L2) del snapshot.
// El documento de cada película es `title + " " + overview`.
// Determinístico para un snapshot fijo.
func vectorize(snapshot []models.MovieDoc) ([][]termWeight, map[string]int, error) {
	if len(snapshot) == 0 {
		return nil, nil, ErrEmptyCatalog
	}

	docs := make([][]string, len(snapshot))
	for i, m := range snapshot {
		docs[i] = tokenize(m.Title + " " + m.Overview)
	}

	vocab := buildVocabulary(docs)

	// document frequency por término del vocabulario
	df := make([]int, len(vocab))
	for _, doc := range docs {
		seen := make(map[int]bool)
		for _, tok := range doc {
			if idx, ok := vocab[tok]; ok && !seen[idx] {
				seen[idx] = true
				df[idx]++
			}
		}
	}

	// idf suavizado: ln((1+N)/(1+df)) + 1
	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for i, d := range df {
		idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	rows := make([][]termWeight, len(docs))
	for i, doc := range docs {
		counts := make(map[int]int)
		for _, tok := range doc {
			if idx, ok := vocab[tok]; ok {
				counts[idx]++
			}
		}

		row := make([]termWeight, 0, len(counts))
		for idx, c := range counts {
			row = append(row, termWeight{term: idx, w: float64(c) * idf[idx]})
		}
		sort.Slice(row, func(a, b int) bool { return row[a].term < row[b].term })

		// normalización L2: así el coseno queda en un producto punto
		var norm float64
		for _, tw := range row {
			norm += tw.w * tw.w
		}
		norm = math.Sqrt(norm)
		if norm > 0 {
			for j := range row {
				row[j].w /= norm
			}
		}
		rows[i] = row
	}

	return rows, vocab, nil
}
