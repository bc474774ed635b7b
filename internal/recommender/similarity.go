package recommender

// dotSparse es el producto punto de dos filas sparse ordenadas por término.
func dotSparse(a, b []termWeight) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].term == b[j].term:
			sum += a[i].w * b[j].w
			i++
			j++
		case a[i].term < b[j].term:
			i++
		default:
			j++
		}
	}
	return sum
}

// cosineMatrix computa la matriz NxN de similitud coseno. Las filas ya vienen
// normalizadas L2, así que basta el producto punto. Simétrica por
// construcción; O(N²·V) denso, aceptable para catálogos de miles.
func cosineMatrix(rows [][]termWeight) [][]float64 {
	n := len(rows)
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		sim[i][i] = dotSparse(rows[i], rows[i])
		for j := i + 1; j < n; j++ {
			s := dotSparse(rows[i], rows[j])
			sim[i][j] = s
			sim[j][i] = s
		}
	}
	return sim
}
