// internal/handler/movie_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"movieranker/internal/models"
	"movieranker/internal/service"

	"github.com/go-chi/chi/v5"
)

type MovieHandler struct {
	svc *service.MovieService
}

func NewMovieHandler(s *service.MovieService) *MovieHandler { return &MovieHandler{svc: s} }

// @Summary Get movie
// @Tags movies
// @Produce json
// @Param id path int true "movieId"
// @Success 200 {object} models.MovieDoc
// @Router /movies/{id} [get]
func (h *MovieHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	m, err := h.svc.GetMovie(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if m == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// @Summary Buscar / listar películas del catálogo (paginado)
// @Tags movies
// @Produce json
// @Param q query string false "búsqueda por título"
// @Param mediaType query string false "movie|tv"
// @Param limit query int false "límite"
// @Param offset query int false "offset"
// @Success 200 {array} models.MovieDoc
// @Router /movies/search [get]
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	mediaType := r.URL.Query().Get("mediaType")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}

	movies, err := h.svc.Search(r.Context(), q, mediaType, limit, offset)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// @Summary Top películas del catálogo (popularidad o rating)
// @Tags movies
// @Produce json
// @Param metric query string false "popular|rating (default: popular)"
// @Param limit query int false "límite (default: 20)"
// @Success 200 {array} models.MovieDoc
// @Router /movies/top [get]
func (h *MovieHandler) Top(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "popular"
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}

	movies, err := h.svc.Top(r.Context(), metric, limit)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// @Summary Buscar en TMDB (títulos fuera del catálogo)
// @Tags movies
// @Produce json
// @Param query query string true "texto a buscar"
// @Success 200 {array} models.MovieDoc
// @Failure 400 {string} string "query requerido"
// @Router /movies/tmdb [get]
func (h *MovieHandler) SearchTMDB(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		http.Error(w, "query es requerido", http.StatusBadRequest)
		return
	}

	movies, err := h.svc.SearchTMDB(r.Context(), query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// @Summary Populares del momento en TMDB (cine + TV)
// @Tags movies
// @Produce json
// @Param page query int false "página (default 1)"
// @Success 200 {array} models.MovieDoc
// @Router /movies/tmdb-discover [get]
func (h *MovieHandler) DiscoverTMDB(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	movies, err := h.svc.DiscoverTMDB(r.Context(), page)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// @Summary Géneros TMDB (cine + TV)
// @Tags movies
// @Produce json
// @Success 200 {object} map[int]string
// @Router /movies/genres [get]
func (h *MovieHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.svc.Genres(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

// ====== ADMIN: crear películas a mano ======

// @Summary Crear nueva película
// @Tags movies
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.MovieCreateRequest true "Datos de la película"
// @Success 201 {object} models.MovieDoc
// @Router /admin/movies [post]
func (h *MovieHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var req models.MovieCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		http.Error(w, "body inválido (title requerido)", http.StatusBadRequest)
		return
	}

	movie, err := h.svc.CreateMovie(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrMovieAlreadyExists) {
			http.Error(w, "ya existe una película con ese id", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, movie)
}
