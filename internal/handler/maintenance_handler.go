package handler

import (
	"net/http"

	"movieranker/internal/service"

	"github.com/go-chi/chi/v5"
)

// MaintenanceHandler expone los endpoints admin del ciclo de vida del modelo.
type MaintenanceHandler struct {
	svc *service.MaintenanceService
}

func NewMaintenanceHandler(svc *service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{svc: svc}
}

// @Summary Estado del modelo de recomendación
// @Description Devuelve si hay modelo disponible, cantidad de películas indexadas y tamaño del vocabulario.
// @Tags admin-maintenance
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.ModelStatus
// @Router /admin/model/status [get]
// GET /admin/model/status
func (h *MaintenanceHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status(r.Context()))
}

// @Summary Reconstruir el modelo
// @Description Fuerza una reconstrucción completa: relee el catálogo, revectoriza y recalcula similitudes. Si falla, el modelo anterior sigue sirviendo.
// @Tags admin-maintenance
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.RebuildResult
// @Failure 500 {string} string "error interno"
// @Router /admin/model/rebuild [post]
// POST /admin/model/rebuild
func (h *MaintenanceHandler) PostRebuild(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Rebuild(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary Sembrar el catálogo desde TMDB
// @Description Trae lo popular del momento más las franquicias conocidas, las persiste y reconstruye el modelo si entró algo nuevo.
// @Tags admin-maintenance
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.SeedPopularResult
// @Failure 500 {string} string "error interno"
// @Router /admin/model/seed-popular [post]
// POST /admin/model/seed-popular
func (h *MaintenanceHandler) PostSeedPopular(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.SeedPopular(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Helper para montar rutas en main.go
func MountMaintenanceRoutes(r chi.Router, h *MaintenanceHandler) {
	r.Route("/admin/model", func(r chi.Router) {
		r.Get("/status", h.GetStatus)
		r.Post("/rebuild", h.PostRebuild)
		r.Post("/seed-popular", h.PostSeedPopular)
	})
}
