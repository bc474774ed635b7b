package handler

import (
	"net/http"
	"strconv"
	"time"

	"movieranker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type RecommendHandler struct {
	svc *service.RecommendService
}

func NewRecommendHandler(s *service.RecommendService) *RecommendHandler {
	return &RecommendHandler{svc: s}
}

func parseRecRequest(r *http.Request, userID int) service.RecRequest {
	n, _ := strconv.Atoi(r.URL.Query().Get("n"))
	seed, _ := strconv.ParseInt(r.URL.Query().Get("seed"), 10, 64)
	return service.RecRequest{
		UserID:  userID,
		TopN:    n,
		Seed:    seed,
		Refresh: r.URL.Query().Get("refresh") == "true",
	}
}

// @Summary Mis recomendaciones
// @Tags recommend
// @Security BearerAuth
// @Produce json
// @Param n query int false "cantidad de recomendaciones (máx 50)"
// @Param seed query int false "seed para muestreo reproducible (0 = sin seed)"
// @Param refresh query bool false "si true, ignora cache Redis"
// @Success 200 {array} models.RecMovie
// @Router /me/recommendations [get]
func (h *RecommendHandler) GetMyRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	items, err := h.svc.RecommendForUser(r.Context(), parseRecRequest(r, userID))
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// @Summary Recomendaciones para un usuario (admin)
// @Tags recommend
// @Security BearerAuth
// @Produce json
// @Param id path int true "userId"
// @Param n query int false "cantidad de recomendaciones (máx 50)"
// @Param seed query int false "seed para muestreo reproducible (0 = sin seed)"
// @Param refresh query bool false "si true, ignora cache Redis"
// @Success 200 {array} models.RecMovie
// @Router /users/{id}/recommendations [get]
func (h *RecommendHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	items, err := h.svc.RecommendForUser(r.Context(), parseRecRequest(r, userID))
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// @Summary Historial de recomendaciones servidas
// @Tags recommend
// @Security BearerAuth
// @Produce json
// @Param limit query int false "cantidad de entradas (default 20, máx 100)"
// @Success 200 {array} models.Recommendation
// @Router /me/recommendations/history [get]
func (h *RecommendHandler) GetMyHistory(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	hist, err := h.svc.History(r.Context(), userID, limit)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

// upgrader global (no afecta a swagger)
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary Mis recomendaciones en tiempo real (WebSocket)
// @Tags recommend
// @Security BearerAuth
// @Produce json
// @Param n query int false "cantidad de recomendaciones (máx 50)"
// @Param seed query int false "seed para muestreo reproducible (0 = sin seed)"
// @Param refresh query bool false "si true, ignora cache Redis"
// @Success 200 {object} map[string]interface{}
// @Router /me/ws/recommendations [get]
func (h *RecommendHandler) GetRecommendationsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "No se pudo abrir WebSocket", 400)
		return
	}
	defer conn.Close()

	// montado en /me (usuario del token) y en /users/{id} (admin)
	userID := UserIDFromContext(r.Context())
	if idParam := chi.URLParam(r, "id"); idParam != "" {
		userID, _ = strconv.Atoi(idParam)
	}
	req := parseRecRequest(r, userID)

	// Mensaje inicial
	conn.WriteJSON(map[string]any{
		"type": "start",
		"msg":  "Conexión WS abierta, corriendo la cascada…",
	})

	// Un mensaje de progreso por nivel a medida que la cascada avanza
	items, err := h.svc.RecommendForUserProgress(r.Context(), req, func(tier string, count int) {
		conn.WriteJSON(map[string]any{
			"type":  "progress",
			"tier":  tier,
			"count": count,
		})
	})
	if err != nil {
		conn.WriteJSON(map[string]any{
			"type":  "error",
			"error": err.Error(),
		})
		return
	}

	// Mensaje final con recomendaciones
	conn.WriteJSON(map[string]any{
		"type":        "recommendations",
		"userId":      userID,
		"items":       items,
		"generatedAt": time.Now(),
	})
}
