package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	_ "movieranker/docs" // swagger docs

	"movieranker/internal/cache"
	"movieranker/internal/config"
	"movieranker/internal/db"
	"movieranker/internal/handler"
	"movieranker/internal/recommender"
	"movieranker/internal/repository"
	"movieranker/internal/service"
	"movieranker/internal/tmdb"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title MovieRanker API
// @version 1.0
// @description API de recomendación de películas (TF-IDF content-based, Mongo, Redis, TMDB)
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	// Mongo y Redis
	db.InitMongo(cfg)
	cache.InitRedis(cfg)

	// repos
	userRepo := repository.NewUserRepository()
	movieRepo := repository.NewMovieRepository()
	ratingRepo := repository.NewRatingRepository()
	recRepo := repository.NewRecommendationRepository()

	if err := userRepo.EnsureIndexes(context.Background()); err != nil {
		log.Printf("[mongo] no se pudieron crear los índices de users: %v", err)
	}

	// cliente TMDB
	tmdbClient := tmdb.NewClient(cfg.TMDBAPIKey)

	// motor de recomendación: un modelo en memoria que se reconstruye completo
	engine := recommender.NewEngine(movieRepo)
	if _, err := engine.Rebuild(context.Background()); err != nil {
		if errors.Is(err, recommender.ErrEmptyCatalog) {
			// arranque en frío: sin películas todavía, el modelo se construye
			// con el primer seed-popular o la primera alta de catálogo
			log.Printf("[recsys] catálogo vacío, arrancando sin modelo")
		} else {
			log.Fatalf("[recsys] no se pudo construir el modelo inicial: %v", err)
		}
	}

	// services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	movieSvc := service.NewMovieService(movieRepo, tmdbClient)
	ratingSvc := service.NewRatingService(ratingRepo, movieRepo, engine)
	recSvc := service.NewRecommendService(engine, ratingRepo, movieRepo, recRepo, tmdbClient)
	maintSvc := service.NewMaintenanceService(engine, movieRepo, tmdbClient)

	// handlers
	authH := handler.NewAuthHandler(authSvc)
	movieH := handler.NewMovieHandler(movieSvc)
	ratingH := handler.NewRatingHandler(ratingSvc)
	recH := handler.NewRecommendHandler(recSvc)
	maintH := handler.NewMaintenanceHandler(maintSvc)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// =============
	// Rutas públicas
	// =============
	r.Get("/health", handler.Health)

	r.Post("/auth/register", authH.Register)
	r.Post("/auth/login", authH.Login)

	// Películas (públicas)
	r.Get("/movies/tmdb", movieH.SearchTMDB)
	r.Get("/movies/tmdb-discover", movieH.DiscoverTMDB)
	r.Get("/movies/genres", movieH.Genres)
	r.Get("/movies/search", movieH.Search)
	r.Get("/movies/top", movieH.Top)
	r.Get("/movies/{id}", movieH.GetMovie)

	// ===========================
	// Rutas protegidas con JWT
	// ===========================
	authMw := handler.JWTAuth(cfg.JWTSecret)

	r.Group(func(r chi.Router) {
		r.Use(authMw)

		// ---- Endpoints /me (USER normal) ----
		r.Route("/me", func(r chi.Router) {
			r.Get("/ratings", ratingH.GetMyRatings)
			r.Post("/ratings", ratingH.PostMyRating)
			r.Get("/recommendations", recH.GetMyRecommendations)
			r.Get("/recommendations/history", recH.GetMyHistory)

			// WebSocket: la cascada avisa nivel por nivel
			r.Get("/ws/recommendations", recH.GetRecommendationsWS)
		})

		// ---- Endpoints solo ADMIN ----
		r.Group(func(r chi.Router) {
			r.Use(handler.AdminOnly())

			// edición de usuario
			r.Put("/users/{id}/update", authH.UpdateUser)

			// gestión de películas
			r.Post("/admin/movies", movieH.CreateMovie)

			// ratings y recomendaciones de cualquier usuario
			r.Route("/users/{id}", func(r chi.Router) {
				r.Get("/", authH.GetUserByID)

				r.Get("/ratings", ratingH.GetRatings)
				r.Post("/ratings", ratingH.PostRating)

				r.Get("/recommendations", recH.GetRecommendations)

				// WebSocket
				r.Get("/ws/recommendations", recH.GetRecommendationsWS)
			})

			// --- ciclo de vida del modelo ---
			handler.MountMaintenanceRoutes(r, maintH)
		})
	})

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	log.Printf("HTTP escuchando en :%s", cfg.HTTPPort)
	log.Fatal(http.ListenAndServe(":"+cfg.HTTPPort, r))
}
