package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/flashquiz/flashquiz-api/internal/api"
	apimiddleware "github.com/flashquiz/flashquiz-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware. Literal flashcard routes are registered before the {id}
// parameter route so "search", "random", and friends are never parsed as
// card IDs.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.NewTraceMiddleware(app.logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   app.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}).Handler)

	cardHandler := api.NewCardHandler(app.cardService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.jwtService, app.logger)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Route("/flashcards", func(r chi.Router) {
			r.With(authMiddleware.OptionalAuthenticate).Post("/", cardHandler.Create)
			r.Get("/", cardHandler.List)
			r.Get("/search", cardHandler.Search)
			r.Get("/random", cardHandler.Random)
			r.With(authMiddleware.Authenticate).Get("/user", cardHandler.OwnCards)
			r.Get("/topic/{topic}", cardHandler.ByTopic)
			r.Get("/category/{category}", cardHandler.ByCategory)

			r.Get("/{id}", cardHandler.GetByID)
			r.With(authMiddleware.Authenticate).Put("/{id}", cardHandler.Update)
			r.With(authMiddleware.Authenticate).Delete("/{id}", cardHandler.Delete)
			r.With(authMiddleware.Authenticate).Post("/{id}/attempt", cardHandler.Attempt)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/refresh", userHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Get("/profile", userHandler.Profile)
				r.Post("/bookmarks", userHandler.ToggleBookmark)
				r.Get("/bookmarks", userHandler.GetBookmarks)
				r.Post("/progress", userHandler.UpdateProgress)
				r.Get("/progress", userHandler.GetProgress)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
