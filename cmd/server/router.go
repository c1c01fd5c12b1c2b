package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mnemosyne-app/mnemo-api/internal/api"
	apiMiddleware "github.com/mnemosyne-app/mnemo-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordVerifier,
		app.config.Auth,
	)
	deckHandler := api.NewDeckHandler(app.deckService)
	cardHandler := api.NewCardHandler(app.deckService)
	sessionHandler := api.NewSessionHandler(app.sessionService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Deck tree endpoints
			r.Get("/decks/tree", deckHandler.GetTree)
			r.Post("/decks", deckHandler.CreateNode)
			r.Get("/decks/{id}", deckHandler.GetNode)
			r.Patch("/decks/{id}", deckHandler.Rename)
			r.Post("/decks/{id}/move", deckHandler.Move)
			r.Delete("/decks/{id}", deckHandler.DeleteNode)

			// Card endpoints
			r.Get("/decks/{id}/cards", deckHandler.ListCards)
			r.Post("/decks/{id}/cards", deckHandler.CreateCard)
			r.Get("/cards/{id}", cardHandler.GetCard)
			r.Put("/cards/{id}", cardHandler.UpdateCard)
			r.Delete("/cards/{id}", cardHandler.DeleteCard)

			// Quiz session endpoints
			r.Post("/sessions", sessionHandler.Start)
			r.Get("/sessions/{id}", sessionHandler.Get)
			r.Post("/sessions/{id}/answer", sessionHandler.Answer)
			r.Post("/sessions/{id}/typed", sessionHandler.CheckTyped)
			r.Get("/sessions/{id}/options", sessionHandler.GuessOptions)
			r.Delete("/sessions/{id}", sessionHandler.End)
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
