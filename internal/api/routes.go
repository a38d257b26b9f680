package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/signin", s.handleSignin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/signout", s.handleSignout)

			r.Route("/decks", func(r chi.Router) {
				r.Get("/", s.handleListDecks)
				r.Post("/", s.handleCreateDeck)
				r.Get("/{id}", s.handleGetDeck)
				r.Patch("/{id}", s.handleUpdateDeck)
				r.Delete("/{id}", s.handleDeleteDeck)
				r.Get("/{id}/due", s.handleDueFlashcards)
			})

			r.Route("/flashcards", func(r chi.Router) {
				r.Get("/", s.handleListFlashcards)
				r.Post("/", s.handleCreateFlashcard)
				r.Get("/{id}", s.handleGetFlashcard)
				r.Patch("/{id}", s.handleUpdateFlashcard)
				r.Delete("/{id}", s.handleDeleteFlashcard)
			})

			r.Route("/study-sessions", func(r chi.Router) {
				r.Post("/", s.handleCreateSession)
				r.Get("/{id}", s.handleGetSession)
				r.Post("/{id}/reviews", s.handleSubmitReview)
				r.Patch("/{id}/complete", s.handleCompleteSession)
			})

			r.Post("/ai/generate", s.handleGenerate)
		})
	})

	return r
}
