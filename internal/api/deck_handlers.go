package api

import (
	"net/http"

	"github.com/awalczak/memodeck/internal/models"
)

type deckRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type listResponse struct {
	Data       any               `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req deckRequest
	if err := s.decode(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.Decks.Create(r.Context(), user.ID, req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, deck)
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	decks, pagination, err := s.Decks.List(r.Context(), user.ID, page, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, listResponse{Data: decks, Pagination: pagination})
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.Decks.Get(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, deck)
}

func (s *Server) handleUpdateDeck(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req deckRequest
	if err := s.decode(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.Decks.Update(r.Context(), user.ID, id, req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, deck)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.Decks.Delete(r.Context(), user.ID, id); err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleDueFlashcards(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	limit := queryInt(r, "limit", 0)
	cards, total, err := s.Decks.DueCards(r.Context(), user.ID, id, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, map[string]any{
		"data":  cards,
		"total": total,
	})
}
