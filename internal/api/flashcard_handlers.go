package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/awalczak/memodeck/internal/errors"
	"github.com/awalczak/memodeck/internal/models"
)

type createFlashcardRequest struct {
	DeckID string `json:"deck_id" validate:"required,uuid4"`
	Front  string `json:"front" validate:"required,max=1000"`
	Back   string `json:"back" validate:"required,max=1000"`
	Source string `json:"source" validate:"omitempty,oneof=manual ai"`
}

type updateFlashcardRequest struct {
	Front string `json:"front" validate:"required,max=1000"`
	Back  string `json:"back" validate:"required,max=1000"`
}

func (s *Server) handleCreateFlashcard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createFlashcardRequest
	if err := s.decode(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.Cards.Create(r.Context(), user.ID, req.DeckID, req.Front, req.Back, req.Source)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, card)
}

func (s *Server) handleListFlashcards(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	filter := models.FlashcardFilter{
		UserID: user.ID,
		DeckID: r.URL.Query().Get("deck_id"),
		Source: r.URL.Query().Get("source"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 20),
	}
	if filter.DeckID != "" {
		if err := uuid.Validate(filter.DeckID); err != nil {
			handleError(w, r, errors.NewBadRequestError("invalid deck_id"))
			return
		}
	}

	cards, pagination, err := s.Cards.List(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, listResponse{Data: cards, Pagination: pagination})
}

func (s *Server) handleGetFlashcard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.Cards.Get(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, card)
}

func (s *Server) handleUpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req updateFlashcardRequest
	if err := s.decode(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.Cards.Update(r.Context(), user.ID, id, req.Front, req.Back)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, card)
}

func (s *Server) handleDeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.Cards.Delete(r.Context(), user.ID, id); err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}
