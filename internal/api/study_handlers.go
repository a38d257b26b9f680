package api

import (
	"net/http"
)

type createSessionRequest struct {
	DeckID string `json:"deck_id" validate:"required,uuid4"`
}

type submitReviewRequest struct {
	FlashcardID    string `json:"flashcard_id" validate:"required,uuid4"`
	Rating         int    `json:"rating" validate:"required"`
	ResponseTimeMS *int   `json:"response_time_ms"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createSessionRequest
	if err := s.decode(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	session, err := s.Study.Start(r.Context(), user.ID, req.DeckID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, session)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	session, err := s.Study.Get(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, session)
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req submitReviewRequest
	if err := s.decode(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.Study.SubmitReview(r.Context(), user.ID, id, req.FlashcardID, req.Rating, req.ResponseTimeMS)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, result)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	session, err := s.Study.Complete(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, session)
}
