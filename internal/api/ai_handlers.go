package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/awalczak/memodeck/internal/errors"
)

type generateRequest struct {
	Text     string `json:"text" validate:"required"`
	Language string `json:"language" validate:"omitempty,len=2"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	decision := s.Generation.RateLimit(user.ID)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
	if !decision.Allowed {
		retryAfter := int(time.Until(decision.ResetAt).Seconds()) + 1
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		handleError(w, r, errors.NewRateLimitedError("too many generation requests, slow down"))
		return
	}

	var req generateRequest
	if err := s.decode(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.Generation.Generate(r.Context(), user.ID, req.Text, req.Language)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, result)
}
