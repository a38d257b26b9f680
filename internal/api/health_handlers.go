package api

import (
	"net/http"

	"github.com/awalczak/memodeck/internal/logger"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz reports readiness; a failed database ping means the server
// should not receive traffic yet.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.DB.PingContext(r.Context()); err != nil {
		logger.FromContext(r.Context()).Error("readiness check failed: %v", err)
		respond(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
