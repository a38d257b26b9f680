package api

import (
	"net/http"
)

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := s.decode(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	resp, err := s.Auth.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, resp)
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := s.decode(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	resp, err := s.Auth.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, resp)
}

func (s *Server) handleSignout(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.Signout(r.Context(), bearerToken(r)); err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}
