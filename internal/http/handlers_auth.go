package http

import (
	"errors"
	"net/http"

	"finman/internal/log"
	"finman/internal/services"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = sanitizeInput(req.Username)
	req.Email = sanitizeInput(req.Email)

	user, err := s.auth.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
		s.logger.ErrorContext(r.Context(), "Registration failed",
			log.FieldUsername, req.Username, log.FieldError, err.Error())
		writeError(w, http.StatusUnprocessableEntity, "registration rejected")
		return
	}

	writeJSON(w, http.StatusCreated, toUserPayload(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Authentication fault",
			log.FieldUsername, req.Username, log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "authentication unavailable")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	signed, err := s.tokens.Generate(user.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Token generation failed",
			log.FieldUserID, user.ID, log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "authentication unavailable")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: signed, User: toUserPayload(user)})
}
