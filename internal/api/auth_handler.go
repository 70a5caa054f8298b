// ABOUTME: Login endpoint exchanging email+password for a bearer token
// ABOUTME: All credential failures collapse into one generic 400 response

package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/totustuus/forum-api/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	Scheme string `json:"scheme"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var v validator
	v.require("email", req.Email)
	v.require("password", req.Password)
	if !v.ok() {
		writeFieldErrors(w, v.errs)
		return
	}

	user, err := s.passwords.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			s.metrics.Login("failure")
			writeError(w, http.StatusBadRequest, "invalid credentials")
			return
		}
		s.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	userID, err := uuid.Parse(user.ID)
	if err != nil {
		s.logger.Error("stored user ID is not a UUID", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := s.tokens.Issue(userID)
	if err != nil {
		s.logger.Error("token issuance failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.metrics.Login("success")
	s.logger.Info("login succeeded", "user_id", user.ID)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Scheme: "Bearer"})
}
