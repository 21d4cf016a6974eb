package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gridsense/gridsense-core/internal/audit"
	"github.com/gridsense/gridsense-core/internal/auth"
)

// registerRequest is the request body for POST /auth/register.
type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// registerResponse is the response body for POST /auth/register.
type registerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// handleRegister creates a new user account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.authSvc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameExists):
			writeConflict(w, "username already registered")
		case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrEmptyPassword):
			writeValidationError(w, err.Error())
		default:
			s.logger.Error("registration failed", "error", err)
			writeInternalError(w, "registration failed")
		}
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		UserID:     user.ID,
		Action:     audit.ActionRegister,
		EntityType: "user",
		EntityID:   user.ID,
	})

	writeJSON(w, http.StatusCreated, registerResponse{
		ID:       user.ID,
		Username: user.Username,
	})
}

// handleLogin verifies credentials and issues a bearer token.
//
// Unknown usernames and wrong passwords produce byte-identical responses.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	token, err := s.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeUnauthorized(w, "invalid credentials")
			return
		}
		s.logger.Error("login failed", "error", err)
		writeInternalError(w, "login failed")
		return
	}

	if user, authErr := s.authSvc.Authenticate(r.Context(), token); authErr == nil {
		s.recordAudit(r.Context(), &audit.Entry{
			UserID:     user.ID,
			Action:     audit.ActionLogin,
			EntityType: "user",
			EntityID:   user.ID,
		})
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.authSvc.TokenTTL().Seconds()),
	})
}
