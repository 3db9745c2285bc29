package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kemalyaa/webinar-session-jwt/internal/common"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/models"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, CreatedAt: u.CreatedAt}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := s.users.Register(r.Context(), req.Name, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUserAlreadyExists) {
			writeError(w, http.StatusConflict, "User already exists")
			return
		}
		s.writeInternal(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

func (s *Server) handleSessionLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, rawToken, err := s.sessions.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		s.writeAuthError(w, r, err)
		return
	}

	http.SetCookie(w, sessionCookie(s.cfg.SessionCookieName, rawToken))
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleSessionLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context(), cookieValue(r, s.cfg.SessionCookieName)); err != nil {
		s.writeInternal(w, r, err)
		return
	}

	http.SetCookie(w, expiredCookie(s.cfg.SessionCookieName))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleJWTLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	pair, err := s.tokens.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		s.writeAuthError(w, r, err)
		return
	}

	http.SetCookie(w, sessionCookie(s.cfg.AccessCookieName, pair.AccessToken))
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleJWTRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pair, err := s.tokens.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeAuthError(w, r, err)
		return
	}

	http.SetCookie(w, sessionCookie(s.cfg.AccessCookieName, pair.AccessToken))
	writeJSON(w, http.StatusOK, pair)
}

// handleMe serves both schemes; the route group's middleware decides how the
// user got into the context.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing access token")
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "request failed", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return credentialsRequest{}, false
	}
	return req, true
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// sessionCookie builds the HttpOnly bearer cookie for either scheme. No
// Max-Age: lifetime is enforced server-side, so the cookie is scoped to the
// browser session.
func sessionCookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func expiredCookie(name string) *http.Cookie {
	c := sessionCookie(name, "")
	c.MaxAge = -1
	return c
}
