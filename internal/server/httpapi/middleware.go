package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kemalyaa/webinar-session-jwt/internal/common"
	"github.com/kemalyaa/webinar-session-jwt/internal/logging"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/models"
)

type ctxKey int

const userCtxKey ctxKey = iota

// withUser returns a context carrying the authenticated user.
func withUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

// UserFromContext returns the user placed in the context by one of the auth
// middlewares.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userCtxKey).(*models.User)
	return u, ok
}

// sessionAuth resolves the opaque session cookie to a user. All rejection
// reasons surface as 401 with the reason as the message.
func (s *Server) sessionAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.sessions.Authenticate(r.Context(), cookieValue(r, s.cfg.SessionCookieName))
		if err != nil {
			s.writeAuthError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// bearerAuth resolves a JWT access token to a user. The token comes from the
// Authorization header, falling back to the access-token cookie.
func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := extractBearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if !ok {
			raw = cookieValue(r, s.cfg.AccessCookieName)
		}
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "Missing access token")
			return
		}

		user, err := s.tokens.Authenticate(r.Context(), raw)
		if err != nil {
			s.writeAuthError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// writeAuthError maps service errors to responses: known rejection reasons
// become 401 with a fixed message, anything else is a masked 500.
func (s *Server) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	if msg, ok := authFailureMessage(err); ok {
		writeError(w, http.StatusUnauthorized, msg)
		return
	}
	s.logger.Error(r.Context(), "auth resolution failed", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// authFailureMessage translates an auth sentinel into the client-facing
// rejection reason. The second return is false for non-auth errors.
func authFailureMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Invalid credentials", true
	case errors.Is(err, common.ErrNoSessionCookie):
		return "No session cookie", true
	case errors.Is(err, common.ErrSessionNotFound):
		return "Session not found", true
	case errors.Is(err, common.ErrSessionExpired):
		return "Session expired", true
	case errors.Is(err, common.ErrTokenExpired):
		return "Token expired", true
	case errors.Is(err, common.ErrInvalidToken):
		return "Invalid token", true
	case errors.Is(err, common.ErrUserNotFound):
		return "User not found", true
	case errors.Is(err, common.ErrRefreshTokenNotFound):
		return "Refresh token not found", true
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return "Refresh token expired", true
	}
	return "", false
}

// extractBearerToken pulls the credential out of an Authorization header
// value; the scheme match is case-insensitive.
func extractBearerToken(value string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// cookieValue returns the named cookie's value, or "" when absent.
func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// requestLogger logs one line per request.
func requestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start).String(),
			)
		})
	}
}
