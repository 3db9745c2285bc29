// Package httpapi exposes the auth backend over HTTP: registration, the
// cookie-session scheme, and the JWT scheme, as a thin chi router over the
// services layer.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kemalyaa/webinar-session-jwt/internal/logging"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/config"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/models"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/services"
)

// UserRegistrar is the slice of the user service the HTTP layer needs.
type UserRegistrar interface {
	Register(ctx context.Context, name string, password string) (*models.User, error)
}

// SessionLifecycle is the cookie-session scheme as seen by the HTTP layer.
type SessionLifecycle interface {
	Login(ctx context.Context, name string, password string) (*models.User, string, error)
	Authenticate(ctx context.Context, rawToken string) (*models.User, error)
	Logout(ctx context.Context, rawToken string) error
}

// JWTLifecycle is the token-pair scheme as seen by the HTTP layer.
type JWTLifecycle interface {
	Login(ctx context.Context, name string, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, rawToken string) (*services.TokenPair, error)
	Authenticate(ctx context.Context, rawToken string) (*models.User, error)
}

// Server is the HTTP front of the auth backend.
type Server struct {
	cfg      *config.Config
	logger   logging.Logger
	users    UserRegistrar
	sessions SessionLifecycle
	tokens   JWTLifecycle
}

func NewServer(cfg *config.Config, l logging.Logger, users UserRegistrar, sessions SessionLifecycle, tokens JWTLifecycle) *Server {
	return &Server{
		cfg:      cfg,
		logger:   l.With("module", "http_server"),
		users:    users,
		sessions: sessions,
		tokens:   tokens,
	}
}

// Router assembles the route tree. Split out from Run so tests can drive the
// full stack through httptest.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)

		r.Route("/session", func(r chi.Router) {
			r.Post("/login", s.handleSessionLogin)
			r.Post("/logout", s.handleSessionLogout)
			r.With(s.sessionAuth).Get("/me", s.handleMe)
		})

		r.Route("/jwt", func(r chi.Router) {
			r.Post("/login", s.handleJWTLogin)
			r.Post("/refresh", s.handleJWTRefresh)
			r.With(s.bearerAuth).Get("/me", s.handleMe)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.EndpointAddrHTTP,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.cfg.EndpointAddrHTTP)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
