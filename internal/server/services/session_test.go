package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/kemalyaa/webinar-session-jwt/internal/common"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/auth"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/config"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/models"
)

func newSessionService(t *testing.T, rm *fakeRepoManager, cfg *config.Config) *SessionService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })
	if cfg == nil {
		cfg = &config.Config{
			SessionAbsoluteTimeout: 720 * time.Hour,
			SessionRollingInterval: 10 * time.Minute,
			SessionExtendWindow:    168 * time.Hour,
		}
	}
	return NewSessionService(db, rm, cfg)
}

func userWithPassword(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	return &models.User{ID: "u1", Name: "alice", PasswordHash: hash}
}

func TestSessionLogin_Success(t *testing.T) {
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byNameOut: userWithPassword(t, "secret")},
		s: &fakeSessionsRepo{},
	}
	s := newSessionService(t, rm, nil)

	user, raw, err := s.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if user.ID != "u1" || raw == "" {
		t.Fatalf("Login: user=%+v raw=%q", user, raw)
	}

	// extend window is shorter than the ceiling, so it wins
	want := time.Now().Add(168 * time.Hour)
	if d := rm.s.createExpiresAt.Sub(want); d < -time.Minute || d > time.Minute {
		t.Fatalf("initial expiry %v, want ~%v", rm.s.createExpiresAt, want)
	}
}

func TestSessionLogin_CeilingShorterThanWindow(t *testing.T) {
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byNameOut: userWithPassword(t, "secret")},
		s: &fakeSessionsRepo{},
	}
	cfg := &config.Config{
		SessionAbsoluteTimeout: time.Hour,
		SessionRollingInterval: 10 * time.Minute,
		SessionExtendWindow:    168 * time.Hour,
	}
	s := newSessionService(t, rm, cfg)

	if _, _, err := s.Login(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("Login error: %v", err)
	}

	want := time.Now().Add(time.Hour)
	if d := rm.s.createExpiresAt.Sub(want); d < -time.Minute || d > time.Minute {
		t.Fatalf("initial expiry %v, want ~%v (clipped to ceiling)", rm.s.createExpiresAt, want)
	}
}

func TestSessionLogin_InvalidCredentials(t *testing.T) {
	// unknown name
	rmNF := &fakeRepoManager{
		u: &fakeUsersRepo{byNameErr: common.ErrorNotFound},
		s: &fakeSessionsRepo{},
	}
	sNF := newSessionService(t, rmNF, nil)
	if _, _, err := sNF.Login(context.Background(), "ghost", "x"); !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("unknown name: want ErrInvalidCredentials, got %v", err)
	}

	// wrong password collapses to the same error
	rmWP := &fakeRepoManager{
		u: &fakeUsersRepo{byNameOut: userWithPassword(t, "right")},
		s: &fakeSessionsRepo{},
	}
	sWP := newSessionService(t, rmWP, nil)
	if _, _, err := sWP.Login(context.Background(), "alice", "wrong"); !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("wrong password: want ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionAuthenticate_EmptyToken(t *testing.T) {
	s := newSessionService(t, &fakeRepoManager{s: &fakeSessionsRepo{}}, nil)
	if _, err := s.Authenticate(context.Background(), ""); !errors.Is(err, common.ErrNoSessionCookie) {
		t.Fatalf("want ErrNoSessionCookie, got %v", err)
	}
}

func TestSessionAuthenticate_NotFound(t *testing.T) {
	rm := &fakeRepoManager{s: &fakeSessionsRepo{getErr: common.ErrorNotFound}}
	s := newSessionService(t, rm, nil)
	if _, err := s.Authenticate(context.Background(), "tok"); !errors.Is(err, common.ErrSessionNotFound) {
		t.Fatalf("want ErrSessionNotFound, got %v", err)
	}
}

func TestSessionAuthenticate_AbsoluteCeiling(t *testing.T) {
	now := time.Now()
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byIDOut: &models.User{ID: "u1"}},
		s: &fakeSessionsRepo{getOut: &models.UserSession{
			ID:              "s1",
			UserID:          "u1",
			CreatedAt:       now.Add(-721 * time.Hour),
			LastRefreshedAt: now.Add(-time.Hour),
			ExpiresAt:       now.Add(time.Hour), // sliding deadline still alive
		}},
	}
	s := newSessionService(t, rm, nil)

	if _, err := s.Authenticate(context.Background(), "tok"); !errors.Is(err, common.ErrSessionExpired) {
		t.Fatalf("want ErrSessionExpired, got %v", err)
	}
	if len(rm.s.deleted) != 1 || rm.s.deleted[0] != "s1" {
		t.Fatalf("expected session deletion, got %v", rm.s.deleted)
	}
	if rm.s.updateCalls != 0 {
		t.Fatalf("session past ceiling must not be extended")
	}
}

func TestSessionAuthenticate_RollingExtension(t *testing.T) {
	now := time.Now()
	created := now.Add(-time.Hour)
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byIDOut: &models.User{ID: "u1", Name: "alice"}},
		s: &fakeSessionsRepo{getOut: &models.UserSession{
			ID:              "s1",
			UserID:          "u1",
			CreatedAt:       created,
			LastRefreshedAt: now.Add(-time.Hour),
			ExpiresAt:       now.Add(167 * time.Hour),
		}},
	}
	s := newSessionService(t, rm, nil)

	user, err := s.Authenticate(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if user.Name != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if rm.s.updateCalls != 1 {
		t.Fatalf("expected one rolling extension, got %d", rm.s.updateCalls)
	}
	want := now.Add(168 * time.Hour)
	if d := rm.s.updateExpiresAt.Sub(want); d < -time.Minute || d > time.Minute {
		t.Fatalf("extended expiry %v, want ~%v", rm.s.updateExpiresAt, want)
	}
}

func TestSessionAuthenticate_ExtensionCappedByCeiling(t *testing.T) {
	now := time.Now()
	created := now.Add(-719 * time.Hour) // one hour of ceiling left
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byIDOut: &models.User{ID: "u1"}},
		s: &fakeSessionsRepo{getOut: &models.UserSession{
			ID:              "s1",
			UserID:          "u1",
			CreatedAt:       created,
			LastRefreshedAt: now.Add(-time.Hour),
			ExpiresAt:       now.Add(30 * time.Minute),
		}},
	}
	s := newSessionService(t, rm, nil)

	if _, err := s.Authenticate(context.Background(), "tok"); err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	wantCeiling := created.Add(720 * time.Hour)
	if !rm.s.updateExpiresAt.Equal(wantCeiling) {
		t.Fatalf("extension must cap at ceiling %v, got %v", wantCeiling, rm.s.updateExpiresAt)
	}
}

func TestSessionAuthenticate_ThrottledExtension(t *testing.T) {
	now := time.Now()
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byIDOut: &models.User{ID: "u1"}},
		s: &fakeSessionsRepo{getOut: &models.UserSession{
			ID:              "s1",
			UserID:          "u1",
			CreatedAt:       now.Add(-time.Hour),
			LastRefreshedAt: now.Add(-time.Minute), // within rolling interval
			ExpiresAt:       now.Add(167 * time.Hour),
		}},
	}
	s := newSessionService(t, rm, nil)

	if _, err := s.Authenticate(context.Background(), "tok"); err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if rm.s.updateCalls != 0 {
		t.Fatalf("recently refreshed session must not be extended again")
	}
}

func TestSessionAuthenticate_SlidingExpired(t *testing.T) {
	now := time.Now()
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byIDOut: &models.User{ID: "u1"}},
		s: &fakeSessionsRepo{getOut: &models.UserSession{
			ID:              "s1",
			UserID:          "u1",
			CreatedAt:       now.Add(-2 * time.Hour),
			LastRefreshedAt: now.Add(-time.Minute), // throttled, so no rescue extension
			ExpiresAt:       now.Add(-time.Second),
		}},
	}
	s := newSessionService(t, rm, nil)

	if _, err := s.Authenticate(context.Background(), "tok"); !errors.Is(err, common.ErrSessionExpired) {
		t.Fatalf("want ErrSessionExpired, got %v", err)
	}
	if len(rm.s.deleted) != 1 {
		t.Fatalf("expected session deletion, got %v", rm.s.deleted)
	}
}

func TestSessionAuthenticate_OrphanedSession(t *testing.T) {
	now := time.Now()
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byIDErr: common.ErrorNotFound},
		s: &fakeSessionsRepo{getOut: &models.UserSession{
			ID:              "s1",
			UserID:          "gone",
			CreatedAt:       now.Add(-time.Hour),
			LastRefreshedAt: now.Add(-time.Minute),
			ExpiresAt:       now.Add(time.Hour),
		}},
	}
	s := newSessionService(t, rm, nil)

	if _, err := s.Authenticate(context.Background(), "tok"); !errors.Is(err, common.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
	if len(rm.s.deleted) != 1 || rm.s.deleted[0] != "s1" {
		t.Fatalf("orphaned session must be deleted, got %v", rm.s.deleted)
	}
}

func TestSessionLogout(t *testing.T) {
	// empty token is a no-op
	rm := &fakeRepoManager{s: &fakeSessionsRepo{getErr: errBoom{}}}
	s := newSessionService(t, rm, nil)
	if err := s.Logout(context.Background(), ""); err != nil {
		t.Fatalf("empty token: %v", err)
	}

	// unknown token is a no-op too
	rmNF := &fakeRepoManager{s: &fakeSessionsRepo{getErr: common.ErrorNotFound}}
	sNF := newSessionService(t, rmNF, nil)
	if err := sNF.Logout(context.Background(), "tok"); err != nil {
		t.Fatalf("unknown token: %v", err)
	}

	// live token deletes the row
	rmOK := &fakeRepoManager{s: &fakeSessionsRepo{getOut: &models.UserSession{ID: "s1"}}}
	sOK := newSessionService(t, rmOK, nil)
	if err := sOK.Logout(context.Background(), "tok"); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if len(rmOK.s.deleted) != 1 || rmOK.s.deleted[0] != "s1" {
		t.Fatalf("expected deletion of s1, got %v", rmOK.s.deleted)
	}
}

func TestSessionAuthenticate_StorageErr(t *testing.T) {
	rm := &fakeRepoManager{s: &fakeSessionsRepo{getErr: errBoom{}}}
	s := newSessionService(t, rm, nil)
	_, err := s.Authenticate(context.Background(), "tok")
	if err == nil || !regexp.MustCompile(`error retrieving session: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
}
