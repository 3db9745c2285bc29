package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kemalyaa/webinar-session-jwt/internal/dbx"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/models"
	refreshtokensrepo "github.com/kemalyaa/webinar-session-jwt/internal/server/repositories/refreshtokens"
	sessionsrepo "github.com/kemalyaa/webinar-session-jwt/internal/server/repositories/sessions"
	usersrepo "github.com/kemalyaa/webinar-session-jwt/internal/server/repositories/users"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeUsersRepo struct {
	createIn  *models.User
	createOut *models.User
	createErr error

	byNameOut *models.User
	byNameErr error

	byIDOut *models.User
	byIDErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.createIn = u
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetByName(ctx context.Context, name string) (*models.User, error) {
	if f.byNameErr != nil {
		return nil, f.byNameErr
	}
	return f.byNameOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}

type fakeSessionsRepo struct {
	createOut       *models.UserSession
	createErr       error
	createExpiresAt time.Time

	getOut *models.UserSession
	getErr error

	updateErr       error
	updateCalls     int
	updateExpiresAt time.Time
	updateRefreshed time.Time

	deleteErr error
	deleted   []string
}

func (f *fakeSessionsRepo) Create(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) (*models.UserSession, error) {
	f.createExpiresAt = expiresAt
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return &models.UserSession{ID: "s1", UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}, nil
}

func (f *fakeSessionsRepo) GetByHash(ctx context.Context, tokenHash string) (*models.UserSession, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeSessionsRepo) UpdateSlidingState(ctx context.Context, id string, expiresAt, lastRefreshedAt time.Time) error {
	f.updateCalls++
	f.updateExpiresAt = expiresAt
	f.updateRefreshed = lastRefreshedAt
	return f.updateErr
}

func (f *fakeSessionsRepo) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

type fakeRefreshTokensRepo struct {
	createErr       error
	createCalls     int
	createExpiresAt time.Time

	getOut *models.RefreshToken
	getErr error

	deleteFound bool
	deleteErr   error
	deleteCalls int

	deleteExpiredOut int64
	deleteExpiredErr error
}

func (f *fakeRefreshTokensRepo) Create(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error {
	f.createCalls++
	f.createExpiresAt = expiresAt
	return f.createErr
}

func (f *fakeRefreshTokensRepo) GetByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeRefreshTokensRepo) Delete(ctx context.Context, id string) (bool, error) {
	f.deleteCalls++
	return f.deleteFound, f.deleteErr
}

func (f *fakeRefreshTokensRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f.deleteExpiredOut, f.deleteExpiredErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	s *fakeSessionsRepo
	r *fakeRefreshTokensRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessionsrepo.Repository { return m.s }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.r
}
