package repomanager

import (
	"context"
	"database/sql"

	"github.com/kemalyaa/webinar-session-jwt/internal/dbx"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/repositories/refreshtokens"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/repositories/sessions"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
