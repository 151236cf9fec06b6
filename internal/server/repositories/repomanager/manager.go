package repomanager

import (
	"context"
	"database/sql"

	"github.com/hynorvixx/backend/internal/dbx"
	"github.com/hynorvixx/backend/internal/server/repositories/photos"
	"github.com/hynorvixx/backend/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or a
// transaction, so services decide the transactional scope.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Photos(db dbx.DBTX) photos.Repository
}
