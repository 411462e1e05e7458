package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/featureimage/internal/dbx"
	"github.com/dmitrijs2005/featureimage/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/featureimage/internal/server/repositories/posts"
	"github.com/dmitrijs2005/featureimage/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DB handle or a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
	Attachments(db dbx.DBTX) attachments.Repository
}
