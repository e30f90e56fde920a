package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/photogallery/internal/dbx"
	"github.com/dmitrijs2005/photogallery/internal/server/repositories/images"
	"github.com/dmitrijs2005/photogallery/internal/server/repositories/sessions"
)

// RepositoryManager vends repositories bound to a DBTX and runs the schema
// migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Images(db dbx.DBTX) images.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
