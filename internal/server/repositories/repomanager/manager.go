// Package repomanager wires concrete repository implementations to database
// handles. Services obtain per-call repositories through this interface so
// that transactional handles (dbx.WithTx) and plain connections are
// interchangeable.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkarlovs/tacpanel/internal/dbx"
	"github.com/dkarlovs/tacpanel/internal/server/repositories/servers"
	"github.com/dkarlovs/tacpanel/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Servers(db dbx.DBTX) servers.Repository
}
