package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkarlovs/tacpanel/internal/dbx"
	"github.com/dkarlovs/tacpanel/internal/server/migrations"
	"github.com/dkarlovs/tacpanel/internal/server/repositories/servers"
	"github.com/dkarlovs/tacpanel/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct {
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Servers(db dbx.DBTX) servers.Repository {
	return servers.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}
