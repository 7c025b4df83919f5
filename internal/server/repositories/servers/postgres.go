package servers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkarlovs/tacpanel/internal/common"
	"github.com/dkarlovs/tacpanel/internal/dbx"
	"github.com/dkarlovs/tacpanel/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const serverColumns = `id, name, game_type, port, max_players, current_players, status, install_path, user_id, created_at`

func (r *PostgresRepository) Create(ctx context.Context, srv *models.ServerInstance) (*models.ServerInstance, error) {

	query :=
		`INSERT INTO servers (id, name, game_type, port, max_players, status, install_path, user_id)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		srv.ID, srv.Name, srv.GameType, srv.Port, srv.MaxPlayers, srv.Status, srv.InstallPath, srv.UserID,
	).Scan(&srv.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return srv, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.ServerInstance, error) {
	query := `SELECT ` + serverColumns + ` FROM servers WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ServerInstance
	for rows.Next() {
		srv, err := scanServer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, srv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id, userID string) (*models.ServerInstance, error) {
	query := `SELECT ` + serverColumns + ` FROM servers WHERE id = $1 AND user_id = $2`

	srv, err := scanServer(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return srv, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, userID, status string, currentPlayers int) error {
	query :=
		`UPDATE servers SET status = $3, current_players = $4
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID, status, currentPlayers)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateSettings(ctx context.Context, id, userID, name string, port, maxPlayers int) error {
	query :=
		`UPDATE servers SET name = $3, port = $4, max_players = $5
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID, name, port, maxPlayers)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM servers WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanServer(row scannable) (*models.ServerInstance, error) {
	srv := &models.ServerInstance{}
	err := row.Scan(
		&srv.ID, &srv.Name, &srv.GameType, &srv.Port, &srv.MaxPlayers,
		&srv.CurrentPlayers, &srv.Status, &srv.InstallPath, &srv.UserID, &srv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return srv, nil
}
