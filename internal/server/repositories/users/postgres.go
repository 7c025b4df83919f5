package users

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

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, username, hashed_password, answer1_hash, answer2_hash, answer3_hash, answer4_hash)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.HashedPassword,
		user.AnswerHashes[0], user.AnswerHashes[1], user.AnswerHashes[2], user.AnswerHashes[3],
	).Scan(&user.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query :=
		`SELECT id, username, hashed_password, answer1_hash, answer2_hash, answer3_hash, answer4_hash, totp_secret, totp_enabled, created_at
		 FROM users
		 WHERE username = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, username, hashed_password, answer1_hash, answer2_hash, answer3_hash, answer4_hash, totp_secret, totp_enabled, created_at
		 FROM users
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, hashedPassword string) error {
	query :=
		`UPDATE users SET hashed_password = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, hashedPassword)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRowAffected(res)
}

func (r *PostgresRepository) UpdateTOTP(ctx context.Context, id string, secret string, enabled bool) error {
	query :=
		`UPDATE users SET totp_secret = $2, totp_enabled = $3
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, secret, enabled)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRowAffected(res)
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.HashedPassword,
		&user.AnswerHashes[0], &user.AnswerHashes[1], &user.AnswerHashes[2], &user.AnswerHashes[3],
		&user.TOTPSecret, &user.TOTPEnabled, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
