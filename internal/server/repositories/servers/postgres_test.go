package servers

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dkarlovs/tacpanel/internal/common"
	"github.com/dkarlovs/tacpanel/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func serverRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "game_type", "port", "max_players",
		"current_players", "status", "install_path", "user_id", "created_at",
	}).AddRow("s-1", "alpha", "arma_reforger", 2001, 64, 0, models.StatusOffline, "/srv/alpha", "u-1", time.Now())
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+servers`).
		WithArgs("s-1", "alpha", "arma_reforger", 2001, 64, models.StatusOffline, "/srv/alpha", "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	srv := &models.ServerInstance{
		ID: "s-1", Name: "alpha", GameType: "arma_reforger",
		Port: 2001, MaxPlayers: 64, Status: models.StatusOffline,
		InstallPath: "/srv/alpha", UserID: "u-1",
	}
	got, err := repo.Create(context.Background(), srv)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be populated")
	}
}

func TestListByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*\s+FROM\s+servers\s+WHERE\s+user_id\s*=\s*\$1`).
		WithArgs("u-1").
		WillReturnRows(serverRow())

	list, err := repo.ListByUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(list) != 1 || list[0].Name != "alpha" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*\s+FROM\s+servers\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("ghost", "u-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "ghost", "u-1")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+servers\s+SET\s+status`).
		WithArgs("s-1", "u-1", models.StatusOnline, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateStatus(context.Background(), "s-1", "u-1", models.StatusOnline, 0); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
}

func TestUpdateSettings(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+servers\s+SET\s+name`).
		WithArgs("s-1", "u-1", "bravo", 2002, 96).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateSettings(context.Background(), "s-1", "u-1", "bravo", 2002, 96); err != nil {
		t.Fatalf("UpdateSettings error: %v", err)
	}
}

func TestUpdateSettings_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+servers\s+SET\s+name`).
		WithArgs("ghost", "u-1", "bravo", 2002, 96).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateSettings(context.Background(), "ghost", "u-1", "bravo", 2002, 96)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+servers`).
		WithArgs("ghost", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "ghost", "u-1")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}
