package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dkarlovs/tacpanel/internal/common"
	"github.com/dkarlovs/tacpanel/internal/dbx"
	"github.com/dkarlovs/tacpanel/internal/server/models"
	"github.com/dkarlovs/tacpanel/internal/server/repositories/servers"
	"github.com/dkarlovs/tacpanel/internal/server/repositories/users"
)

// In-memory repositories for exercising service logic without a database.

type fakeUserRepo struct {
	byID map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*models.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	cp := *u
	cp.CreatedAt = time.Now()
	f.byID[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.byID)), nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hashedPassword string) error {
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.HashedPassword = hashedPassword
	return nil
}

func (f *fakeUserRepo) UpdateTOTP(_ context.Context, id, secret string, enabled bool) error {
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.TOTPSecret = secret
	u.TOTPEnabled = enabled
	return nil
}

type fakeServerRepo struct {
	byID map[string]*models.ServerInstance
}

func newFakeServerRepo() *fakeServerRepo {
	return &fakeServerRepo{byID: map[string]*models.ServerInstance{}}
}

func (f *fakeServerRepo) Create(_ context.Context, s *models.ServerInstance) (*models.ServerInstance, error) {
	cp := *s
	cp.CreatedAt = time.Now()
	f.byID[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeServerRepo) ListByUser(_ context.Context, userID string) ([]*models.ServerInstance, error) {
	var out []*models.ServerInstance
	for _, s := range f.byID {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeServerRepo) Get(_ context.Context, id, userID string) (*models.ServerInstance, error) {
	s, ok := f.byID[id]
	if !ok || s.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeServerRepo) UpdateStatus(_ context.Context, id, userID, status string, currentPlayers int) error {
	s, ok := f.byID[id]
	if !ok || s.UserID != userID {
		return common.ErrorNotFound
	}
	s.Status = status
	s.CurrentPlayers = currentPlayers
	return nil
}

func (f *fakeServerRepo) UpdateSettings(_ context.Context, id, userID, name string, port, maxPlayers int) error {
	s, ok := f.byID[id]
	if !ok || s.UserID != userID {
		return common.ErrorNotFound
	}
	s.Name = name
	s.Port = port
	s.MaxPlayers = maxPlayers
	return nil
}

func (f *fakeServerRepo) Delete(_ context.Context, id, userID string) error {
	s, ok := f.byID[id]
	if !ok || s.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeRepoManager struct {
	users   *fakeUserRepo
	servers *fakeServerRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{users: newFakeUserRepo(), servers: newFakeServerRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.users }
func (m *fakeRepoManager) Servers(dbx.DBTX) servers.Repository         { return m.servers }
