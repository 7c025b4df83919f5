package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dkarlovs/tacpanel/internal/common"
	"github.com/dkarlovs/tacpanel/internal/server/models"
	"github.com/dkarlovs/tacpanel/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// CreateServerParams are the user-supplied fields of a new server instance.
type CreateServerParams struct {
	Name        string
	GameType    string
	Port        int
	MaxPlayers  int
	InstallPath string
}

// UpdateServerParams are the optional fields of a settings update. A nil
// field keeps the current value.
type UpdateServerParams struct {
	Name       *string
	Port       *int
	MaxPlayers *int
}

// ServerService manages game server instances owned by a user. Lifecycle
// operations flip the tracked status; actual process supervision lives
// outside this service.
type ServerService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewServerService(db *sql.DB, m repomanager.RepositoryManager) *ServerService {
	return &ServerService{db: db, repomanager: m}
}

func (s *ServerService) Create(ctx context.Context, userID string, params CreateServerParams) (*models.ServerInstance, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, fmt.Errorf("%w: server name is required", common.ErrorValidation)
	}
	if params.Port <= 0 || params.Port > 65535 {
		return nil, fmt.Errorf("%w: port must be between 1 and 65535", common.ErrorValidation)
	}
	if params.MaxPlayers <= 0 {
		return nil, fmt.Errorf("%w: max players must be positive", common.ErrorValidation)
	}

	srv := &models.ServerInstance{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(params.Name),
		GameType:    params.GameType,
		Port:        params.Port,
		MaxPlayers:  params.MaxPlayers,
		Status:      models.StatusOffline,
		InstallPath: params.InstallPath,
		UserID:      userID,
	}

	repo := s.repomanager.Servers(s.db)
	created, err := repo.Create(ctx, srv)
	if err != nil {
		return nil, fmt.Errorf("error creating server: %w", err)
	}
	return created, nil
}

func (s *ServerService) List(ctx context.Context, userID string) ([]*models.ServerInstance, error) {
	repo := s.repomanager.Servers(s.db)
	list, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing servers: %w", err)
	}
	return list, nil
}

func (s *ServerService) Get(ctx context.Context, id, userID string) (*models.ServerInstance, error) {
	repo := s.repomanager.Servers(s.db)
	srv, err := repo.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return srv, nil
}

func (s *ServerService) Delete(ctx context.Context, id, userID string) error {
	repo := s.repomanager.Servers(s.db)
	if err := repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// Update applies a partial settings change. Provided fields are validated
// with the same rules as Create.
func (s *ServerService) Update(ctx context.Context, id, userID string, params UpdateServerParams) (*models.ServerInstance, error) {
	repo := s.repomanager.Servers(s.db)
	srv, err := repo.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: server name is required", common.ErrorValidation)
		}
		srv.Name = name
	}
	if params.Port != nil {
		if *params.Port <= 0 || *params.Port > 65535 {
			return nil, fmt.Errorf("%w: port must be between 1 and 65535", common.ErrorValidation)
		}
		srv.Port = *params.Port
	}
	if params.MaxPlayers != nil {
		if *params.MaxPlayers <= 0 {
			return nil, fmt.Errorf("%w: max players must be positive", common.ErrorValidation)
		}
		srv.MaxPlayers = *params.MaxPlayers
	}

	if err := repo.UpdateSettings(ctx, id, userID, srv.Name, srv.Port, srv.MaxPlayers); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return srv, nil
}

// Fixed capacities the resource snapshot is computed against.
const (
	resourceMemoryTotalGB = 16.0
	resourceDiskTotalGB   = 250.0
)

// Resources reports a host utilization snapshot for the dashboard. The
// numbers are derived from the user's instances: CPU and memory scale with
// online servers and player load, disk with installed instances.
func (s *ServerService) Resources(ctx context.Context, userID string) (*models.SystemResources, error) {
	list, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	online, players := 0, 0
	for _, srv := range list {
		if srv.Status == models.StatusOnline || srv.Status == models.StatusRestarting {
			online++
			players += srv.CurrentPlayers
		}
	}

	cpu := 4.0 + 9.0*float64(online) + 0.5*float64(players)
	memUsed := 1.5 + 2.0*float64(online) + 0.05*float64(players)
	diskUsed := 20.0 + 15.0*float64(len(list))

	cpu = math.Min(cpu, 97.0)
	memUsed = math.Min(memUsed, resourceMemoryTotalGB*0.97)
	diskUsed = math.Min(diskUsed, resourceDiskTotalGB*0.97)

	return &models.SystemResources{
		CPUPercent:    round2(cpu),
		MemoryPercent: round2(memUsed / resourceMemoryTotalGB * 100),
		MemoryUsedGB:  round2(memUsed),
		MemoryTotalGB: resourceMemoryTotalGB,
		DiskPercent:   round2(diskUsed / resourceDiskTotalGB * 100),
		DiskUsedGB:    round2(diskUsed),
		DiskTotalGB:   resourceDiskTotalGB,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Start marks the instance online. Starting an already online server is a
// no-op that still reports the current state.
func (s *ServerService) Start(ctx context.Context, id, userID string) (*models.ServerInstance, error) {
	return s.transition(ctx, id, userID, models.StatusOnline)
}

// Stop marks the instance offline and resets the player count.
func (s *ServerService) Stop(ctx context.Context, id, userID string) (*models.ServerInstance, error) {
	return s.transition(ctx, id, userID, models.StatusOffline)
}

// Restart passes through the restarting state and lands online. The
// intermediate state is persisted so concurrent readers observe it.
func (s *ServerService) Restart(ctx context.Context, id, userID string) (*models.ServerInstance, error) {
	if _, err := s.transition(ctx, id, userID, models.StatusRestarting); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, userID, models.StatusOnline)
}

func (s *ServerService) transition(ctx context.Context, id, userID, status string) (*models.ServerInstance, error) {
	repo := s.repomanager.Servers(s.db)
	srv, err := repo.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	players := srv.CurrentPlayers
	if status == models.StatusOffline || status == models.StatusRestarting {
		players = 0
	}

	if err := repo.UpdateStatus(ctx, id, userID, status, players); err != nil {
		return nil, common.ErrorInternal
	}

	srv.Status = status
	srv.CurrentPlayers = players
	return srv, nil
}
