package servers

import (
	"context"

	"github.com/dkarlovs/tacpanel/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, srv *models.ServerInstance) (*models.ServerInstance, error)
	ListByUser(ctx context.Context, userID string) ([]*models.ServerInstance, error)
	Get(ctx context.Context, id, userID string) (*models.ServerInstance, error)
	UpdateStatus(ctx context.Context, id, userID, status string, currentPlayers int) error
	UpdateSettings(ctx context.Context, id, userID, name string, port, maxPlayers int) error
	Delete(ctx context.Context, id, userID string) error
}
