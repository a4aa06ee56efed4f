package repository

import (
	"context"

	"github.com/mark47B/rostersync/internal/domain/entity"
)

type TeamRepository interface {
	Create(ctx context.Context, team entity.Team) (entity.Team, error)
	Get(ctx context.Context, id string) (entity.Team, error)
	GetByWorkspaceID(ctx context.Context, workspaceID string) (entity.Team, error)
	// FindByName ищет без учёта регистра, берёт самую свежую
	FindByName(ctx context.Context, name string, withoutWorkspace bool) (entity.Team, error)
	List(ctx context.Context) ([]entity.Team, error)
	Update(ctx context.Context, team entity.Team) error
	Delete(ctx context.Context, id string) error
}
