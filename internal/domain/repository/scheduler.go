package repository

import (
	"context"

	"github.com/mark47B/rostersync/internal/domain/entity"
)

type SchedulerRepository interface {
	Latest(ctx context.Context) (entity.SchedulerStatus, error)
	Update(ctx context.Context, id string, upd entity.SchedulerUpdate) (entity.SchedulerStatus, error)
}
