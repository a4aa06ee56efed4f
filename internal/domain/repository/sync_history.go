package repository

import (
	"context"

	"github.com/mark47B/rostersync/internal/domain/entity"
)

type SyncHistoryRepository interface {
	Append(ctx context.Context, rec entity.SyncRecord) error
	ListByTeam(ctx context.Context, teamID string, limit int) ([]entity.SyncRecord, error)
}
