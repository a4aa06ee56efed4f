package usecase

import (
	"context"

	"github.com/mark47B/rostersync/internal/domain/entity"
)

type SyncUseCase interface {
	// Полная замена состава команды снимком со страницы
	SyncTeam(ctx context.Context, req entity.SyncRequest) (entity.SyncResult, error)
}

type TeamUseCase interface {
	ListTeams(ctx context.Context) ([]entity.Team, error)
	CreateTeam(ctx context.Context, name string) (entity.Team, error)
	GetTeam(ctx context.Context, id string) (entity.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	ListMembers(ctx context.Context, teamID string) ([]entity.Member, error)
	ListSyncHistory(ctx context.Context, teamID string, limit int) ([]entity.SyncRecord, error)
}

type AlertUseCase interface {
	// Команды сверх лимита участников без подтверждения
	ListAlerts(ctx context.Context) ([]entity.Alert, error)
	AcknowledgeAlert(ctx context.Context, teamID, alertType string) (entity.AlertAck, error)
}

type SchedulerUseCase interface {
	GetSchedulerStatus(ctx context.Context) (entity.SchedulerStatus, error)
	UpdateSchedulerStatus(ctx context.Context, upd entity.SchedulerUpdate) (entity.SchedulerStatus, error)
}

// Фасад для агрегации интерфейсов сервиса
type Service interface {
	SyncUseCase
	TeamUseCase
	AlertUseCase
	SchedulerUseCase
}
