package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mark47B/rostersync/internal/domain/entity"
	"github.com/mark47B/rostersync/internal/domain/repository"
)

type alertAckRow struct {
	ID             string    `db:"id"`
	TeamID         string    `db:"team_id"`
	AlertType      string    `db:"alert_type"`
	AcknowledgedAt time.Time `db:"acknowledged_at"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r alertAckRow) toEntity() entity.AlertAck {
	return entity.AlertAck{
		ID:             r.ID,
		TeamID:         r.TeamID,
		AlertType:      r.AlertType,
		AcknowledgedAt: r.AcknowledgedAt.UTC(),
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

type AlertStorage struct {
	db *sqlx.DB
}

func NewAlertStorage(db *sqlx.DB) repository.AlertRepository {
	return &AlertStorage{db: db}
}

func (s *AlertStorage) List(ctx context.Context) ([]entity.AlertAck, error) {
	q := querier(ctx, s.db)

	var rows []alertAckRow
	err := q.SelectContext(ctx, &rows, `
        SELECT id, team_id, alert_type, acknowledged_at, created_at
        FROM team_alerts
        ORDER BY acknowledged_at DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("list team alerts: %w", err)
	}

	acks := make([]entity.AlertAck, 0, len(rows))
	for _, r := range rows {
		acks = append(acks, r.toEntity())
	}
	return acks, nil
}

// Acknowledge идемпотентен: повторное подтверждение обновляет время
func (s *AlertStorage) Acknowledge(ctx context.Context, ack entity.AlertAck) (entity.AlertAck, error) {
	q := querier(ctx, s.db)

	var row alertAckRow
	err := q.GetContext(ctx, &row, `
        INSERT INTO team_alerts (id, team_id, alert_type, acknowledged_at, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (team_id, alert_type) DO UPDATE SET acknowledged_at = EXCLUDED.acknowledged_at
        RETURNING id, team_id, alert_type, acknowledged_at, created_at
    `, ack.ID, ack.TeamID, ack.AlertType, ack.AcknowledgedAt, ack.CreatedAt)
	if err != nil {
		return entity.AlertAck{}, fmt.Errorf("acknowledge alert: %w", err)
	}
	return row.toEntity(), nil
}
