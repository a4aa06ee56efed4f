package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mark47B/rostersync/internal/domain/entity"
	"github.com/mark47B/rostersync/internal/domain/repository"
)

type syncRecordRow struct {
	ID          string    `db:"id"`
	TeamID      string    `db:"team_id"`
	MemberCount int       `db:"member_count"`
	SyncedAt    time.Time `db:"synced_at"`
}

type SyncHistoryStorage struct {
	db *sqlx.DB
}

func NewSyncHistoryStorage(db *sqlx.DB) repository.SyncHistoryRepository {
	return &SyncHistoryStorage{db: db}
}

func (s *SyncHistoryStorage) Append(ctx context.Context, rec entity.SyncRecord) error {
	q := querier(ctx, s.db)

	_, err := q.ExecContext(ctx, `
        INSERT INTO sync_history (id, team_id, member_count, synced_at)
        VALUES ($1, $2, $3, $4)
    `, rec.ID, rec.TeamID, rec.MemberCount, rec.SyncedAt)
	if err != nil {
		return fmt.Errorf("insert sync history: %w", err)
	}
	return nil
}

// ListByTeam: последние записи, свежие первыми
func (s *SyncHistoryStorage) ListByTeam(ctx context.Context, teamID string, limit int) ([]entity.SyncRecord, error) {
	q := querier(ctx, s.db)

	var rows []syncRecordRow
	err := q.SelectContext(ctx, &rows, `
        SELECT id, team_id, member_count, synced_at
        FROM sync_history
        WHERE team_id = $1
        ORDER BY synced_at DESC
        LIMIT $2
    `, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync history: %w", err)
	}

	records := make([]entity.SyncRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, entity.SyncRecord{
			ID:          r.ID,
			TeamID:      r.TeamID,
			MemberCount: r.MemberCount,
			SyncedAt:    r.SyncedAt.UTC(),
		})
	}
	return records, nil
}
