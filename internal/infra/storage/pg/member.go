package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mark47B/rostersync/internal/domain/entity"
	"github.com/mark47B/rostersync/internal/domain/repository"
)

type memberRow struct {
	ID        string         `db:"id"`
	TeamID    string         `db:"team_id"`
	Email     string         `db:"email"`
	Name      sql.NullString `db:"name"`
	Role      string         `db:"role"`
	JoinedAt  sql.NullTime   `db:"joined_at"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type MemberStorage struct {
	db *sqlx.DB
}

func NewMemberStorage(db *sqlx.DB) repository.MemberRepository {
	return &MemberStorage{db: db}
}

// ReplaceAll: снимок целиком заменяет состав, вызывать внутри транзакции
func (s *MemberStorage) ReplaceAll(ctx context.Context, teamID string, members []entity.Member) error {
	q := querier(ctx, s.db)

	if _, err := q.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = $1`, teamID); err != nil {
		return fmt.Errorf("delete team members: %w", err)
	}
	if len(members) == 0 {
		return nil
	}

	ids := make([]string, len(members))
	emails := make([]string, len(members))
	names := make([]string, len(members))
	roles := make([]string, len(members))
	joined := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
		emails[i] = m.Email
		names[i] = m.Name
		roles[i] = string(m.Role)
		if m.JoinedAt != nil {
			joined[i] = m.JoinedAt.UTC().Format(time.RFC3339)
		}
	}

	now := members[0].CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	// Bulk insert через unnest
	_, err := q.ExecContext(ctx, `
        INSERT INTO team_members (id, team_id, email, name, role, joined_at, created_at, updated_at)
        SELECT m.id, $1, m.email, NULLIF(m.name, ''), m.role, NULLIF(m.joined_at, '')::timestamptz, $7, $7
        FROM unnest($2::uuid[], $3::text[], $4::text[], $5::text[], $6::text[]) AS m(id, email, name, role, joined_at)
    `, teamID, pq.Array(ids), pq.Array(emails), pq.Array(names), pq.Array(roles), pq.Array(joined), now)
	if err != nil {
		return fmt.Errorf("insert team members: %w", err)
	}
	return nil
}

func (s *MemberStorage) ListByTeam(ctx context.Context, teamID string) ([]entity.Member, error) {
	q := querier(ctx, s.db)

	var rows []memberRow
	err := q.SelectContext(ctx, &rows, `
        SELECT id, team_id, email, name, role, joined_at, created_at, updated_at
        FROM team_members
        WHERE team_id = $1
        ORDER BY name NULLS LAST, email
    `, teamID)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}

	members := make([]entity.Member, 0, len(rows))
	for _, r := range rows {
		members = append(members, entity.Member{
			ID:        r.ID,
			TeamID:    r.TeamID,
			Email:     r.Email,
			Name:      r.Name.String,
			Role:      entity.ParseRole(r.Role),
			JoinedAt:  timePtr(r.JoinedAt),
			CreatedAt: r.CreatedAt.UTC(),
			UpdatedAt: r.UpdatedAt.UTC(),
		})
	}
	return members, nil
}
