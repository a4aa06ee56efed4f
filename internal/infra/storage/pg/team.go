package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mark47B/rostersync/internal/domain/entity"
	"github.com/mark47B/rostersync/internal/domain/repository"
	"github.com/mark47B/rostersync/internal/domain/usecase"
)

const teamColumns = `id, name, workspace_id, organization_id, owner_email, member_count, last_synced_at, created_at, updated_at`

type teamRow struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	WorkspaceID    sql.NullString `db:"workspace_id"`
	OrganizationID sql.NullString `db:"organization_id"`
	OwnerEmail     sql.NullString `db:"owner_email"`
	MemberCount    int            `db:"member_count"`
	LastSyncedAt   sql.NullTime   `db:"last_synced_at"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r teamRow) toEntity() entity.Team {
	return entity.Team{
		ID:             r.ID,
		Name:           r.Name,
		WorkspaceID:    stringPtr(r.WorkspaceID),
		OrganizationID: stringPtr(r.OrganizationID),
		OwnerEmail:     stringPtr(r.OwnerEmail),
		MemberCount:    r.MemberCount,
		LastSyncedAt:   timePtr(r.LastSyncedAt),
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}

type TeamStorage struct {
	db *sqlx.DB
}

func NewTeamStorage(db *sqlx.DB) repository.TeamRepository {
	return &TeamStorage{db: db}
}

func (s *TeamStorage) Create(ctx context.Context, team entity.Team) (entity.Team, error) {
	q := querier(ctx, s.db)

	var row teamRow
	err := q.GetContext(ctx, &row, `
        INSERT INTO teams (id, name, workspace_id, organization_id, owner_email, member_count, last_synced_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+teamColumns,
		team.ID, team.Name, nullString(team.WorkspaceID), nullString(team.OrganizationID),
		nullString(team.OwnerEmail), team.MemberCount, nullTime(team.LastSyncedAt), team.CreatedAt, team.UpdatedAt,
	)
	if err != nil {
		return entity.Team{}, fmt.Errorf("insert team: %w", err)
	}
	return row.toEntity(), nil
}

func (s *TeamStorage) Get(ctx context.Context, id string) (entity.Team, error) {
	return s.getOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
}

func (s *TeamStorage) GetByWorkspaceID(ctx context.Context, workspaceID string) (entity.Team, error) {
	return s.getOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE workspace_id = $1`, workspaceID)
}

func (s *TeamStorage) FindByName(ctx context.Context, name string, withoutWorkspace bool) (entity.Team, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + teamColumns + ` FROM teams WHERE lower(name) = lower($1)`)
	if withoutWorkspace {
		b.WriteString(` AND workspace_id IS NULL`)
	}
	b.WriteString(` ORDER BY updated_at DESC LIMIT 1`)
	return s.getOne(ctx, b.String(), strings.TrimSpace(name))
}

func (s *TeamStorage) getOne(ctx context.Context, query string, args ...any) (entity.Team, error) {
	q := querier(ctx, s.db)

	var row teamRow
	if err := q.GetContext(ctx, &row, query, args...); err != nil {
		return entity.Team{}, mapNoRows(err, usecase.ErrTeamNotFound)
	}
	return row.toEntity(), nil
}

func (s *TeamStorage) List(ctx context.Context) ([]entity.Team, error) {
	q := querier(ctx, s.db)

	var rows []teamRow
	if err := q.SelectContext(ctx, &rows, `SELECT `+teamColumns+` FROM teams ORDER BY updated_at DESC`); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	teams := make([]entity.Team, 0, len(rows))
	for _, r := range rows {
		teams = append(teams, r.toEntity())
	}
	return teams, nil
}

func (s *TeamStorage) Update(ctx context.Context, team entity.Team) error {
	q := querier(ctx, s.db)

	res, err := q.ExecContext(ctx, `
        UPDATE teams
        SET name = $2,
            workspace_id = $3,
            organization_id = $4,
            owner_email = $5,
            member_count = $6,
            last_synced_at = $7,
            updated_at = $8
        WHERE id = $1
    `, team.ID, team.Name, nullString(team.WorkspaceID), nullString(team.OrganizationID),
		nullString(team.OwnerEmail), team.MemberCount, nullTime(team.LastSyncedAt), team.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	return expectAffected(res, usecase.ErrTeamNotFound)
}

// Delete удаляет команду, участники/история/алерты уходят каскадом
func (s *TeamStorage) Delete(ctx context.Context, id string) error {
	q := querier(ctx, s.db)

	res, err := q.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	return expectAffected(res, usecase.ErrTeamNotFound)
}
