package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mark47B/rostersync/internal/domain/entity"
	"github.com/mark47B/rostersync/internal/domain/repository"
	"github.com/mark47B/rostersync/internal/domain/usecase"
)

const schedulerColumns = `id, status, last_run_at, next_run_at, profiles_synced, total_profiles,
        run_duration_seconds, trigger_manual, created_at, updated_at`

type schedulerRow struct {
	ID                 string          `db:"id"`
	Status             string          `db:"status"`
	LastRunAt          sql.NullTime    `db:"last_run_at"`
	NextRunAt          sql.NullTime    `db:"next_run_at"`
	ProfilesSynced     int             `db:"profiles_synced"`
	TotalProfiles      int             `db:"total_profiles"`
	RunDurationSeconds sql.NullFloat64 `db:"run_duration_seconds"`
	TriggerManual      bool            `db:"trigger_manual"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

func (r schedulerRow) toEntity() entity.SchedulerStatus {
	st := entity.SchedulerStatus{
		ID:             r.ID,
		Status:         entity.SchedulerState(r.Status),
		LastRunAt:      timePtr(r.LastRunAt),
		NextRunAt:      timePtr(r.NextRunAt),
		ProfilesSynced: r.ProfilesSynced,
		TotalProfiles:  r.TotalProfiles,
		TriggerManual:  r.TriggerManual,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
	if r.RunDurationSeconds.Valid {
		d := r.RunDurationSeconds.Float64
		st.RunDurationSeconds = &d
	}
	return st
}

type SchedulerStorage struct {
	db *sqlx.DB
}

func NewSchedulerStorage(db *sqlx.DB) repository.SchedulerRepository {
	return &SchedulerStorage{db: db}
}

func (s *SchedulerStorage) Latest(ctx context.Context) (entity.SchedulerStatus, error) {
	q := querier(ctx, s.db)

	var row schedulerRow
	err := q.GetContext(ctx, &row, `SELECT `+schedulerColumns+` FROM sync_scheduler ORDER BY created_at DESC LIMIT 1`)
	if err != nil {
		return entity.SchedulerStatus{}, mapNoRows(err, usecase.ErrSchedulerNotFound)
	}
	return row.toEntity(), nil
}

// Update: частичное обновление, nil-поля не трогаем
func (s *SchedulerStorage) Update(ctx context.Context, id string, upd entity.SchedulerUpdate) (entity.SchedulerStatus, error) {
	q := querier(ctx, s.db)

	var duration sql.NullFloat64
	if upd.RunDurationSeconds != nil {
		duration = sql.NullFloat64{Float64: *upd.RunDurationSeconds, Valid: true}
	}
	var synced, total sql.NullInt64
	if upd.ProfilesSynced != nil {
		synced = sql.NullInt64{Int64: int64(*upd.ProfilesSynced), Valid: true}
	}
	if upd.TotalProfiles != nil {
		total = sql.NullInt64{Int64: int64(*upd.TotalProfiles), Valid: true}
	}
	var manual sql.NullBool
	if upd.TriggerManual != nil {
		manual = sql.NullBool{Bool: *upd.TriggerManual, Valid: true}
	}

	var row schedulerRow
	err := q.GetContext(ctx, &row, `
        UPDATE sync_scheduler
        SET status = $2,
            last_run_at = COALESCE($3::timestamptz, last_run_at),
            next_run_at = COALESCE($4::timestamptz, next_run_at),
            profiles_synced = COALESCE($5::integer, profiles_synced),
            total_profiles = COALESCE($6::integer, total_profiles),
            run_duration_seconds = COALESCE($7::double precision, run_duration_seconds),
            trigger_manual = COALESCE($8::boolean, trigger_manual),
            updated_at = now()
        WHERE id = $1
        RETURNING `+schedulerColumns,
		id, string(upd.Status), nullTime(upd.LastRunAt), nullTime(upd.NextRunAt),
		synced, total, duration, manual,
	)
	if err != nil {
		return entity.SchedulerStatus{}, mapNoRows(err, usecase.ErrSchedulerNotFound)
	}
	return row.toEntity(), nil
}
