package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mark47B/rostersync/internal/domain/entity"
	"github.com/mark47B/rostersync/internal/domain/repository"
	"github.com/mark47B/rostersync/internal/domain/usecase"
)

const (
	DefaultMemberLimit  = 6
	DefaultHistoryLimit = 30
	MaxHistoryLimit     = 100
)

// compile-time proof
var _ usecase.Service = (*ServiceImpl)(nil)

type ServiceImpl struct {
	teams     repository.TeamRepository
	members   repository.MemberRepository
	history   repository.SyncHistoryRepository
	alerts    repository.AlertRepository
	scheduler repository.SchedulerRepository
	txManager repository.TxManager

	memberLimit int
	now         func() time.Time
	log         *zap.SugaredLogger
}

type Option func(*ServiceImpl)

func WithMemberLimit(limit int) Option {
	return func(s *ServiceImpl) {
		if limit > 0 {
			s.memberLimit = limit
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *ServiceImpl) { s.now = now }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *ServiceImpl) { s.log = l }
}

func NewService(
	teams repository.TeamRepository,
	members repository.MemberRepository,
	history repository.SyncHistoryRepository,
	alerts repository.AlertRepository,
	scheduler repository.SchedulerRepository,
	txManager repository.TxManager,
	opts ...Option,
) *ServiceImpl {
	s := &ServiceImpl{
		teams:       teams,
		members:     members,
		history:     history,
		alerts:      alerts,
		scheduler:   scheduler,
		txManager:   txManager,
		memberLimit: DefaultMemberLimit,
		now:         time.Now,
		log:         zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ServiceImpl) SyncTeam(ctx context.Context, req entity.SyncRequest) (entity.SyncResult, error) {
	name := strings.TrimSpace(req.TeamName)
	if name == "" || req.Members == nil {
		return entity.SyncResult{}, usecase.ErrInvalidPayload
	}
	if len(req.Members) == 0 {
		return entity.SyncResult{}, usecase.ErrNoMembers
	}

	members, err := normalizeMembers(req.Members)
	if err != nil {
		return entity.SyncResult{}, err
	}

	now := s.now().UTC()

	// Вся синхронизация одной транзакцией: либо новый снимок целиком, либо ничего
	res, err := s.txManager.DoTx(ctx, func(txCtx context.Context) (any, error) {
		team, err := s.resolveTeam(txCtx, name, req, now)
		if err != nil {
			return nil, err
		}

		for i := range members {
			members[i].ID = uuid.NewString()
			members[i].TeamID = team.ID
			members[i].CreatedAt = now
			members[i].UpdatedAt = now
		}
		if err := s.members.ReplaceAll(txCtx, team.ID, members); err != nil {
			return nil, err
		}

		team.MemberCount = len(members)
		team.LastSyncedAt = &now
		team.UpdatedAt = now
		if err := s.teams.Update(txCtx, team); err != nil {
			return nil, err
		}

		if err := s.history.Append(txCtx, entity.SyncRecord{
			ID:          uuid.NewString(),
			TeamID:      team.ID,
			MemberCount: len(members),
			SyncedAt:    now,
		}); err != nil {
			return nil, err
		}

		return entity.SyncResult{
			TeamID:      team.ID,
			TeamName:    team.Name,
			MemberCount: len(members),
			Timestamp:   now,
		}, nil
	})
	if err != nil {
		s.log.Errorw("team sync failed", "team", name, "members", len(members), "error", err)
		return entity.SyncResult{}, err
	}

	result := res.(entity.SyncResult)
	s.log.Infow("team synced", "team_id", result.TeamID, "team", result.TeamName, "members", result.MemberCount)
	return result, nil
}

// resolveTeam: сначала по workspace id, затем по имени, иначе создаём
func (s *ServiceImpl) resolveTeam(ctx context.Context, name string, req entity.SyncRequest, now time.Time) (entity.Team, error) {
	workspaceID := trimmed(req.WorkspaceID)

	if workspaceID != nil {
		team, err := s.teams.GetByWorkspaceID(ctx, *workspaceID)
		if err == nil {
			return refreshTeam(team, name, req), nil
		}
		if !errors.Is(err, usecase.ErrTeamNotFound) {
			return entity.Team{}, err
		}

		// команда могла быть создана раньше без workspace id
		team, err = s.teams.FindByName(ctx, name, true)
		if err == nil {
			team.WorkspaceID = workspaceID
			return refreshTeam(team, name, req), nil
		}
		if !errors.Is(err, usecase.ErrTeamNotFound) {
			return entity.Team{}, err
		}
	} else {
		team, err := s.teams.FindByName(ctx, name, false)
		if err == nil {
			return refreshTeam(team, name, req), nil
		}
		if !errors.Is(err, usecase.ErrTeamNotFound) {
			return entity.Team{}, err
		}
	}

	created, err := s.teams.Create(ctx, entity.Team{
		ID:             uuid.NewString(),
		Name:           name,
		WorkspaceID:    workspaceID,
		OrganizationID: trimmed(req.OrganizationID),
		OwnerEmail:     normalizedEmailPtr(req.OwnerEmail),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return entity.Team{}, err
	}
	s.log.Infow("created team", "team_id", created.ID, "team", created.Name)
	return created, nil
}

func refreshTeam(team entity.Team, name string, req entity.SyncRequest) entity.Team {
	team.Name = name
	if org := trimmed(req.OrganizationID); org != nil {
		team.OrganizationID = org
	}
	if owner := normalizedEmailPtr(req.OwnerEmail); owner != nil {
		team.OwnerEmail = owner
	}
	return team
}

func normalizeMembers(in []entity.Member) ([]entity.Member, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]entity.Member, 0, len(in))

	for _, m := range in {
		email := entity.NormalizeEmail(m.Email)
		if email == "" {
			return nil, usecase.ErrInvalidMember
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}

		name := strings.TrimSpace(m.Name)
		if name == "" {
			name = entity.NameFromEmail(email)
		}

		out = append(out, entity.Member{
			Email:    email,
			Name:     name,
			Role:     entity.ParseRole(string(m.Role)),
			JoinedAt: m.JoinedAt,
		})
	}
	return out, nil
}

func (s *ServiceImpl) ListTeams(ctx context.Context) ([]entity.Team, error) {
	all, err := s.teams.List(ctx)
	if err != nil {
		return nil, err
	}

	// List отдаёт по updated_at desc, поэтому первая по имени: самая свежая
	byName := make(map[string]struct{}, len(all))
	teams := make([]entity.Team, 0, len(all))
	for _, t := range all {
		key := strings.ToLower(strings.TrimSpace(t.Name))
		if _, ok := byName[key]; ok {
			continue
		}
		byName[key] = struct{}{}
		teams = append(teams, t)
	}

	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(teams, func(i, j int) bool {
		return c.CompareString(teams[i].Name, teams[j].Name) < 0
	})
	return teams, nil
}

func (s *ServiceImpl) CreateTeam(ctx context.Context, name string) (entity.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return entity.Team{}, usecase.ErrEmptyTeamName
	}
	now := s.now().UTC()
	return s.teams.Create(ctx, entity.Team{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *ServiceImpl) GetTeam(ctx context.Context, id string) (entity.Team, error) {
	if _, err := uuid.Parse(id); err != nil {
		return entity.Team{}, usecase.ErrTeamNotFound
	}
	return s.teams.Get(ctx, id)
}

func (s *ServiceImpl) DeleteTeam(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return usecase.ErrTeamNotFound
	}
	if err := s.teams.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Infow("deleted team", "team_id", id)
	return nil
}

func (s *ServiceImpl) ListMembers(ctx context.Context, teamID string) ([]entity.Member, error) {
	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	return s.members.ListByTeam(ctx, teamID)
}

func (s *ServiceImpl) ListSyncHistory(ctx context.Context, teamID string, limit int) ([]entity.SyncRecord, error) {
	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return s.history.ListByTeam(ctx, teamID, limit)
}

func (s *ServiceImpl) ListAlerts(ctx context.Context) ([]entity.Alert, error) {
	teams, err := s.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	acks, err := s.alerts.List(ctx)
	if err != nil {
		return nil, err
	}

	acknowledged := make(map[string]struct{}, len(acks))
	for _, a := range acks {
		if a.AlertType == entity.AlertMemberLimit {
			acknowledged[a.TeamID] = struct{}{}
		}
	}

	alerts := make([]entity.Alert, 0)
	for _, t := range teams {
		if t.MemberCount <= s.memberLimit {
			continue
		}
		if _, ok := acknowledged[t.ID]; ok {
			continue
		}
		alerts = append(alerts, entity.Alert{
			TeamID:      t.ID,
			TeamName:    t.Name,
			AlertType:   entity.AlertMemberLimit,
			MemberCount: t.MemberCount,
			Limit:       s.memberLimit,
		})
	}
	return alerts, nil
}

func (s *ServiceImpl) AcknowledgeAlert(ctx context.Context, teamID, alertType string) (entity.AlertAck, error) {
	if alertType != entity.AlertMemberLimit {
		return entity.AlertAck{}, usecase.ErrInvalidAlertType
	}
	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return entity.AlertAck{}, err
	}
	now := s.now().UTC()
	return s.alerts.Acknowledge(ctx, entity.AlertAck{
		ID:             uuid.NewString(),
		TeamID:         teamID,
		AlertType:      alertType,
		AcknowledgedAt: now,
		CreatedAt:      now,
	})
}

func (s *ServiceImpl) GetSchedulerStatus(ctx context.Context) (entity.SchedulerStatus, error) {
	return s.scheduler.Latest(ctx)
}

func (s *ServiceImpl) UpdateSchedulerStatus(ctx context.Context, upd entity.SchedulerUpdate) (entity.SchedulerStatus, error) {
	if !upd.Status.Valid() {
		return entity.SchedulerStatus{}, fmt.Errorf("%w: %q", usecase.ErrInvalidSchedulerStatus, upd.Status)
	}
	current, err := s.scheduler.Latest(ctx)
	if err != nil {
		return entity.SchedulerStatus{}, err
	}
	updated, err := s.scheduler.Update(ctx, current.ID, upd)
	if err != nil {
		return entity.SchedulerStatus{}, err
	}
	s.log.Infow("scheduler status updated", "status", updated.Status, "profiles_synced", updated.ProfilesSynced)
	return updated, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func normalizedEmailPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := entity.NormalizeEmail(*s)
	if v == "" {
		return nil
	}
	return &v
}
