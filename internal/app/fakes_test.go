package app

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/mark47B/rostersync/internal/domain/entity"
	"github.com/mark47B/rostersync/internal/domain/usecase"
)

// memDB is a tiny in-memory stand-in for postgres; memTx restores it on error.
type memDB struct {
	mu        sync.Mutex
	teams     map[string]entity.Team
	members   map[string][]entity.Member
	history   []entity.SyncRecord
	acks      map[string]entity.AlertAck
	scheduler entity.SchedulerStatus

	failHistory error
}

func newMemDB() *memDB {
	return &memDB{
		teams:     make(map[string]entity.Team),
		members:   make(map[string][]entity.Member),
		acks:      make(map[string]entity.AlertAck),
		scheduler: entity.SchedulerStatus{ID: "sched-1", Status: entity.SchedulerIdle},
	}
}

type memSnapshot struct {
	teams   map[string]entity.Team
	members map[string][]entity.Member
	history []entity.SyncRecord
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	return memSnapshot{
		teams:   maps.Clone(db.teams),
		members: maps.Clone(db.members),
		history: slices.Clone(db.history),
	}
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.teams, db.members, db.history = s.teams, s.members, s.history
}

type memTx struct{ db *memDB }

func (m memTx) Do(ctx context.Context, fn func(context.Context) error) error {
	_, err := m.DoTx(ctx, func(ctx context.Context) (any, error) { return nil, fn(ctx) })
	return err
}

func (m memTx) DoTx(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	snap := m.db.snapshot()
	res, err := fn(ctx)
	if err != nil {
		m.db.restore(snap)
		return nil, err
	}
	return res, nil
}

type memTeams struct{ db *memDB }

func (r memTeams) Create(_ context.Context, t entity.Team) (entity.Team, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if t.WorkspaceID != nil {
		for _, existing := range r.db.teams {
			if existing.WorkspaceID != nil && *existing.WorkspaceID == *t.WorkspaceID {
				return entity.Team{}, errors.New("duplicate workspace id")
			}
		}
	}
	r.db.teams[t.ID] = t
	return t, nil
}

func (r memTeams) Get(_ context.Context, id string) (entity.Team, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.teams[id]
	if !ok {
		return entity.Team{}, usecase.ErrTeamNotFound
	}
	return t, nil
}

func (r memTeams) GetByWorkspaceID(_ context.Context, workspaceID string) (entity.Team, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.teams {
		if t.WorkspaceID != nil && *t.WorkspaceID == workspaceID {
			return t, nil
		}
	}
	return entity.Team{}, usecase.ErrTeamNotFound
}

func (r memTeams) FindByName(ctx context.Context, name string, withoutWorkspace bool) (entity.Team, error) {
	all, _ := r.List(ctx)
	for _, t := range all {
		if !strings.EqualFold(t.Name, name) {
			continue
		}
		if withoutWorkspace && t.WorkspaceID != nil {
			continue
		}
		return t, nil
	}
	return entity.Team{}, usecase.ErrTeamNotFound
}

func (r memTeams) List(_ context.Context) ([]entity.Team, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := slices.Collect(maps.Values(r.db.teams))
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r memTeams) Update(_ context.Context, t entity.Team) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.teams[t.ID]; !ok {
		return usecase.ErrTeamNotFound
	}
	r.db.teams[t.ID] = t
	return nil
}

func (r memTeams) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.teams[id]; !ok {
		return usecase.ErrTeamNotFound
	}
	delete(r.db.teams, id)
	delete(r.db.members, id)
	return nil
}

type memMembers struct{ db *memDB }

func (r memMembers) ReplaceAll(_ context.Context, teamID string, members []entity.Member) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.members[teamID] = slices.Clone(members)
	return nil
}

func (r memMembers) ListByTeam(_ context.Context, teamID string) ([]entity.Member, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := slices.Clone(r.db.members[teamID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memHistory struct{ db *memDB }

func (r memHistory) Append(_ context.Context, rec entity.SyncRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failHistory != nil {
		return r.db.failHistory
	}
	r.db.history = append(r.db.history, rec)
	return nil
}

func (r memHistory) ListByTeam(_ context.Context, teamID string, limit int) ([]entity.SyncRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.SyncRecord
	for i := len(r.db.history) - 1; i >= 0 && len(out) < limit; i-- {
		if r.db.history[i].TeamID == teamID {
			out = append(out, r.db.history[i])
		}
	}
	return out, nil
}

type memAlerts struct{ db *memDB }

func (r memAlerts) List(_ context.Context) ([]entity.AlertAck, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return slices.Collect(maps.Values(r.db.acks)), nil
}

func (r memAlerts) Acknowledge(_ context.Context, ack entity.AlertAck) (entity.AlertAck, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := ack.TeamID + "/" + ack.AlertType
	if existing, ok := r.db.acks[key]; ok {
		existing.AcknowledgedAt = ack.AcknowledgedAt
		r.db.acks[key] = existing
		return existing, nil
	}
	r.db.acks[key] = ack
	return ack, nil
}

type memScheduler struct{ db *memDB }

func (r memScheduler) Latest(_ context.Context) (entity.SchedulerStatus, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.scheduler.ID == "" {
		return entity.SchedulerStatus{}, usecase.ErrSchedulerNotFound
	}
	return r.db.scheduler, nil
}

func (r memScheduler) Update(_ context.Context, id string, upd entity.SchedulerUpdate) (entity.SchedulerStatus, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s := r.db.scheduler
	if s.ID != id {
		return entity.SchedulerStatus{}, usecase.ErrSchedulerNotFound
	}
	s.Status = upd.Status
	if upd.LastRunAt != nil {
		s.LastRunAt = upd.LastRunAt
	}
	if upd.NextRunAt != nil {
		s.NextRunAt = upd.NextRunAt
	}
	if upd.ProfilesSynced != nil {
		s.ProfilesSynced = *upd.ProfilesSynced
	}
	if upd.TotalProfiles != nil {
		s.TotalProfiles = *upd.TotalProfiles
	}
	if upd.RunDurationSeconds != nil {
		s.RunDurationSeconds = upd.RunDurationSeconds
	}
	if upd.TriggerManual != nil {
		s.TriggerManual = *upd.TriggerManual
	}
	r.db.scheduler = s
	return s, nil
}
