package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mark47B/rostersync/internal/domain/entity"
	"github.com/mark47B/rostersync/internal/infra/transport/rest/gen"
)

// GET /teams
func (h *Handlers) GetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.service.ListTeams(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]gen.Team, 0, len(teams))
	for _, t := range teams {
		resp = append(resp, teamToAPI(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /teams
func (h *Handlers) PostTeams(w http.ResponseWriter, r *http.Request) {
	var req gen.PostTeamsJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	team, err := h.service.CreateTeam(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, teamToAPI(team))
}

// GET /teams/{teamId}
func (h *Handlers) GetTeamsTeamId(w http.ResponseWriter, r *http.Request, teamId string) {
	team, err := h.service.GetTeam(r.Context(), teamId)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teamToAPI(team))
}

// DELETE /teams/{teamId}
func (h *Handlers) DeleteTeamsTeamId(w http.ResponseWriter, r *http.Request, teamId string) {
	if err := h.service.DeleteTeam(r.Context(), teamId); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /teams/{teamId}/members
func (h *Handlers) GetTeamsTeamIdMembers(w http.ResponseWriter, r *http.Request, teamId string) {
	members, err := h.service.ListMembers(r.Context(), teamId)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]gen.TeamMember, 0, len(members))
	for _, m := range members {
		resp = append(resp, gen.TeamMember{
			Id:        m.ID,
			TeamId:    m.TeamID,
			Email:     m.Email,
			Name:      m.Name,
			Role:      gen.TeamMemberRole(m.Role),
			JoinedAt:  m.JoinedAt,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /teams/{teamId}/history
func (h *Handlers) GetTeamsTeamIdHistory(w http.ResponseWriter, r *http.Request, teamId string, params gen.GetTeamsTeamIdHistoryParams) {
	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}

	records, err := h.service.ListSyncHistory(r.Context(), teamId, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]gen.SyncHistoryEntry, 0, len(records))
	for _, rec := range records {
		resp = append(resp, gen.SyncHistoryEntry{
			Id:          rec.ID,
			TeamId:      rec.TeamID,
			MemberCount: rec.MemberCount,
			SyncedAt:    rec.SyncedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func teamToAPI(t entity.Team) gen.Team {
	return gen.Team{
		Id:             t.ID,
		Name:           t.Name,
		WorkspaceId:    t.WorkspaceID,
		OrganizationId: t.OrganizationID,
		OwnerEmail:     t.OwnerEmail,
		MemberCount:    t.MemberCount,
		LastSyncedAt:   t.LastSyncedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

