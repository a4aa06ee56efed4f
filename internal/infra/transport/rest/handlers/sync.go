package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mark47B/rostersync/internal/domain/entity"
	"github.com/mark47B/rostersync/internal/infra/transport/rest/gen"
)

// POST /sync-team
func (h *Handlers) PostSyncTeam(w http.ResponseWriter, r *http.Request) {
	var req gen.PostSyncTeamJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.observeSync("invalid", 0)
		WriteError(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	result, err := h.service.SyncTeam(r.Context(), syncRequestFromAPI(req))
	if err != nil {
		if statusFor(err) == http.StatusBadRequest {
			h.observeSync("invalid", 0)
		} else {
			h.observeSync("error", 0)
		}
		writeServiceError(w, r, err)
		return
	}
	h.observeSync("ok", result.MemberCount)

	writeJSON(w, http.StatusOK, gen.SyncTeamResponse{
		Success:     true,
		TeamId:      result.TeamID,
		TeamName:    result.TeamName,
		MemberCount: result.MemberCount,
		Timestamp:   result.Timestamp,
	})
}

func syncRequestFromAPI(req gen.SyncTeamRequest) entity.SyncRequest {
	out := entity.SyncRequest{
		WorkspaceID:    req.WorkspaceId,
		OrganizationID: req.OrganizationId,
		OwnerEmail:     req.OwnerEmail,
	}
	if req.TeamName != nil {
		out.TeamName = *req.TeamName
	}
	// nil означает «поле members не прислали», пустой срез означает «прислали пустой»
	if req.Members != nil {
		out.Members = make([]entity.Member, 0, len(*req.Members))
		for _, m := range *req.Members {
			member := entity.Member{Email: m.Email}
			if m.Name != nil {
				member.Name = *m.Name
			}
			if m.Role != nil {
				member.Role = entity.Role(*m.Role)
			}
			if m.JoinedAt != nil {
				member.JoinedAt = parseJoinedAt(*m.JoinedAt)
			}
			out.Members = append(out.Members, member)
		}
	}
	return out
}

var errBadDate = errors.New("unsupported date format")

// parseJoinedAt: RFC3339 или YYYY-MM-DD, иначе nil
func parseJoinedAt(s string) *time.Time {
	t, err := parseDate(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errBadDate
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errBadDate
}
