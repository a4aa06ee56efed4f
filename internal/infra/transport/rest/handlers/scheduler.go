package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mark47B/rostersync/internal/domain/entity"
	"github.com/mark47B/rostersync/internal/infra/transport/rest/gen"
)

// GET /update-scheduler-status
func (h *Handlers) GetUpdateSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.GetSchedulerStatus(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gen.SchedulerStatusResponse{
		Success: true,
		Data:    schedulerToAPI(status),
	})
}

// POST /update-scheduler-status
func (h *Handlers) PostUpdateSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	var req gen.PostUpdateSchedulerStatusJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	status, err := h.service.UpdateSchedulerStatus(r.Context(), entity.SchedulerUpdate{
		Status:             entity.SchedulerState(req.Status),
		LastRunAt:          req.LastRunAt,
		NextRunAt:          req.NextRunAt,
		ProfilesSynced:     req.ProfilesSynced,
		TotalProfiles:      req.TotalProfiles,
		RunDurationSeconds: req.RunDurationSeconds,
		TriggerManual:      req.TriggerManual,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gen.SchedulerStatusResponse{
		Success: true,
		Data:    schedulerToAPI(status),
	})
}

func schedulerToAPI(s entity.SchedulerStatus) gen.SchedulerStatus {
	return gen.SchedulerStatus{
		Id:                 s.ID,
		Status:             gen.SchedulerState(s.Status),
		LastRunAt:          s.LastRunAt,
		NextRunAt:          s.NextRunAt,
		ProfilesSynced:     s.ProfilesSynced,
		TotalProfiles:      s.TotalProfiles,
		RunDurationSeconds: s.RunDurationSeconds,
		TriggerManual:      s.TriggerManual,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}
