package handlers

import (
	"net/http"

	"github.com/mark47B/rostersync/internal/infra/transport/rest/gen"
)

// GET /alerts
func (h *Handlers) GetAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.ListAlerts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]gen.Alert, 0, len(alerts))
	for _, a := range alerts {
		resp = append(resp, gen.Alert{
			TeamId:      a.TeamID,
			TeamName:    a.TeamName,
			AlertType:   a.AlertType,
			MemberCount: a.MemberCount,
			Limit:       a.Limit,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /teams/{teamId}/alerts/{alertType}/ack
func (h *Handlers) PostTeamsTeamIdAlertsAlertTypeAck(w http.ResponseWriter, r *http.Request, teamId string, alertType string) {
	ack, err := h.service.AcknowledgeAlert(r.Context(), teamId, alertType)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, gen.AlertAck{
		Id:             ack.ID,
		TeamId:         ack.TeamID,
		AlertType:      ack.AlertType,
		AcknowledgedAt: ack.AcknowledgedAt,
		CreatedAt:      ack.CreatedAt,
	})
}
