package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mark47B/rostersync/internal/domain/usecase"
	"github.com/mark47B/rostersync/internal/infra/transport/rest/gen"
)

func WriteError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, gen.ErrorResponse{
		Success: false,
		Error:   message,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError переводит доменные ошибки в HTTP-коды
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		zap.S().Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	WriteError(w, code, messageFor(err))
}

// Тексты ошибок синка, на которые опираются расширение и дашборд
const (
	msgInvalidPayload = "Invalid payload. Expected teamName and members array."
	msgNoMembers      = "No members provided"
)

func messageFor(err error) string {
	switch {
	case errors.Is(err, usecase.ErrInvalidPayload):
		return msgInvalidPayload
	case errors.Is(err, usecase.ErrNoMembers):
		return msgNoMembers
	default:
		return err.Error()
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidPayload),
		errors.Is(err, usecase.ErrNoMembers),
		errors.Is(err, usecase.ErrInvalidMember),
		errors.Is(err, usecase.ErrEmptyTeamName),
		errors.Is(err, usecase.ErrInvalidAlertType),
		errors.Is(err, usecase.ErrInvalidSchedulerStatus):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrTeamNotFound),
		errors.Is(err, usecase.ErrSchedulerNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
