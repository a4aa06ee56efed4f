package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mark47B/rostersync/internal/domain/usecase"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{usecase.ErrNoMembers, http.StatusBadRequest},
		{fmt.Errorf("%w: %q", usecase.ErrInvalidSchedulerStatus, "x"), http.StatusBadRequest},
		{usecase.ErrTeamNotFound, http.StatusNotFound},
		{fmt.Errorf("get team: %w", usecase.ErrTeamNotFound), http.StatusNotFound},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, statusFor(tt.err), tt.err.Error())
	}
}

func TestMessageFor(t *testing.T) {
	assert.Equal(t, "No members provided", messageFor(usecase.ErrNoMembers))
	assert.Equal(t, "Invalid payload. Expected teamName and members array.", messageFor(usecase.ErrInvalidPayload))
	assert.Equal(t, "Invalid payload. Expected teamName and members array.",
		messageFor(fmt.Errorf("sync: %w", usecase.ErrInvalidPayload)))
	assert.Equal(t, "team not found", messageFor(usecase.ErrTeamNotFound))

	for _, err := range []error{usecase.ErrNoMembers, usecase.ErrInvalidPayload} {
		msg := err.Error()
		assert.Equal(t, strings.ToLower(msg[:1]), msg[:1], "error strings start lower-case")
		assert.False(t, strings.HasSuffix(msg, "."), "error strings have no trailing period")
	}
}

func TestParseJoinedAt(t *testing.T) {
	got := parseJoinedAt(" 2024-02-29 ")
	if assert.NotNil(t, got) {
		assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), *got)
	}

	got = parseJoinedAt("2024-02-29T23:00:00-02:00")
	if assert.NotNil(t, got) {
		assert.Equal(t, time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC), *got)
	}

	assert.Nil(t, parseJoinedAt("Feb 29"))
	assert.Nil(t, parseJoinedAt(""))
}
