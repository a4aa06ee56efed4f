package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark47B/rostersync/internal/domain/entity"
)

func TestImportedTeamPayload(t *testing.T) {
	raw := `{
		"teamName": " Acme ",
		"workspaceId": "ws-1",
		"members": [
			{"email": "jane@acme.io", "name": "Jane", "role": "OWNER", "joined_at": "2024-01-05"},
			{"email": "bob@acme.io", "role": "guest", "joined_at": "yesterday"}
		]
	}`
	var team importedTeam
	require.NoError(t, json.Unmarshal([]byte(raw), &team))

	p := team.payload()
	assert.Equal(t, "Acme", p.TeamName)
	assert.Equal(t, "ws-1", p.WorkspaceID)
	require.Len(t, p.Members, 2)

	assert.Equal(t, entity.RoleOwner, p.Members[0].Role)
	require.NotNil(t, p.Members[0].JoinedAt)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), *p.Members[0].JoinedAt)

	assert.Equal(t, entity.RoleMember, p.Members[1].Role)
	assert.Nil(t, p.Members[1].JoinedAt)
}

func TestParseDate(t *testing.T) {
	ts, ok := parseDate("2024-03-10T08:30:00+02:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 10, 6, 30, 0, 0, time.UTC), ts)

	_, ok = parseDate("")
	assert.False(t, ok)
}
