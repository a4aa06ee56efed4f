//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark47B/rostersync/internal/app"
	"github.com/mark47B/rostersync/internal/domain/entity"
	"github.com/mark47B/rostersync/internal/infra/storage/pg"
	"github.com/mark47B/rostersync/internal/infra/transport/rest"
	"github.com/mark47B/rostersync/internal/infra/transport/rest/middleware"
	"github.com/mark47B/rostersync/internal/metrics"
	"github.com/mark47B/rostersync/internal/scraper"
	"github.com/mark47B/rostersync/internal/syncclient"
)

const apiToken = "e2e-token"

type testClient struct {
	server  *httptest.Server
	client  *http.Client
	baseURL string
}

func newTestClient(t *testing.T, db *sqlx.DB) *testClient {
	t.Helper()

	svc := app.NewService(
		pg.NewTeamStorage(db),
		pg.NewMemberStorage(db),
		pg.NewSyncHistoryStorage(db),
		pg.NewAlertStorage(db),
		pg.NewSchedulerStorage(db),
		pg.NewTxManager(db),
		app.WithMemberLimit(2),
	)
	router, err := rest.NewRouter(svc, rest.RouterConfig{
		Auth:    middleware.AuthConfig{APIToken: apiToken},
		Metrics: metrics.New(),
	})
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testClient{
		server:  server,
		client:  server.Client(),
		baseURL: server.URL,
	}
}

// Вспомогательные методы
func (c *testClient) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.baseURL+path, r)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+apiToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *testClient) post(t *testing.T, path string, body any) *http.Response {
	return c.do(t, http.MethodPost, path, body)
}

func (c *testClient) get(t *testing.T, path string) *http.Response {
	return c.do(t, http.MethodGet, path, nil)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type syncResponse struct {
	Success     bool   `json:"success"`
	TeamID      string `json:"teamId"`
	TeamName    string `json:"teamName"`
	MemberCount int    `json:"memberCount"`
	Error       string `json:"error"`
}

func member(email string) map[string]any {
	return map[string]any{"email": email}
}

func countRows(t *testing.T, db *sqlx.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, query, args...))
	return n
}

func TestSyncSamePayloadTwice(t *testing.T) {
	db := setupTestDB(t)
	c := newTestClient(t, db)

	payload := map[string]any{
		"teamName": "Acme",
		"members":  []any{map[string]any{"email": "Jane@Acme.io", "role": "Owner", "joined_at": "2024-01-05"}},
	}

	var teamID string
	for range 2 {
		resp := c.post(t, "/sync-team", payload)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[syncResponse](t, resp)
		assert.True(t, body.Success)
		assert.Equal(t, 1, body.MemberCount)
		teamID = body.TeamID
	}

	assert.Equal(t, 1, countRows(t, db, `SELECT count(*) FROM teams`))
	assert.Equal(t, 1, countRows(t, db, `SELECT count(*) FROM team_members WHERE team_id = $1`, teamID))
	assert.Equal(t, 2, countRows(t, db, `SELECT count(*) FROM sync_history WHERE team_id = $1`, teamID))

	var row struct {
		Email    string     `db:"email"`
		Name     string     `db:"name"`
		Role     string     `db:"role"`
		JoinedAt *time.Time `db:"joined_at"`
	}
	require.NoError(t, db.Get(&row, `SELECT email, name, role, joined_at FROM team_members WHERE team_id = $1`, teamID))
	assert.Equal(t, "jane@acme.io", row.Email)
	assert.Equal(t, "Jane", row.Name)
	assert.Equal(t, "owner", row.Role)
	require.NotNil(t, row.JoinedAt)
	assert.Equal(t, "2024-01-05", row.JoinedAt.UTC().Format(time.DateOnly))
}

func TestSyncReplacesMembers(t *testing.T) {
	db := setupTestDB(t)
	c := newTestClient(t, db)

	resp := c.post(t, "/sync-team", map[string]any{
		"teamName": "Acme",
		"members":  []any{member("a@acme.io"), member("b@acme.io"), member("c@acme.io")},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	teamID := decode[syncResponse](t, resp).TeamID

	resp = c.post(t, "/sync-team", map[string]any{
		"teamName": "acme",
		"members":  []any{member("d@acme.io")},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, teamID, decode[syncResponse](t, resp).TeamID)

	members := decode[[]map[string]any](t, c.get(t, "/teams/"+teamID+"/members"))
	require.Len(t, members, 1)
	assert.Equal(t, "d@acme.io", members[0]["email"])
	assert.Equal(t, "D", members[0]["name"])

	team := decode[map[string]any](t, c.get(t, "/teams/"+teamID))
	assert.Equal(t, float64(1), team["member_count"])
	assert.NotNil(t, team["last_synced_at"])
}

func TestSyncSameWorkspaceNewName(t *testing.T) {
	db := setupTestDB(t)
	c := newTestClient(t, db)

	resp := c.post(t, "/sync-team", map[string]any{
		"teamName":    "Acme",
		"workspaceId": "ws-1",
		"members":     []any{member("a@acme.io")},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decode[syncResponse](t, resp)

	resp = c.post(t, "/sync-team", map[string]any{
		"teamName":    "Acme Renamed",
		"workspaceId": "ws-1",
		"ownerEmail":  "Boss@Acme.io",
		"members":     []any{member("a@acme.io")},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decode[syncResponse](t, resp)

	assert.Equal(t, first.TeamID, second.TeamID)
	assert.Equal(t, "Acme Renamed", second.TeamName)
	assert.Equal(t, 1, countRows(t, db, `SELECT count(*) FROM teams`))

	var owner string
	require.NoError(t, db.Get(&owner, `SELECT owner_email FROM teams WHERE id = $1`, first.TeamID))
	assert.Equal(t, "boss@acme.io", owner)
}

func TestSyncAdoptsTeamCreatedOnDashboard(t *testing.T) {
	db := setupTestDB(t)
	c := newTestClient(t, db)

	resp := c.post(t, "/teams", map[string]any{"name": "Globex"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]any](t, resp)

	resp = c.post(t, "/sync-team", map[string]any{
		"teamName":    "globex",
		"workspaceId": "ws-9",
		"members":     []any{member("hank@globex.io")},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created["id"], decode[syncResponse](t, resp).TeamID)
	assert.Equal(t, 1, countRows(t, db, `SELECT count(*) FROM teams WHERE workspace_id = 'ws-9'`))
}

func TestSyncValidation(t *testing.T) {
	db := setupTestDB(t)
	c := newTestClient(t, db)

	tests := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{"empty members", map[string]any{"teamName": "Acme", "members": []any{}}, "No members provided"},
		{"missing members", map[string]any{"teamName": "Acme"}, "Invalid payload. Expected teamName and members array."},
		{"missing team name", map[string]any{"members": []any{member("a@x.io")}}, "Invalid payload. Expected teamName and members array."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := c.post(t, "/sync-team", tt.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decode[syncResponse](t, resp)
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Error)
		})
	}
	assert.Equal(t, 0, countRows(t, db, `SELECT count(*) FROM teams`))
}

func TestDeleteTeamCascades(t *testing.T) {
	db := setupTestDB(t)
	c := newTestClient(t, db)

	resp := c.post(t, "/sync-team", map[string]any{
		"teamName": "Big",
		"members":  []any{member("a@x.io"), member("b@x.io"), member("c@x.io")},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	teamID := decode[syncResponse](t, resp).TeamID

	resp = c.post(t, "/teams/"+teamID+"/alerts/member_limit/ack", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = c.do(t, http.MethodDelete, "/teams/"+teamID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Equal(t, 0, countRows(t, db, `SELECT count(*) FROM team_members`))
	assert.Equal(t, 0, countRows(t, db, `SELECT count(*) FROM sync_history`))
	assert.Equal(t, 0, countRows(t, db, `SELECT count(*) FROM team_alerts`))

	resp = c.get(t, "/teams/"+teamID)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHistoryNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	c := newTestClient(t, db)

	var teamID string
	for i := 1; i <= 3; i++ {
		members := make([]any, 0, i)
		for j := range i {
			members = append(members, member(string(rune('a'+j))+"@x.io"))
		}
		resp := c.post(t, "/sync-team", map[string]any{"teamName": "Acme", "members": members})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		teamID = decode[syncResponse](t, resp).TeamID
	}

	history := decode[[]map[string]any](t, c.get(t, "/teams/"+teamID+"/history?limit=2"))
	require.Len(t, history, 2)
	assert.Equal(t, float64(3), history[0]["member_count"])
	assert.Equal(t, float64(2), history[1]["member_count"])
}

func TestTeamsAndAlerts(t *testing.T) {
	db := setupTestDB(t)
	c := newTestClient(t, db)

	resp := c.post(t, "/sync-team", map[string]any{
		"teamName": "Big",
		"members":  []any{member("a@x.io"), member("b@x.io"), member("c@x.io")},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bigID := decode[syncResponse](t, resp).TeamID

	require.Equal(t, http.StatusCreated, c.post(t, "/teams", map[string]any{"name": "alpha"}).StatusCode)

	teams := decode[[]map[string]any](t, c.get(t, "/teams"))
	require.Len(t, teams, 2)
	assert.Equal(t, "alpha", teams[0]["name"])
	assert.Equal(t, "Big", teams[1]["name"])

	alerts := decode[[]map[string]any](t, c.get(t, "/alerts"))
	require.Len(t, alerts, 1)
	assert.Equal(t, bigID, alerts[0]["team_id"])
	assert.Equal(t, float64(2), alerts[0]["limit"])

	// повторное подтверждение не падает на уникальном ключе
	for range 2 {
		resp = c.post(t, "/teams/"+bigID+"/alerts/member_limit/ack", nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	assert.Empty(t, decode[[]map[string]any](t, c.get(t, "/alerts")))
}

func TestSchedulerStatus(t *testing.T) {
	db := setupTestDB(t)
	c := newTestClient(t, db)

	body := decode[map[string]any](t, c.get(t, "/update-scheduler-status"))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "idle", body["data"].(map[string]any)["status"])

	resp := c.post(t, "/update-scheduler-status", map[string]any{"status": "running", "total_profiles": 4})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.post(t, "/update-scheduler-status", map[string]any{
		"status":               "completed",
		"profiles_synced":      3,
		"run_duration_seconds": 1.5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decode[map[string]any](t, resp)["data"].(map[string]any)
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, float64(3), data["profiles_synced"])
	assert.Equal(t, float64(4), data["total_profiles"])
	assert.Equal(t, 1.5, data["run_duration_seconds"])
}

// клиент сборщика против настоящего сервера
func TestSyncClientAgainstServer(t *testing.T) {
	db := setupTestDB(t)
	c := newTestClient(t, db)
	ctx := context.Background()

	client := syncclient.New(syncclient.Config{Endpoint: c.baseURL, Token: apiToken, Timeout: 5 * time.Second})
	require.NoError(t, client.Ping(ctx))

	res, err := client.Sync(ctx, syncclient.Payload{
		TeamName:    "Initech",
		WorkspaceID: "ws-init",
		Members: []scraper.Member{
			{Email: "peter@initech.io", Name: "Peter", Role: entity.RoleAdmin},
			{Email: "milton@initech.io", Role: entity.RoleMember},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Initech", res.TeamName)
	assert.Equal(t, 2, res.MemberCount)

	_, err = client.Sync(ctx, syncclient.Payload{TeamName: "Initech", Members: []scraper.Member{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No members provided")

	three := 3
	status, err := client.UpdateSchedulerStatus(ctx, entity.SchedulerUpdate{Status: entity.SchedulerRunning, TotalProfiles: &three})
	require.NoError(t, err)
	assert.Equal(t, entity.SchedulerRunning, status.Status)
	assert.Equal(t, 3, status.TotalProfiles)

	unauthorized := syncclient.New(syncclient.Config{Endpoint: c.baseURL})
	_, err = unauthorized.Sync(ctx, syncclient.Payload{TeamName: "Initech", Members: []scraper.Member{{Email: "a@x.io"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
