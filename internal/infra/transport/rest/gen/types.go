// Package gen holds the HTTP contract of the API: models, the server
// interface and chi routing, mirroring openapi.yaml.
package gen

import "time"

// Defines values for SchedulerState.
const (
	SchedulerStateCompleted SchedulerState = "completed"
	SchedulerStateFailed    SchedulerState = "failed"
	SchedulerStateIdle      SchedulerState = "idle"
	SchedulerStatePending   SchedulerState = "pending"
	SchedulerStateRunning   SchedulerState = "running"
)

// Defines values for TeamMemberRole.
const (
	TeamMemberRoleAdmin  TeamMemberRole = "admin"
	TeamMemberRoleMember TeamMemberRole = "member"
	TeamMemberRoleOwner  TeamMemberRole = "owner"
)

// Alert defines model for Alert.
type Alert struct {
	AlertType   string `json:"alert_type"`
	Limit       int    `json:"limit"`
	MemberCount int    `json:"member_count"`
	TeamId      string `json:"team_id"`
	TeamName    string `json:"team_name"`
}

// AlertAck defines model for AlertAck.
type AlertAck struct {
	AcknowledgedAt time.Time `json:"acknowledged_at"`
	AlertType      string    `json:"alert_type"`
	CreatedAt      time.Time `json:"created_at"`
	Id             string    `json:"id"`
	TeamId         string    `json:"team_id"`
}

// CreateTeamRequest defines model for CreateTeamRequest.
type CreateTeamRequest struct {
	Name string `json:"name"`
}

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// SchedulerState defines model for SchedulerState.
type SchedulerState string

// SchedulerStatus defines model for SchedulerStatus.
type SchedulerStatus struct {
	CreatedAt          time.Time      `json:"created_at"`
	Id                 string         `json:"id"`
	LastRunAt          *time.Time     `json:"last_run_at"`
	NextRunAt          *time.Time     `json:"next_run_at"`
	ProfilesSynced     int            `json:"profiles_synced"`
	RunDurationSeconds *float64       `json:"run_duration_seconds"`
	Status             SchedulerState `json:"status"`
	TotalProfiles      int            `json:"total_profiles"`
	TriggerManual      bool           `json:"trigger_manual"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// SchedulerStatusResponse defines model for SchedulerStatusResponse.
type SchedulerStatusResponse struct {
	Data    SchedulerStatus `json:"data"`
	Success bool            `json:"success"`
}

// SchedulerUpdateRequest defines model for SchedulerUpdateRequest.
type SchedulerUpdateRequest struct {
	LastRunAt          *time.Time     `json:"last_run_at,omitempty"`
	NextRunAt          *time.Time     `json:"next_run_at,omitempty"`
	ProfilesSynced     *int           `json:"profiles_synced,omitempty"`
	RunDurationSeconds *float64       `json:"run_duration_seconds,omitempty"`
	Status             SchedulerState `json:"status"`
	TotalProfiles      *int           `json:"total_profiles,omitempty"`
	TriggerManual      *bool          `json:"trigger_manual,omitempty"`
}

// SyncHistoryEntry defines model for SyncHistoryEntry.
type SyncHistoryEntry struct {
	Id          string    `json:"id"`
	MemberCount int       `json:"member_count"`
	SyncedAt    time.Time `json:"synced_at"`
	TeamId      string    `json:"team_id"`
}

// SyncMember defines model for SyncMember.
type SyncMember struct {
	Email    string  `json:"email"`
	JoinedAt *string `json:"joined_at,omitempty"`
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// SyncTeamRequest defines model for SyncTeamRequest.
type SyncTeamRequest struct {
	Members        *[]SyncMember `json:"members,omitempty"`
	OrganizationId *string       `json:"organizationId,omitempty"`
	OwnerEmail     *string       `json:"ownerEmail,omitempty"`
	TeamName       *string       `json:"teamName,omitempty"`
	WorkspaceId    *string       `json:"workspaceId,omitempty"`
}

// SyncTeamResponse defines model for SyncTeamResponse.
type SyncTeamResponse struct {
	MemberCount int       `json:"memberCount"`
	Success     bool      `json:"success"`
	TeamId      string    `json:"teamId"`
	TeamName    string    `json:"teamName"`
	Timestamp   time.Time `json:"timestamp"`
}

// Team defines model for Team.
type Team struct {
	CreatedAt      time.Time  `json:"created_at"`
	Id             string     `json:"id"`
	LastSyncedAt   *time.Time `json:"last_synced_at"`
	MemberCount    int        `json:"member_count"`
	Name           string     `json:"name"`
	OrganizationId *string    `json:"organization_id"`
	OwnerEmail     *string    `json:"owner_email"`
	UpdatedAt      time.Time  `json:"updated_at"`
	WorkspaceId    *string    `json:"workspace_id"`
}

// TeamMember defines model for TeamMember.
type TeamMember struct {
	CreatedAt time.Time      `json:"created_at"`
	Email     string         `json:"email"`
	Id        string         `json:"id"`
	JoinedAt  *time.Time     `json:"joined_at"`
	Name      string         `json:"name"`
	Role      TeamMemberRole `json:"role"`
	TeamId    string         `json:"team_id"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TeamMemberRole defines model for TeamMember.Role.
type TeamMemberRole string

// GetTeamsTeamIdHistoryParams defines parameters for GetTeamsTeamIdHistory.
type GetTeamsTeamIdHistoryParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// PostSyncTeamJSONRequestBody defines body for PostSyncTeam for application/json ContentType.
type PostSyncTeamJSONRequestBody = SyncTeamRequest

// PostTeamsJSONRequestBody defines body for PostTeams for application/json ContentType.
type PostTeamsJSONRequestBody = CreateTeamRequest

// PostUpdateSchedulerStatusJSONRequestBody defines body for PostUpdateSchedulerStatus for application/json ContentType.
type PostUpdateSchedulerStatusJSONRequestBody = SchedulerUpdateRequest
