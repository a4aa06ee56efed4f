package entity

import "time"

type Team struct {
	ID             string
	Name           string
	WorkspaceID    *string
	OrganizationID *string
	OwnerEmail     *string
	MemberCount    int
	LastSyncedAt   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SyncRequest: полный снимок команды, снятый со страницы участников
type SyncRequest struct {
	TeamName       string
	WorkspaceID    *string
	OrganizationID *string
	OwnerEmail     *string
	Members        []Member
}

type SyncResult struct {
	TeamID      string
	TeamName    string
	MemberCount int
	Timestamp   time.Time
}

type SyncRecord struct {
	ID          string
	TeamID      string
	MemberCount int
	SyncedAt    time.Time
}
