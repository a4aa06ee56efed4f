package entity

import "time"

const AlertMemberLimit = "member_limit"

// Alert is computed on read, only the acknowledgement is stored.
type Alert struct {
	TeamID      string
	TeamName    string
	AlertType   string
	MemberCount int
	Limit       int
}

type AlertAck struct {
	ID             string
	TeamID         string
	AlertType      string
	AcknowledgedAt time.Time
	CreatedAt      time.Time
}
