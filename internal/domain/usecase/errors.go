package usecase

import "errors"

var (
	ErrTeamNotFound           = errors.New("team not found")
	ErrEmptyTeamName          = errors.New("team name is required")
	ErrInvalidPayload         = errors.New("invalid payload: teamName and members array are required")
	ErrNoMembers              = errors.New("no members provided")
	ErrInvalidMember          = errors.New("member email is required")
	ErrInvalidAlertType       = errors.New("unknown alert type")
	ErrSchedulerNotFound      = errors.New("scheduler status not found")
	ErrInvalidSchedulerStatus = errors.New("invalid scheduler status")
)
