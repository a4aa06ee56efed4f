package entity

import "time"

type SchedulerState string

const (
	SchedulerIdle      SchedulerState = "idle"
	SchedulerPending   SchedulerState = "pending"
	SchedulerRunning   SchedulerState = "running"
	SchedulerCompleted SchedulerState = "completed"
	SchedulerFailed    SchedulerState = "failed"
)

func (s SchedulerState) Valid() bool {
	switch s {
	case SchedulerIdle, SchedulerPending, SchedulerRunning, SchedulerCompleted, SchedulerFailed:
		return true
	}
	return false
}

type SchedulerStatus struct {
	ID                 string
	Status             SchedulerState
	LastRunAt          *time.Time
	NextRunAt          *time.Time
	ProfilesSynced     int
	TotalProfiles      int
	RunDurationSeconds *float64
	TriggerManual      bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SchedulerUpdate is a partial update, nil fields are left untouched.
type SchedulerUpdate struct {
	Status             SchedulerState
	LastRunAt          *time.Time
	NextRunAt          *time.Time
	ProfilesSynced     *int
	TotalProfiles      *int
	RunDurationSeconds *float64
	TriggerManual      *bool
}
