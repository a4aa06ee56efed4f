package orchestrator

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

type State string

const (
	StateIdle    State = "idle"
	StateWaiting State = "waiting"
	StateSynced  State = "synced"
	StateFailed  State = "failed"
)

var ErrInvalidTransition = errors.New("invalid session transition")

// в idle можно вернуться из любого состояния, это делает reset
var transitions = map[State][]State{
	StateIdle:    {StateWaiting},
	StateWaiting: {StateSynced, StateFailed},
	StateFailed:  {StateWaiting},
}

func (s State) CanTransition(to State) bool {
	return slices.Contains(transitions[s], to)
}

// Session is a snapshot of one tab, as shown in the popup.
type Session struct {
	TabID       int       `json:"tabId"`
	URL         string    `json:"url"`
	State       State     `json:"state"`
	Attempts    int       `json:"attempts"`
	TeamName    string    `json:"teamName,omitempty"`
	MemberCount int       `json:"memberCount,omitempty"`
	Error       string    `json:"error,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type session struct {
	Session
	gen     uint64
	changes chan struct{}
}

func (s *session) transition(to State, now time.Time) error {
	if !s.State.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.State, to)
	}
	s.State = to
	s.UpdatedAt = now
	return nil
}
