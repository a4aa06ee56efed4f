// Package store keeps the scraping side's local state: last sync, last error,
// the debug log ring and the user toggles.
package store

import (
	"context"
	"time"
)

const MaxLogs = 50

type LastSync struct {
	TeamName    string    `json:"teamName"`
	MemberCount int       `json:"memberCount"`
	Timestamp   time.Time `json:"timestamp"`
	TabURL      string    `json:"tabUrl"`
}

type LastError struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	TabURL    string    `json:"tabUrl"`
}

type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

type State struct {
	LastSync  *LastSync  `json:"lastSync,omitempty"`
	LastError *LastError `json:"lastError,omitempty"`
	SyncLogs  []LogEntry `json:"syncLogs"`
	AutoSync  bool       `json:"autoSync"`
	AutoClose bool       `json:"autoClose"`
}

func Default() State {
	return State{
		SyncLogs: []LogEntry{},
		AutoSync: true,
	}
}

// AppendLog puts the entry first and drops the oldest ones past MaxLogs.
func (s *State) AppendLog(e LogEntry) {
	logs := make([]LogEntry, 0, min(len(s.SyncLogs)+1, MaxLogs))
	logs = append(logs, e)
	for _, l := range s.SyncLogs {
		if len(logs) == MaxLogs {
			break
		}
		logs = append(logs, l)
	}
	s.SyncLogs = logs
}

type Store interface {
	Get(ctx context.Context) (State, error)
	// Update applies fn to the current state and persists the result.
	Update(ctx context.Context, fn func(*State)) error
}
