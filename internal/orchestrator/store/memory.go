package store

import (
	"context"
	"slices"
	"sync"
)

type MemoryStore struct {
	mu    sync.Mutex
	state State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: Default()}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(_ context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.state), nil
}

func (s *MemoryStore) Update(_ context.Context, fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := clone(s.state)
	fn(&st)
	if len(st.SyncLogs) > MaxLogs {
		st.SyncLogs = st.SyncLogs[:MaxLogs]
	}
	s.state = st
	return nil
}

func clone(st State) State {
	out := st
	out.SyncLogs = slices.Clone(st.SyncLogs)
	if out.SyncLogs == nil {
		out.SyncLogs = []LogEntry{}
	}
	if st.LastSync != nil {
		ls := *st.LastSync
		out.LastSync = &ls
	}
	if st.LastError != nil {
		le := *st.LastError
		out.LastError = &le
	}
	return out
}
