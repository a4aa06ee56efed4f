package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore хранит состояние одним JSON-файлом
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

var _ Store = (*FileStore)(nil)

func (s *FileStore) Get(_ context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) Update(_ context.Context, fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		return err
	}
	fn(&st)
	if len(st.SyncLogs) > MaxLogs {
		st.SyncLogs = st.SyncLogs[:MaxLogs]
	}
	return s.write(st)
}

func (s *FileStore) read() (State, error) {
	st := Default()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read state file: %w", err)
	}
	if len(data) == 0 {
		return st, nil
	}
	// absent keys keep their defaults
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("decode state file %s: %w", s.path, err)
	}
	if st.SyncLogs == nil {
		st.SyncLogs = []LogEntry{}
	}
	return st, nil
}

func (s *FileStore) write(st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
