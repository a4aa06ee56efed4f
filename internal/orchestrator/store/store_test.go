package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendLogCapped(t *testing.T) {
	st := Default()
	for i := range 60 {
		st.AppendLog(LogEntry{Message: fmt.Sprintf("msg %d", i)})
	}

	require.Len(t, st.SyncLogs, MaxLogs)
	assert.Equal(t, "msg 59", st.SyncLogs[0].Message)
	assert.Equal(t, "msg 10", st.SyncLogs[MaxLogs-1].Message)
}

func TestFileStoreDefaults(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "state.json"))

	st, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, st.AutoSync)
	assert.False(t, st.AutoClose)
	assert.Nil(t, st.LastSync)
	assert.Empty(t, st.SyncLogs)
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	ctx := context.Background()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s := NewFileStore(path)
	require.NoError(t, s.Update(ctx, func(st *State) {
		st.LastSync = &LastSync{TeamName: "Acme", MemberCount: 3, Timestamp: ts, TabURL: "https://x/admin/members"}
		st.AutoClose = true
		st.AppendLog(LogEntry{Timestamp: ts, Level: "info", Message: "synced"})
	}))

	reopened := NewFileStore(path)
	st, err := reopened.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, st.LastSync)
	assert.Equal(t, "Acme", st.LastSync.TeamName)
	assert.Equal(t, ts, st.LastSync.Timestamp)
	assert.True(t, st.AutoClose)
	assert.True(t, st.AutoSync)
	require.Len(t, st.SyncLogs, 1)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"lastSync"`)
	assert.Contains(t, string(raw), `"tabUrl"`)
}

func TestFileStoreMissingKeysKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"autoClose":true}`), 0o644))

	st, err := NewFileStore(path).Get(context.Background())
	require.NoError(t, err)
	assert.True(t, st.AutoSync)
	assert.True(t, st.AutoClose)
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := NewFileStore(path).Get(context.Background())
	assert.Error(t, err)
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Update(ctx, func(st *State) {
		st.LastError = &LastError{Message: "boom"}
		st.AppendLog(LogEntry{Message: "first"})
	}))

	st, err := s.Get(ctx)
	require.NoError(t, err)
	st.LastError.Message = "changed"
	st.SyncLogs[0].Message = "changed"

	again, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "boom", again.LastError.Message)
	assert.Equal(t, "first", again.SyncLogs[0].Message)
}
