package spool

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark47B/rostersync/internal/orchestrator"
	"github.com/mark47B/rostersync/internal/orchestrator/store"
	"github.com/mark47B/rostersync/internal/scraper"
	"github.com/mark47B/rostersync/internal/syncclient"
)

type call struct {
	op    string
	tabID int
	url   string
}

type recorder struct {
	mu    sync.Mutex
	calls []call
	// idle: у вкладки нет ожидающей сессии
	idle bool
}

func (r *recorder) add(c call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *recorder) snapshot() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

func (r *recorder) PageLoaded(_ context.Context, tabID int, url string) (bool, error) {
	r.add(call{"loaded", tabID, url})
	return true, nil
}

func (r *recorder) ContentChanged(tabID int) bool {
	r.add(call{"changed", tabID, ""})
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.idle
}

func (r *recorder) TabNavigated(_ context.Context, tabID int, url string) (bool, error) {
	r.add(call{"navigated", tabID, url})
	return true, nil
}

func (r *recorder) TabClosed(tabID int) {
	r.add(call{"closed", tabID, ""})
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	w := New(t.TempDir(), nil)
	rec := &recorder{}

	events := []Event{
		{TabID: 1, URL: "https://a/members", Event: EventLoaded, HTML: "<p>v1</p>"},
		{TabID: 1, URL: "https://a/members", Event: EventLoaded, HTML: "<p>v2</p>"},
		{TabID: 1, URL: "https://b/members", Event: EventNavigated, HTML: "<p>b</p>"},
		{TabID: 1, Event: EventClosed},
	}

	require.NoError(t, w.Dispatch(ctx, rec, events[0]))
	html, err := w.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "<p>v1</p>", string(html))

	require.NoError(t, w.Dispatch(ctx, rec, events[1]))
	html, _ = w.Snapshot(ctx, 1)
	assert.Equal(t, "<p>v2</p>", string(html))

	require.NoError(t, w.Dispatch(ctx, rec, events[2]))
	require.NoError(t, w.Dispatch(ctx, rec, events[3]))

	_, err = w.Snapshot(ctx, 1)
	assert.ErrorIs(t, err, orchestrator.ErrTabGone)

	assert.Equal(t, []call{
		{"loaded", 1, "https://a/members"},
		{"changed", 1, ""},
		{"navigated", 1, "https://b/members"},
		{"closed", 1, ""},
	}, rec.snapshot())

	assert.Error(t, w.Dispatch(ctx, rec, Event{TabID: 1, Event: "focus"}))
}

func TestRepeatedLoadWithoutWaitingSessionIsNewLoad(t *testing.T) {
	ctx := context.Background()
	w := New(t.TempDir(), nil)
	rec := &recorder{idle: true}

	ev := Event{TabID: 2, URL: "https://a/members", Event: EventLoaded, HTML: "<p>x</p>"}
	require.NoError(t, w.Dispatch(ctx, rec, ev))
	require.NoError(t, w.Dispatch(ctx, rec, ev))

	assert.Equal(t, []call{
		{"loaded", 2, "https://a/members"},
		{"changed", 2, ""},
		{"loaded", 2, "https://a/members"},
	}, rec.snapshot())
}

type flakySyncer struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (f *flakySyncer) Sync(_ context.Context, p syncclient.Payload) (syncclient.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return syncclient.Result{}, errors.New("sync failed: 502 - bad gateway")
	}
	return syncclient.Result{TeamName: p.TeamName, MemberCount: len(p.Members)}, nil
}

func (f *flakySyncer) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *flakySyncer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestReloadAfterFailedSyncRetries(t *testing.T) {
	ctx := context.Background()
	const url = "https://chatgpt.com/admin/acme/members"
	html := `<html><body><h1>Acme</h1><table><tbody>
		<tr><td>Jane Doe</td><td>jane@acme.io</td><td>Owner</td></tr>
		</tbody></table></body></html>`

	w := New(t.TempDir(), nil)
	syncer := &flakySyncer{fail: true}
	orch := orchestrator.New(orchestrator.Config{
		SettleDelay: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Attempts:    1,
		RetryDelay:  time.Millisecond,
	}, scraper.New(scraper.DefaultConfig()), w, syncer, store.NewMemoryStore())

	loaded := Event{TabID: 3, URL: url, Event: EventLoaded, HTML: html}
	require.NoError(t, w.Dispatch(ctx, orch, loaded))
	orch.Wait()
	s, _ := orch.Session(3)
	require.Equal(t, orchestrator.StateFailed, s.State)

	syncer.setFail(false)
	require.NoError(t, w.Dispatch(ctx, orch, loaded))
	orch.Wait()
	s, _ = orch.Session(3)
	assert.Equal(t, orchestrator.StateSynced, s.State)
	assert.Equal(t, 2, syncer.Calls())

	// после успеха повторная загрузка не синкает второй раз
	require.NoError(t, w.Dispatch(ctx, orch, loaded))
	orch.Wait()
	assert.Equal(t, 2, syncer.Calls())
}

func writeEvent(t *testing.T, dir, name string, ev Event) {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	tmp := filepath.Join(dir, "."+name)
	require.NoError(t, os.WriteFile(tmp, data, 0o644))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, name)))
}

func TestRunProcessesFiles(t *testing.T) {
	dir := t.TempDir()
	writeEvent(t, dir, "0001.json", Event{TabID: 4, URL: "https://a/members", Event: EventLoaded, HTML: "<p>x</p>"})

	w := New(dir, nil)
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, rec) }()

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)

	writeEvent(t, dir, "0002.json", Event{TabID: 4, Event: EventClosed})
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []call{
		{"loaded", 4, "https://a/members"},
		{"closed", 4, ""},
	}, rec.snapshot())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCloseTabWritesCommand(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, nil)
	require.NoError(t, w.CloseTab(9))

	entries, err := os.ReadDir(filepath.Join(dir, CommandsDir))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, CommandsDir, entries[0].Name()))
	require.NoError(t, err)
	var cmd Command
	require.NoError(t, json.Unmarshal(data, &cmd))
	assert.Equal(t, Command{Command: "closeTab", TabID: 9}, cmd)
}
