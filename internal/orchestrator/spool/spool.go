// Package spool watches a directory where the browser side drops page events
// as JSON files and feeds them to the orchestrator.
package spool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/mark47B/rostersync/internal/orchestrator"
)

const (
	EventLoaded    = "loaded"
	EventNavigated = "navigated"
	EventClosed    = "closed"
)

type Event struct {
	TabID int    `json:"tabId"`
	URL   string `json:"url"`
	Event string `json:"event"`
	HTML  string `json:"html"`
}

// Handler is the part of the orchestrator the watcher drives.
type Handler interface {
	PageLoaded(ctx context.Context, tabID int, url string) (bool, error)
	ContentChanged(tabID int) bool
	TabNavigated(ctx context.Context, tabID int, url string) (bool, error)
	TabClosed(tabID int)
}

type page struct {
	url  string
	html []byte
}

// Watcher keeps the latest HTML per tab and serves it as the orchestrator's
// page source.
type Watcher struct {
	dir string
	log *zap.SugaredLogger

	mu    sync.Mutex
	pages map[int]page
}

var (
	_ orchestrator.PageSource = (*Watcher)(nil)
	_ orchestrator.TabCloser  = (*Watcher)(nil)
)

// CommandsDir is where commands for the browser side are written.
const CommandsDir = "commands"

type Command struct {
	Command string `json:"command"`
	TabID   int    `json:"tabId"`
}

func New(dir string, log *zap.SugaredLogger) *Watcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Watcher{
		dir:   dir,
		log:   log,
		pages: make(map[int]page),
	}
}

func (w *Watcher) Snapshot(_ context.Context, tabID int) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.pages[tabID]
	if !ok {
		return nil, orchestrator.ErrTabGone
	}
	return p.html, nil
}

// CloseTab asks the browser side to close the tab.
func (w *Watcher) CloseTab(tabID int) error {
	dir := filepath.Join(w.dir, CommandsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create commands dir: %w", err)
	}
	data, err := json.Marshal(Command{Command: "closeTab", TabID: tabID})
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%d-close-%d.json", time.Now().UnixNano(), tabID)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write close command: %w", err)
	}
	return nil
}

// Run processes files already in the directory, then watches it until ctx
// is done. Handled files are removed.
func (w *Watcher) Run(ctx context.Context, h Handler) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create spool dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch spool dir %s: %w", w.dir, err)
	}

	if err := w.drain(ctx, h); err != nil {
		return err
	}
	w.log.Infow("watching spool", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !isEventFile(ev.Name) {
				continue
			}
			w.handleFile(ctx, h, ev.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("spool watcher error", "error", err)
		}
	}
}

func (w *Watcher) drain(ctx context.Context, h Handler) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read spool dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isEventFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	// имена файлов начинаются с метки времени, порядок важен
	sort.Strings(names)
	for _, name := range names {
		w.handleFile(ctx, h, filepath.Join(w.dir, name))
	}
	return nil
}

func isEventFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".json") && !strings.HasPrefix(base, ".")
}

func (w *Watcher) handleFile(ctx context.Context, h Handler, path string) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		w.log.Warnw("read spool file", "file", path, "error", err)
		return
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		// файл может быть дописан следующим Write
		w.log.Debugw("skip incomplete spool file", "file", path, "error", err)
		return
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		w.log.Warnw("remove spool file", "file", path, "error", err)
	}

	if err := w.Dispatch(ctx, h, ev); err != nil {
		w.log.Warnw("spool event", "file", path, "error", err)
	}
}

// Dispatch applies one page event.
func (w *Watcher) Dispatch(ctx context.Context, h Handler, ev Event) error {
	switch ev.Event {
	case EventLoaded:
		w.mu.Lock()
		prev, seen := w.pages[ev.TabID]
		w.pages[ev.TabID] = page{url: ev.URL, html: []byte(ev.HTML)}
		w.mu.Unlock()

		// повторная загрузка после failed/synced идёт как новая, дубль отсечёт ключ
		if seen && prev.url == ev.URL && h.ContentChanged(ev.TabID) {
			return nil
		}
		_, err := h.PageLoaded(ctx, ev.TabID, ev.URL)
		return err
	case EventNavigated:
		w.mu.Lock()
		w.pages[ev.TabID] = page{url: ev.URL, html: []byte(ev.HTML)}
		w.mu.Unlock()

		_, err := h.TabNavigated(ctx, ev.TabID, ev.URL)
		return err
	case EventClosed:
		w.mu.Lock()
		delete(w.pages, ev.TabID)
		w.mu.Unlock()

		h.TabClosed(ev.TabID)
		return nil
	default:
		return fmt.Errorf("unknown event %q for tab %d", ev.Event, ev.TabID)
	}
}
