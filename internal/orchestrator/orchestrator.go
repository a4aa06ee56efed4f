// Package orchestrator decides when a tab gets scraped and synced: it waits
// for the page to settle, retries extraction a fixed number of times and
// keeps one session per tab.
package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/mark47B/rostersync/internal/orchestrator/store"
	"github.com/mark47B/rostersync/internal/scraper"
	"github.com/mark47B/rostersync/internal/syncclient"
)

var (
	// ErrTabGone is returned by a PageSource for a tab that no longer exists.
	ErrTabGone        = errors.New("tab no longer exists")
	ErrNotMembersPage = errors.New("not an admin members page")
	errUnknownMessage = errors.New("unknown message type")
)

type PageSource interface {
	Snapshot(ctx context.Context, tabID int) ([]byte, error)
}

type Syncer interface {
	Sync(ctx context.Context, p syncclient.Payload) (syncclient.Result, error)
}

type TabCloser interface {
	CloseTab(tabID int) error
}

type Config struct {
	// SettleDelay перезапускается каждым изменением контента
	SettleDelay time.Duration
	MaxWait     time.Duration
	Attempts    int
	RetryDelay  time.Duration
}

func DefaultConfig() Config {
	return Config{
		SettleDelay: 3 * time.Second,
		MaxWait:     10 * time.Second,
		Attempts:    3,
		RetryDelay:  2 * time.Second,
	}
}

type Orchestrator struct {
	cfg     Config
	scraper *scraper.Scraper
	source  PageSource
	syncer  Syncer
	store   store.Store
	closer  TabCloser
	log     *zap.SugaredLogger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[int]*session
	keys     map[string]struct{}
	gen      uint64
	wg       sync.WaitGroup
}

type Option func(*Orchestrator)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *Orchestrator) { o.log = l }
}

func WithTabCloser(c TabCloser) Option {
	return func(o *Orchestrator) { o.closer = c }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func New(cfg Config, sc *scraper.Scraper, source PageSource, syncer Syncer, st store.Store, opts ...Option) *Orchestrator {
	def := DefaultConfig()
	if cfg.Attempts <= 0 {
		cfg.Attempts = def.Attempts
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = def.MaxWait
	}

	o := &Orchestrator{
		cfg:      cfg,
		scraper:  sc,
		source:   source,
		syncer:   syncer,
		store:    st,
		log:      zap.NewNop().Sugar(),
		now:      time.Now,
		sessions: make(map[int]*session),
		keys:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func dedupKey(tabID int, url string) string {
	return strconv.Itoa(tabID) + "-" + url
}

// PageLoaded starts an automatic sync for an admin members page. It returns
// false when the page is not eligible, autoSync is off or the page was
// already handled.
func (o *Orchestrator) PageLoaded(ctx context.Context, tabID int, url string) (bool, error) {
	if !o.scraper.IsAdminMembersURL(url) {
		return false, nil
	}

	st, err := o.store.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("load settings: %w", err)
	}
	if !st.AutoSync {
		o.log.Debugw("auto sync disabled", "tab", tabID, "url", url)
		return false, nil
	}
	return o.start(ctx, tabID, url)
}

// TriggerSync is a manual trigger, it ignores autoSync. An empty url means
// the tab's current page.
func (o *Orchestrator) TriggerSync(ctx context.Context, tabID int, url string) (bool, error) {
	if url == "" {
		o.mu.Lock()
		if s, ok := o.sessions[tabID]; ok {
			url = s.URL
		}
		o.mu.Unlock()
	}
	if !o.scraper.IsAdminMembersURL(url) {
		return false, fmt.Errorf("%w: %q", ErrNotMembersPage, url)
	}
	return o.start(ctx, tabID, url)
}

// ContentChanged restarts the settle delay of a waiting session. It reports
// false when the tab has no waiting session, so the caller can treat the
// event as a new page load.
func (o *Orchestrator) ContentChanged(tabID int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	s, ok := o.sessions[tabID]
	if !ok || s.State != StateWaiting {
		return false
	}
	select {
	case s.changes <- struct{}{}:
	default:
	}
	return true
}

// TabNavigated forgets everything about the previous page and handles the
// new url as a fresh load. A run started for the old page is not cancelled.
func (o *Orchestrator) TabNavigated(ctx context.Context, tabID int, url string) (bool, error) {
	o.mu.Lock()
	o.clearKeys(tabID)
	o.newSession(tabID, url)
	o.mu.Unlock()

	return o.PageLoaded(ctx, tabID, url)
}

func (o *Orchestrator) TabClosed(tabID int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.clearKeys(tabID)
	delete(o.sessions, tabID)
}

func (o *Orchestrator) Session(tabID int) (Session, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s, ok := o.sessions[tabID]
	if !ok {
		return Session{}, false
	}
	return s.Session, true
}

// Wait blocks until every started run has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) start(ctx context.Context, tabID int, url string) (bool, error) {
	key := dedupKey(tabID, url)

	o.mu.Lock()
	if _, ok := o.keys[key]; ok {
		o.mu.Unlock()
		o.log.Debugw("already handled", "tab", tabID, "url", url)
		return false, nil
	}

	s, ok := o.sessions[tabID]
	if !ok || s.URL != url {
		s = o.newSession(tabID, url)
	}
	if err := s.transition(StateWaiting, o.now()); err != nil {
		o.mu.Unlock()
		return false, err
	}
	s.Attempts = 0
	s.Error = ""
	o.keys[key] = struct{}{}
	gen, changes := s.gen, s.changes
	o.wg.Add(1)
	o.mu.Unlock()

	o.log.Infow("sync started", "tab", tabID, "url", url)
	go o.run(ctx, tabID, url, key, gen, changes)
	return true, nil
}

// вызывать под o.mu
func (o *Orchestrator) newSession(tabID int, url string) *session {
	o.gen++
	s := &session{
		Session: Session{
			TabID:     tabID,
			URL:       url,
			State:     StateIdle,
			UpdatedAt: o.now(),
		},
		gen:     o.gen,
		changes: make(chan struct{}, 1),
	}
	o.sessions[tabID] = s
	return s
}

// вызывать под o.mu
func (o *Orchestrator) clearKeys(tabID int) {
	prefix := strconv.Itoa(tabID) + "-"
	for k := range o.keys {
		if strings.HasPrefix(k, prefix) {
			delete(o.keys, k)
		}
	}
}

// current returns the session only if it still belongs to the run. Call under o.mu.
func (o *Orchestrator) current(tabID int, gen uint64) *session {
	s, ok := o.sessions[tabID]
	if !ok || s.gen != gen {
		return nil
	}
	return s
}

func (o *Orchestrator) run(ctx context.Context, tabID int, url, key string, gen uint64, changes <-chan struct{}) {
	defer o.wg.Done()

	o.waitForContent(ctx, changes)

	res, err := o.extract(ctx, tabID, url, gen)
	if err != nil {
		o.fail(ctx, tabID, url, key, gen, fmt.Errorf("extract roster: %w", err))
		return
	}

	synced, err := o.syncer.Sync(ctx, syncclient.PayloadFromResult(res))
	if err != nil {
		o.fail(ctx, tabID, url, key, gen, err)
		return
	}
	o.succeed(ctx, tabID, url, gen, res, synced)
}

// waitForContent returns once the page has been quiet for SettleDelay, or
// after MaxWait at the latest.
func (o *Orchestrator) waitForContent(ctx context.Context, changes <-chan struct{}) {
	settle := time.NewTimer(o.cfg.SettleDelay)
	defer settle.Stop()
	hard := time.NewTimer(o.cfg.MaxWait)
	defer hard.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			settle.Reset(o.cfg.SettleDelay)
		case <-settle.C:
			return
		case <-hard.C:
			return
		}
	}
}

func (o *Orchestrator) extract(ctx context.Context, tabID int, url string, gen uint64) (scraper.Result, error) {
	var (
		res     scraper.Result
		attempt int
	)

	op := func() error {
		attempt++
		o.mu.Lock()
		if s := o.current(tabID, gen); s != nil {
			s.Attempts = attempt
		}
		o.mu.Unlock()

		html, err := o.source.Snapshot(ctx, tabID)
		if errors.Is(err, ErrTabGone) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}

		r, err := o.scraper.Scrape(bytes.NewReader(html), url)
		if err != nil {
			return err
		}
		if err := r.Validate(); err != nil {
			o.log.Debugw("extraction attempt failed", "tab", tabID, "attempt", attempt, "error", err)
			return err
		}
		res = r
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(o.cfg.RetryDelay), uint64(o.cfg.Attempts-1)),
		ctx,
	)
	if err := backoff.Retry(op, b); err != nil {
		return scraper.Result{}, err
	}
	return res, nil
}

func (o *Orchestrator) fail(ctx context.Context, tabID int, url, key string, gen uint64, err error) {
	now := o.now()
	msg := err.Error()

	o.mu.Lock()
	if s := o.current(tabID, gen); s != nil {
		// ключ освобождаем, чтобы следующая загрузка или ручной запуск повторили
		delete(o.keys, key)
		if terr := s.transition(StateFailed, now); terr != nil {
			o.log.Warnw("session transition", "tab", tabID, "error", terr)
		}
		s.Error = msg
	}
	o.mu.Unlock()

	o.log.Warnw("sync failed", "tab", tabID, "url", url, "error", err)

	uerr := o.store.Update(ctx, func(st *store.State) {
		st.LastError = &store.LastError{Message: msg, Timestamp: now, TabURL: url}
		st.AppendLog(store.LogEntry{Timestamp: now, Level: "error", Message: "sync failed: " + msg})
	})
	if uerr != nil {
		o.log.Errorw("save last error", "error", uerr)
	}
}

func (o *Orchestrator) succeed(ctx context.Context, tabID int, url string, gen uint64, res scraper.Result, synced syncclient.Result) {
	now := o.now()

	teamName := synced.TeamName
	if teamName == "" {
		teamName = res.TeamName
	}
	count := synced.MemberCount
	if count == 0 {
		count = len(res.Members)
	}

	o.mu.Lock()
	if s := o.current(tabID, gen); s != nil {
		if err := s.transition(StateSynced, now); err != nil {
			o.log.Warnw("session transition", "tab", tabID, "error", err)
		}
		s.TeamName = teamName
		s.MemberCount = count
	}
	o.mu.Unlock()

	o.log.Infow("team synced", "tab", tabID, "team", teamName, "members", count)

	var autoClose bool
	err := o.store.Update(ctx, func(st *store.State) {
		st.LastSync = &store.LastSync{TeamName: teamName, MemberCount: count, Timestamp: now, TabURL: url}
		st.AppendLog(store.LogEntry{
			Timestamp: now,
			Level:     "info",
			Message:   fmt.Sprintf("synced %s: %d members", teamName, count),
		})
		autoClose = st.AutoClose
	})
	if err != nil {
		o.log.Errorw("save last sync", "error", err)
	}

	if autoClose && o.closer != nil {
		if err := o.closer.CloseTab(tabID); err != nil {
			o.log.Warnw("close tab", "tab", tabID, "error", err)
		}
	}
}
