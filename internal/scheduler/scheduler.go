// Package scheduler runs the roster sync for a fixed list of profiles on a
// cron schedule and reports every run to the dashboard.
package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mark47B/rostersync/internal/domain/entity"
	"github.com/mark47B/rostersync/internal/metrics"
	"github.com/mark47B/rostersync/internal/scraper"
	"github.com/mark47B/rostersync/internal/syncclient"
)

var ErrAlreadyRunning = errors.New("scheduled run already in progress")

const DefaultSpec = "@every 6h"

// Client is the sync endpoint as seen by the runner.
type Client interface {
	Sync(ctx context.Context, p syncclient.Payload) (syncclient.Result, error)
	UpdateSchedulerStatus(ctx context.Context, upd entity.SchedulerUpdate) (entity.SchedulerStatus, error)
}

// Profile is a saved members page: a local HTML file or a URL. PageURL is
// what the scraper sees for URL based team names.
type Profile struct {
	Source  string
	PageURL string
}

// ParseProfile reads "source" or "source|pageURL".
func ParseProfile(s string) Profile {
	src, pageURL, found := strings.Cut(strings.TrimSpace(s), "|")
	p := Profile{Source: strings.TrimSpace(src)}
	if found {
		p.PageURL = strings.TrimSpace(pageURL)
	} else if isURL(p.Source) {
		p.PageURL = p.Source
	}
	return p
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

type Config struct {
	Spec     string
	Profiles []Profile
	// Cookie уходит заголовком при скачивании профилей по URL
	Cookie  string
	Timeout time.Duration
}

type Summary struct {
	Status   entity.SchedulerState
	Total    int
	Synced   int
	Duration time.Duration
	NextRun  time.Time
	Err      error
}

type Runner struct {
	cfg      Config
	scraper  *scraper.Scraper
	client   Client
	fetcher  *Fetcher
	schedule cron.Schedule
	metrics  *metrics.Metrics
	log      *zap.SugaredLogger
	now      func() time.Time

	mu sync.Mutex
}

type Option func(*Runner)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *Runner) { r.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func New(cfg Config, sc *scraper.Scraper, client Client, opts ...Option) (*Runner, error) {
	if cfg.Spec == "" {
		cfg.Spec = DefaultSpec
	}
	schedule, err := cron.ParseStandard(cfg.Spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", cfg.Spec, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = syncclient.DefaultTimeout
	}

	r := &Runner{
		cfg:      cfg,
		scraper:  sc,
		client:   client,
		schedule: schedule,
		log:      zap.NewNop().Sugar(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.fetcher = NewFetcher(cfg.Timeout, cfg.Cookie)
	return r, nil
}

// Start runs the job on schedule until ctx is done and waits for a running
// job to finish.
func (r *Runner) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(zap.NewStdLog(r.log.Desugar())))))
	if _, err := c.AddFunc(r.cfg.Spec, func() {
		if _, err := r.RunOnce(ctx, false); err != nil {
			r.log.Warnw("scheduled run", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}

	next := r.schedule.Next(r.now()).UTC()
	r.report(ctx, entity.SchedulerUpdate{Status: entity.SchedulerIdle, NextRunAt: &next})

	c.Start()
	r.log.Infow("scheduler started", "spec", r.cfg.Spec, "profiles", len(r.cfg.Profiles), "next_run", next)

	<-ctx.Done()
	<-c.Stop().Done()
	r.log.Info("scheduler stopped")
	return nil
}

// RunOnce syncs every profile once. The returned error is set only when no
// profile could be synced.
func (r *Runner) RunOnce(ctx context.Context, manual bool) (Summary, error) {
	if !r.mu.TryLock() {
		return Summary{}, ErrAlreadyRunning
	}
	defer r.mu.Unlock()

	started := r.now().UTC()
	total := len(r.cfg.Profiles)
	zero := 0
	r.report(ctx, entity.SchedulerUpdate{
		Status:         entity.SchedulerRunning,
		LastRunAt:      &started,
		ProfilesSynced: &zero,
		TotalProfiles:  &total,
		TriggerManual:  &manual,
	})

	var (
		synced int
		errs   []error
	)
	for _, p := range r.cfg.Profiles {
		if err := r.syncProfile(ctx, p); err != nil {
			r.log.Warnw("profile sync failed", "profile", p.Source, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Source, err))
			continue
		}
		synced++
	}

	duration := r.now().Sub(started)
	status := entity.SchedulerCompleted
	if total > 0 && synced == 0 {
		status = entity.SchedulerFailed
	}
	next := r.schedule.Next(r.now()).UTC()
	seconds := duration.Seconds()

	r.report(ctx, entity.SchedulerUpdate{
		Status:             status,
		LastRunAt:          &started,
		NextRunAt:          &next,
		ProfilesSynced:     &synced,
		TotalProfiles:      &total,
		RunDurationSeconds: &seconds,
		TriggerManual:      &manual,
	})
	if r.metrics != nil {
		r.metrics.ObserveRun(string(status), duration)
	}

	sum := Summary{
		Status:   status,
		Total:    total,
		Synced:   synced,
		Duration: duration,
		NextRun:  next,
		Err:      errors.Join(errs...),
	}
	r.log.Infow("scheduled run finished", "status", status, "synced", synced, "total", total, "duration", duration)

	if status == entity.SchedulerFailed {
		return sum, sum.Err
	}
	return sum, nil
}

func (r *Runner) syncProfile(ctx context.Context, p Profile) error {
	html, err := r.fetcher.Load(ctx, p)
	if err != nil {
		return err
	}

	res, err := r.scraper.Scrape(bytes.NewReader(html), p.PageURL)
	if err != nil {
		return err
	}
	if err := res.Validate(); err != nil {
		return err
	}

	_, err = r.client.Sync(ctx, syncclient.PayloadFromResult(res))
	return err
}

// статус для дашборда не критичен, ошибки только логируем
func (r *Runner) report(ctx context.Context, upd entity.SchedulerUpdate) {
	if _, err := r.client.UpdateSchedulerStatus(ctx, upd); err != nil {
		r.log.Warnw("update scheduler status", "status", upd.Status, "error", err)
	}
}
