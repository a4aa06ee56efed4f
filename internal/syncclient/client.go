// Package syncclient posts scraped rosters to the sync endpoint.
package syncclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mark47B/rostersync/internal/domain/entity"
	"github.com/mark47B/rostersync/internal/infra/transport/rest/gen"
	"github.com/mark47B/rostersync/internal/scraper"
)

var (
	ErrSyncRejected    = errors.New("sync rejected")
	ErrInvalidResponse = errors.New("invalid sync response")
)

const DefaultTimeout = 30 * time.Second

type Config struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

type Payload struct {
	TeamName       string           `json:"teamName"`
	Members        []scraper.Member `json:"members"`
	WorkspaceID    string           `json:"workspaceId,omitempty"`
	OrganizationID string           `json:"organizationId,omitempty"`
	OwnerEmail     string           `json:"ownerEmail,omitempty"`
}

func PayloadFromResult(r scraper.Result) Payload {
	return Payload{
		TeamName:       r.TeamName,
		Members:        r.Members,
		WorkspaceID:    r.WorkspaceID,
		OrganizationID: r.OrganizationID,
		OwnerEmail:     r.OwnerEmail,
	}
}

type Result struct {
	TeamID      string
	TeamName    string
	MemberCount int
	Timestamp   time.Time
}

type syncResponse struct {
	Success     bool      `json:"success"`
	TeamID      string    `json:"teamId"`
	TeamName    string    `json:"teamName"`
	MemberCount int       `json:"memberCount"`
	Timestamp   time.Time `json:"timestamp"`
	Error       string    `json:"error"`
}

type Client struct {
	client   *resty.Client
	endpoint string
	log      *zap.SugaredLogger
}

type Option func(*Client)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = l }
}

// WithHTTPClient подменяет транспорт, нужен в тестах
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = resty.NewWithClient(hc)
	}
}

func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		client:   resty.New(),
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c.client.
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.Token != "" {
		c.client.SetAuthToken(cfg.Token).SetHeader("apikey", cfg.Token)
	}
	return c
}

// Sync отправляет снимок команды одним POST, без повторов
func (c *Client) Sync(ctx context.Context, p Payload) (Result, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(p).
		Post(c.endpoint + "/sync-team")
	if err != nil {
		return Result{}, fmt.Errorf("send sync request: %w", err)
	}

	body := resp.String()
	c.log.Debugw("sync response", "status", resp.StatusCode(), "team", p.TeamName, "members", len(p.Members))

	if !resp.IsSuccess() {
		return Result{}, fmt.Errorf("sync failed: %d - %s", resp.StatusCode(), body)
	}

	var sr syncResponse
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return Result{}, ErrInvalidResponse
	}
	if !sr.Success {
		msg := sr.Error
		if msg == "" {
			msg = "unknown sync error"
		}
		return Result{}, fmt.Errorf("%w: %s", ErrSyncRejected, msg)
	}

	return Result{
		TeamID:      sr.TeamID,
		TeamName:    sr.TeamName,
		MemberCount: sr.MemberCount,
		Timestamp:   sr.Timestamp,
	}, nil
}

// UpdateSchedulerStatus reports a scheduler run to the dashboard.
func (c *Client) UpdateSchedulerStatus(ctx context.Context, upd entity.SchedulerUpdate) (entity.SchedulerStatus, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(gen.SchedulerUpdateRequest{
			Status:             gen.SchedulerState(upd.Status),
			LastRunAt:          upd.LastRunAt,
			NextRunAt:          upd.NextRunAt,
			ProfilesSynced:     upd.ProfilesSynced,
			TotalProfiles:      upd.TotalProfiles,
			RunDurationSeconds: upd.RunDurationSeconds,
			TriggerManual:      upd.TriggerManual,
		}).
		Post(c.endpoint + "/update-scheduler-status")
	if err != nil {
		return entity.SchedulerStatus{}, fmt.Errorf("send scheduler status: %w", err)
	}
	if !resp.IsSuccess() {
		return entity.SchedulerStatus{}, fmt.Errorf("scheduler status update failed: %d - %s", resp.StatusCode(), resp.String())
	}

	var sr gen.SchedulerStatusResponse
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return entity.SchedulerStatus{}, ErrInvalidResponse
	}
	d := sr.Data
	return entity.SchedulerStatus{
		ID:                 d.Id,
		Status:             entity.SchedulerState(d.Status),
		LastRunAt:          d.LastRunAt,
		NextRunAt:          d.NextRunAt,
		ProfilesSynced:     d.ProfilesSynced,
		TotalProfiles:      d.TotalProfiles,
		RunDurationSeconds: d.RunDurationSeconds,
		TriggerManual:      d.TriggerManual,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get(c.endpoint + "/health")
	if err != nil {
		return fmt.Errorf("ping sync endpoint: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("sync endpoint unhealthy: %d", resp.StatusCode())
	}
	return nil
}
