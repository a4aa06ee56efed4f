package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// Fetcher loads profile pages from disk or over HTTP.
type Fetcher struct {
	client *resty.Client
}

func NewFetcher(timeout time.Duration, cookie string) *Fetcher {
	client := resty.New().SetTimeout(timeout)
	if cookie != "" {
		client.SetHeader("Cookie", cookie)
	}
	return &Fetcher{client: client}
}

func (f *Fetcher) Load(ctx context.Context, p Profile) ([]byte, error) {
	if !isURL(p.Source) {
		data, err := os.ReadFile(p.Source)
		if err != nil {
			return nil, fmt.Errorf("read profile: %w", err)
		}
		return data, nil
	}

	resp, err := f.client.R().SetContext(ctx).Get(p.Source)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetch profile: status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}
