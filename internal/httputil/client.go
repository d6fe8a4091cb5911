// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP client shared by the catalog navigator
// and the dataset fetcher.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/kriete/station-series/pkg/types"
)

var (
	// ErrNotFound means the server answered and the resource does not exist
	// (HTTP 404 or 410).
	ErrNotFound = errors.New("resource not found")

	// ErrUnreachable covers transport failures and any other non-200 answer.
	ErrUnreachable = errors.New("resource unreachable")
)

// Client issues GET requests with the configured User-Agent, optional basic
// auth and optional request pacing. Failed requests are never retried: a
// failure is an answer.
type Client struct {
	HTTP    *http.Client
	cfg     types.HTTPConfig
	limiter *rate.Limiter
}

// NewClient wraps hc (http.DefaultClient when nil). When cfg.Timeout is set
// and hc has none, a copy of hc with that timeout is used.
func NewClient(hc *http.Client, cfg types.HTTPConfig) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if cfg.Timeout > 0 && hc.Timeout == 0 {
		cp := *hc
		cp.Timeout = cfg.Timeout
		hc = &cp
	}
	c := &Client{HTTP: hc, cfg: cfg}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c
}

// Get fetches url and returns the whole body. Errors wrap ErrNotFound or
// ErrUnreachable, or the context error when ctx ends while pacing.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", url, err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.Username != "" && c.cfg.Password != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreachable, url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrNotFound, resp.StatusCode, url)
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrUnreachable, resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnreachable, url, err)
	}
	return body, nil
}
