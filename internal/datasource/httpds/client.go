// Package httpds fetches remote sweep inputs over HTTP with retry and
// exponential backoff.
//
// 5xx and 429 responses and transport errors are retried; every other status
// is final. Waits between attempts honour context cancellation.
package httpds

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"
)

// Config configures the client. Zero values get defaults:
//   - Timeout:        30s
//   - InitialBackoff: 200ms
//   - MaxBackoff:     5s
//
// MaxRetries=0 means only the initial attempt.
type Config struct {
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// InsecureSkipVerify disables TLS certificate checks. It is ignored when
	// Transport is set.
	InsecureSkipVerify bool

	// Header is sent with every request.
	Header http.Header

	// Transport overrides the default *http.Transport.
	Transport http.RoundTripper
}

// Client wraps an http.Client with retry and backoff.
type Client struct {
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	header         http.Header

	// wait blocks for a backoff; replaced in tests.
	wait func(ctx context.Context, d time.Duration) error
}

// NewClient constructs a Client from cfg, applying defaults for zero values.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // explicitly configurable
			},
		}
	}

	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout, Transport: transport},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		header:         cfg.Header.Clone(),
		wait:           waitContext,
	}
}

// Get issues a GET, retrying transient failures. On success the caller must
// close the response body. A non-retryable status is returned as a response,
// not an error.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	if url == "" {
		return nil, fmt.Errorf("httpds: url must not be empty")
	}

	attempts := c.maxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("httpds: build request: %w", err)
		}
		for k, vs := range c.header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.httpClient.Do(req)
		switch {
		case err != nil:
			lastErr = err
		case isRetryableStatus(resp.StatusCode):
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("httpds: retryable status %d from %s", resp.StatusCode, url)
		default:
			return resp, nil
		}

		if attempt+1 < attempts {
			if err := c.wait(ctx, backoffDuration(c.initialBackoff, attempt, c.maxBackoff)); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

// isRetryableStatus treats 429 and 5xx as transient.
func isRetryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// backoffDuration returns initial * 2^attempt, clamped to max.
func backoffDuration(initial time.Duration, attempt int, max time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := initial << attempt
	if d > max || d <= 0 {
		return max
	}
	return d
}

// waitContext sleeps for d or until ctx is done.
func waitContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
