// Package httputil provides the HTTP client shared by the remote data sources.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// DefaultTimeout is the per-request deadline used when none is configured.
const DefaultTimeout = 10 * time.Second

// maxBodySize bounds how much of a response body is read into memory.
const maxBodySize = 64 << 20

// StatusError is returned for responses other than 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client issues GET requests against JSON and XML web services.
type Client struct {
	http       *http.Client
	userAgent  string
	maxRetries int
	logger     *zap.Logger
}

// Options configures a Client.
type Options struct {
	Timeout    time.Duration // per-request deadline; DefaultTimeout if zero
	UserAgent  string
	MaxRetries int // retries on HTTP 429; zero disables retrying
}

// NewClient creates a client with its own *http.Client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		userAgent:  opts.UserAgent,
		maxRetries: opts.MaxRetries,
		logger:     zap.NewNop(),
	}
}

// SetLogger sets the logger used for retry messages.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Get fetches baseURL with params and returns the response body.
// Any status other than 200 is reported as a *StatusError.
func (c *Client) Get(ctx context.Context, baseURL string, params url.Values) ([]byte, error) {
	reqURL := baseURL
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", baseURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{URL: baseURL, StatusCode: resp.StatusCode, Body: snippet}
	}
	return body, nil
}

// doWithRetry executes req and retries on HTTP 429 (Too Many Requests)
// with exponential backoff starting at RetryBaseDelay. On each 429 the
// response body is drained and closed before sleeping. After exhausting
// retries the last 429 response is returned so the caller can report it.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.http.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests || attempt >= c.maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		c.logger.Warn("rate limited, retrying",
			zap.String("url", logURL(req.URL)),
			zap.Duration("backoff", backoff),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", c.maxRetries))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// logURL renders u without its query, which may carry API keys.
func logURL(u *url.URL) string {
	stripped := *u
	stripped.RawQuery = ""
	stripped.ForceQuery = false
	return stripped.Redacted()
}
