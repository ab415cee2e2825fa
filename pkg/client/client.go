package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Options configures a Client. Every field is enumerated on purpose: vendor
// clients pass exactly what their API needs instead of an open-ended header
// or parameter bag.
type Options struct {
	BaseURL   string
	UserAgent string

	// AuthHeader/AuthValue carry the vendor credential, e.g.
	// "Authorization" / "Bearer <token>" or "X-API-KEY" / "<key>".
	AuthHeader string
	AuthValue  string

	// ExtraHeaders are sent with every request (account ids, API versions).
	ExtraHeaders map[string]string

	RateLimit RateLimit
	Retry     RetryPolicy
	Timeout   time.Duration
}

// RateLimit is the fixed-window budget for a vendor API.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// Client executes JSON requests against one API with rate limiting and
// bounded retry. It is the single shared implementation behind every vendor
// client and the Tallyfy loader.
type Client struct {
	httpClient *http.Client
	opts       Options
	limiter    *Limiter
	logger     *slog.Logger
}

// New creates a Client for the given API.
func New(opts Options, logger *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	opts.Retry = opts.Retry.normalized()

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
		limiter:    NewLimiter(opts.RateLimit.Requests, opts.RateLimit.Window),
		logger:     logger,
	}
}

// Get issues a GET and decodes the JSON response into out (which may be nil).
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, params, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Do executes one logical request: waits for a rate-limit slot, sends, and
// retries transient failures under the configured policy. 404 becomes
// ErrNotFound, 401/403 become AuthError (never retried), 429 becomes
// RateLimitError (retried after the longer of Retry-After and the backoff
// delay), remaining 4xx surface immediately and 5xx/transport errors retry.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	return c.DoWithHeaders(ctx, method, path, params, nil, body, out)
}

// DoWithHeaders is Do with one-off request headers, e.g. an idempotency key
// that must survive the retry loop unchanged.
func (c *Client) DoWithHeaders(ctx context.Context, method, path string, params url.Values, headers map[string]string, body, out any) error {
	var lastErr error

	for attempt := 1; attempt <= c.opts.Retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.opts.Retry.Delay(attempt - 1)

			var rateErr *RateLimitError
			if errors.As(lastErr, &rateErr) && rateErr.RetryAfter > delay {
				delay = rateErr.RetryAfter
			}

			c.logger.WarnContext(ctx, "Retrying request",
				"method", method, "path", path, "attempt", attempt, "delay", delay, "error", lastErr)

			if err := sleepContext(ctx, delay); err != nil {
				return err
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := c.execute(ctx, method, path, params, headers, body, out)
		if err == nil {
			return nil
		}

		lastErr = err

		if !retryable(err) {
			return err
		}
	}

	return fmt.Errorf("request failed after %d attempts: %w", c.opts.Retry.MaxAttempts, lastErr)
}

func (c *Client) execute(ctx context.Context, method, path string, params url.Values, headers map[string]string, body, out any) error {
	fullURL, err := c.buildURL(path, params)
	if err != nil {
		return err
	}

	var reqBody io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}

		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	if c.opts.AuthHeader != "" {
		req.Header.Set(c.opts.AuthHeader, c.opts.AuthValue)
	}

	for key, value := range c.opts.ExtraHeaders {
		req.Header.Set(key, value)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := c.checkStatus(resp, method, path, respBody); err != nil {
		return err
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}

	return nil
}

func (c *Client) checkStatus(resp *http.Response, method, path string, body []byte) error {
	switch {
	case resp.StatusCode < 400:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		return &RequestError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       string(body),
		}
	}
}

func (c *Client) buildURL(path string, params url.Values) (string, error) {
	base := strings.TrimRight(c.opts.BaseURL, "/")

	full := base + "/" + strings.TrimLeft(path, "/")
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		full = path
	}

	parsed, err := url.Parse(full)
	if err != nil {
		return "", fmt.Errorf("invalid request URL %q: %w", full, err)
	}

	if len(params) > 0 {
		query := parsed.Query()
		for key, values := range params {
			for _, value := range values {
				query.Add(key, value)
			}
		}

		parsed.RawQuery = query.Encode()
	}

	return parsed.String(), nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}

	return 0
}
