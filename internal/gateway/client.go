// Package gateway is the HTTP facade over the planner backend REST API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/plannerhq/planner/internal/observability"
	"github.com/plannerhq/planner/internal/output"
	"github.com/plannerhq/planner/internal/resilience"
	"github.com/plannerhq/planner/internal/version"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
	maxJitter          = 100 * time.Millisecond
)

// LoginChecker guards every call. auth.Manager implements it.
type LoginChecker interface {
	AssertLoggedIn(ctx context.Context) error
}

// TokenSource supplies the bearer token. auth.Manager implements it.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Authenticator is what the client needs from the auth layer.
type Authenticator interface {
	LoginChecker
	TokenSource
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Auth       Authenticator
	HTTPClient *http.Client
	Hooks      observability.Hooks
	Logger     *slog.Logger

	// Gate fails calls fast while the backend is down or throttling.
	// Nil disables gating.
	Gate *resilience.Gate

	// MaxAttempts bounds tries for idempotent requests; zero means the
	// default. BaseDelay is the first backoff step.
	MaxAttempts int
	BaseDelay   time.Duration
}

// Client talks to the backend.
type Client struct {
	baseURL     string
	auth        Authenticator
	http        *http.Client
	hooks       observability.Hooks
	logger      *slog.Logger
	gate        *resilience.Gate
	maxAttempts int
	baseDelay   time.Duration
}

// New builds a client from opts.
func New(opts Options) *Client {
	c := &Client{
		baseURL:     strings.TrimSuffix(opts.BaseURL, "/"),
		auth:        opts.Auth,
		http:        opts.HTTPClient,
		hooks:       opts.Hooks,
		logger:      opts.Logger,
		gate:        opts.Gate,
		maxAttempts: opts.MaxAttempts,
		baseDelay:   opts.BaseDelay,
	}
	if c.http == nil {
		c.http = &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if c.hooks == nil {
		c.hooks = observability.NopHooks{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = defaultMaxAttempts
	}
	if c.baseDelay <= 0 {
		c.baseDelay = defaultBaseDelay
	}
	return c
}

// call runs one logical operation: the login check, the HTTP exchange with
// retries, and decoding into out when out is non-nil.
func (c *Client) call(ctx context.Context, op observability.OperationInfo, method, path string, query url.Values, body, out any) (err error) {
	start := time.Now()
	ctx = c.hooks.OnOperationStart(ctx, op)
	defer func() {
		c.hooks.OnOperationEnd(ctx, op, err, time.Since(start))
	}()

	if c.auth != nil {
		if err := c.auth.AssertLoggedIn(ctx); err != nil {
			return err
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode %s body: %w", op, err)
		}
	}

	if c.gate != nil {
		if wait, err := c.gate.Enter(); err != nil {
			c.logger.DebugContext(ctx, "request gated", "op", op.String(), "wait", wait, "error", err)
			return gateError(err, wait)
		}
	}
	data, err := c.do(ctx, method, target, payload)
	if c.gate != nil {
		c.gate.Exit(outcome(err))
	}
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return output.ErrAPI(http.StatusOK, fmt.Sprintf("decode %s response: %v", op, err))
	}
	return nil
}

// do retries retryable failures for idempotent methods with exponential
// backoff. POST is never retried so a create cannot be applied twice.
func (c *Client) do(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	attempts := c.maxAttempts
	if method == http.MethodPost {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		data, err := c.once(ctx, method, target, payload, attempt)
		if err == nil {
			return data, nil
		}
		lastErr = err

		var apiErr *output.Error
		if !errors.As(err, &apiErr) || !apiErr.Retryable || attempt == attempts {
			return nil, err
		}

		delay := c.backoff(attempt)
		info := observability.RequestInfo{Method: method, URL: target, Attempt: attempt + 1}
		c.hooks.OnRetry(ctx, info, attempt+1, err)
		c.logger.DebugContext(ctx, "retrying request", "method", method, "url", target, "attempt", attempt+1, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return nil, output.ErrNetwork(ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, method, target string, payload []byte, attempt int) ([]byte, error) {
	info := observability.RequestInfo{Method: method, URL: target, Attempt: attempt}
	ctx = c.hooks.OnRequestStart(ctx, info)
	start := time.Now()

	data, status, err := c.send(ctx, method, target, payload)
	c.hooks.OnRequestEnd(ctx, info, observability.RequestResult{
		StatusCode: status,
		Duration:   time.Since(start),
		Retryable:  isRetryable(err),
		Error:      err,
	})
	return data, err
}

func (c *Client) send(ctx context.Context, method, target string, payload []byte) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.auth != nil {
		token, err := c.auth.AccessToken(ctx)
		if err != nil {
			return nil, 0, credentialError(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, output.ErrNetwork(err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, resp.StatusCode, nil
	}
	return nil, resp.StatusCode, statusError(resp, data, target)
}

// credentialError reports a local token failure as an auth error, so it is
// neither retried nor held against the backend.
func credentialError(err error) error {
	var authErr *output.Error
	if errors.As(err, &authErr) && authErr.Code == output.CodeAuth {
		return authErr
	}
	e := output.ErrAuth("Could not read credentials")
	e.Cause = err
	return e
}

// statusError maps a non-2xx response onto the output error taxonomy.
func statusError(resp *http.Response, body []byte, target string) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return output.ErrAuth("Authentication failed")
	case http.StatusForbidden:
		return output.ErrForbidden("Access denied")
	case http.StatusNotFound:
		return output.ErrNotFound("Resource", pathOf(target))
	case http.StatusTooManyRequests:
		return output.ErrRateLimit(parseRetryAfter(resp.Header.Get("Retry-After")))
	}

	msg := fmt.Sprintf("Request failed (HTTP %d)", resp.StatusCode)
	var problem struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(body, &problem) == nil {
		for _, m := range []string{problem.Detail, problem.Message, problem.Error} {
			if m != "" {
				msg = m
				break
			}
		}
	}
	return output.ErrAPI(resp.StatusCode, msg)
}

// outcome classifies err for the gate. Client errors mean the backend is
// up.
func outcome(err error) (resilience.Outcome, time.Duration) {
	if err == nil {
		return resilience.Succeeded, 0
	}
	var apiErr *output.Error
	if !errors.As(err, &apiErr) {
		return resilience.Failed, 0
	}
	switch {
	case apiErr.Code == output.CodeRateLimit:
		return resilience.Throttled, time.Duration(apiErr.RetryAfter) * time.Second
	case apiErr.Code == output.CodeNetwork, apiErr.HTTPStatus >= 500:
		return resilience.Failed, 0
	}
	return resilience.Succeeded, 0
}

func gateError(err error, wait time.Duration) error {
	seconds := int((wait + time.Second - 1) / time.Second)
	if errors.Is(err, resilience.ErrRateLimited) {
		return output.ErrRateLimit(seconds)
	}
	e := output.ErrNetwork(err)
	e.Message = "Backend unavailable"
	e.Hint = fmt.Sprintf("Too many failed requests; retrying in %d seconds", seconds)
	e.Retryable = false
	return e
}

func isRetryable(err error) bool {
	var apiErr *output.Error
	return errors.As(err, &apiErr) && apiErr.Retryable
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := c.baseDelay * time.Duration(1<<(attempt-1))
	return delay + time.Duration(rand.Int64N(int64(maxJitter))) //nolint:gosec // G404: jitter only
}

func parseRetryAfter(header string) int {
	if seconds, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && seconds > 0 {
		return seconds
	}
	return 0
}

func pathOf(target string) string {
	if u, err := url.Parse(target); err == nil {
		return u.Path
	}
	return target
}
