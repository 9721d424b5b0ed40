// Package fetch provides the retrying HTTP primitive every upstream catalog
// call goes through. Transport failures and non-2xx statuses are retried
// with exponential backoff until the attempt budget is exhausted.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"reflect"
	"time"

	"github.com/avast/retry-go/v4"
)

// UpstreamError is returned once the retry budget is exhausted. It carries
// either the last HTTP status or the underlying transport cause.
type UpstreamError struct {
	StatusCode int
	Cause      error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch: upstream returned %d", e.StatusCode)
	}
	return fmt.Sprintf("fetch: upstream request failed: %v", e.Cause)
}

func (e *UpstreamError) Unwrap() error { return e.Cause }

// Options configures the retry schedule and the per-request timeout.
type Options struct {
	MaxAttempts  uint
	InitialDelay time.Duration
	Multiplier   int
	Timeout      time.Duration
	Logger       *log.Logger
}

// Client issues JSON GET requests with bounded retries. Backoff state is
// local to each call, so concurrent requests never delay one another.
type Client struct {
	httpClient   *http.Client
	maxAttempts  uint
	initialDelay time.Duration
	multiplier   int
	logger       *log.Logger
}

// NewClient constructs a retrying HTTP client. Zero option fields fall back
// to maxAttempts=3, initialDelay=1s, multiplier=2.
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay == 0 {
		opts.InitialDelay = time.Second
	}
	if opts.Multiplier < 1 {
		opts.Multiplier = 2
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		maxAttempts:  opts.MaxAttempts,
		initialDelay: opts.InitialDelay,
		multiplier:   opts.Multiplier,
		logger:       logger,
	}
}

// GetJSON issues a GET against endpoint, retrying failed attempts, and
// decodes the successful response body into out. Failure classes are not
// partitioned: 4xx responses are retried exactly like 5xx and transport
// errors, matching the upstream contract this service was built against.
func (c *Client) GetJSON(ctx context.Context, endpoint string, out interface{}) error {
	err := retry.Do(
		func() error {
			return c.attempt(ctx, endpoint, out)
		},
		retry.Context(ctx),
		retry.Attempts(c.maxAttempts),
		retry.Delay(c.initialDelay),
		retry.DelayType(c.backoff),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Printf("fetch: attempt %d failed for %s: %v", n+1, endpoint, err)
		}),
	)
	if err == nil {
		return nil
	}
	if _, ok := err.(*UpstreamError); ok {
		return err
	}
	// Context cancellation surfaces from retry.Do directly.
	return &UpstreamError{Cause: err}
}

func (c *Client) attempt(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return retry.Unrecoverable(&UpstreamError{Cause: err})
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{StatusCode: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{Cause: fmt.Errorf("read response: %w", err)}
	}
	// Decode into a fresh value and assign only on success, so a truncated
	// body on one attempt cannot leave stale fields behind when a later
	// attempt succeeds.
	fresh := reflect.New(reflect.TypeOf(out).Elem())
	if err := json.Unmarshal(body, fresh.Interface()); err != nil {
		return &UpstreamError{Cause: fmt.Errorf("decode response: %w", err)}
	}
	reflect.ValueOf(out).Elem().Set(fresh.Elem())
	return nil
}

// backoff yields initialDelay * multiplier^n before attempt n+2. There is no
// delay after the final attempt; retry-go only consults this between tries.
func (c *Client) backoff(n uint, _ error, _ *retry.Config) time.Duration {
	delay := c.initialDelay
	for i := uint(0); i < n; i++ {
		delay *= time.Duration(c.multiplier)
	}
	return delay
}
