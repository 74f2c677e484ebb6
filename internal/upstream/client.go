// Package upstream talks to the third-party rate feeds.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sethvargo/go-retry"
)

const defaultUserAgent = "fx-rate-dashboard/1.0"

// maxErrorBody bounds how much of a failed response ends up in an error message.
const maxErrorBody = 512

var ErrStatusCode = errors.New("upstream http status is not 2xx")

// StatusError is returned for non-2xx answers.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status: %d: %v", e.StatusCode, ErrStatusCode)
	}
	return fmt.Sprintf("http status: %d, %s: %v", e.StatusCode, e.Body, ErrStatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrStatusCode
}

// Credentials are attached to outgoing requests when set.
type Credentials struct {
	BearerToken string
	OrgID       string
}

// Response is a raw upstream answer.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Option configures a Client.
type Option func(*Client)

// WithRetries sets how many times a failed request is retried.
func WithRetries(n uint64) Option {
	return func(c *Client) {
		c.retries = n
	}
}

// WithRetryDelay sets the constant delay between retries.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// Client performs GET requests against the rate feeds. Transport errors and
// 5xx answers are retried with a constant backoff.
type Client struct {
	client     *http.Client
	retries    uint64
	retryDelay time.Duration
}

// NewClient wraps an http.Client. A nil client gets one with the given timeout.
func NewClient(client *http.Client, opts ...Option) *Client {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	c := &Client{client: client, retryDelay: 500 * time.Millisecond}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the upstream answer whatever its status. Only transport
// failures are reported as errors; a 5xx that survives every retry is
// returned as a response.
func (c *Client) Fetch(ctx context.Context, rawURL string, creds Credentials) (*Response, error) {
	b, _ := retry.NewConstant(c.retryDelay)
	b = retry.WithMaxRetries(c.retries, b)

	var last *Response
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		resp, err := c.fetch(ctx, rawURL, creds)
		if err != nil {
			return retry.RetryableError(err)
		}
		last = resp
		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(&StatusError{StatusCode: resp.StatusCode, Body: snippet(resp.Body)})
		}
		return nil
	})
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && last != nil {
			return last, nil
		}
		return nil, err
	}
	return last, nil
}

// Get returns the body of a 2xx answer and a *StatusError otherwise.
func (c *Client) Get(ctx context.Context, rawURL string, creds Credentials) ([]byte, error) {
	resp, err := c.Fetch(ctx, rawURL, creds)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet(resp.Body)}
	}
	return resp.Body, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string, creds Credentials) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)
	if creds.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+creds.BearerToken)
	}
	if creds.OrgID != "" {
		req.Header.Set("orgid", creds.OrgID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		n := maxErrorBody
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		s = s[:n]
	}
	return s
}
