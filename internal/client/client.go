// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/jeranaias/guideweave-tui/internal/assets"
)

// Configuration constants for the GuideWeave backend.
const (
	// ChatPath is the backend route that answers queries.
	ChatPath = "/api/chat"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 60 * time.Second

	// ProbeTimeout bounds a single image probe.
	ProbeTimeout = 5 * time.Second

	// ProbeRate and ProbeBurst limit image probes per second. One answer
	// can reference many images.
	ProbeRate  = 8
	ProbeBurst = 4

	userAgent = "guideweave-tui/1.0"
)

// Inference modes the backend accepts as an override.
const (
	ModeCloud = "CLOUD"
	ModeLocal = "LOCAL"
)

// Error variables for transport failures.
var (
	// ErrConnection indicates the request never produced an HTTP response.
	ErrConnection = errors.New("connection failed")

	// ErrEmptyQuery indicates Chat was called with a blank query.
	ErrEmptyQuery = errors.New("empty query")

	// ErrInvalidMode indicates an unknown inference mode.
	ErrInvalidMode = errors.New("invalid mode")
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("backend error (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, body)
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Query string `json:"query"`
	Mode  string `json:"mode,omitempty"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the GuideWeave backend over HTTP.
type Client struct {
	baseURL string
	mode    string
	timeout time.Duration
	http    *resty.Client
	probes  *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMode sets the inference mode sent with every query.
func WithMode(mode string) Option {
	return func(c *Client) {
		c.mode = NormalizeMode(mode)
	}
}

// New creates a client for the backend at baseURL. An empty baseURL uses
// the default origin.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = assets.DefaultBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		timeout: DefaultTimeout,
		probes:  rate.NewLimiter(rate.Limit(ProbeRate), ProbeBurst),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http = resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(c.timeout)
	return c
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Mode returns the configured inference mode, or "" for the backend default.
func (c *Client) Mode() string {
	return c.mode
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Chat posts query to the backend and returns the raw 2xx response body.
// Transport failures wrap ErrConnection; non-2xx answers are *StatusError.
func (c *Client) Chat(ctx context.Context, query string) ([]byte, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(ChatRequest{Query: query, Mode: c.mode}).
		Post(ChatPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, &StatusError{Status: resp.StatusCode(), Body: resp.String()}
	}
	return resp.Body(), nil
}

// ProbeImage checks that the image at url can be fetched. Servers that
// refuse HEAD are retried with GET. Probes share one rate limiter.
func (c *Client) ProbeImage(ctx context.Context, url string) error {
	if url == "" {
		return fmt.Errorf("%w: empty image url", ErrConnection)
	}

	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	if err := c.probes.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	resp, err := c.http.R().SetContext(ctx).Head(url)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	if resp.StatusCode() == http.StatusMethodNotAllowed {
		resp, err = c.http.R().SetContext(ctx).SetDoNotParseResponse(true).Get(url)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConnection, err)
		}
		if body := resp.RawBody(); body != nil {
			body.Close()
		}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return &StatusError{Status: resp.StatusCode()}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// NormalizeMode upper-cases mode. Unknown modes are returned as given so
// that ValidateMode can report them.
func NormalizeMode(mode string) string {
	m := strings.ToUpper(strings.TrimSpace(mode))
	switch m {
	case "", ModeCloud, ModeLocal:
		return m
	default:
		return strings.TrimSpace(mode)
	}
}

// ValidateMode reports whether mode is empty or a known inference mode.
func ValidateMode(mode string) error {
	switch NormalizeMode(mode) {
	case "", ModeCloud, ModeLocal:
		return nil
	default:
		return fmt.Errorf("%w %q (want %s or %s)", ErrInvalidMode, mode, ModeCloud, ModeLocal)
	}
}

// IsConnectionError reports whether err is any transport failure.
func IsConnectionError(err error) bool {
	var se *StatusError
	return errors.Is(err, ErrConnection) || errors.As(err, &se)
}
