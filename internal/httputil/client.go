// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the shared HTTP fetch client.
//
// Every resolver performs exactly one fetch per identifier and reports the
// outcome without retrying, so the client here is deliberately single-shot:
// timeouts, a descriptive User-Agent, redirect following and per-host rate
// limiting, nothing else.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultConnectTimeout bounds TCP connection establishment.
	DefaultConnectTimeout = 5 * time.Second

	// DefaultTimeout bounds the whole request, body included.
	DefaultTimeout = 15 * time.Second

	// DefaultUserAgent identifies us politely to registrars and publishers.
	DefaultUserAgent = "Mozilla/5.0 (compatible; bibfetch/0.1; +https://github.com/pdiddy/bibfetch)"

	// maxBodyBytes caps how much of a response we read. Registrar records
	// and HTML heads fit comfortably; runaway bodies do not.
	maxBodyBytes = 8 << 20
)

// Client is the fetch collaborator handed to every resolver. It is safe for
// concurrent use; the harness shares one instance across all workers so the
// per-host rate limiter actually limits.
type Client struct {
	http      *http.Client
	userAgent string
	limiter   *HostLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRateLimit enables per-host rate limiting at rps requests per second.
// Zero or negative disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = NewHostLimiter(rps)
		} else {
			c.limiter = nil
		}
	}
}

// NewClient returns a Client with the default timeouts, User-Agent and
// per-host rate limit.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: DefaultConnectTimeout,
				}).DialContext,
			},
		},
		userAgent: DefaultUserAgent,
		limiter:   NewHostLimiter(DefaultRequestsPerSecond),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Response is a fully read HTTP response.
type Response struct {
	// FinalURL is the request URL after redirects.
	FinalURL *url.URL
	Status   int
	Header   http.Header
	Body     string
}

// ContentType returns the lowercased Content-Type header.
func (r *Response) ContentType() string {
	return strings.ToLower(r.Header.Get("Content-Type"))
}

// Get performs a single GET. Extra headers (for content negotiation) may be
// nil. Redirects are followed; the returned Response carries the final URL.
// A non-2xx status is an error.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	if c.limiter != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
		}
		if err := c.limiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for name, values := range header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	return &Response{
		FinalURL: resp.Request.URL,
		Status:   resp.StatusCode,
		Header:   resp.Header,
		Body:     string(body),
	}, nil
}
