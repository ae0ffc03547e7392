// Package api is the HTTP client for the assignment moderation endpoints.
//
// All requests share one cookie jar seeded with the user's session and CSRF
// cookies. Unsafe requests to the site carry the anti-forgery header.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Cookie and header names used by the site.
const (
	SessionCookieName = "sessionid"
	CSRFCookieName    = "csrftoken"
	CSRFHeaderName    = "X-CSRFToken"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// MaxBodySize caps how much of a response body is read (10MB).
const MaxBodySize = 10 * 1024 * 1024

// ErrUnexpectedStatus matches any *StatusError with errors.Is.
var ErrUnexpectedStatus = errors.New("unexpected status")

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets errors.Is(err, ErrUnexpectedStatus) match.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Client talks to one site.
type Client struct {
	base      *url.URL
	http      *http.Client
	jar       http.CookieJar
	logger    *slog.Logger
	userAgent string
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	timeout   time.Duration
	session   string
	csrf      string
	logger    *slog.Logger
	transport http.RoundTripper
	userAgent string
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithSession seeds the session and CSRF cookies for the site.
func WithSession(sessionID, csrfToken string) Option {
	return func(o *clientOptions) {
		o.session = sessionID
		o.csrf = csrfToken
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithTransport replaces the underlying round tripper. The CSRF transport
// still wraps it.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.transport = rt }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) { o.userAgent = ua }
}

// New creates a client for the site at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	o := clientOptions{
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
		transport: http.DefaultTransport,
		userAgent: "sv",
	}
	for _, opt := range opts {
		opt(&o)
	}

	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("parse base url: %q is not absolute", baseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	var cookies []*http.Cookie
	if o.session != "" {
		cookies = append(cookies, &http.Cookie{Name: SessionCookieName, Value: o.session, Path: "/"})
	}
	if o.csrf != "" {
		cookies = append(cookies, &http.Cookie{Name: CSRFCookieName, Value: o.csrf, Path: "/"})
	}
	if len(cookies) > 0 {
		jar.SetCookies(base, cookies)
	}

	return &Client{
		base: base,
		http: &http.Client{
			Timeout:   o.timeout,
			Jar:       jar,
			Transport: NewCSRFTransport(o.transport, jar, base),
		},
		jar:       jar,
		logger:    o.logger,
		userAgent: o.userAgent,
	}, nil
}

// BaseURL returns the site root.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// URL resolves a site path and query against the base URL.
func (c *Client) URL(path string, query url.Values) string {
	u := c.base.ResolveReference(&url.URL{Path: path})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// do sends req and returns the body of a 2xx response.
func (c *Client) do(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", req.Method, "url", req.URL.String(), "error", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", req.URL.Path, err)
	}
	c.logger.Debug("request",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method:     req.Method,
			URL:        req.URL.Path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}
	return body, nil
}

// errorMessage extracts the {"error": "..."} or {"detail": "..."} message
// the site returns on failures.
func errorMessage(body []byte) string {
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Detail
}
