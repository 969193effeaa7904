package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/feelsunbreeze/spps_tui/internal/config"
	"github.com/feelsunbreeze/spps_tui/internal/logging"
)

// Client talks to the SPPS backend. The session travels in cookies held by
// the client's jar; mutating requests echo the CSRF cookie back as a header.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	jar        *sessionJar
	csrfCookie string
	csrfHeader string
	logger     *zap.Logger

	mu             sync.RWMutex
	onUnauthorized func()
}

// NewClient creates a new SPPS API client.
func NewClient(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.API.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}

	jar, err := newSessionJar()
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: base,
		jar:     jar,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: cfg.Timeout(),
		},
		csrfCookie: cfg.CSRF.CookieName,
		csrfHeader: cfg.CSRF.HeaderName,
		logger:     logging.OrNop(logger).Named("api"),
	}, nil
}

// OnUnauthorized registers the hook run whenever the backend answers 401.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Cookies returns the session cookies the jar holds for the backend.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

// SetCookies restores previously saved session cookies.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.jar.SetCookies(c.baseURL, cookies)
}

// ClearCookies drops every cookie, ending the local session.
func (c *Client) ClearCookies() {
	c.jar.reset()
}

// CSRFToken returns the anti-forgery cookie value, or "" when none is set.
func (c *Client) CSRFToken() string {
	for _, cookie := range c.Cookies() {
		if cookie.Name == c.csrfCookie {
			return cookie.Value
		}
	}
	return ""
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if isMutating(method) {
		if token := c.CSRFToken(); token != "" {
			req.Header.Set(c.csrfHeader, token)
		}
		req.Header.Set("Referer", c.baseURL.Scheme+"://"+c.baseURL.Host+"/")
	}
	return req, nil
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// do sends req and decodes a 2xx JSON body into out (when out is non-nil).
// 401 runs the unauthorized hook; other failures come back as *APIError.
func (c *Client) do(req *http.Request, out any) error {
	log := c.logger.With(
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", req.Header.Get("X-Request-ID")),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Failed to reach backend", zap.Error(err))
		return fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response", zap.Error(err))
		return fmt.Errorf("failed to read response: %w", err)
	}

	log.Debug("Backend responded", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(body)))

	if resp.StatusCode == http.StatusUnauthorized {
		log.Warn("Session rejected by backend")
		c.mu.RLock()
		hook := c.onUnauthorized
		c.mu.RUnlock()
		if hook != nil {
			hook()
		}
		return newAPIError(resp, body)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp, body)
		log.Error("Backend returned error status", zap.Int("status", resp.StatusCode), zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		log.Error("Failed to decode response", zap.Error(err))
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, nil, body, contentType)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// listOf accepts both a bare JSON array and a paginated {"results": [...]}.
type listOf[T any] []T

func (l *listOf[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var page struct {
			Results []T `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return err
		}
		*l = page.Results
		return nil
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// sessionJar lets the session be dropped while requests may be in flight.
type sessionJar struct {
	mu  sync.Mutex
	jar *cookiejar.Jar
}

func newSessionJar() (*sessionJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &sessionJar{jar: jar}, nil
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

func (j *sessionJar) reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if jar, err := cookiejar.New(nil); err == nil {
		j.jar = jar
	}
}
