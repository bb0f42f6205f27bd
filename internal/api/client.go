// Package api is the REST adapter for the PostPrep backend. All requests go
// through one dispatch path with a fixed base path, cookie-carried
// credentials, and a single 401 interceptor.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"postprep-cli/internal/app"

	"github.com/google/uuid"
)

// BasePath is prefixed to every endpoint path.
const BasePath = "/api/v1"

type Client struct {
	base    *url.URL
	http    *http.Client
	jar     *persistentJar
	logger  *app.Logger
	refresh bool

	mu               sync.Mutex
	loginActive      func() bool
	onSessionExpired func()
}

// New builds a client for cfg.BaseURL. The cookie file lives under
// cfg.StorageDir; the session cookie is attached by the transport and never
// touched by application code.
func New(cfg app.Config, logger *app.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	jar, err := newPersistentJar(filepath.Join(cfg.StorageDir, "cookies.json"), base)
	if err != nil {
		return nil, err
	}

	return &Client{
		base: base,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
			Jar:     jar,
		},
		jar:     jar,
		logger:  logger,
		refresh: cfg.RefreshOnUnauthorized,
	}, nil
}

// SetLoginActive wires the "is the login view currently showing" probe the
// interceptor uses to avoid redirect loops.
func (c *Client) SetLoginActive(fn func() bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loginActive = fn
}

// SetSessionExpiredHandler wires what happens when the interceptor gives up:
// the handler clears the session store and navigates to the login view.
func (c *Client) SetSessionExpiredHandler(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSessionExpired = fn
}

// ClearCredentials drops the stored session cookie. Called on logout.
func (c *Client) ClearCredentials() {
	c.jar.Clear()
}

func (c *Client) isLoginActive() bool {
	c.mu.Lock()
	fn := c.loginActive
	c.mu.Unlock()
	return fn != nil && fn()
}

func (c *Client) expire() {
	c.mu.Lock()
	fn := c.onSessionExpired
	c.mu.Unlock()
	c.jar.Clear()
	if fn != nil {
		fn()
	}
}

// do dispatches one request and applies the 401 interceptor. payload is a
// byte slice rather than a reader so the interceptor can replay the body on
// its single permitted retry.
func (c *Client) do(ctx context.Context, method, path, contentType string, payload []byte, out interface{}) error {
	status, body, err := c.send(ctx, method, path, contentType, payload)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && !isAuthPath(path) {
		if c.isLoginActive() {
			// Already on the login view: no refresh, no redirect, the
			// error just propagates.
			return statusError(status, body)
		}
		if c.refresh {
			if rerr := c.refreshSession(ctx); rerr == nil {
				status, body, err = c.send(ctx, method, path, contentType, payload)
				if err != nil {
					return err
				}
				if status != http.StatusUnauthorized {
					return c.finish(status, body, out)
				}
				// One retry per original request; a second 401 is final.
			} else {
				c.logger.Warn("silent session refresh failed", map[string]interface{}{"error": rerr.Error()})
			}
		}
		c.expire()
		return fmt.Errorf("%s %s: %w", method, path, ErrSessionExpired)
	}

	return c.finish(status, body, out)
}

func (c *Client) finish(status int, body []byte, out interface{}) error {
	if status < 200 || status >= 300 {
		return statusError(status, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := decodeJSON(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path, contentType string, payload []byte) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+BasePath+path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// refreshSession renews the session cookie. It bypasses do so a failing
// refresh can never trigger another refresh.
func (c *Client) refreshSession(ctx context.Context) error {
	status, body, err := c.send(ctx, http.MethodPost, "/auth/refresh", "application/json", nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return statusError(status, body)
	}
	return nil
}

// isAuthPath exempts the auth endpoints themselves from interception: a 401
// from login is bad credentials, not an expired session.
func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/auth/")
}
