// Package cloudsync pulls the user's data from the cloud at startup and
// pushes local state back on demand and on a timer.
package cloudsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taskreward/internal/auth"
	"taskreward/internal/cloud"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrDisabled    = errors.New("cloud sync is not configured")
)

// APIError is a non-2xx reply from the auth or data endpoint.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cloud: http %d", e.Status)
	}
	return fmt.Sprintf("cloud: http %d: %s", e.Status, e.Message)
}

// Unauthorized reports whether the token was rejected.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

type Client struct {
	authURL string
	dataURL string
	http    *http.Client
}

func NewClient(authURL, dataURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		authURL: strings.TrimSpace(authURL),
		dataURL: strings.TrimSpace(dataURL),
		http:    &http.Client{Timeout: timeout},
	}
}

type AuthResult struct {
	User  auth.User `json:"user"`
	Token string    `json:"token"`
}

func (c *Client) Register(ctx context.Context, email, password, username string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, c.authURL, "", map[string]any{
		"action":   "register",
		"email":    email,
		"password": password,
		"username": username,
	}, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, c.authURL, "", map[string]any{
		"action":   "login",
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

func (c *Client) Verify(ctx context.Context, token string) (auth.User, error) {
	var out struct {
		User auth.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, c.authURL, token, map[string]any{"action": "verify"}, &out)
	return out.User, err
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, c.authURL, token, map[string]any{"action": "logout"}, nil)
}

func (c *Client) Pull(ctx context.Context, token string) (cloud.DataResponse, error) {
	var out cloud.DataResponse
	err := c.do(ctx, http.MethodGet, c.dataURL, token, nil, &out)
	return out, err
}

func (c *Client) Push(ctx context.Context, token string, req cloud.SyncRequest) error {
	return c.do(ctx, http.MethodPost, c.dataURL, token, req, nil)
}

func (c *Client) do(ctx context.Context, method, url, token string, in, out any) error {
	if url == "" {
		return fmt.Errorf("cloud: endpoint not configured")
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cloud request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
