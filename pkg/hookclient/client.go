package hookclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/infinitewater/bucket/pkg/refill"
)

// SecretHeader must match the server's shared-secret header.
const SecretHeader = "X-Hook-Secret"

// Client talks to the host bridge.
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

// Config holds configuration for the client.
type Config struct {
	BaseURL    string
	Secret     string
	HTTPClient *http.Client // Optional (default: 10s timeout)
}

// Decision is the bridge's answer to an item-use event.
type Decision struct {
	Amount int           `json:"amount"`
	Reason refill.Reason `json:"reason"`
}

// New creates a client for the bridge at cfg.BaseURL.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		secret:     cfg.Secret,
		httpClient: hc,
	}
}

// ItemUse sends one consumption event and returns the bridge's decision.
func (c *Client) ItemUse(ctx context.Context, event refill.ConsumptionEvent) (Decision, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return Decision{}, fmt.Errorf("encode event: %w", err)
	}
	var d Decision
	if err := c.do(ctx, http.MethodPost, "/hooks/item-use", body, &d); err != nil {
		return Decision{}, err
	}
	return d, nil
}

// Grant gives actorID the named permission.
func (c *Client) Grant(ctx context.Context, actorID, name string) error {
	return c.do(ctx, http.MethodPut, permissionPath(actorID, name), nil, nil)
}

// Revoke removes the named permission from actorID.
func (c *Client) Revoke(ctx context.Context, actorID, name string) error {
	return c.do(ctx, http.MethodDelete, permissionPath(actorID, name), nil, nil)
}

// Reload asks the bridge to re-read the plugin configuration.
func (c *Client) Reload(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/config/reload", nil, nil)
}

func permissionPath(actorID, name string) string {
	return "/permissions/" + url.PathEscape(actorID) + "/" + url.PathEscape(name)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bridge returned %d: %s", e.Code, e.Body)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.secret != "" {
		req.Header.Set(SecretHeader, c.secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
