package rancher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to one Rancher environment with one API key pair.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// NewClient creates a client for the API rooted at baseURL
// (for example https://rancher.example.com).
func NewClient(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "ranchup",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FindStack resolves a stack by name. The first match is returned.
func (c *Client) FindStack(ctx context.Context, name string) (*Stack, error) {
	q := url.Values{"name": {name}}
	var stacks collection[Stack]
	if err := c.get(ctx, c.baseURL+"/v1/stacks?"+q.Encode(), &stacks); err != nil {
		return nil, err
	}
	if len(stacks.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrStackNotFound, name)
	}
	return &stacks.Data[0], nil
}

// FindService resolves a service by name, optionally scoped to a stack id.
//
// Names are assumed unique once scoped to a stack: when several services
// match, the first one returned by the platform is used.
func (c *Client) FindService(ctx context.Context, name, stackID string) (*Service, error) {
	q := url.Values{"name": {name}}
	if stackID != "" {
		q.Set("stackId", stackID)
	}
	var services collection[Service]
	if err := c.get(ctx, c.baseURL+"/v1/services?"+q.Encode(), &services); err != nil {
		return nil, err
	}
	if len(services.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	return &services.Data[0], nil
}

// GetService reads a service through its self link.
func (c *Client) GetService(ctx context.Context, selfURL string) (*Service, error) {
	var s Service
	if err := c.get(ctx, selfURL, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// StartUpgrade posts the upgrade body to the service's upgrade action.
func (c *Client) StartUpgrade(ctx context.Context, actionURL string, upgrade *ServiceUpgrade) (*ActionResult, error) {
	return c.action(ctx, actionURL, upgrade)
}

// FinishUpgrade posts to the service's finishupgrade action.
func (c *Client) FinishUpgrade(ctx context.Context, actionURL string) (*ActionResult, error) {
	return c.action(ctx, actionURL, nil)
}

// Rollback posts to the service's rollback action.
func (c *Client) Rollback(ctx context.Context, actionURL string) (*ActionResult, error) {
	return c.action(ctx, actionURL, nil)
}

func (c *Client) get(ctx context.Context, target string, out any) error {
	body, err := c.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Method: http.MethodGet, URL: target, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func (c *Client) action(ctx context.Context, target string, payload any) (*ActionResult, error) {
	if target == "" {
		return nil, &TransportError{Method: http.MethodPost, URL: target, Err: errors.New("empty action URL")}
	}

	var reqBody []byte
	if payload != nil {
		var err error
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	body, err := c.do(ctx, http.MethodPost, target, reqBody)
	if err != nil {
		return nil, err
	}

	result := &ActionResult{}
	if len(bytes.TrimSpace(body)) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, &TransportError{Method: http.MethodPost, URL: target, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return result, nil
}

// do performs the request and returns the body of a successful response.
// Error documents are returned as *PlatformError whatever their status.
func (c *Client) do(ctx context.Context, method, target string, reqBody []byte) ([]byte, error) {
	var r io.Reader
	if reqBody != nil {
		r = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Err: err}
	}
	req.SetBasicAuth(c.creds.AccessKey, c.creds.SecretKey)
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if pe := parsePlatformError(resp.StatusCode, body); pe != nil {
		return nil, pe
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Method: method, URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected response: %s", truncate(body, 200))}
	}

	return body, nil
}

func parsePlatformError(status int, body []byte) *PlatformError {
	var doc ActionResult
	if err := json.Unmarshal(body, &doc); err != nil || doc.Type != "error" {
		return nil
	}
	if doc.Status != 0 {
		status = doc.Status
	}
	return &PlatformError{
		Status:  status,
		Code:    doc.Code,
		Message: doc.Message,
		Body:    string(body),
	}
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
