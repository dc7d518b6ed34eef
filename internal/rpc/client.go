package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// PlaceholderEndpoint is the unconfigured endpoint value shipped in sample
// configuration. It is treated the same as an empty endpoint.
const PlaceholderEndpoint = "YOUR_GOOGLE_APPS_SCRIPT_WEB_APP_URL_HERE"

// maxErrorBody caps how much of a non-2xx body is kept for diagnostics.
const maxErrorBody = 4096

// Caller performs one remote procedure call and decodes its result into out.
// out may be nil when the result is not needed.
type Caller interface {
	Call(ctx context.Context, action Action, payload any, out any) error
}

// Client dispatches actions to the configured endpoint, or to a local
// Service when no endpoint is configured.
type Client struct {
	endpoint string
	http     *http.Client
	local    Service
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for remote calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithFallback sets the Service used when no endpoint is configured.
func WithFallback(svc Service) Option {
	return func(c *Client) {
		c.local = svc
	}
}

// WithLogger sets the logger for failed calls.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client for endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimSpace(endpoint),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether a real endpoint is set.
func (c *Client) Configured() bool {
	return IsConfigured(c.endpoint)
}

// IsConfigured reports whether endpoint names a real backend rather than
// being empty or the placeholder.
func IsConfigured(endpoint string) bool {
	endpoint = strings.TrimSpace(endpoint)
	return endpoint != "" && endpoint != PlaceholderEndpoint
}

// Mode describes where calls are routed: "http" or "mock".
func (c *Client) Mode() string {
	if c.Configured() {
		return "http"
	}
	return "mock"
}

// Call implements Caller.
func (c *Client) Call(ctx context.Context, action Action, payload any, out any) error {
	err := c.call(ctx, action, payload, out)
	if err != nil {
		c.logger.Warn("rpc call failed", "action", action, "mode", c.Mode(), "error", err)
	}
	return err
}

func (c *Client) call(ctx context.Context, action Action, payload any, out any) error {
	body, err := encodeRequest(action, payload)
	if err != nil {
		return &CommunicationError{Action: action, Err: fmt.Errorf("encode request: %w", err)}
	}

	if !c.Configured() {
		if c.local == nil {
			return &CommunicationError{Action: action, Err: ErrNoEndpoint}
		}
		return c.callLocal(ctx, action, body, out)
	}
	return c.callHTTP(ctx, action, body, out)
}

func (c *Client) callLocal(ctx context.Context, action Action, body []byte, out any) error {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return &CommunicationError{Action: action, Err: fmt.Errorf("decode request: %w", err)}
	}

	resp := Dispatch(ctx, c.local, req)
	if err := ctx.Err(); err != nil {
		return &CommunicationError{Action: action, Err: err}
	}
	return decodeResult(action, resp, out)
}

func (c *Client) callHTTP(ctx context.Context, action Action, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &CommunicationError{Action: action, Err: err}
	}
	// text/plain keeps the request "simple" for cross-origin deployments.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return &CommunicationError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &CommunicationError{Action: action, Err: &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   strings.TrimSpace(string(text)),
		}}
	}

	var envelope Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &CommunicationError{Action: action, Err: fmt.Errorf("resposta inválida (JSON): %w", err)}
	}
	return decodeResult(action, envelope, out)
}

func encodeRequest(action Action, payload any) ([]byte, error) {
	req := Request{Action: string(action)}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		req.Payload = raw
	}
	return json.Marshal(req)
}

func decodeResult(action Action, resp Response, out any) error {
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "Ocorreu um erro desconhecido na API."
		}
		return &ApplicationError{Action: action, Message: msg}
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return &CommunicationError{Action: action, Err: fmt.Errorf("resposta inválida (JSON): %w", err)}
	}
	return nil
}
