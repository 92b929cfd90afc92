// Package api is the HTTP client for the upstream donate shop REST API.
//
// Every call returns a *Response envelope and never panics or returns a bare
// error: transport failures, non-2xx statuses and undecodable bodies are all
// mapped to Success=false with a Kind. A 401 clears the stored session token
// and triggers the OnUnauthorized hook.
package api

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
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/donate-storefront/internal/pkg/i18n"
	"github.com/your-org/donate-storefront/internal/pkg/logger"
)

// DefaultTimeout bounds every request when Options.Timeout is zero
const DefaultTimeout = 10 * time.Second

// TokenStore holds the session bearer token
type TokenStore interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// Options configures a Client
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	HTTPClient     *http.Client
	Tokens         TokenStore
	OnUnauthorized func()
	Logger         logrus.FieldLogger
}

// Client talks to the upstream API on behalf of one session
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenStore
	onUnauthorized func()
	log            logrus.FieldLogger
}

// NewClient creates a new API client
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	tokens := opts.Tokens
	if tokens == nil {
		tokens = &MemoryTokens{}
	}

	log := opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		httpClient:     httpClient,
		tokens:         tokens,
		onUnauthorized: opts.OnUnauthorized,
		log:            log,
	}
}

// Tokens returns the token store used by the client
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// SetOnUnauthorized replaces the 401 hook
func (c *Client) SetOnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        interface{}
	rawBody     io.Reader
	contentType string
}

func do[T any](ctx context.Context, c *Client, req request) *Response[T] {
	started := time.Now()

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return Fail[T](KindNetwork, 0, err.Error())
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.APICall(c.log, req.method, req.path, 0, time.Since(started))
		return Fail[T](KindNetwork, 0, transportMessage(err))
	}
	defer resp.Body.Close()

	logger.APICall(c.log, req.method, req.path, resp.StatusCode, time.Since(started))

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Fail[T](KindNetwork, resp.StatusCode, transportMessage(err))
	}

	var envelope Response[T]
	decodeErr := json.Unmarshal(body, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := envelope.Error
		if decodeErr != nil || message == "" {
			message = envelope.Message
		}
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return Fail[T](kindForStatus(resp.StatusCode), resp.StatusCode, message)
	}

	if decodeErr != nil {
		return Fail[T](KindDecode, resp.StatusCode, fmt.Sprintf("invalid response body: %v", decodeErr))
	}

	envelope.StatusCode = resp.StatusCode
	if !envelope.Success {
		envelope.Kind = KindValidation
		if envelope.Error == "" {
			envelope.Error = envelope.Message
		}
		if envelope.Error == "" {
			envelope.Error = i18n.T("errors.generic")
		}
	}
	return &envelope
}

func (c *Client) newRequest(ctx context.Context, req request) (*http.Request, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	body := req.rawBody
	contentType := req.contentType
	if body == nil && req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	token, err := c.tokens.LoadToken(ctx)
	if err != nil {
		c.log.WithError(err).Warn("Failed to load session token")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return httpReq, nil
}

func (c *Client) handleUnauthorized(ctx context.Context) {
	if err := c.tokens.ClearToken(ctx); err != nil {
		c.log.WithError(err).Warn("Failed to clear session token")
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

func transportMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return i18n.T("errors.timeout")
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return i18n.T("errors.timeout")
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return i18n.T("errors.generic")
}

// MemoryTokens is an in-process TokenStore
type MemoryTokens struct {
	mu    sync.RWMutex
	token string
}

func (m *MemoryTokens) LoadToken(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryTokens) SaveToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokens) ClearToken(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
