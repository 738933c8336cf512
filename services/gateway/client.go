package gateway

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"ayurbook/utils"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CredentialSource yields the current auth token. The client reads it on
// every request and never keeps a copy.
type CredentialSource interface {
	Token() string
}

// UnauthorizedHandler is told when the server rejects the credential.
type UnauthorizedHandler interface {
	HandleUnauthorized()
}

// Navigator is the view router of the hosting UI.
type Navigator interface {
	CurrentView() string
	Redirect(view string)
}

// Client is the single point of outbound network access.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	Credentials    CredentialSource
	OnUnauthorized UnauthorizedHandler
	Navigator      Navigator
	AuthView       string
	Limiter        *rate.Limiter
	Events         *utils.Events
	Logger         *zap.Logger

	redirectMu sync.Mutex
}

// NewClient returns a client for baseURL with the given request timeout.
// maxPerMinute > 0 enables the outbound throttle.
func NewClient(baseURL string, timeout time.Duration, maxPerMinute int, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		AuthView:   "login",
		Logger:     logger,
	}
	if maxPerMinute > 0 {
		c.Limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxPerMinute)), maxPerMinute)
	}
	return c
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Do performs one request. Failures are returned as *APIError; nothing is retried.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return errors.Wrapf(err, "%s %s: throttled", method, path)
		}
	}

	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "%s %s: encode body", method, path)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errors.Wrapf(err, "%s %s: build request", method, path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Credentials != nil {
		if token := c.Credentials.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Wrapf(ctxErr, "%s %s", method, path)
		}
		c.Logger.Sugar().Warnf("[Gateway] %s %s unreachable: %v", method, path, err)
		return &APIError{Kind: KindNetwork, Method: method, Path: path, Message: "network unreachable", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: KindNetwork, Method: method, Path: path, Status: resp.StatusCode, Message: "incomplete response", Err: err}
	}
	c.Logger.Debug("[Gateway] request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		apiErr := classify(method, path, resp.StatusCode, raw)
		if apiErr.Kind == KindUnauthorized {
			c.handleUnauthorized()
		}
		c.Logger.Sugar().Infof("[Gateway] %s %s failed: %s", method, path, apiErr.Kind)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := decodeEnvelope(raw, out); err != nil {
		return &APIError{Kind: KindDecode, Method: method, Path: path, Status: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}

// handleUnauthorized clears the session and sends the user to the auth view
// unless they are already there.
func (c *Client) handleUnauthorized() {
	if c.OnUnauthorized != nil {
		c.OnUnauthorized.HandleUnauthorized()
	}
	c.Events.Publish(utils.TopicUnauthorized)

	if c.Navigator == nil {
		return
	}
	c.redirectMu.Lock()
	defer c.redirectMu.Unlock()
	if c.Navigator.CurrentView() == c.AuthView {
		return
	}
	c.Navigator.Redirect(c.AuthView)
}

// decodeEnvelope accepts either the bare document or {"data": document}.
func decodeEnvelope(raw []byte, out interface{}) error {
	var env struct {
		Data jsoniter.RawMessage `json:"data"`
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
			return json.Unmarshal(env.Data, out)
		}
	}
	return json.Unmarshal(trimmed, out)
}

// GetList fetches a collection that is served either as a JSON array or as
// {"items": [...]}.
func GetList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var raw jsoniter.RawMessage
	if err := c.Get(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, &APIError{Kind: KindDecode, Method: http.MethodGet, Path: path, Message: "malformed list", Err: err}
		}
		return items, nil
	}
	var env struct {
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, &APIError{Kind: KindDecode, Method: http.MethodGet, Path: path, Message: "malformed list", Err: err}
	}
	if env.Items == nil {
		env.Items = []T{}
	}
	return env.Items, nil
}

// PathEscape escapes an id for use as a path segment.
func PathEscape(id string) string {
	return url.PathEscape(id)
}
