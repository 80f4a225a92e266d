// Package api is the REST client for the collaboration server. Chat history
// seeding and HTTP-routed sends go through it; failures come back as
// *RequestError so callers can offer a retry.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"resty.dev/v3"

	"github.com/opsx/collab/shared/wire"
)

const defaultTimeout = 15 * time.Second

// RequestError describes a failed REST call.
type RequestError struct {
	Method string
	Path   string
	// Status is the HTTP status, or 0 when no response was received.
	Status int
	// Message is the server-provided error, if any.
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// Retryable reports whether repeating the request may succeed: transport
// failures, 429 and 5xx responses.
func (e *RequestError) Retryable() bool {
	return e.Status == 0 || e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// IsRetryable reports whether err is a retryable *RequestError.
func IsRetryable(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Retryable()
}

// Client talks to the /v1 REST API.
type Client struct {
	http *resty.Client
}

// Option customizes a Client.
type Option func(*resty.Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

// New returns a Client for baseURL authenticating with token.
func New(baseURL, token string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json")
	if token != "" {
		rc.SetAuthToken(token)
	}
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{http: rc}
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}

// GetChatMessages returns the chat history of a project, oldest first.
// limit <= 0 uses the server default.
func (c *Client) GetChatMessages(ctx context.Context, projectID string, limit int) ([]wire.ChatMessage, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return do[[]wire.ChatMessage](ctx, c, http.MethodGet, projectPath(projectID, "chat/messages"), query, nil)
}

// SendChatMessage posts a chat message. The server persists it and
// broadcasts it to the project room.
func (c *Client) SendChatMessage(ctx context.Context, projectID string, req wire.SendChatMessageRequest) (wire.ChatMessage, error) {
	return do[wire.ChatMessage](ctx, c, http.MethodPost, projectPath(projectID, "chat/message"), nil, req)
}

// GetAgents returns the agents of a project.
func (c *Client) GetAgents(ctx context.Context, projectID string) ([]wire.Agent, error) {
	return do[[]wire.Agent](ctx, c, http.MethodGet, projectPath(projectID, "agents"), nil, nil)
}

// UpdateAgentStatus reports an agent status change.
func (c *Client) UpdateAgentStatus(ctx context.Context, projectID, agentID string, req wire.UpdateAgentStatusRequest) (wire.Agent, error) {
	path := projectPath(projectID, "agents/"+url.PathEscape(agentID)+"/status")
	return do[wire.Agent](ctx, c, http.MethodPost, path, nil, req)
}

// ListStakeholders returns the stakeholders of a project.
func (c *Client) ListStakeholders(ctx context.Context, projectID string) ([]wire.Stakeholder, error) {
	return do[[]wire.Stakeholder](ctx, c, http.MethodGet, projectPath(projectID, "stakeholders"), nil, nil)
}

// CreateStakeholder adds a stakeholder to a project.
func (c *Client) CreateStakeholder(ctx context.Context, projectID string, req wire.CreateStakeholderRequest) (wire.Stakeholder, error) {
	return do[wire.Stakeholder](ctx, c, http.MethodPost, projectPath(projectID, "stakeholders"), nil, req)
}

func projectPath(projectID, rest string) string {
	return "/v1/projects/" + url.PathEscape(projectID) + "/" + rest
}

func do[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (T, error) {
	var zero T

	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	res, err := req.Execute(method, path)
	if err != nil {
		return zero, &RequestError{Method: method, Path: path, Err: err}
	}

	var envelope wire.APIResponse[T]
	decodeErr := json.Unmarshal([]byte(res.String()), &envelope)

	if res.IsError() {
		reqErr := &RequestError{Method: method, Path: path, Status: res.StatusCode()}
		if decodeErr == nil {
			reqErr.Message = firstNonEmpty(envelope.Error, envelope.Message)
		}
		return zero, reqErr
	}
	if decodeErr != nil {
		return zero, &RequestError{
			Method: method,
			Path:   path,
			Status: res.StatusCode(),
			Err:    fmt.Errorf("decode response: %w", decodeErr),
		}
	}
	if !envelope.Success {
		return zero, &RequestError{
			Method:  method,
			Path:    path,
			Status:  res.StatusCode(),
			Message: firstNonEmpty(envelope.Error, envelope.Message, "request failed"),
		}
	}
	return envelope.Data, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
