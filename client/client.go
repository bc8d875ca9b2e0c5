// Package client talks to the task tracker REST API and keeps a local board of tasks
// for presentation code.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/gofiber/fiber/v2"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Unwrap maps 400 and 404 replies onto the domain sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case fiber.StatusBadRequest:
		return domain.ErrValidation
	case fiber.StatusNotFound:
		return domain.ErrNotFound
	default:
		return nil
	}
}

// Client calls the REST surface under baseURL.
type Client struct {
	baseURL string
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request. Context deadlines shorter than this win.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a client for the server at baseURL, e.g. "http://localhost:4000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches tasks. A zero Query returns every task in insertion order.
func (c *Client) List(ctx context.Context, q domain.Query) ([]domain.Task, error) {
	params := url.Values{}
	if q.Status != "" && q.Status != domain.StatusAll {
		params.Set("status", string(q.Status))
	}
	if q.Search != "" {
		params.Set("q", q.Search)
	}
	if q.Sort != "" && q.Sort != domain.SortNone {
		params.Set("sort", string(q.Sort))
	}

	path := "/api/tasks"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var tasks []domain.Task
	if err := c.do(ctx, fiber.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// Create posts a new task.
func (c *Client) Create(ctx context.Context, draft domain.Draft) (domain.Task, error) {
	var created domain.Task
	if err := c.do(ctx, fiber.MethodPost, "/api/tasks", draft, &created); err != nil {
		return domain.Task{}, err
	}
	return created, nil
}

// Update sends a partial update.
func (c *Client) Update(ctx context.Context, id int64, patch domain.Patch) (domain.Task, error) {
	var updated domain.Task
	if err := c.do(ctx, fiber.MethodPut, taskPath(id), patch, &updated); err != nil {
		return domain.Task{}, err
	}
	return updated, nil
}

// Toggle flips completion on the server. The reply's Completed is nil when the server
// did not report the new state.
func (c *Client) Toggle(ctx context.Context, id int64) (domain.ToggleReply, error) {
	var reply domain.ToggleReply
	if err := c.do(ctx, fiber.MethodPatch, taskPath(id)+"/toggle", nil, &reply); err != nil {
		return domain.ToggleReply{}, err
	}
	return reply, nil
}

// Delete removes a task. Deleting an unknown id succeeds.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, fiber.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id int64) string {
	return "/api/tasks/" + strconv.FormatInt(id, 10)
}

func (c *Client) newAgent(method, uri string) *fiber.Agent {
	switch method {
	case fiber.MethodPost:
		return fiber.Post(uri)
	case fiber.MethodPut:
		return fiber.Put(uri)
	case fiber.MethodPatch:
		return fiber.Patch(uri)
	case fiber.MethodDelete:
		return fiber.Delete(uri)
	default:
		return fiber.Get(uri)
	}
}

// do performs one request, decoding a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	agent := c.newAgent(method, c.baseURL+path).Timeout(timeout)
	if body != nil {
		agent.JSON(body)
	}

	status, data, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s %s: %w", method, path, errors.Join(errs...))
	}

	if status < 200 || status >= 300 {
		apiErr := &APIError{Status: status}
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Code = payload.Error
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
