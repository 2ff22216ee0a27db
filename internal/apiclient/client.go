// Package apiclient talks to the task API over HTTP. It is the collaborator
// the task list views use for deleting and recategorizing tasks, and the
// board uses for loading them.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/s1natex/taskboard/internal/tasks"
)

var (
	ErrIDMismatch = errors.New("task carries conflicting _id and id")
	ErrMissingID  = errors.New("task carries no id")
)

// StatusError is returned by ListTasks when the API answers with a
// non-success status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("task api: status %d", e.Code)
	}
	return fmt.Sprintf("task api: status %d: %s", e.Code, e.Message)
}

type Client struct {
	base     *url.URL
	http     *http.Client
	apiKey   string
	bearer   string
	logger   *slog.Logger
	maxRetry time.Duration
	tracer   trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAPIKey sends key in the X-API-Key header on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithBearerToken sends Authorization: Bearer token on every request.
func WithBearerToken(token string) Option {
	return func(c *Client) { c.bearer = token }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRetry bounds the total time ListTasks spends retrying. Zero disables
// retries.
func WithRetry(maxElapsed time.Duration) Option {
	return func(c *Client) { c.maxRetry = maxElapsed }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: base url %q must be absolute", baseURL)
	}
	c := &Client{
		base:     u,
		http:     &http.Client{Timeout: 10 * time.Second},
		logger:   slog.Default(),
		maxRetry: 5 * time.Second,
		tracer:   otel.Tracer("taskboard/apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// wireTask accepts both id spellings the task API has used.
type wireTask struct {
	tasks.Task
	LegacyID string `json:"id"`
}

func (w wireTask) normalize() (tasks.Task, error) {
	t := w.Task
	switch {
	case t.ID == "" && w.LegacyID == "":
		return tasks.Task{}, ErrMissingID
	case t.ID == "":
		t.ID = w.LegacyID
	case w.LegacyID != "" && w.LegacyID != t.ID:
		return tasks.Task{}, fmt.Errorf("%w: _id=%q id=%q", ErrIDMismatch, t.ID, w.LegacyID)
	}
	return t, nil
}

type listResponse struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	Data    []wireTask `json:"data"`
}

// ListTasks fetches the tasks of one category in API order. Transport
// failures and 5xx answers are retried with exponential backoff.
func (c *Client) ListTasks(ctx context.Context, category tasks.Category) ([]tasks.Task, error) {
	ctx, span := c.tracer.Start(ctx, "apiclient.ListTasks",
		trace.WithAttributes(attribute.String("task.type", string(category))))
	defer span.End()

	q := url.Values{}
	if category != "" {
		q.Set("type", string(category))
	}

	op := func() (listResponse, error) {
		var out listResponse
		code, err := c.do(ctx, http.MethodGet, "/tasks", q, nil, &out)
		if err != nil {
			return out, err
		}
		if code >= 500 {
			return out, &StatusError{Code: code, Message: out.Message}
		}
		if code >= 300 || out.Status != tasks.StatusSuccess {
			return out, backoff.Permanent(&StatusError{Code: code, Message: out.Message})
		}
		return out, nil
	}

	resp, err := c.retry(ctx, op)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list %s tasks: %w", category, err)
	}

	list := make([]tasks.Task, 0, len(resp.Data))
	for _, w := range resp.Data {
		t, err := w.normalize()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("list %s tasks: %w", category, err)
		}
		list = append(list, t)
	}
	return list, nil
}

func (c *Client) retry(ctx context.Context, op backoff.Operation[listResponse]) (listResponse, error) {
	if c.maxRetry <= 0 {
		resp, err := op()
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Unwrap()
		}
		return resp, err
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(c.maxRetry),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.WarnContext(ctx, "task_api_retry",
				slog.String("error", err.Error()),
				slog.Duration("wait", wait),
			)
		}),
	)
}

// DeleteTask removes one task. An API-level failure comes back as a
// non-success Result with a nil error; only transport and decoding
// failures are errors. Mutations are never retried.
func (c *Client) DeleteTask(ctx context.Context, id string) (tasks.Result, error) {
	return c.mutate(ctx, "apiclient.DeleteTask", http.MethodDelete, id, nil)
}

// UpdateTask merges p into the task identified by id. Failure semantics
// match DeleteTask.
func (c *Client) UpdateTask(ctx context.Context, id string, p tasks.Patch) (tasks.Result, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return tasks.Result{}, fmt.Errorf("encode patch: %w", err)
	}
	return c.mutate(ctx, "apiclient.UpdateTask", http.MethodPatch, id, body)
}

func (c *Client) mutate(ctx context.Context, spanName, method, id string, body []byte) (tasks.Result, error) {
	ctx, span := c.tracer.Start(ctx, spanName, trace.WithAttributes(attribute.String("task.id", id)))
	defer span.End()

	var res tasks.Result
	code, err := c.do(ctx, method, "/tasks/"+url.PathEscape(id), nil, body, &res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return tasks.Result{}, err
	}
	span.SetAttributes(attribute.Int("http.status_code", code), attribute.String("task.result", res.Status))
	if code >= 300 && res.OK() {
		// A success body on an error status is not trusted.
		res = tasks.Result{Status: tasks.StatusError, Message: http.StatusText(code)}
	}
	if res.Status == "" {
		res.Status = tasks.StatusError
	}
	if !res.OK() {
		span.SetStatus(codes.Error, res.Message)
	}
	return res, nil
}

// do sends one request and decodes a JSON body into out. The status code
// is returned whenever a response arrived.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte, out any) (int, error) {
	u := c.base.JoinPath(path)
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if resp.StatusCode >= 500 {
			// Proxies and panics may answer with a non-JSON body.
			return resp.StatusCode, nil
		}
		return resp.StatusCode, fmt.Errorf("decode %s %s response (status %d): %w", method, path, resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}
