// Package httpclient implements ports.CourseRepository against the course
// service's REST API.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/syllabus/internal/logging"
	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/aretw0/syllabus/pkg/ports"
)

// CoursesPath is the collection endpoint courses are created on.
const CoursesPath = "/coursetobuy/"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// ErrMissingID is returned when the service accepts a course but its
// response carries no id.
var ErrMissingID = errors.New("course repository response has no id")

// Client posts course payloads to the course service.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// Ensure Client implements ports.CourseRepository
var _ ports.CourseRepository = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithTimeout bounds each request. Zero keeps the current timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client = &http.Client{Timeout: d, Transport: c.client.Transport}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the service rooted at baseURL,
// e.g. "http://localhost:8000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// createResponse accepts both flat and enveloped ids, numeric or string.
type createResponse struct {
	ID   json.RawMessage `json:"id"`
	Data *struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

type errorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Error   string `json:"error"`
}

// CreateCourse posts the payload and returns the id the service assigned.
func (c *Client) CreateCourse(ctx context.Context, payload domain.CoursePayload) (ports.CourseRef, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return ports.CourseRef{}, fmt.Errorf("encode course payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+CoursesPath, bytes.NewReader(body))
	if err != nil {
		return ports.CourseRef{}, fmt.Errorf("build create course request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return ports.CourseRef{}, fmt.Errorf("create course request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ports.CourseRef{}, c.serviceError(resp)
	}

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ports.CourseRef{}, fmt.Errorf("decode create course response: %w", err)
	}

	id := rawID(out.ID)
	if id == "" && out.Data != nil {
		id = rawID(out.Data.ID)
	}
	if id == "" {
		return ports.CourseRef{}, ErrMissingID
	}

	c.logger.Debug("course created", "course_id", id, "status", resp.StatusCode)
	return ports.CourseRef{ID: id}, nil
}

func (c *Client) serviceError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	svcErr := &ports.ServiceError{
		Status: resp.StatusCode,
		Err:    fmt.Errorf("create course returned %s", resp.Status),
	}

	var body errorResponse
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case strings.TrimSpace(body.Message) != "":
			svcErr.Message = body.Message
		case strings.TrimSpace(body.Detail) != "":
			svcErr.Message = body.Detail
		case strings.TrimSpace(body.Error) != "":
			svcErr.Message = body.Error
		}
	}

	c.logger.Warn("course service rejected payload", "status", resp.StatusCode, "message", svcErr.Message)
	return svcErr
}

// rawID renders a JSON string or number id as text.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
