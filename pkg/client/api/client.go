package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/campus-lab/campusboard/pkg/domain/model/auth"
	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/model/event"
	"github.com/campus-lab/campusboard/pkg/domain/model/feedback"
	"github.com/campus-lab/campusboard/pkg/domain/model/notice"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/campus-lab/campusboard/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

// Client talks to the board's remote service. Failures are tagged per the
// error taxonomy: transport problems TagTransient, 400 TagValidation with the
// server message, 404 TagNotFound, 401 TagUnauthorized. Retrying is always
// the caller's choice.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the credential attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody any) error {
	eb := goerr.NewBuilder(
		goerr.V("method", method),
		goerr.V("path", path),
	)

	var body io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return eb.Wrap(err, "failed to marshal request body")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return eb.Wrap(err, "failed to create request")
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eb.Wrap(err, "request to remote service failed", goerr.T(errs.TagTransient))
	}
	defer safe.Close(ctx, resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return eb.Wrap(err, "failed to read response body", goerr.T(errs.TagTransient))
	}
	eb = eb.With(goerr.V("status", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		msg := serverMessage(raw)
		switch resp.StatusCode {
		case http.StatusBadRequest:
			return eb.New(msg, goerr.T(errs.TagValidation))
		case http.StatusUnauthorized, http.StatusForbidden:
			return eb.New(msg, goerr.T(errs.TagUnauthorized))
		case http.StatusNotFound:
			return eb.New(msg, goerr.T(errs.TagNotFound))
		default:
			return eb.New(msg, goerr.T(errs.TagTransient))
		}
	}

	if respBody != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, respBody); err != nil {
			return eb.Wrap(err, "failed to parse response body", goerr.V("body", string(raw)))
		}
	}
	return nil
}

// serverMessage extracts the human-readable message from an error response,
// falling back to the raw body. Validation messages are surfaced verbatim.
func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	if len(raw) > 0 {
		return strings.TrimSpace(string(raw))
	}
	return "remote service error"
}

// ListNotices fetches the authoritative notice list, newest created first.
func (c *Client) ListNotices(ctx context.Context) (notice.Notices, error) {
	var out notice.Notices
	if err := c.do(ctx, http.MethodGet, "/api/notices", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateNoticeInput is the POST /api/notices body. Author must be the email
// of a known user or the server rejects the submission with 400.
type CreateNoticeInput struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Category string         `json:"category"`
	Priority types.Priority `json:"priority"`
	ImageURL string         `json:"imageUrl,omitempty"`
	Author   string         `json:"author"`
}

func (c *Client) CreateNotice(ctx context.Context, input CreateNoticeInput) (*notice.Notice, error) {
	var out notice.Notice
	if err := c.do(ctx, http.MethodPost, "/api/notices", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteNotice removes a notice. A 404 means the notice is already gone and
// is treated as success.
func (c *Client) DeleteNotice(ctx context.Context, id types.NoticeID) error {
	err := c.do(ctx, http.MethodDelete, "/api/notices/"+id.String(), nil, nil)
	if goerr.HasTag(err, errs.TagNotFound) {
		return nil
	}
	return err
}

func (c *Client) ListEvents(ctx context.Context) (event.Events, error) {
	var out event.Events
	if err := c.do(ctx, http.MethodGet, "/api/events", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type CreateEventInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Type        types.EventType `json:"type"`
}

func (c *Client) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	var out event.Event
	if err := c.do(ctx, http.MethodPost, "/api/events", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id types.EventID) error {
	err := c.do(ctx, http.MethodDelete, "/api/events/"+id.String(), nil, nil)
	if goerr.HasTag(err, errs.TagNotFound) {
		return nil
	}
	return err
}

type SubmitFeedbackInput struct {
	Rating   int    `json:"rating"`
	Category string `json:"category"`
	Feedback string `json:"feedback"`
}

func (c *Client) SubmitFeedback(ctx context.Context, input SubmitFeedbackInput) (*feedback.Feedback, error) {
	var out feedback.Feedback
	if err := c.do(ctx, http.MethodPost, "/api/feedback", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*auth.Credential, error) {
	body := map[string]string{"email": email, "password": password}
	return c.authRequest(ctx, "/api/auth/login", body)
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*auth.Credential, error) {
	body := map[string]string{"email": email, "password": password, "name": name}
	return c.authRequest(ctx, "/api/auth/register", body)
}

// GoogleLogin exchanges a Google access token for a board credential.
func (c *Client) GoogleLogin(ctx context.Context, credential string) (*auth.Credential, error) {
	body := map[string]string{"credential": credential}
	return c.authRequest(ctx, "/api/auth/google", body)
}

func (c *Client) authRequest(ctx context.Context, path string, body any) (*auth.Credential, error) {
	var out auth.Credential
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, goerr.New(out.Message, goerr.T(errs.TagUnauthorized))
	}
	c.token = out.Token
	return &out, nil
}
