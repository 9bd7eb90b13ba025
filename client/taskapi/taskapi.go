// Package taskapi is an HTTP client for the todo service.
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Task is a task as the service returns it.
type Task struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	IsComplete bool   `json:"isComplete"`
}

// Changes is a partial update. Nil fields are not sent.
type Changes struct {
	Text       *string `json:"text,omitempty"`
	IsComplete *bool   `json:"isComplete,omitempty"`
}

// Page is one page of tasks. NextCursor is empty on the last page.
type Page struct {
	Tasks      []Task
	NextCursor string
}

// Token is a bearer credential.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Option overrides a default at construction.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// Client talks to one service base URL, e.g. http://localhost:8080/api/v1.
type Client struct {
	base *url.URL
	http *http.Client
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		base: u,
		http: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches the page starting at cursor, or the first page when cursor
// is empty. A pageSize of zero uses the server default.
func (c *Client) List(ctx context.Context, token, cursor string, pageSize int) (Page, error) {
	q := url.Values{}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	if cursor != "" {
		q.Set("pageToken", cursor)
	}

	var tasks []Task
	resp, err := c.do(ctx, http.MethodGet, "/tasks", q, token, nil, &tasks)
	if err != nil {
		return Page{}, err
	}
	if tasks == nil {
		tasks = []Task{}
	}

	return Page{
		Tasks:      tasks,
		NextCursor: nextCursor(resp.Header.Get("Link")),
	}, nil
}

func (c *Client) Create(ctx context.Context, token, text string, isComplete bool) (Task, error) {
	body := struct {
		Text       string `json:"text"`
		IsComplete bool   `json:"isComplete"`
	}{text, isComplete}

	var task Task
	if _, err := c.do(ctx, http.MethodPost, "/tasks", nil, token, body, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

func (c *Client) Update(ctx context.Context, token, id string, changes Changes) (Task, error) {
	var task Task
	if _, err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), nil, token, changes, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

func (c *Client) Delete(ctx context.Context, token, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, token, nil, nil)
	return err
}

// SignUp registers an account.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	_, err := c.do(ctx, http.MethodPost, "/users", nil, "", body, nil)
	return err
}

// SignIn trades credentials for a token.
func (c *Client) SignIn(ctx context.Context, email, password string) (Token, error) {
	body := map[string]string{"email": email, "password": password}

	var tok Token
	if _, err := c.do(ctx, http.MethodPost, "/auth/token", nil, "", body, &tok); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// Refresh trades a token, which may have expired, for a fresh one.
func (c *Client) Refresh(ctx context.Context, token string) (Token, error) {
	var tok Token
	if _, err := c.do(ctx, http.MethodPost, "/auth/token", nil, token, nil, &tok); err != nil {
		return Token{}, err
	}
	return tok, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, in, out any) (*http.Response, error) {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = query.Encode()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, statusError(resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("decode response: %w", err)
		}
	}

	return resp, nil
}

func statusError(resp *http.Response) error {
	se := &StatusError{StatusCode: resp.StatusCode}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &body) == nil {
		se.Code = body.Code
		se.Message = body.Message
	}

	return se
}

// nextCursor extracts the pageToken of the rel="next" target of a Link
// header.
func nextCursor(link string) string {
	for _, part := range strings.Split(link, ",") {
		target, params, ok := strings.Cut(strings.TrimSpace(part), ";")
		if !ok || !isNext(params) {
			continue
		}

		target = strings.TrimSpace(target)
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}

		u, err := url.Parse(target[1 : len(target)-1])
		if err != nil {
			continue
		}
		return u.Query().Get("pageToken")
	}
	return ""
}

func isNext(params string) bool {
	for _, p := range strings.Split(params, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(k), "rel") {
			continue
		}
		for _, rel := range strings.Fields(strings.Trim(strings.TrimSpace(v), `"`)) {
			if strings.EqualFold(rel, "next") {
				return true
			}
		}
	}
	return false
}
