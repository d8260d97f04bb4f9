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
	"time"

	"github.com/saurabh-eg/Tasksync/internal/model"
)

// ErrUnauthorized — сервер ответил 401: токен протух или невалиден.
// Для вызывающего это сигнал разлогиниться.
var ErrUnauthorized = errors.New("api: unauthorized")

// APIError — любой другой неуспешный ответ сервера
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Client — HTTP-клиент к серверу Tasksync. Сам никуда не ходит по своей
// инициативе: каждый вызов делает UI-слой, а результат он же отдаёт в кэш.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken — bearer-токен для аутентифицированных вызовов
func (c *Client) SetToken(token string) { c.token = token }
func (c *Client) ClearToken()           { c.token = "" }

// TokenResponse — ответ register/login
type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        model.User `json:"user"`
}

// TaskCreate — тело запроса на создание задачи
type TaskCreate struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// ListOptions — параметры листинга, пустые значения не отправляются
type ListOptions struct {
	Filter model.StatusFilter
	Search string
	SortBy model.SortField
	Order  model.SortOrder
}

func (c *Client) Register(ctx context.Context, email, password, name string) (TokenResponse, error) {
	var resp TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"email": email, "password": password, "name": name,
	}, &resp)
	return resp, err
}

func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	var resp TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, &resp)
	return resp, err
}

func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u)
	return u, err
}

func (c *Client) ListTasks(ctx context.Context, opts ListOptions) ([]model.Task, error) {
	q := url.Values{}
	switch opts.Filter {
	case model.FilterCompleted:
		q.Set("completed", "true")
	case model.FilterPending:
		q.Set("completed", "false")
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.SortBy != "" {
		q.Set("sort_by", string(opts.SortBy))
	}
	if opts.Order != "" {
		q.Set("order", string(opts.Order))
	}
	path := "/api/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var tasks []model.Task
	err := c.do(ctx, http.MethodGet, path, nil, &tasks)
	return tasks, err
}

func (c *Client) CreateTask(ctx context.Context, req TaskCreate) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", req, &t)
	return t, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, upd model.TaskUpdate) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), upd, &t)
	return t, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Stats(ctx context.Context) (model.TaskStats, error) {
	var st model.TaskStats
	err := c.do(ctx, http.MethodGet, "/api/tasks/stats/summary", nil, &st)
	return st, err
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
