// api — типизированный HTTP-клиент удалённого API историй.
//
// Клиент не хранит состояния сессии: токен передаётся в каждую операцию явно.
// Экземпляр Client безопасен для конкурентного использования.
//
// Ошибки: любой не-2xx ответ и транспортный сбой возвращаются как *Error,
// классифицированный sentinel-ошибками пакета (см. errors.go).
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
	"strconv"
	"strings"
)

// maxErrorBody — предел чтения тела ошибки.
const maxErrorBody = 64 << 10

// Client — клиент удалённого API.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет http.Client целиком.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTransport задаёт RoundTripper (обычно цепочку из пакета transport).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.http = &http.Client{Transport: rt}
		}
	}
}

// New создаёт клиента для API по адресу baseURL (например, https://hack-or-snooze-v3.herokuapp.com).
func New(baseURL string, opts ...Option) (*Client, error) {
	const op = "api/client/New"

	if baseURL == "" {
		return nil, fmt.Errorf("%s: empty base url", op)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: parse base url: %w", op, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: base url must be absolute: %q", op, baseURL)
	}

	u.Path = strings.TrimRight(u.Path, "/")

	c := &Client{base: u, http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ListStories возвращает до limit самых свежих историй в порядке сервера. Без авторизации.
func (c *Client) ListStories(ctx context.Context, limit int) ([]StoryRecord, error) {
	const op = "api/client/ListStories"

	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var out storiesResponse
	if err := c.do(ctx, op, opRead, http.MethodGet, c.endpoint(q, "stories"), nil, &out); err != nil {
		return nil, err
	}

	return out.Stories, nil
}

// CreateStory публикует историю от имени владельца token и возвращает
// каноническое представление сервера (с назначенными storyId/createdAt).
func (c *Client) CreateStory(ctx context.Context, token string, in NewStory) (StoryRecord, error) {
	const op = "api/client/CreateStory"

	body := createStoryRequest{Token: token, Story: in}

	var out storyResponse
	if err := c.do(ctx, op, opWrite, http.MethodPost, c.endpoint(nil, "stories"), body, &out); err != nil {
		return StoryRecord{}, err
	}

	return out.Story, nil
}

// DeleteStory удаляет историю storyID.
func (c *Client) DeleteStory(ctx context.Context, token, storyID string) error {
	const op = "api/client/DeleteStory"

	return c.do(ctx, op, opWrite, http.MethodDelete, c.endpoint(nil, "stories", storyID), tokenRequest{Token: token}, nil)
}

// Signup регистрирует пользователя и возвращает профиль и выданный токен.
func (c *Client) Signup(ctx context.Context, username, password, name string) (UserRecord, string, error) {
	const op = "api/client/Signup"

	body := authRequest{User: credentials{Username: username, Password: password, Name: name}}

	var out authResponse
	if err := c.do(ctx, op, opSignup, http.MethodPost, c.endpoint(nil, "signup"), body, &out); err != nil {
		return UserRecord{}, "", err
	}

	return out.User, out.Token, nil
}

// Login аутентифицирует пользователя и возвращает профиль и выданный токен.
func (c *Client) Login(ctx context.Context, username, password string) (UserRecord, string, error) {
	const op = "api/client/Login"

	body := authRequest{User: credentials{Username: username, Password: password}}

	var out authResponse
	if err := c.do(ctx, op, opLogin, http.MethodPost, c.endpoint(nil, "login"), body, &out); err != nil {
		return UserRecord{}, "", err
	}

	return out.User, out.Token, nil
}

// UserByName читает профиль пользователя; token передаётся query-параметром.
func (c *Client) UserByName(ctx context.Context, token, username string) (UserRecord, error) {
	const op = "api/client/UserByName"

	q := url.Values{}
	q.Set("token", token)

	var out userResponse
	if err := c.do(ctx, op, opRead, http.MethodGet, c.endpoint(q, "users", username), nil, &out); err != nil {
		return UserRecord{}, err
	}

	return out.User, nil
}

// AddFavorite добавляет storyID в избранное пользователя username.
func (c *Client) AddFavorite(ctx context.Context, token, username, storyID string) error {
	const op = "api/client/AddFavorite"

	u := c.endpoint(nil, "users", username, "favorites", storyID)
	return c.do(ctx, op, opWrite, http.MethodPost, u, tokenRequest{Token: token}, nil)
}

// RemoveFavorite убирает storyID из избранного пользователя username.
func (c *Client) RemoveFavorite(ctx context.Context, token, username, storyID string) error {
	const op = "api/client/RemoveFavorite"

	u := c.endpoint(nil, "users", username, "favorites", storyID)
	return c.do(ctx, op, opWrite, http.MethodDelete, u, tokenRequest{Token: token}, nil)
}

// endpoint собирает абсолютный URL из экранированных сегментов пути.
func (c *Client) endpoint(q url.Values, segments ...string) string {
	u := *c.base

	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}

	u.Path = c.base.Path + "/" + strings.Join(segments, "/")
	u.RawPath = c.base.Path + "/" + strings.Join(escaped, "/")

	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// do выполняет запрос: JSON-тело на входе, JSON-декодирование при 2xx в out (если out != nil).
func (c *Client) do(ctx context.Context, op string, kind opKind, method, target string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}

		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: ErrNetwork, Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Op:      op,
			Status:  resp.StatusCode,
			Message: readErrorMessage(resp.Body),
			Kind:    classify(kind, resp.StatusCode),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Kind: ErrNetwork, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}

// readErrorMessage вытаскивает message из тела ошибки API; пустая строка, если тело иное.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}

	return env.Error.Message
}

// unwrapURLError снимает *url.Error, чтобы errors.Is видел context.DeadlineExceeded и т.п.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}

	return err
}
