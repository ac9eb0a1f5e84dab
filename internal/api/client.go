// Package api is the HTTP client for the club's REST backend.
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
)

var (
	ErrNotFound     = errors.New("api: not found")
	ErrUnauthorized = errors.New("api: unauthorized")
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: %s %s: http %d: %s", e.Method, e.Path, e.Code, e.Message)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	}
	return false
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	token string
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithToken returns a client that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) do(ctx context.Context, method, apiPath string, q url.Values, in any) ([]byte, http.Header, error) {
	fullURL := c.BaseURL + apiPath
	if len(q) > 0 {
		fullURL += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("api: %s %s: %w", method, apiPath, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("api: %s %s: read body: %w", method, apiPath, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &StatusError{Method: method, Path: apiPath, Code: resp.StatusCode, Message: errorMessage(resp.StatusCode, b)}
	}
	return b, resp.Header.Clone(), nil
}

// errorMessage prefers the backend's {"message": ...} body, then plain text.
func errorMessage(status int, body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		var m struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(body, &m); err == nil {
			if m.Message != "" {
				return m.Message
			}
			if m.Error != "" {
				return m.Error
			}
		}
	}
	if len(body) > 0 && len(body) < 512 && body[0] != '<' {
		return string(body)
	}
	return http.StatusText(status)
}

// object decodes a single-object response; JSON null reports ErrNotFound.
func object(body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, ErrNotFound
	}
	return json.RawMessage(body), nil
}

// unwrap returns the value under the first present key of an object response, or
// the body itself when none is present.
func unwrap(body []byte, keys ...string) (json.RawMessage, error) {
	raw, err := object(body)
	if err != nil {
		return nil, err
	}
	if raw[0] != '{' {
		return raw, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return object(v)
		}
	}
	return raw, nil
}
