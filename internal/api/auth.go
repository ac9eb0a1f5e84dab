package api

import (
	"context"
	"encoding/json"
	"net/http"
)

type LoginResult struct {
	Message string
	Token   string
	Role    string
	User    json.RawMessage
}

type loginResponse struct {
	Message     string          `json:"message"`
	AccessToken string          `json:"accessToken"`
	Token       string          `json:"token"`
	Role        string          `json:"role"`
	User        json.RawMessage `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	in := map[string]string{"email": email, "password": password}
	body, _, err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, in)
	if err != nil {
		return LoginResult{}, err
	}
	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return LoginResult{}, err
	}
	res := LoginResult{Message: lr.Message, Token: lr.AccessToken, Role: lr.Role, User: lr.User}
	if res.Token == "" {
		res.Token = lr.Token
	}
	if res.Token == "" {
		return LoginResult{}, &StatusError{Method: http.MethodPost, Path: "/api/auth/login", Code: http.StatusBadGateway, Message: "login response carried no token"}
	}
	return res, nil
}

type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
	Major     string `json:"major"`
	Class     string `json:"class"`
}

// Register submits a membership application and returns the backend's message.
func (c *Client) Register(ctx context.Context, r Registration) (string, error) {
	body, _, err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, r)
	if err != nil {
		return "", err
	}
	var resp struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &resp)
	return resp.Message, nil
}
