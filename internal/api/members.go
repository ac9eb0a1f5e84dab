package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

func (c *Client) ListMembers(ctx context.Context) ([]json.RawMessage, error) {
	body, header, err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, nil)
	if err != nil {
		return nil, err
	}
	l, err := decodeList(body, header, "users", "members", "items", "data")
	return l.Items, err
}

func (c *Client) SetMemberRole(ctx context.Context, id int, role string) error {
	_, _, err := c.do(ctx, http.MethodPatch, "/api/members/"+strconv.Itoa(id)+"/role", nil, map[string]string{"role": role})
	return err
}

func (c *Client) DeleteMember(ctx context.Context, id int) error {
	_, _, err := c.do(ctx, http.MethodDelete, "/api/members/"+strconv.Itoa(id), nil, nil)
	return err
}

type MyPage struct {
	User  json.RawMessage
	Posts []json.RawMessage
}

// MyPage loads the profile and authored posts of the token's owner.
func (c *Client) MyPage(ctx context.Context) (MyPage, error) {
	body, header, err := c.do(ctx, http.MethodGet, "/api/mypage", nil, nil)
	if err != nil {
		return MyPage{}, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return MyPage{}, fmt.Errorf("api: GET /api/mypage: expected an object")
	}
	var mp MyPage
	if user, err := unwrap(body, "user"); err == nil {
		mp.User = user
	}
	l, err := decodeList(body, header, "posts")
	if err != nil {
		return MyPage{}, err
	}
	mp.Posts = l.Items
	return mp, nil
}
