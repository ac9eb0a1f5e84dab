package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

func (c *Client) ListComments(ctx context.Context, postID int) ([]json.RawMessage, error) {
	body, header, err := c.do(ctx, http.MethodGet, "/api/posts/"+strconv.Itoa(postID)+"/comments", nil, nil)
	if err != nil {
		return nil, err
	}
	l, err := decodeList(body, header, "comments", "items", "data")
	return l.Items, err
}

type commentBody struct {
	Content string `json:"content"`
	Author  string `json:"author,omitempty"`
}

func (c *Client) CreateComment(ctx context.Context, postID int, author, content string) (json.RawMessage, error) {
	body, _, err := c.do(ctx, http.MethodPost, "/api/posts/"+strconv.Itoa(postID)+"/comments", nil, commentBody{Content: content, Author: author})
	if err != nil {
		return nil, err
	}
	return unwrap(body, "comment", "data")
}

func (c *Client) UpdateComment(ctx context.Context, id int, content string) error {
	_, _, err := c.do(ctx, http.MethodPut, "/api/comments/"+strconv.Itoa(id), nil, commentBody{Content: content})
	return err
}

func (c *Client) DeleteComment(ctx context.Context, id int) error {
	_, _, err := c.do(ctx, http.MethodDelete, "/api/comments/"+strconv.Itoa(id), nil, nil)
	return err
}
