package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

type PostQuery struct {
	CategoryID int
	Page       int
	Limit      int
}

// ListPosts requests one page of posts of a category.
func (c *Client) ListPosts(ctx context.Context, pq PostQuery) (List, error) {
	q := url.Values{}
	if pq.CategoryID > 0 {
		q.Set("categoryId", strconv.Itoa(pq.CategoryID))
	}
	if pq.Page > 0 {
		q.Set("page", strconv.Itoa(pq.Page))
	}
	if pq.Limit > 0 {
		q.Set("limit", strconv.Itoa(pq.Limit))
	}
	body, header, err := c.do(ctx, http.MethodGet, "/api/posts", q, nil)
	if err != nil {
		return List{}, err
	}
	return decodeList(body, header, "posts", "items", "data")
}

func (c *Client) GetPost(ctx context.Context, id int) (json.RawMessage, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/api/posts/"+strconv.Itoa(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrap(body, "post", "data")
}

type NewPost struct {
	CategoryID int    `json:"categoryId"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

// CreatePost submits a post and returns the created object as the backend echoed it.
func (c *Client) CreatePost(ctx context.Context, p NewPost) (json.RawMessage, error) {
	q := url.Values{}
	if p.CategoryID > 0 {
		q.Set("categoryId", strconv.Itoa(p.CategoryID))
	}
	body, _, err := c.do(ctx, http.MethodPost, "/api/posts", q, p)
	if err != nil {
		return nil, err
	}
	return unwrap(body, "post", "data")
}
