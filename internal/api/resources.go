package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Resource names a plain collection endpoint rendered as a data table.
type Resource string

const (
	Library   Resource = "library"
	Fees      Resource = "fees"
	Cleanings Resource = "cleanings"
)

func (c *Client) ListEvents(ctx context.Context) ([]json.RawMessage, error) {
	q := url.Values{"page": {"1"}, "limit": {"100"}}
	body, header, err := c.do(ctx, http.MethodGet, "/api/events", q, nil)
	if err != nil {
		return nil, err
	}
	l, err := decodeList(body, header, "events", "items", "data")
	return l.Items, err
}

func (c *Client) ListGallery(ctx context.Context) ([]json.RawMessage, error) {
	body, header, err := c.do(ctx, http.MethodGet, "/api/gallery", nil, nil)
	if err != nil {
		return nil, err
	}
	l, err := decodeList(body, header, "gallery", "items", "images", "data")
	return l.Items, err
}

func (c *Client) ListResource(ctx context.Context, r Resource) ([]json.RawMessage, error) {
	body, header, err := c.do(ctx, http.MethodGet, "/api/"+string(r), nil, nil)
	if err != nil {
		return nil, err
	}
	l, err := decodeList(body, header, string(r), "items", "rows", "data")
	return l.Items, err
}
