package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// List is a decoded collection response. Total and TotalPages are nil when the
// backend did not report a usable value.
type List struct {
	Items      []json.RawMessage
	Total      *int
	TotalPages *int
}

// decodeList accepts a bare array, or an object holding the rows under one of keys
// with counts either in a "pagination" object or at the top level. An X-Total-Count
// header fills in a missing total.
func decodeList(body []byte, header http.Header, keys ...string) (List, error) {
	var l List
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return l, nil
	}
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &l.Items); err != nil {
			return l, fmt.Errorf("api: decode list: %w", err)
		}
	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(body, &m); err != nil {
			return l, fmt.Errorf("api: decode list: %w", err)
		}
		for _, k := range keys {
			raw, ok := m[k]
			if !ok {
				continue
			}
			raw = bytes.TrimSpace(raw)
			if bytes.Equal(raw, []byte("null")) {
				break
			}
			if err := json.Unmarshal(raw, &l.Items); err != nil {
				return l, fmt.Errorf("api: decode list %q: %w", k, err)
			}
			break
		}
		if raw, ok := m["pagination"]; ok {
			var p map[string]json.RawMessage
			if err := json.Unmarshal(raw, &p); err == nil {
				l.TotalPages = intField(p, "totalPages", "total_pages")
				l.Total = intField(p, "total", "totalCount", "total_count")
			}
		}
		if l.TotalPages == nil {
			l.TotalPages = intField(m, "totalPages", "total_pages")
		}
		if l.Total == nil {
			l.Total = intField(m, "totalCount", "total", "total_count")
		}
	default:
		return l, fmt.Errorf("api: decode list: unexpected %q", body[:1])
	}
	if l.Total == nil && header != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(header.Get("X-Total-Count"))); err == nil && n >= 0 {
			l.Total = &n
		}
	}
	return l, nil
}

func intField(m map[string]json.RawMessage, keys ...string) *int {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var n int
		if err := json.Unmarshal(raw, &n); err == nil {
			return &n
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				return &n
			}
		}
	}
	return nil
}
