package models

import (
	"strings"
	"time"
)

// Paging is the pagination state of one board listing.
//
// TotalPages is always at least 1 and CurrentPage always lies in [1, TotalPages].
// Degraded is set when the backend reported no usable count and TotalPages was
// inferred from the size of the current page.
type Paging struct {
	CurrentPage int
	TotalPages  int
	Total       int
	HasTotal    bool
	Degraded    bool
}

// NewPaging derives the paging state for a fetched page. totalPages wins over total;
// with neither, a full page implies that one more page may exist.
func NewPaging(page, limit int, total, totalPages *int, itemCount int) Paging {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	p := Paging{CurrentPage: page}
	switch {
	case totalPages != nil && *totalPages > 0:
		p.TotalPages = *totalPages
		if total != nil && *total >= 0 {
			p.Total, p.HasTotal = *total, true
		}
	case total != nil && *total >= 0:
		p.Total, p.HasTotal = *total, true
		p.TotalPages = (*total + limit - 1) / limit
	default:
		p.Degraded = true
		p.TotalPages = page
		if itemCount >= limit {
			p.TotalPages = page + 1
		}
	}
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}
	if p.CurrentPage > p.TotalPages {
		p.CurrentPage = p.TotalPages
	}
	return p
}

func (p Paging) HasPrev() bool { return p.CurrentPage > 1 }
func (p Paging) HasNext() bool { return p.CurrentPage < p.TotalPages }

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/1/2",
	"2006.1.2",
	"2006. 1. 2.",
	"2006. 1. 2",
}

// ParseDate reads a backend timestamp in any layout the site displays. A value
// whose first ten characters form a YYYY-MM-DD date parses as that day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate renders a backend timestamp as YYYY-MM-DD by truncation, whatever
// precision was supplied. Unparseable input renders as "-".
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 10 {
		if _, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return s[:10]
		}
	}
	if t, ok := ParseDate(s); ok {
		return t.Format("2006-01-02")
	}
	return "-"
}
