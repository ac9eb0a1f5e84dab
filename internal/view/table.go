// Package view builds the template view-models for board tables and data tables.
// Everything here is pure: no I/O, no session access.
package view

import (
	"strconv"

	"clubweb/internal/models"
)

const DefaultEmptyMessage = "No posts yet."

type TableProps struct {
	Rows            []models.Post
	CurrentPage     int
	TotalPages      int
	PageURL         func(page int) string
	BasePath        string
	Title           string
	ShowWriteButton bool
	LoggedIn        bool
	EmptyMessage    string
	Degraded        bool
}

type Row struct {
	ID       int
	Category string
	Title    string
	Href     string
	Author   string
	Date     string
}

type PageLink struct {
	Number  int
	Href    string
	Current bool
}

type Nav struct {
	Href     string
	Disabled bool
}

type Table struct {
	Title     string
	Rows      []Row
	Pages     []PageLink
	Prev      Nav
	Next      Nav
	ShowWrite bool
	WriteHref string
	// Empty is the message shown instead of the table; set iff Rows is empty.
	Empty    string
	Degraded bool
}

// NewTable builds the board table. CurrentPage and TotalPages are clamped so that
// 1 <= CurrentPage <= TotalPages.
func NewTable(p TableProps) Table {
	total := max(p.TotalPages, 1)
	cur := min(max(p.CurrentPage, 1), total)
	pageURL := p.PageURL
	if pageURL == nil {
		pageURL = func(n int) string { return p.BasePath + "?page=" + strconv.Itoa(n) }
	}

	t := Table{
		Title:     p.Title,
		Rows:      make([]Row, 0, len(p.Rows)),
		Pages:     make([]PageLink, 0, total),
		Prev:      Nav{Href: pageURL(max(cur-1, 1)), Disabled: cur == 1},
		Next:      Nav{Href: pageURL(min(cur+1, total)), Disabled: cur == total},
		ShowWrite: p.ShowWriteButton && p.LoggedIn,
		WriteHref: p.BasePath + "/write",
		Degraded:  p.Degraded,
	}
	for _, post := range p.Rows {
		date := post.Date
		if date == "" {
			date = models.NormalizeDate(post.CreatedAt)
		}
		t.Rows = append(t.Rows, Row{
			ID:       post.ID,
			Category: post.Category,
			Title:    post.Title,
			Href:     p.BasePath + "/" + strconv.Itoa(post.ID),
			Author:   post.Author,
			Date:     date,
		})
	}
	for n := 1; n <= total; n++ {
		t.Pages = append(t.Pages, PageLink{Number: n, Href: pageURL(n), Current: n == cur})
	}
	if len(t.Rows) == 0 {
		t.Empty = p.EmptyMessage
		if t.Empty == "" {
			t.Empty = DefaultEmptyMessage
		}
	}
	return t
}
