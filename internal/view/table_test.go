package view

import (
	"encoding/json"
	"strconv"
	"testing"

	"clubweb/internal/models"
)

func posts(n int) []models.Post {
	out := make([]models.Post, n)
	for i := range out {
		out[i] = models.Post{ID: i + 1, Title: "t" + strconv.Itoa(i+1), Category: "Notice", Author: "kim", CreatedAt: "2025-09-26T10:00:00Z"}
	}
	return out
}

func TestNewTableRowsAndNav(t *testing.T) {
	tbl := NewTable(TableProps{
		Rows:        posts(5),
		CurrentPage: 1,
		TotalPages:  3,
		BasePath:    "/notice",
		Title:       "Notice",
	})
	if len(tbl.Rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(tbl.Rows))
	}
	if r := tbl.Rows[0]; r.Href != "/notice/1" || r.Date != "2025-09-26" {
		t.Fatalf("row = %+v", r)
	}
	if len(tbl.Pages) != 3 || !tbl.Pages[0].Current || tbl.Pages[2].Href != "/notice?page=3" {
		t.Fatalf("pages = %+v", tbl.Pages)
	}
	if !tbl.Prev.Disabled || tbl.Next.Disabled {
		t.Fatalf("prev=%+v next=%+v", tbl.Prev, tbl.Next)
	}
	if tbl.Next.Href != "/notice?page=2" {
		t.Fatalf("next href = %q", tbl.Next.Href)
	}
	if tbl.Empty != "" {
		t.Fatalf("empty = %q with rows present", tbl.Empty)
	}
}

func TestNewTableLastAndSinglePage(t *testing.T) {
	tbl := NewTable(TableProps{Rows: posts(2), CurrentPage: 3, TotalPages: 3, BasePath: "/notice"})
	if tbl.Prev.Disabled || !tbl.Next.Disabled {
		t.Fatalf("last page: prev=%+v next=%+v", tbl.Prev, tbl.Next)
	}

	tbl = NewTable(TableProps{Rows: posts(1), CurrentPage: 1, TotalPages: 0, BasePath: "/notice"})
	if len(tbl.Pages) != 1 || !tbl.Prev.Disabled || !tbl.Next.Disabled {
		t.Fatalf("single page: %+v", tbl)
	}

	tbl = NewTable(TableProps{CurrentPage: 7, TotalPages: 2, BasePath: "/notice"})
	if !tbl.Pages[1].Current {
		t.Fatalf("current page not clamped: %+v", tbl.Pages)
	}
}

func TestNewTableEmpty(t *testing.T) {
	tbl := NewTable(TableProps{BasePath: "/support", EmptyMessage: "Nothing here."})
	if tbl.Empty != "Nothing here." || len(tbl.Rows) != 0 {
		t.Fatalf("table = %+v", tbl)
	}
	if tbl = NewTable(TableProps{BasePath: "/support"}); tbl.Empty != DefaultEmptyMessage {
		t.Fatalf("default empty = %q", tbl.Empty)
	}
}

func TestNewTableWriteButton(t *testing.T) {
	cases := []struct {
		show, loggedIn, want bool
	}{
		{true, true, true},
		{true, false, false},
		{false, true, false},
		{false, false, false},
	}
	for _, c := range cases {
		tbl := NewTable(TableProps{BasePath: "/notice", ShowWriteButton: c.show, LoggedIn: c.loggedIn})
		if tbl.ShowWrite != c.want {
			t.Errorf("show=%v loggedIn=%v: ShowWrite=%v", c.show, c.loggedIn, tbl.ShowWrite)
		}
		if tbl.WriteHref != "/notice/write" {
			t.Errorf("write href = %q", tbl.WriteHref)
		}
	}
}

func TestNewTableCustomPageURL(t *testing.T) {
	tbl := NewTable(TableProps{
		CurrentPage: 2,
		TotalPages:  2,
		PageURL:     func(n int) string { return "/reference?seminar=" + strconv.Itoa(n) },
	})
	if tbl.Prev.Href != "/reference?seminar=1" {
		t.Fatalf("prev href = %q", tbl.Prev.Href)
	}
}

func TestNewDataTable(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"date":"2025-03-04T09:00:00Z","assignedUsers":[{"name":"Kim"},{"name":"Lee"}]}`),
		json.RawMessage(`{"date":"2025-03-11","assignedUsers":[]}`),
		json.RawMessage(`"not a row"`),
	}
	tbl := NewDataTable(CleaningTable, raws)
	if len(tbl.Headers) != 2 || tbl.Dropped != 1 {
		t.Fatalf("table = %+v", tbl)
	}
	if got := tbl.Rows[0]; got[0] != "2025-03-04" || got[1] != "Kim, Lee" {
		t.Fatalf("row 0 = %v", got)
	}
	if got := tbl.Rows[1][1]; got != "Unassigned" {
		t.Fatalf("row 1 name = %q", got)
	}

	empty := NewDataTable(LibraryTable, nil)
	if empty.Empty == "" || len(empty.Rows) != 0 {
		t.Fatalf("empty table = %+v", empty)
	}
}
