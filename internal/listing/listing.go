// Package listing loads board pages and single posts from the backend and shapes
// them for display.
package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"

	"clubweb/internal/api"
	"clubweb/internal/boards"
	"clubweb/internal/models"
)

const DefaultLimit = 5

// Poster is the part of the backend client the board pages need.
type Poster interface {
	ListPosts(ctx context.Context, q api.PostQuery) (api.List, error)
	GetPost(ctx context.Context, id int) (json.RawMessage, error)
	ListComments(ctx context.Context, postID int) ([]json.RawMessage, error)
}

type Controller struct {
	API    Poster
	Limit  int
	Logger *log.Logger
}

func New(p Poster, limit int, logger *log.Logger) *Controller {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Controller{API: p, Limit: limit, Logger: logger}
}

// Listing is one rendered page of a board. Err is a user-facing message; when it is
// set Posts is empty.
type Listing struct {
	Board  boards.Board
	Posts  []models.Post
	Paging models.Paging
	Err    string
}

func (l Listing) Empty() bool { return l.Err == "" && len(l.Posts) == 0 }

// Load fetches page of board. A page past a known last page is replaced by the last
// page.
func (c *Controller) Load(ctx context.Context, b boards.Board, page int) Listing {
	if page < 1 {
		page = 1
	}
	l, err := c.fetch(ctx, b, page)
	if err == nil && !l.Paging.Degraded && l.Paging.CurrentPage < page {
		l, err = c.fetch(ctx, b, l.Paging.CurrentPage)
	}
	if err != nil {
		c.logf("board %s page %d: %v", b.Key, page, err)
		return Listing{
			Board:  b,
			Paging: models.Paging{CurrentPage: 1, TotalPages: 1},
			Err:    failureMessage("The board", err),
		}
	}
	return l
}

func (c *Controller) fetch(ctx context.Context, b boards.Board, page int) (Listing, error) {
	res, err := c.API.ListPosts(ctx, api.PostQuery{CategoryID: b.CategoryID, Page: page, Limit: c.Limit})
	if err != nil {
		return Listing{}, err
	}
	posts, dropped := models.DecodePosts(res.Items, b.CategoryName)
	for _, d := range dropped {
		c.logf("board %s page %d: dropped row: %v", b.Key, page, d)
	}
	return Listing{
		Board:  b,
		Posts:  posts,
		Paging: models.NewPaging(page, c.Limit, res.Total, res.TotalPages, len(res.Items)),
	}, nil
}

// LoadGroup loads several boards concurrently and returns once all have answered,
// in the order given. pages maps board keys to requested pages. Each listing is
// sorted newest first since the boards are read side by side.
func (c *Controller) LoadGroup(ctx context.Context, bs []boards.Board, pages map[string]int) []Listing {
	out := make([]Listing, len(bs))
	var g errgroup.Group
	for i, b := range bs {
		g.Go(func() error {
			out[i] = c.Load(ctx, b, pages[b.Key])
			SortNewestFirst(out[i].Posts)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// LoadCreated merges the post with id createdID into the first page of l when the
// backend has not listed it yet.
func (c *Controller) LoadCreated(ctx context.Context, l Listing, createdID int) Listing {
	if createdID <= 0 || l.Err != "" || l.Paging.CurrentPage != 1 {
		return l
	}
	for _, p := range l.Posts {
		if p.ID == createdID {
			return l
		}
	}
	raw, err := c.API.GetPost(ctx, createdID)
	if err != nil {
		c.logf("board %s: created post %d: %v", l.Board.Key, createdID, err)
		return l
	}
	p, err := models.DecodePost(raw, l.Board.CategoryName)
	if err != nil {
		c.logf("board %s: created post %d: %v", l.Board.Key, createdID, err)
		return l
	}
	if p.CategoryID != 0 && p.CategoryID != l.Board.CategoryID {
		return l
	}
	l.Posts = MergeCreated(l.Posts, p)
	return l
}

// MergeCreated prepends created to posts unless its id is already present. The
// order of posts is kept and posts itself is not modified.
func MergeCreated(posts []models.Post, created models.Post) []models.Post {
	for _, p := range posts {
		if p.ID == created.ID {
			return posts
		}
	}
	out := make([]models.Post, 0, len(posts)+1)
	out = append(out, created)
	return append(out, posts...)
}

// SortNewestFirst orders posts by creation time, newest first. Posts with an
// unreadable date keep their relative order after the dated ones.
func SortNewestFirst(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return newer(posts[i].CreatedAt, posts[j].CreatedAt)
	})
}

func newer(a, b string) bool {
	ta, okA := models.ParseDate(a)
	tb, okB := models.ParseDate(b)
	if !okB {
		return okA
	}
	return okA && ta.After(tb)
}

func (c *Controller) logf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}

// failureMessage renders err for a visitor without leaking transport detail.
func failureMessage(what string, err error) string {
	var se *api.StatusError
	switch {
	case errors.As(err, &se):
		return fmt.Sprintf("%s could not be loaded (server answered %d: %s).", what, se.Code, se.Message)
	case errors.Is(err, context.DeadlineExceeded):
		return what + " could not be loaded: the server took too long to answer."
	default:
		return what + " could not be loaded. Please try again later."
	}
}
