package listing

import (
	"context"
	"errors"
	"sort"

	"clubweb/internal/api"
	"clubweb/internal/boards"
	"clubweb/internal/models"
)

// Detail is a resolved post. Exactly one of Post (Found), NotFound and Err holds.
type Detail struct {
	Board       boards.Board
	Post        models.Post
	Found       bool
	NotFound    bool
	Err         string
	Comments    []models.Comment
	CommentsErr string
}

// Resolve fetches post id of board with its comments. A comment failure leaves the
// post readable.
func (c *Controller) Resolve(ctx context.Context, b boards.Board, id int) Detail {
	d := Detail{Board: b}
	if id <= 0 {
		d.NotFound = true
		return d
	}
	raw, err := c.API.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			d.NotFound = true
			return d
		}
		c.logf("board %s post %d: %v", b.Key, id, err)
		d.Err = failureMessage("The post", err)
		return d
	}
	p, err := models.DecodePost(raw, b.CategoryName)
	if err != nil {
		c.logf("board %s post %d: %v", b.Key, id, err)
		d.Err = "The post could not be read."
		return d
	}
	d.Post, d.Found = p, true
	d.Comments, d.CommentsErr = c.comments(ctx, id)
	return d
}

func (c *Controller) comments(ctx context.Context, postID int) ([]models.Comment, string) {
	raws, err := c.API.ListComments(ctx, postID)
	if err != nil {
		c.logf("post %d comments: %v", postID, err)
		return nil, failureMessage("Comments", err)
	}
	out := make([]models.Comment, 0, len(raws))
	for _, raw := range raws {
		cm, err := models.DecodeComment(raw, postID)
		if err != nil {
			c.logf("post %d comments: dropped row: %v", postID, err)
			continue
		}
		out = append(out, cm)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[j].CreatedAt)
	})
	return out, ""
}
