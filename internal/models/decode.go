package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Placeholders used when the backend omits a display field.
const (
	UntitledPost  = "Untitled"
	UnknownAuthor = "Unknown author"
	UnknownName   = "-"
)

// InvalidError reports a backend object that cannot be shown at all.
type InvalidError struct {
	Kind   string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Kind, e.Reason)
}

type object map[string]any

func decodeObject(kind string, raw json.RawMessage) (object, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, &InvalidError{Kind: kind, Reason: "empty"}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, &InvalidError{Kind: kind, Reason: "not an object"}
	}
	return object(m), nil
}

// str returns the first non-empty string (or number rendered as text) under keys.
func (o object) str(keys ...string) string {
	for _, k := range keys {
		switch v := o[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func (o object) num(keys ...string) (int, bool) {
	for _, k := range keys {
		if n, ok := toInt(o[k]); ok {
			return n, true
		}
	}
	return 0, false
}

// name reads a field that is either a plain string or an object carrying "name".
func (o object) name(keys ...string) string {
	for _, k := range keys {
		switch v := o[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case map[string]any:
			if s := object(v).str("name", "username"); s != "" {
				return s
			}
		}
	}
	return ""
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		f, err := n.Float64()
		return int(f), err == nil && f == float64(int(f))
	case float64:
		return int(n), n == float64(int(n))
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

// DecodePost maps one backend post onto a Post. Missing display fields degrade to
// placeholders; fallbackCategory names the board the post was listed under. Only a
// missing or non-numeric id makes the post invalid.
func DecodePost(raw json.RawMessage, fallbackCategory string) (Post, error) {
	o, err := decodeObject("post", raw)
	if err != nil {
		return Post{}, err
	}
	id, ok := o.num("id", "postId", "post_id")
	if !ok {
		return Post{}, &InvalidError{Kind: "post", Reason: "missing id"}
	}

	p := Post{
		ID:        id,
		Title:     o.str("title"),
		Body:      o.str("content", "body"),
		Author:    o.name("author", "author_name", "authorName", "user"),
		CreatedAt: o.str("createdAt", "created_at", "createAt"),
	}
	if p.Title == "" {
		p.Title = UntitledPost
	}
	if p.Author == "" {
		p.Author = UnknownAuthor
	}
	p.Date = NormalizeDate(p.CreatedAt)

	switch c := o["category"].(type) {
	case map[string]any:
		co := object(c)
		p.Category = co.str("name")
		p.CategoryID, _ = co.num("id")
	case string:
		p.Category = strings.TrimSpace(c)
	}
	if p.Category == "" {
		p.Category = o.str("categoryName")
	}
	if p.Category == "" {
		p.Category = fallbackCategory
	}
	if p.CategoryID == 0 {
		p.CategoryID, _ = o.num("categoryId", "category_id")
	}

	p.Attachment = decodeAttachment(o)
	return p, nil
}

func decodeAttachment(o object) *Attachment {
	if files, ok := o["files"].([]any); ok && len(files) > 0 {
		if f, ok := files[0].(map[string]any); ok {
			fo := object(f)
			if u := fo.str("url", "path"); u != "" {
				name := fo.str("filename", "fileName", "originalName", "name")
				if name == "" {
					name = path.Base(u)
				}
				return &Attachment{URL: u, Filename: name}
			}
		}
	}
	if u := o.str("fileUrl", "imageUrl", "file"); u != "" {
		name := o.str("fileName", "filename")
		if name == "" {
			name = path.Base(u)
		}
		return &Attachment{URL: u, Filename: name}
	}
	return nil
}

// DecodePosts decodes every row, dropping rows that are invalid. The reasons for the
// dropped rows are returned so the caller can log them.
func DecodePosts(raws []json.RawMessage, fallbackCategory string) ([]Post, []error) {
	posts := make([]Post, 0, len(raws))
	var dropped []error
	for _, raw := range raws {
		p, err := DecodePost(raw, fallbackCategory)
		if err != nil {
			dropped = append(dropped, err)
			continue
		}
		posts = append(posts, p)
	}
	return posts, dropped
}

func DecodeComment(raw json.RawMessage, postID int) (Comment, error) {
	o, err := decodeObject("comment", raw)
	if err != nil {
		return Comment{}, err
	}
	id, ok := o.num("id", "commentId")
	if !ok {
		return Comment{}, &InvalidError{Kind: "comment", Reason: "missing id"}
	}
	c := Comment{
		ID:        id,
		PostID:    postID,
		Author:    o.name("author", "author_name", "authorName", "user"),
		Content:   o.str("content", "text"),
		CreatedAt: o.str("createdAt", "created_at", "date"),
	}
	if pid, ok := o.num("postId", "post_id"); ok {
		c.PostID = pid
	}
	if c.Author == "" {
		c.Author = UnknownAuthor
	}
	c.Date = NormalizeDate(c.CreatedAt)
	return c, nil
}

func DecodeMember(raw json.RawMessage) (Member, error) {
	o, err := decodeObject("member", raw)
	if err != nil {
		return Member{}, err
	}
	id, ok := o.num("id", "userId")
	if !ok {
		return Member{}, &InvalidError{Kind: "member", Reason: "missing id"}
	}
	m := Member{
		ID:        id,
		Name:      o.str("name"),
		StudentID: o.str("studentId", "student_id"),
		Major:     o.str("major"),
		Email:     o.str("email"),
		Role:      ParseRole(o.str("role")),
	}
	if m.Name == "" {
		m.Name = UnknownName
	}
	return m, nil
}

func DecodeProfile(raw json.RawMessage) Profile {
	p := Profile{Name: UnknownName, StudentID: UnknownName, Major: UnknownName, Email: UnknownName, Year: UnknownName}
	o, err := decodeObject("profile", raw)
	if err != nil {
		return p
	}
	set := func(dst *string, keys ...string) {
		if s := o.str(keys...); s != "" {
			*dst = s
		}
	}
	set(&p.Name, "name")
	set(&p.StudentID, "studentId", "student_id")
	set(&p.Major, "major")
	set(&p.Email, "email")
	set(&p.Year, "year", "class")
	p.FileURL = o.str("fileUrl", "signatureUrl")
	p.Role = o.str("role")
	return p
}

func DecodeEvent(raw json.RawMessage) (Event, error) {
	o, err := decodeObject("event", raw)
	if err != nil {
		return Event{}, err
	}
	e := Event{
		Title:       o.str("title", "name"),
		Start:       NormalizeDate(o.str("startDate", "start", "date")),
		End:         NormalizeDate(o.str("endDate", "end")),
		Description: o.str("description", "content"),
	}
	e.ID, _ = o.num("id")
	if e.Title == "" {
		return Event{}, &InvalidError{Kind: "event", Reason: "missing title"}
	}
	return e, nil
}

func DecodeGalleryItem(raw json.RawMessage) (GalleryItem, error) {
	o, err := decodeObject("gallery item", raw)
	if err != nil {
		return GalleryItem{}, err
	}
	g := GalleryItem{
		Title:    o.str("title"),
		ImageURL: o.str("imageUrl", "url", "image"),
		Date:     NormalizeDate(o.str("createdAt", "date")),
	}
	g.ID, _ = o.num("id")
	if g.ImageURL == "" {
		return GalleryItem{}, &InvalidError{Kind: "gallery item", Reason: "missing image"}
	}
	if g.Title == "" {
		g.Title = UntitledPost
	}
	return g, nil
}

// DecodeCells flattens a data-table row into display strings keyed by column.
func DecodeCells(raw json.RawMessage) (map[string]string, error) {
	o, err := decodeObject("row", raw)
	if err != nil {
		return nil, err
	}
	cells := make(map[string]string, len(o))
	for k, v := range o {
		switch x := v.(type) {
		case string:
			cells[k] = x
		case json.Number:
			cells[k] = x.String()
		case bool:
			cells[k] = strconv.FormatBool(x)
		case map[string]any:
			cells[k] = object(x).str("name", "title", "id")
		case []any:
			names := make([]string, 0, len(x))
			for _, e := range x {
				switch y := e.(type) {
				case string:
					names = append(names, y)
				case map[string]any:
					if n := object(y).str("name", "title"); n != "" {
						names = append(names, n)
					}
				}
			}
			cells[k] = strings.Join(names, ", ")
		}
	}
	return cells, nil
}
