package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"clubweb/internal/api"
	"clubweb/internal/boards"
	"clubweb/internal/listing"
	"clubweb/internal/models"
	"clubweb/internal/session"
	"clubweb/internal/view"
)

type groupSection struct {
	Err   string
	Table view.Table
}

type commentsView struct {
	Base     string
	User     *session.Session
	Comments []models.Comment
	EditID   int
	Error    string
}

type postForm struct {
	Title   string
	Content string
}

func (s *Server) table(l listing.Listing, sess *session.Session, pageURL func(int) string) view.Table {
	role := models.Role("")
	if sess != nil {
		role = sess.Role
	}
	return view.NewTable(view.TableProps{
		Rows:            l.Posts,
		CurrentPage:     l.Paging.CurrentPage,
		TotalPages:      l.Paging.TotalPages,
		PageURL:         pageURL,
		BasePath:        l.Board.Path,
		Title:           l.Board.Title,
		ShowWriteButton: l.Board.CanWrite(sess != nil, role),
		LoggedIn:        sess != nil,
		EmptyMessage:    l.Board.EmptyMessage,
		Degraded:        l.Paging.Degraded,
	})
}

func (s *Server) handleBoard(b boards.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.currentSession(r)
		q := r.URL.Query()
		ctl := s.listing(r, sess)
		l := ctl.Load(r.Context(), b, parsePage(q.Get("page")))
		if created := atoi(q.Get("created")); created > 0 {
			l = ctl.LoadCreated(r.Context(), l, created)
		}
		status := http.StatusOK
		if l.Err != "" {
			status = http.StatusBadGateway
		}
		s.render(w, status, "board", s.page(sess, b.Title, map[string]any{
			"Listing": l,
			"Table":   s.table(l, sess, nil),
		}))
	}
}

// handleGroup renders every board of g on one page. Each board pages independently
// through a query parameter named after its key.
func (s *Server) handleGroup(g boards.Group) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.currentSession(r)
		q := r.URL.Query()
		members := s.Boards.Members(g.Key)
		pages := make(map[string]int, len(members))
		for _, b := range members {
			pages[b.Key] = parsePage(q.Get(b.Key))
		}
		ctl := s.listing(r, sess)
		listings := ctl.LoadGroup(r.Context(), members, pages)
		created, createdBoard := atoi(q.Get("created")), q.Get("board")

		sections := make([]groupSection, len(listings))
		for i, l := range listings {
			key := l.Board.Key
			if created > 0 && key == createdBoard {
				l = ctl.LoadCreated(r.Context(), l, created)
				listing.SortNewestFirst(l.Posts)
			}
			pageURL := func(n int) string {
				v := url.Values{}
				for k, vs := range q {
					v[k] = vs
				}
				v.Del("created")
				v.Del("board")
				v.Set(key, itoa(n))
				return g.Path + "?" + v.Encode()
			}
			sections[i] = groupSection{Err: l.Err, Table: s.table(l, sess, pageURL)}
		}
		s.render(w, http.StatusOK, "group", s.page(sess, g.Title, map[string]any{
			"Group":    g,
			"Sections": sections,
		}))
	}
}

func (s *Server) handlePost(b boards.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.currentSession(r)
		id := atoi(r.PathValue("id"))
		d := s.listing(r, sess).Resolve(r.Context(), b, id)

		status, title := http.StatusOK, b.Title
		switch {
		case d.NotFound:
			status = http.StatusNotFound
		case d.Err != "":
			status = http.StatusBadGateway
		default:
			title = d.Post.Title
		}
		s.render(w, status, "detail", s.page(sess, title, map[string]any{
			"Detail": d,
			"Comments": commentsView{
				Base:     b.DetailPath(id),
				User:     sess,
				Comments: d.Comments,
				EditID:   atoi(r.URL.Query().Get("edit")),
				Error:    d.CommentsErr,
			},
		}))
	}
}

func (s *Server) handleWrite(b boards.Board) func(http.ResponseWriter, *http.Request, *session.Session) {
	return func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		switch r.Method {
		case http.MethodGet:
			s.render(w, http.StatusOK, "write", s.page(sess, "Write", map[string]any{"Board": b, "Form": postForm{}}))

		case http.MethodPost:
			form := postForm{
				Title:   strings.TrimSpace(r.FormValue("title")),
				Content: strings.TrimSpace(r.FormValue("content")),
			}
			if form.Title == "" || form.Content == "" {
				s.render(w, http.StatusBadRequest, "write", s.page(sess, "Write", map[string]any{
					"Board": b, "Form": form, "Error": "Title and content are required.",
				}))
				return
			}
			raw, err := s.client(sess).CreatePost(r.Context(), api.NewPost{CategoryID: b.CategoryID, Title: form.Title, Content: form.Content})
			if err != nil {
				s.logger(r).Printf("board %s: create post: %v", b.Key, err)
				if errors.Is(err, api.ErrUnauthorized) {
					s.expire(w, r, sess)
					return
				}
				s.render(w, http.StatusBadGateway, "write", s.page(sess, "Write", map[string]any{
					"Board": b, "Form": form, "Error": backendMessage("The post could not be saved", err),
				}))
				return
			}
			http.Redirect(w, r, s.createdTarget(b, raw), http.StatusSeeOther)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// createdTarget is where a visitor lands after writing to b. The list is
// re-fetched there; created only pins the new post onto page 1. Posts on a grouped
// board land on the group page.
func (s *Server) createdTarget(b boards.Board, raw json.RawMessage) string {
	target, v := b.Path, url.Values{}
	if g, ok := s.Boards.Group(b.Group); ok && b.Group != "" {
		target = g.Path
		v.Set("board", b.Key)
	}
	if p, err := models.DecodePost(raw, b.CategoryName); err == nil {
		v.Set("created", itoa(p.ID))
	}
	if len(v) == 0 {
		return target
	}
	return target + "?" + v.Encode()
}

func (s *Server) handleAddComment(b boards.Board) func(http.ResponseWriter, *http.Request, *session.Session) {
	return func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		postID := atoi(r.PathValue("id"))
		content := strings.TrimSpace(r.FormValue("content"))
		if postID <= 0 || content == "" {
			http.Error(w, "missing content", http.StatusBadRequest)
			return
		}
		if _, err := s.client(sess).CreateComment(r.Context(), postID, sess.Name, content); err != nil {
			s.commentFailed(w, r, sess, "create", err)
			return
		}
		http.Redirect(w, r, b.DetailPath(postID), http.StatusSeeOther)
	}
}

func (s *Server) handleEditComment(b boards.Board) func(http.ResponseWriter, *http.Request, *session.Session) {
	return func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		postID, commentID := atoi(r.PathValue("id")), atoi(r.PathValue("cid"))
		content := strings.TrimSpace(r.FormValue("content"))
		if postID <= 0 || commentID <= 0 || content == "" {
			http.Error(w, "missing content", http.StatusBadRequest)
			return
		}
		if err := s.client(sess).UpdateComment(r.Context(), commentID, content); err != nil {
			s.commentFailed(w, r, sess, "update", err)
			return
		}
		http.Redirect(w, r, b.DetailPath(postID), http.StatusSeeOther)
	}
}

func (s *Server) handleDeleteComment(b boards.Board) func(http.ResponseWriter, *http.Request, *session.Session) {
	return func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		postID, commentID := atoi(r.PathValue("id")), atoi(r.PathValue("cid"))
		if postID <= 0 || commentID <= 0 {
			http.NotFound(w, r)
			return
		}
		if err := s.client(sess).DeleteComment(r.Context(), commentID); err != nil {
			s.commentFailed(w, r, sess, "delete", err)
			return
		}
		http.Redirect(w, r, b.DetailPath(postID), http.StatusSeeOther)
	}
}

func (s *Server) commentFailed(w http.ResponseWriter, r *http.Request, sess *session.Session, op string, err error) {
	s.logger(r).Printf("comment %s: %v", op, err)
	var se *api.StatusError
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		s.expire(w, r, sess)
	case errors.As(err, &se) && (se.Code == http.StatusForbidden || se.Code == http.StatusNotFound):
		s.renderError(w, r, se.Code, se.Message)
	default:
		s.renderError(w, r, http.StatusBadGateway, backendMessage("The comment could not be saved", err))
	}
}
