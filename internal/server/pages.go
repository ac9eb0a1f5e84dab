package server

import (
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"clubweb/internal/api"
	"clubweb/internal/listing"
	"clubweb/internal/models"
	"clubweb/internal/session"
	"clubweb/internal/view"
)

const noticePreview = 5

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(r)
	ctx := r.Context()
	logger := s.logger(r)

	var (
		notice    listing.Listing
		events    []models.Event
		eventsErr string
		g         errgroup.Group
	)
	if b, ok := s.Boards.Board("notice"); ok {
		g.Go(func() error {
			notice = s.listing(r, sess).Load(ctx, b, 1)
			if len(notice.Posts) > noticePreview {
				notice.Posts = notice.Posts[:noticePreview]
			}
			return nil
		})
	}
	g.Go(func() error {
		raws, err := s.client(sess).ListEvents(ctx)
		if err != nil {
			logger.Printf("events: %v", err)
			eventsErr = backendMessage("The schedule could not be loaded", err)
			return nil
		}
		for _, raw := range raws {
			e, err := models.DecodeEvent(raw)
			if err != nil {
				logger.Printf("events: dropped row: %v", err)
				continue
			}
			events = append(events, e)
		}
		return nil
	})
	_ = g.Wait()

	s.render(w, http.StatusOK, "index", s.page(sess, "", map[string]any{
		"Notice":    notice,
		"Events":    events,
		"EventsErr": eventsErr,
	}))
}

func (s *Server) handleStatic(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, name, s.page(s.currentSession(r), title, nil))
	}
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(r)
	data := map[string]any{}
	status := http.StatusOK
	raws, err := s.client(sess).ListGallery(r.Context())
	if err != nil {
		s.logger(r).Printf("gallery: %v", err)
		data["Error"] = backendMessage("The gallery could not be loaded", err)
		status = http.StatusBadGateway
	}
	var items []models.GalleryItem
	for _, raw := range raws {
		it, err := models.DecodeGalleryItem(raw)
		if err != nil {
			s.logger(r).Printf("gallery: dropped row: %v", err)
			continue
		}
		items = append(items, it)
	}
	data["Items"] = items
	s.render(w, status, "gallery", s.page(sess, "Gallery", data))
}

func (s *Server) handleDataTable(res api.Resource, def view.DataTableDef) func(http.ResponseWriter, *http.Request, *session.Session) {
	return func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		data := map[string]any{}
		status := http.StatusOK
		raws, err := s.client(sess).ListResource(r.Context(), res)
		if err != nil {
			if errors.Is(err, api.ErrUnauthorized) {
				s.expire(w, r, sess)
				return
			}
			s.logger(r).Printf("%s: %v", res, err)
			data["Error"] = backendMessage(def.Title+" could not be loaded", err)
			status = http.StatusBadGateway
		}
		t := view.NewDataTable(def, raws)
		if t.Dropped > 0 {
			s.logger(r).Printf("%s: dropped %d rows", res, t.Dropped)
		}
		data["Table"] = t
		s.render(w, status, "datatable", s.page(sess, def.Title, data))
	}
}

type myPost struct {
	Category string
	Title    string
	Href     string
	Date     string
}

func (s *Server) handleMyPage(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	mp, err := s.client(sess).MyPage(r.Context())
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.expire(w, r, sess)
			return
		}
		s.logger(r).Printf("mypage: %v", err)
		s.render(w, http.StatusBadGateway, "mypage", s.page(sess, "My Page", map[string]any{
			"Error": backendMessage("My page could not be loaded", err),
		}))
		return
	}

	posts, dropped := models.DecodePosts(mp.Posts, "")
	for _, d := range dropped {
		s.logger(r).Printf("mypage: dropped row: %v", d)
	}
	listing.SortNewestFirst(posts)
	rows := make([]myPost, 0, len(posts))
	for _, p := range posts {
		row := myPost{Category: p.Category, Title: p.Title, Date: p.Date}
		if b, ok := s.Boards.ByCategory(p.CategoryID); ok {
			row.Href = b.DetailPath(p.ID)
			if row.Category == "" {
				row.Category = b.CategoryName
			}
		}
		if row.Category == "" {
			row.Category = models.UnknownName
		}
		rows = append(rows, row)
	}
	s.render(w, http.StatusOK, "mypage", s.page(sess, "My Page", map[string]any{
		"Profile": models.DecodeProfile(mp.User),
		"Posts":   rows,
	}))
}
