package server

import (
	"bytes"
	"html/template"
	"io"
	"io/fs"
	"log"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzhttp"

	"clubweb/internal/api"
	"clubweb/internal/boards"
	"clubweb/internal/listing"
	"clubweb/internal/models"
	"clubweb/internal/session"
	"clubweb/internal/view"
	"clubweb/web"
)

type Options struct {
	API       *api.Client
	Sessions  *session.Store
	Boards    boards.Catalog
	Logger    *log.Logger
	PageLimit int

	// CookieSecure marks the session cookie Secure.
	CookieSecure bool

	// Templates and Static default to the embedded web assets.
	Templates fs.FS
	Static    fs.FS
}

type Server struct {
	API        *api.Client
	Sessions   *session.Store
	Boards     boards.Catalog
	Logger     *log.Logger
	PageLimit  int
	CookieName string

	// CookieSecure marks the session cookie Secure.
	CookieSecure bool

	tmpl    map[string]*template.Template
	static  fs.FS
	nav     []navItem
	handler http.Handler
}

type navItem struct {
	Title    string
	Href     string
	Children []navItem
}

func New(o Options) (*Server, error) {
	if o.Templates == nil {
		o.Templates = web.Templates()
	}
	if o.Static == nil {
		o.Static = web.Static()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	if o.PageLimit <= 0 {
		o.PageLimit = listing.DefaultLimit
	}
	templates, err := parseTemplates(o.Templates)
	if err != nil {
		return nil, err
	}
	s := &Server{
		API:        o.API,
		Sessions:   o.Sessions,
		Boards:     o.Boards,
		Logger:     o.Logger,
		PageLimit:  o.PageLimit,
		CookieName: "session_id",
		tmpl:       templates,
		static:     o.Static,

		CookieSecure: o.CookieSecure,
	}
	s.nav = s.buildNav()
	s.handler = gzhttp.GzipHandler(s.logRequests(s.routes()))
	s.Sessions.Subscribe(func(ev session.Event) {
		s.Logger.Printf("session %s: %s role=%s", ev.Kind, ev.Session.Email, ev.Session.Role)
	})
	return s, nil
}

// parseTemplates pairs every page with the layout and the shared partials.
func parseTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	pages, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}
	partials, err := fs.Glob(fsys, "partials/*.html")
	if err != nil {
		return nil, err
	}
	templates := map[string]*template.Template{}
	for _, page := range pages {
		if page == "layout.html" {
			continue
		}
		files := make([]string, 0, len(partials)+2)
		files = append(files, "layout.html")
		files = append(files, partials...)
		files = append(files, page)
		t, err := template.ParseFS(fsys, files...)
		if err != nil {
			return nil, err
		}
		templates[strings.TrimSuffix(path.Base(page), ".html")] = t
	}
	return templates, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /about", s.handleStatic("about", "About"))
	mux.HandleFunc("GET /rule", s.handleStatic("rule", "Rule"))

	for _, b := range s.Boards.Boards {
		s.boardRoutes(mux, b)
	}
	for _, g := range s.Boards.Groups {
		mux.HandleFunc("GET "+g.Path, s.handleGroup(g))
	}

	mux.HandleFunc("GET /gallery", s.handleGallery)
	mux.HandleFunc("GET /library", s.requireAuth(s.handleDataTable(api.Library, view.LibraryTable)))
	mux.HandleFunc("GET /fee", s.requireAuth(s.handleDataTable(api.Fees, view.FeeTable)))
	mux.HandleFunc("GET /cleaning", s.requireAuth(s.handleDataTable(api.Cleanings, view.CleaningTable)))

	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /register", s.handleRegisterForm)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /mypage", s.requireAuth(s.handleMyPage))

	mux.HandleFunc("GET /officer", s.requireRole(models.RoleOfficer, s.handleOfficer))
	mux.HandleFunc("POST /officer/members/{id}/role", s.requireRole(models.RoleOfficer, s.handleMemberRole))
	mux.HandleFunc("POST /officer/members/{id}/delete", s.requireRole(models.RoleOfficer, s.handleMemberDelete))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(s.static)))
	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

func (s *Server) boardRoutes(mux *http.ServeMux, b boards.Board) {
	write := s.requireAuth(s.handleWrite(b))
	if models.Role(b.WriteRole) == models.RoleOfficer {
		write = s.requireRole(models.RoleOfficer, s.handleWrite(b))
	}
	mux.HandleFunc("GET "+b.Path, s.handleBoard(b))
	mux.HandleFunc("GET "+b.Path+"/{id}", s.handlePost(b))
	mux.HandleFunc("GET "+b.WritePath(), write)
	mux.HandleFunc("POST "+b.WritePath(), write)
	mux.HandleFunc("POST "+b.Path+"/{id}/comments", s.requireAuth(s.handleAddComment(b)))
	mux.HandleFunc("POST "+b.Path+"/{id}/comments/{cid}", s.requireAuth(s.handleEditComment(b)))
	mux.HandleFunc("POST "+b.Path+"/{id}/comments/{cid}/delete", s.requireAuth(s.handleDeleteComment(b)))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) buildNav() []navItem {
	nav := []navItem{{Title: "i-Keeper", Children: []navItem{
		{Title: "About", Href: "/about"},
		{Title: "Rule", Href: "/rule"},
	}}}
	for _, b := range s.Boards.Boards {
		if b.Group == "" {
			nav = append(nav, navItem{Title: b.Title, Href: b.Path})
		}
	}
	for _, g := range s.Boards.Groups {
		nav = append(nav, navItem{Title: g.Title, Href: g.Path})
	}
	return append(nav,
		navItem{Title: "Gallery", Href: "/gallery"},
		navItem{Title: "ETC", Children: []navItem{
			{Title: "Library", Href: "/library"},
			{Title: "Clean", Href: "/cleaning"},
			{Title: "Fee", Href: "/fee"},
		}},
	)
}

// page fills the fields every layout render reads.
func (s *Server) page(sess *session.Session, title string, data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	data["Title"] = title
	data["Nav"] = s.nav
	data["User"] = sess
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = ""
	}
	return data
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	t, ok := s.tmpl[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.Logger.Printf("render %s: %v", name, err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, status, "error", s.page(s.currentSession(r), http.StatusText(status), map[string]any{
		"Code":    status,
		"Message": message,
	}))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, "The page you asked for does not exist.")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

// client returns the backend client carrying the session's bearer token.
func (s *Server) client(sess *session.Session) *api.Client {
	if sess == nil {
		return s.API
	}
	return s.API.WithToken(sess.Token)
}

func (s *Server) listing(r *http.Request, sess *session.Session) *listing.Controller {
	return listing.New(s.client(sess), s.PageLimit, s.logger(r))
}

// helpers
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

// parsePage reads a 1-based page number; anything unusable is page 1.
func parsePage(s string) int {
	n := atoi(strings.TrimSpace(s))
	if n < 1 {
		return 1
	}
	return n
}
