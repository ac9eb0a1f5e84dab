package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"clubweb/internal/api"
	"clubweb/internal/models"
	"clubweb/internal/session"
)

const registeredNotice = "Your application was received. You can log in once an officer approves it."

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(r)
	if sess != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := map[string]any{}
	if r.URL.Query().Get("registered") != "" {
		data["Flash"] = registeredNotice
	}
	s.render(w, http.StatusOK, "login", s.page(nil, "Login", data))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	fail := func(status int, msg string) {
		s.render(w, status, "login", s.page(nil, "Login", map[string]any{"Email": email, "Error": msg}))
	}
	if email == "" || password == "" {
		fail(http.StatusBadRequest, "Email and password are required.")
		return
	}

	res, err := s.API.Login(r.Context(), email, password)
	if err != nil {
		s.logger(r).Printf("login %s: %v", email, err)
		var se *api.StatusError
		if errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusBadRequest || se.Code == http.StatusForbidden) {
			msg := "Invalid email or password."
			if se.Code == http.StatusForbidden && se.Message != "" {
				msg = se.Message
			}
			fail(http.StatusUnauthorized, msg)
			return
		}
		fail(http.StatusBadGateway, backendMessage("Login failed", err))
		return
	}

	user := models.DecodeProfile(res.User)
	l := session.Login{Token: res.Token, Email: email}
	if user.Name != models.UnknownName {
		l.Name = user.Name
	}
	if user.Email != models.UnknownName {
		l.Email = user.Email
	}
	switch {
	case res.Role != "":
		l.Role = models.ParseRole(res.Role)
	case user.Role != "":
		l.Role = models.ParseRole(user.Role)
	}
	sess, err := s.Sessions.Login(r.Context(), l)
	if err != nil {
		s.logger(r).Printf("login %s: session: %v", email, err)
		if errors.Is(err, session.ErrExpired) {
			fail(http.StatusUnauthorized, "The server issued an expired token. Please try again.")
			return
		}
		fail(http.StatusInternalServerError, "Could not start a session.")
		return
	}
	s.setSessionCookie(w, sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "register", s.page(s.currentSession(r), "Join", map[string]any{"Form": api.Registration{}}))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	form := api.Registration{
		Email:     strings.TrimSpace(r.FormValue("email")),
		Password:  r.FormValue("password"),
		Name:      strings.TrimSpace(r.FormValue("name")),
		StudentID: strings.TrimSpace(r.FormValue("studentId")),
		Major:     strings.TrimSpace(r.FormValue("major")),
		Class:     strings.TrimSpace(r.FormValue("class")),
	}
	fail := func(status int, msg string) {
		form.Password = ""
		s.render(w, status, "register", s.page(nil, "Join", map[string]any{"Form": form, "Error": msg}))
	}
	if form.Email == "" || form.Password == "" || form.Name == "" || form.StudentID == "" {
		fail(http.StatusBadRequest, "Email, password, name and student ID are required.")
		return
	}
	if _, err := s.API.Register(r.Context(), form); err != nil {
		s.logger(r).Printf("register %s: %v", form.Email, err)
		var se *api.StatusError
		if errors.As(err, &se) && se.Code < 500 {
			fail(http.StatusBadRequest, se.Message)
			return
		}
		fail(http.StatusBadGateway, backendMessage("Registration failed", err))
		return
	}
	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.CookieName); err == nil {
		if err := s.Sessions.Logout(r.Context(), cookie.Value); err != nil {
			s.logger(r).Printf("logout: %v", err)
		}
		s.clearSessionCookie(w)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// expire drops a session whose token the backend no longer accepts.
func (s *Server) expire(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if sess != nil {
		if err := s.Sessions.Logout(r.Context(), sess.ID); err != nil {
			s.logger(r).Printf("logout: %v", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// backendMessage renders a backend failure for a visitor.
func backendMessage(prefix string, err error) string {
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return fmt.Sprintf("%s: %s", prefix, se.Message)
	}
	return prefix + ". Please try again later."
}
