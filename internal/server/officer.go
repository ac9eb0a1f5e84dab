package server

import (
	"errors"
	"net/http"

	"clubweb/internal/api"
	"clubweb/internal/models"
	"clubweb/internal/session"
)

func (s *Server) handleOfficer(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	data := map[string]any{}
	if b, ok := s.Boards.Board("notice"); ok {
		data["NoticeWrite"] = b.WritePath()
	}
	raws, err := s.client(sess).ListMembers(r.Context())
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.expire(w, r, sess)
			return
		}
		s.logger(r).Printf("members: %v", err)
		data["Error"] = backendMessage("The member list could not be loaded", err)
		s.render(w, http.StatusBadGateway, "officer", s.page(sess, "Management", data))
		return
	}
	members := make([]models.Member, 0, len(raws))
	for _, raw := range raws {
		m, err := models.DecodeMember(raw)
		if err != nil {
			s.logger(r).Printf("members: dropped row: %v", err)
			continue
		}
		members = append(members, m)
	}
	data["Members"] = members
	s.render(w, http.StatusOK, "officer", s.page(sess, "Management", data))
}

func (s *Server) handleMemberRole(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id := atoi(r.PathValue("id"))
	if id <= 0 {
		http.NotFound(w, r)
		return
	}
	role := models.ParseRole(r.FormValue("role"))
	if err := s.client(sess).SetMemberRole(r.Context(), id, string(role)); err != nil {
		s.memberFailed(w, r, sess, "role", err)
		return
	}
	s.logger(r).Printf("member %d: role set to %s by %s", id, role, sess.Email)
	http.Redirect(w, r, "/officer", http.StatusSeeOther)
}

func (s *Server) handleMemberDelete(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id := atoi(r.PathValue("id"))
	if id <= 0 {
		http.NotFound(w, r)
		return
	}
	if err := s.client(sess).DeleteMember(r.Context(), id); err != nil {
		s.memberFailed(w, r, sess, "delete", err)
		return
	}
	s.logger(r).Printf("member %d: deleted by %s", id, sess.Email)
	http.Redirect(w, r, "/officer", http.StatusSeeOther)
}

func (s *Server) memberFailed(w http.ResponseWriter, r *http.Request, sess *session.Session, op string, err error) {
	s.logger(r).Printf("member %s: %v", op, err)
	var se *api.StatusError
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		s.expire(w, r, sess)
	case errors.As(err, &se) && se.Code < 500:
		s.renderError(w, r, se.Code, se.Message)
	default:
		s.renderError(w, r, http.StatusBadGateway, backendMessage("The member could not be updated", err))
	}
}
