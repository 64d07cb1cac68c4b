package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/pbaille/sagequill/internal/auth"
	"github.com/pbaille/sagequill/internal/domain"
)

const sessionCookie = "sq_session"

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *domain.Session)

// authed resolves the request's session before calling h
func (s *Server) authed(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.auth.Session(r.Context(), sessionToken(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		h(w, r, sess)
	}
}

func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func setSessionCookie(w http.ResponseWriter, sess *domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req auth.SignUpInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	u, err := s.auth.SignUp(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}

	sess, err := s.auth.SignInPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	setSessionCookie(w, sess)

	writeJSON(w, http.StatusCreated, map[string]any{"user": u, "session": sess})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	sess, err := s.auth.SignInPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	setSessionCookie(w, sess)

	writeJSON(w, http.StatusOK, map[string]any{"session": sess})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	next, err := s.auth.Refresh(r.Context(), sess)
	if err != nil {
		writeErr(w, err)
		return
	}
	setSessionCookie(w, next)

	writeJSON(w, http.StatusOK, map[string]any{"session": next})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	if err := s.auth.SignOut(r.Context(), sess); err != nil {
		writeErr(w, err)
		return
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	greeting, err := s.auth.Greet(r.Context(), sess)
	if err != nil {
		writeErr(w, err)
		return
	}
	u, err := s.auth.CurrentUser(r.Context(), sess)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": u, "greeting": greeting})
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	var patch map[string]any
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	u, err := s.auth.UpdateMetadata(r.Context(), sess, patch)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}
