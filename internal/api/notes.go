package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/pbaille/sagequill/internal/domain"
	"github.com/pbaille/sagequill/internal/notes"
)

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type pinRequest struct {
	Pinned *bool `json:"pinned"`
}

type askRequest struct {
	Question string `json:"question"`
}

type noteView struct {
	*domain.Note
	State notes.State `json:"state"`
}

func (s *Server) view(n *domain.Note) noteView {
	return noteView{Note: n, State: s.notes.State(n)}
}

func (s *Server) writeResult(w http.ResponseWriter, status int, res notes.Result) {
	out := map[string]any{"invalidate": res.Invalidate}
	if res.Note != nil {
		out["note"] = s.view(res.Note)
	}
	writeJSON(w, status, out)
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	q := r.URL.Query()
	f := domain.NoteFilter{
		Query: strings.TrimSpace(q.Get("q")),
		Tag:   strings.TrimSpace(q.Get("tag")),
	}
	f.PinnedOnly, _ = strconv.ParseBool(q.Get("pinned"))
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Offset = n
		}
	}

	list, err := s.notes.Search(r.Context(), sess, f)
	if err != nil {
		writeErr(w, err)
		return
	}

	views := make([]noteView, len(list))
	for i := range list {
		views[i] = s.view(&list[i])
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notes":  views,
		"query":  f.Query,
		"limit":  f.Limit,
		"offset": f.Offset,
	})
}

func (s *Server) createNote(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "title or content is required")
		return
	}

	res, err := s.notes.Create(r.Context(), sess, req.Title, req.Content)
	if err != nil {
		writeErr(w, err)
		return
	}

	s.writeResult(w, http.StatusCreated, res)
}

func (s *Server) getNote(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	n, err := s.notes.Get(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"note": s.view(n)})
}

func (s *Server) updateNote(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	var req notes.UpdateInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res, err := s.notes.Update(r.Context(), sess, r.PathValue("id"), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	s.writeResult(w, http.StatusOK, res)
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	res, err := s.notes.Delete(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	s.writeResult(w, http.StatusOK, res)
}

// pinNote sets the pin flag when the body names one, otherwise toggles it
func (s *Server) pinNote(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	var req pinRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	id := r.PathValue("id")
	var (
		res notes.Result
		err error
	)
	if req.Pinned != nil {
		res, err = s.notes.SetPinned(r.Context(), sess, id, *req.Pinned)
	} else {
		res, err = s.notes.TogglePin(r.Context(), sess, id)
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	s.writeResult(w, http.StatusOK, res)
}

func (s *Server) enrichNote(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	res, err := s.notes.Enrich(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	s.writeResult(w, http.StatusOK, res)
}

func (s *Server) askNote(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := s.notes.Ask(r.Context(), sess, r.PathValue("id"), req.Question)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}
