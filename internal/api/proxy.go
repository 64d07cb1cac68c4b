package api

import (
	"net/http"
)

type summarizeRequest struct {
	Content string `json:"content"`
}

type qaRequest struct {
	Content  string `json:"content"`
	Question string `json:"question"`
}

// summarize handles POST /api/summarize. The response always carries all
// five enrichment fields, even when the provider's reply wasn't JSON.
func (s *Server) summarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusInternalServerError, "invalid request body: "+err.Error())
		return
	}

	e, err := s.enricher.Summarize(r.Context(), req.Content)
	if err != nil {
		s.logger.Warn("summarize failed", "error", err)
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, e)
}

// answer handles POST /api/qa
func (s *Server) answer(w http.ResponseWriter, r *http.Request) {
	var req qaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusInternalServerError, "invalid request body: "+err.Error())
		return
	}

	answer, err := s.enricher.Ask(r.Context(), req.Content, req.Question)
	if err != nil {
		s.logger.Warn("qa failed", "error", err)
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}
