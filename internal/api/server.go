package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/pbaille/sagequill/internal/auth"
	"github.com/pbaille/sagequill/internal/enrich"
	"github.com/pbaille/sagequill/internal/notes"
)

// Options configure a Server
type Options struct {
	Addr       string
	CORSOrigin string
	Compress   bool
	Logger     *slog.Logger
}

// Server handles HTTP requests for notes, auth and the enrichment proxy
type Server struct {
	auth     *auth.Provider
	notes    *notes.Service
	enricher *enrich.Service
	opts     Options
	logger   *slog.Logger
}

// New creates a new API server
func New(a *auth.Provider, n *notes.Service, e *enrich.Service, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}
	return &Server{auth: a, notes: n, enricher: e, opts: opts, logger: logger}
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Enrichment proxy
	mux.HandleFunc("POST /api/summarize", s.summarize)
	mux.HandleFunc("POST /api/qa", s.answer)

	// Auth
	mux.HandleFunc("POST /api/auth/signup", s.signUp)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("POST /api/auth/refresh", s.authed(s.refresh))
	mux.HandleFunc("POST /api/auth/logout", s.authed(s.logout))
	mux.HandleFunc("GET /api/me", s.authed(s.me))
	mux.HandleFunc("PATCH /api/me", s.authed(s.updateMe))

	// Notes
	mux.HandleFunc("GET /api/notes", s.authed(s.listNotes))
	mux.HandleFunc("POST /api/notes", s.authed(s.createNote))
	mux.HandleFunc("GET /api/notes/{id}", s.authed(s.getNote))
	mux.HandleFunc("PATCH /api/notes/{id}", s.authed(s.updateNote))
	mux.HandleFunc("DELETE /api/notes/{id}", s.authed(s.deleteNote))
	mux.HandleFunc("POST /api/notes/{id}/pin", s.authed(s.pinNote))
	mux.HandleFunc("POST /api/notes/{id}/summarize", s.authed(s.enrichNote))
	mux.HandleFunc("POST /api/notes/{id}/qa", s.authed(s.askNote))

	// Health check
	mux.HandleFunc("GET /health", s.health)

	var h http.Handler = mux
	if s.opts.Compress {
		h = gzhttp.GzipHandler(h)
	}
	h = withCORS(h, s.opts.CORSOrigin)
	return withRequestLog(h, s.logger)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("server listening", "addr", s.opts.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
