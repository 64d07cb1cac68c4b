// Package notes implements owner-scoped note operations and explicit,
// user-triggered enrichment.
package notes

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/pbaille/sagequill/internal/apperr"
	"github.com/pbaille/sagequill/internal/domain"
	"github.com/pbaille/sagequill/internal/store"
)

// Views that mutations invalidate
const ViewList = "notes"

// NoteView names the detail view of a note
func NoteView(id string) string {
	return "note/" + id
}

// Result is the outcome of a successful mutation. Invalidate lists the
// cached views the caller must refresh.
type Result struct {
	Note       *domain.Note `json:"note,omitempty"`
	Invalidate []string     `json:"invalidate"`
}

// Store is the note persistence the service needs
type Store interface {
	CreateNote(ctx context.Context, userID, title, content string) (*domain.Note, error)
	GetNote(ctx context.Context, userID, id string) (*domain.Note, error)
	UpdateNote(ctx context.Context, userID, id string, title, content *string) (*domain.Note, error)
	SetPinned(ctx context.Context, userID, id string, pinned bool) (*domain.Note, error)
	DeleteNote(ctx context.Context, userID, id string) error
	ListNotes(ctx context.Context, userID string, f domain.NoteFilter) ([]domain.Note, error)
	ReplaceEnrichment(ctx context.Context, userID, id string, e domain.Enrichment) (*domain.Note, error)
}

// Enricher produces enrichments and answers
type Enricher interface {
	Summarize(ctx context.Context, content string) (domain.Enrichment, error)
	Ask(ctx context.Context, content, question string) (string, error)
}

// Service runs note operations on behalf of a session
type Service struct {
	store    Store
	enricher Enricher
	logger   *slog.Logger

	mu       sync.Mutex
	inflight map[string]int
}

// New creates a notes Service
func New(s Store, e Enricher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    s,
		enricher: e,
		logger:   logger,
		inflight: make(map[string]int),
	}
}

// UpdateInput carries optional field changes
type UpdateInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// Create adds a note owned by the session's user
func (s *Service) Create(ctx context.Context, sess *domain.Session, title, content string) (Result, error) {
	n, err := s.store.CreateNote(ctx, sess.UserID, strings.TrimSpace(title), content)
	if err != nil {
		return Result{}, err
	}
	s.logger.Info("note created", "note", n.ID, "user", sess.UserID)
	return Result{Note: n, Invalidate: []string{ViewList}}, nil
}

// Get returns one of the session user's notes
func (s *Service) Get(ctx context.Context, sess *domain.Session, id string) (*domain.Note, error) {
	n, err := s.store.GetNote(ctx, sess.UserID, id)
	return n, noteErr(err, id)
}

// Update changes title and/or content. Enrichment is kept until the user
// regenerates it.
func (s *Service) Update(ctx context.Context, sess *domain.Session, id string, in UpdateInput) (Result, error) {
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
	n, err := s.store.UpdateNote(ctx, sess.UserID, id, in.Title, in.Content)
	if err != nil {
		return Result{}, noteErr(err, id)
	}
	return Result{Note: n, Invalidate: []string{ViewList, NoteView(id)}}, nil
}

// SetPinned pins or unpins a note
func (s *Service) SetPinned(ctx context.Context, sess *domain.Session, id string, pinned bool) (Result, error) {
	n, err := s.store.SetPinned(ctx, sess.UserID, id, pinned)
	if err != nil {
		return Result{}, noteErr(err, id)
	}
	return Result{Note: n, Invalidate: []string{ViewList, NoteView(id)}}, nil
}

// TogglePin flips the pinned flag
func (s *Service) TogglePin(ctx context.Context, sess *domain.Session, id string) (Result, error) {
	n, err := s.Get(ctx, sess, id)
	if err != nil {
		return Result{}, err
	}
	return s.SetPinned(ctx, sess, id, !n.Pinned)
}

// Delete removes a note and its enrichment
func (s *Service) Delete(ctx context.Context, sess *domain.Session, id string) (Result, error) {
	if err := s.store.DeleteNote(ctx, sess.UserID, id); err != nil {
		return Result{}, noteErr(err, id)
	}
	s.logger.Info("note deleted", "note", id, "user", sess.UserID)
	return Result{Invalidate: []string{ViewList, NoteView(id)}}, nil
}

// Search lists the session user's notes, pinned first then newest
func (s *Service) Search(ctx context.Context, sess *domain.Session, f domain.NoteFilter) ([]domain.Note, error) {
	return s.store.ListNotes(ctx, sess.UserID, f)
}

func noteErr(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NewNotFound("note", id)
	}
	return err
}
