package notes

import (
	"context"

	"github.com/pbaille/sagequill/internal/domain"
)

// State is the enrichment state of a note as seen by a client
type State string

const (
	StateUnsummarized State = "unsummarized"
	StateSummarizing  State = "summarizing"
	StateSummarized   State = "summarized"
)

// State reports the note's enrichment state. Summarizing is transient and
// only visible while an Enrich call for the note is running.
func (s *Service) State(n *domain.Note) State {
	s.mu.Lock()
	running := s.inflight[n.ID] > 0
	s.mu.Unlock()

	switch {
	case running:
		return StateSummarizing
	case n.Summarized():
		return StateSummarized
	default:
		return StateUnsummarized
	}
}

func (s *Service) begin(id string) {
	s.mu.Lock()
	s.inflight[id]++
	s.mu.Unlock()
}

func (s *Service) end(id string) {
	s.mu.Lock()
	s.inflight[id]--
	if s.inflight[id] <= 0 {
		delete(s.inflight, id)
	}
	s.mu.Unlock()
}

// Enrich summarizes the note and stores the result as a full replacement
// of its enrichment. On failure the stored note is left untouched.
// Concurrent calls for one note race; the last write wins.
func (s *Service) Enrich(ctx context.Context, sess *domain.Session, id string) (Result, error) {
	n, err := s.Get(ctx, sess, id)
	if err != nil {
		return Result{}, err
	}

	s.begin(id)
	defer s.end(id)

	e, err := s.enricher.Summarize(ctx, n.Content)
	if err != nil {
		s.logger.Warn("enrichment failed", "note", id, "error", err)
		return Result{}, err
	}

	updated, err := s.store.ReplaceEnrichment(ctx, sess.UserID, id, e)
	if err != nil {
		return Result{}, noteErr(err, id)
	}

	s.logger.Info("note enriched", "note", id, "tags", len(e.Tags), "dates", len(e.Dates), "sentiment", e.Sentiment)
	return Result{Note: updated, Invalidate: []string{ViewList, NoteView(id)}}, nil
}

// Ask answers a question from the stored note's content
func (s *Service) Ask(ctx context.Context, sess *domain.Session, id, question string) (string, error) {
	n, err := s.Get(ctx, sess, id)
	if err != nil {
		return "", err
	}
	return s.enricher.Ask(ctx, n.Content, question)
}
