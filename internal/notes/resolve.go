package notes

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/pbaille/sagequill/internal/apperr"
	"github.com/pbaille/sagequill/internal/domain"
)

// resolvePage is how many notes Resolve reads per query
var resolvePage = 500

// Resolve finds a note from a loose reference: a full ID, a unique ID
// prefix, or else the best fuzzy match on titles.
func (s *Service) Resolve(ctx context.Context, sess *domain.Session, ref string) (*domain.Note, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperr.NewInvalidRequest("note reference is required")
	}

	all, err := s.allNotes(ctx, sess)
	if err != nil {
		return nil, err
	}

	var prefixed []int
	for i, n := range all {
		if n.ID == ref {
			return &all[i], nil
		}
		if strings.HasPrefix(n.ID, ref) {
			prefixed = append(prefixed, i)
		}
	}
	switch len(prefixed) {
	case 0:
	case 1:
		return &all[prefixed[0]], nil
	default:
		return nil, apperr.NewConflict(fmt.Sprintf("ambiguous note id prefix %q matches %d notes", ref, len(prefixed)))
	}

	titles := make([]string, len(all))
	for i, n := range all {
		titles[i] = n.Title
	}
	matches := fuzzy.Find(ref, titles)
	if len(matches) == 0 {
		return nil, apperr.NewNotFound("note", ref)
	}
	return &all[matches[0].Index], nil
}

// allNotes pages through every note the session's user owns
func (s *Service) allNotes(ctx context.Context, sess *domain.Session) ([]domain.Note, error) {
	var all []domain.Note
	for offset := 0; ; offset += resolvePage {
		page, err := s.store.ListNotes(ctx, sess.UserID, domain.NoteFilter{Limit: resolvePage, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < resolvePage {
			return all, nil
		}
	}
}
