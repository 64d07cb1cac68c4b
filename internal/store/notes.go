package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pbaille/sagequill/internal/domain"
	"github.com/pbaille/sagequill/internal/richtext"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

const noteColumns = `id, user_id, title, content, pinned, created_at, updated_at,
	summary, dates, actions, tags, sentiment`

// CreateNote inserts a note owned by userID
func (s *Store) CreateNote(ctx context.Context, userID, title, content string) (*domain.Note, error) {
	id := uuid.New().String()
	now := s.now().UTC()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notes (id, user_id, title, content, content_text, pinned, created_at, updated_at) VALUES (?, ?, ?, ?, ?, 0, ?, ?)",
		id, userID, title, content, richtext.PlainText(content), toUnix(now), toUnix(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}

	return &domain.Note{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetNote retrieves one of userID's notes
func (s *Store) GetNote(ctx context.Context, userID, id string) (*domain.Note, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = ? AND user_id = ?",
		id, userID,
	)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// UpdateNote overwrites the title and/or content. Nil fields are left alone.
// Concurrent updates are not reconciled: the last write wins.
func (s *Store) UpdateNote(ctx context.Context, userID, id string, title, content *string) (*domain.Note, error) {
	sets := []string{"updated_at = ?"}
	args := []any{toUnix(s.now().UTC())}

	if title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *title)
	}
	if content != nil {
		sets = append(sets, "content = ?", "content_text = ?")
		args = append(args, *content, richtext.PlainText(*content))
	}
	args = append(args, id, userID)

	res, err := s.db.ExecContext(ctx,
		"UPDATE notes SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	if err := expectRow(res); err != nil {
		return nil, err
	}

	return s.GetNote(ctx, userID, id)
}

// SetPinned sets the pinned flag
func (s *Store) SetPinned(ctx context.Context, userID, id string, pinned bool) (*domain.Note, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notes SET pinned = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		pinned, toUnix(s.now().UTC()), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("set pinned: %w", err)
	}
	if err := expectRow(res); err != nil {
		return nil, err
	}

	return s.GetNote(ctx, userID, id)
}

// DeleteNote removes a note together with its enrichment
func (s *Store) DeleteNote(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM notes WHERE id = ? AND user_id = ?",
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return expectRow(res)
}

// ReplaceEnrichment stores e as the note's enrichment, discarding any
// previous one. Fields are never merged.
func (s *Store) ReplaceEnrichment(ctx context.Context, userID, id string, e domain.Enrichment) (*domain.Note, error) {
	dates, err := json.Marshal(nonNilDates(e.Dates))
	if err != nil {
		return nil, fmt.Errorf("marshal dates: %w", err)
	}
	actions, err := json.Marshal(nonNil(e.Actions))
	if err != nil {
		return nil, fmt.Errorf("marshal actions: %w", err)
	}
	tags, err := json.Marshal(nonNil(e.Tags))
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE notes
		SET summary = ?, dates = ?, actions = ?, tags = ?, sentiment = ?, summarized_at = ?
		WHERE id = ? AND user_id = ?`,
		e.Summary, string(dates), string(actions), string(tags), string(e.Sentiment), toUnix(s.now().UTC()),
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("replace enrichment: %w", err)
	}
	if err := expectRow(res); err != nil {
		return nil, err
	}

	return s.GetNote(ctx, userID, id)
}

// ListNotes returns userID's notes matching f, pinned notes first and then
// newest first. Query matches the title or the content's plain text as a
// case-insensitive substring, so markup never matches.
func (s *Store) ListNotes(ctx context.Context, userID string, f domain.NoteFilter) ([]domain.Note, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		where = append(where, `(title LIKE ? ESCAPE '\' OR content_text LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if f.PinnedOnly {
		where = append(where, "pinned = 1")
	}
	if tag := strings.TrimSpace(f.Tag); tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(notes.tags) WHERE lower(json_each.value) = lower(?))")
		args = append(args, tag)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE "+strings.Join(where, " AND ")+
			" ORDER BY pinned DESC, created_at DESC, rowid DESC LIMIT ? OFFSET ?",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}

	return notes, rows.Err()
}

func scanNote(row scanner) (*domain.Note, error) {
	var (
		n                        domain.Note
		created, updated         int64
		summary, sentiment       sql.NullString
		dates, actions, tagsJSON sql.NullString
	)

	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Pinned, &created, &updated,
		&summary, &dates, &actions, &tagsJSON, &sentiment)
	if err != nil {
		return nil, err
	}
	n.CreatedAt = fromUnix(created)
	n.UpdatedAt = fromUnix(updated)

	if !summary.Valid {
		return &n, nil
	}

	e := &domain.Enrichment{
		Summary:   summary.String,
		Dates:     []domain.DateItem{},
		Actions:   []string{},
		Tags:      []string{},
		Sentiment: domain.Sentiment(sentiment.String),
	}
	if err := unmarshalColumn(dates, &e.Dates); err != nil {
		return nil, fmt.Errorf("decode dates: %w", err)
	}
	if err := unmarshalColumn(actions, &e.Actions); err != nil {
		return nil, fmt.Errorf("decode actions: %w", err)
	}
	if err := unmarshalColumn(tagsJSON, &e.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	n.Enrichment = e

	return &n, nil
}

func unmarshalColumn(col sql.NullString, dst any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilDates(d []domain.DateItem) []domain.DateItem {
	if d == nil {
		return []domain.DateItem{}
	}
	return d
}
