package domain

import "time"

// Note is a user-owned document with optional AI enrichment
type Note struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	Pinned     bool        `json:"pinned"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Enrichment *Enrichment `json:"enrichment"`
}

// Summarized reports whether the note has ever been enriched
func (n *Note) Summarized() bool {
	return n.Enrichment != nil
}

// Enrichment is the AI-derived record attached to a note.
// It is always replaced as a whole.
type Enrichment struct {
	Summary   string     `json:"summary"`
	Dates     []DateItem `json:"dates"`
	Actions   []string   `json:"actions"`
	Tags      []string   `json:"tags"`
	Sentiment Sentiment  `json:"sentiment"`
}

// DateItem is a labelled calendar date (YYYY-MM-DD)
type DateItem struct {
	Label string `json:"label"`
	Date  string `json:"date"`
}

// Sentiment classifies the tone of a note
type Sentiment string

const (
	SentimentUrgent   Sentiment = "urgent"
	SentimentNeutral  Sentiment = "neutral"
	SentimentPositive Sentiment = "positive"
)

// Valid reports whether s is one of the known sentiments
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentUrgent, SentimentNeutral, SentimentPositive:
		return true
	}
	return false
}

// User is an account known to the auth provider
type User struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// Session is an authenticated user session.
// It is resolved once per request and passed explicitly to operations.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at t
func (s *Session) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// NoteFilter narrows note listings
type NoteFilter struct {
	Query      string
	PinnedOnly bool
	Tag        string
	Limit      int
	Offset     int
}
