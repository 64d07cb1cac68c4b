package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pbaille/sagequill/internal/domain"
)

// CreateUser registers a user. Emails are compared case-insensitively.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string, metadata map[string]any) (*domain.User, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	md, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	id := uuid.New().String()
	now := s.now().UTC()
	email = normalizeEmail(email)

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, metadata, created_at) VALUES (?, ?, ?, ?, ?)",
		id, email, passwordHash, string(md), toUnix(now),
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &domain.User{ID: id, Email: email, Metadata: metadata, CreatedAt: now}, nil
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, _, err := s.getUser(ctx, "id = ?", id)
	return u, err
}

// GetUserByEmail retrieves a user and their password hash
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	return s.getUser(ctx, "email = ?", normalizeEmail(email))
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*domain.User, string, error) {
	var (
		u       domain.User
		hash    string
		md      string
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, metadata, created_at FROM users WHERE "+where,
		arg,
	).Scan(&u.ID, &u.Email, &hash, &md, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	u.CreatedAt = fromUnix(created)
	u.Metadata = map[string]any{}
	if err := json.Unmarshal([]byte(md), &u.Metadata); err != nil {
		return nil, "", fmt.Errorf("decode metadata: %w", err)
	}

	return &u, hash, nil
}

// SetUserMetadata replaces the user's metadata document
func (s *Store) SetUserMetadata(ctx context.Context, id string, metadata map[string]any) error {
	md, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	res, err := s.db.ExecContext(ctx, "UPDATE users SET metadata = ? WHERE id = ?", string(md), id)
	if err != nil {
		return fmt.Errorf("update metadata: %w", err)
	}
	return expectRow(res)
}

// CreateSession issues a new session token for userID
func (s *Store) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*domain.Session, error) {
	now := s.now().UTC()
	sess := &domain.Session{
		Token:     uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)",
		sess.Token, sess.UserID, toUnix(sess.CreatedAt), toUnix(sess.ExpiresAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return sess, nil
}

// GetSession looks up a session by token. Expired sessions are returned as-is.
func (s *Store) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	var (
		sess             domain.Session
		created, expires int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = ?",
		token,
	).Scan(&sess.Token, &sess.UserID, &created, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	sess.CreatedAt = fromUnix(created)
	sess.ExpiresAt = fromUnix(expires)
	return &sess, nil
}

// DeleteSession removes a session
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return expectRow(res)
}

// DeleteExpiredSessions purges sessions that expired before now
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", toUnix(s.now().UTC()))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
