// Package auth issues and validates password sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pbaille/sagequill/internal/apperr"
	"github.com/pbaille/sagequill/internal/domain"
	"github.com/pbaille/sagequill/internal/store"
)

const minPasswordLen = 8

// Store is the persistence auth needs
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string, metadata map[string]any) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, string, error)
	SetUserMetadata(ctx context.Context, id string, metadata map[string]any) error
	CreateSession(ctx context.Context, userID string, ttl time.Duration) (*domain.Session, error)
	GetSession(ctx context.Context, token string) (*domain.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// Provider manages accounts and sessions
type Provider struct {
	store Store
	ttl   time.Duration
	cost  int
	now   func() time.Time
}

// New creates a Provider issuing sessions valid for ttl
func New(s Store, ttl time.Duration) *Provider {
	return &Provider{store: s, ttl: ttl, cost: bcrypt.DefaultCost, now: time.Now}
}

// SetCost overrides the bcrypt cost used for new password hashes
func (p *Provider) SetCost(cost int) {
	p.cost = cost
}

// SignUpInput holds registration fields
type SignUpInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Age       int    `json:"age,omitempty"`
}

// SignUp registers a user with their profile stored as metadata
func (p *Provider) SignUp(ctx context.Context, in SignUpInput) (*domain.User, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(in.Email))
	if err != nil || addr.Address != strings.TrimSpace(in.Email) {
		return nil, apperr.NewInvalidRequest("a valid email is required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperr.NewInvalidRequest(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	metadata := map[string]any{}
	if in.FirstName != "" {
		metadata["first_name"] = strings.TrimSpace(in.FirstName)
	}
	if in.LastName != "" {
		metadata["last_name"] = strings.TrimSpace(in.LastName)
	}
	if in.Age > 0 {
		metadata["age"] = in.Age
	}

	u, err := p.store.CreateUser(ctx, addr.Address, string(hash), metadata)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.NewConflict("email already registered")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// SignInPassword checks credentials and opens a session
func (p *Provider) SignInPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	u, hash, err := p.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NewUnauthorized("invalid login credentials")
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, apperr.NewUnauthorized("invalid login credentials")
	}

	return p.store.CreateSession(ctx, u.ID, p.ttl)
}

// Session resolves a token into a live session
func (p *Provider) Session(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, apperr.NewUnauthorized("missing session")
	}

	sess, err := p.store.GetSession(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NewUnauthorized("invalid session")
	}
	if err != nil {
		return nil, err
	}

	if sess.Expired(p.now()) {
		_ = p.store.DeleteSession(ctx, token)
		return nil, apperr.NewUnauthorized("session expired")
	}
	return sess, nil
}

// Refresh exchanges a live session for a new one and revokes the old token
func (p *Provider) Refresh(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
	next, err := p.store.CreateSession(ctx, sess.UserID, p.ttl)
	if err != nil {
		return nil, err
	}
	if err := p.store.DeleteSession(ctx, sess.Token); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return next, nil
}

// SignOut revokes the session
func (p *Provider) SignOut(ctx context.Context, sess *domain.Session) error {
	err := p.store.DeleteSession(ctx, sess.Token)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// CurrentUser returns the user owning the session
func (p *Provider) CurrentUser(ctx context.Context, sess *domain.Session) (*domain.User, error) {
	u, err := p.store.GetUser(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NewUnauthorized("user no longer exists")
	}
	return u, err
}

// UpdateMetadata merges patch into the user's metadata. A nil value removes the key.
func (p *Provider) UpdateMetadata(ctx context.Context, sess *domain.Session, patch map[string]any) (*domain.User, error) {
	u, err := p.CurrentUser(ctx, sess)
	if err != nil {
		return nil, err
	}

	for k, v := range patch {
		if v == nil {
			delete(u.Metadata, k)
			continue
		}
		u.Metadata[k] = v
	}

	if err := p.store.SetUserMetadata(ctx, u.ID, u.Metadata); err != nil {
		return nil, err
	}
	return u, nil
}

// LookupUser builds a session for a local user without a password.
// It is meant for the command line, which runs with direct database access.
func (p *Provider) LookupUser(ctx context.Context, email string) (*domain.Session, error) {
	u, _, err := p.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NewNotFound("user", email)
	}
	if err != nil {
		return nil, err
	}
	now := p.now()
	return &domain.Session{UserID: u.ID, CreatedAt: now, ExpiresAt: now.Add(p.ttl)}, nil
}
