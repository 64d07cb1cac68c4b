package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/pbaille/sagequill/internal/domain"
)

const firstLoginKey = "firstLoginShown"

// Greeting is the dashboard welcome line for a user
type Greeting struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// DisplayName picks the friendliest name the metadata offers
func DisplayName(u *domain.User) string {
	if s, ok := u.Metadata["first_name"].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	if s, ok := u.Metadata["name"].(string); ok && strings.TrimSpace(s) != "" {
		return strings.Fields(s)[0]
	}
	if local, _, ok := strings.Cut(u.Email, "@"); ok && local != "" {
		return local
	}
	return "there"
}

// Greet returns the welcome message. The first call for a user records
// that the first-login greeting was shown.
func (p *Provider) Greet(ctx context.Context, sess *domain.Session) (Greeting, error) {
	u, err := p.CurrentUser(ctx, sess)
	if err != nil {
		return Greeting{}, err
	}
	name := DisplayName(u)

	if shown, _ := u.Metadata[firstLoginKey].(bool); shown {
		return Greeting{
			Title:    fmt.Sprintf("Welcome back, %s!", name),
			Subtitle: "Let's quill some clarity.",
		}, nil
	}

	if _, err := p.UpdateMetadata(ctx, sess, map[string]any{firstLoginKey: true}); err != nil {
		return Greeting{}, err
	}
	return Greeting{
		Title:    fmt.Sprintf("Welcome, %s!", name),
		Subtitle: "Your journey with SageQuill starts now.",
	}, nil
}
