// Package provider talks to hosted generative-text APIs.
package provider

import (
	"context"
	"fmt"
	"net/http"
)

// Provider turns a prompt into generated text with a single call.
// Implementations never retry.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// StatusError is a non-success response from the provider.
// Body holds the provider's response text unchanged.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Body)
}

// Options configure a provider client
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

func (o Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}

// New builds the provider registered under name
func New(name string, opts Options) (Provider, error) {
	switch name {
	case "gemini":
		return NewGemini(opts), nil
	case "anthropic":
		return NewAnthropic(opts), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

func success(code int) bool {
	return code >= 200 && code < 300
}
