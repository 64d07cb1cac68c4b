// Package enrich turns note text into summaries, extracted fields and answers
// by calling a provider once per request.
package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/pbaille/sagequill/internal/domain"
	"github.com/pbaille/sagequill/internal/prompt"
	"github.com/pbaille/sagequill/internal/provider"
	"github.com/pbaille/sagequill/internal/richtext"
)

// Prompts supplies the active prompt catalog
type Prompts interface {
	Catalog() *prompt.Catalog
}

// Service runs enrichment requests. It holds no per-request state.
type Service struct {
	provider provider.Provider
	prompts  Prompts
}

// New creates an enrichment Service
func New(p provider.Provider, prompts Prompts) *Service {
	return &Service{provider: p, prompts: prompts}
}

// Summarize asks the provider for a structured summary of content.
// Provider failures come back as *provider.StatusError; output that is not
// valid JSON is never an error and yields the fallback enrichment.
func (s *Service) Summarize(ctx context.Context, content string) (domain.Enrichment, error) {
	p, err := s.prompts.Catalog().Summarize(richtext.PlainText(content))
	if err != nil {
		return domain.Enrichment{}, err
	}

	raw, err := s.provider.Generate(ctx, p)
	if err != nil {
		return domain.Enrichment{}, fmt.Errorf("summarize: %w", err)
	}

	e, _ := ParseSummary(raw)
	return e, nil
}

// Ask answers question using only content. Empty notes are answered
// locally with prompt.NotFound.
func (s *Service) Ask(ctx context.Context, content, question string) (string, error) {
	text := richtext.PlainText(content)
	if text == "" {
		return prompt.NotFound, nil
	}

	p, err := s.prompts.Catalog().Question(text, question)
	if err != nil {
		return "", err
	}

	answer, err := s.provider.Generate(ctx, p)
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}

	return strings.TrimSpace(answer), nil
}
