// Package prompt holds the versioned prompt catalog sent to the provider.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// NotFound is the answer given when a note does not contain the answer.
const NotFound = "I couldn't find the answer in the note."

//go:embed default.yaml
var defaultCatalog []byte

// Catalog is a parsed set of prompt templates
type Catalog struct {
	Version   int
	summarize *template.Template
	qa        *template.Template
}

type catalogFile struct {
	Version   int    `yaml:"version"`
	Summarize string `yaml:"summarize"`
	QA        string `yaml:"qa"`
}

// Default returns the built-in catalog
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in prompt catalog: %v", err))
	}
	return c
}

// LoadFile parses a YAML catalog from disk
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse parses a YAML catalog. Both templates are required.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}

	if strings.TrimSpace(f.Summarize) == "" {
		return nil, fmt.Errorf("parse prompts: summarize template is empty")
	}
	if strings.TrimSpace(f.QA) == "" {
		return nil, fmt.Errorf("parse prompts: qa template is empty")
	}

	summarize, err := template.New("summarize").Option("missingkey=error").Parse(f.Summarize)
	if err != nil {
		return nil, fmt.Errorf("parse summarize template: %w", err)
	}
	qa, err := template.New("qa").Option("missingkey=error").Parse(f.QA)
	if err != nil {
		return nil, fmt.Errorf("parse qa template: %w", err)
	}

	return &Catalog{Version: f.Version, summarize: summarize, qa: qa}, nil
}

// Summarize renders the summarization prompt for content
func (c *Catalog) Summarize(content string) (string, error) {
	return render(c.summarize, map[string]string{
		"Content": content,
	})
}

// Question renders the question-answering prompt
func (c *Catalog) Question(content, question string) (string, error) {
	return render(c.qa, map[string]string{
		"Content":  content,
		"Question": question,
		"NotFound": NotFound,
	})
}

func render(t *template.Template, data map[string]string) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return strings.TrimSpace(sb.String()), nil
}
