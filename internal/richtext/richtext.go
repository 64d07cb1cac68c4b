// Package richtext converts between the markup stored in notes and plain text.
package richtext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

// Tags whose text never reaches the reader
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"iframe": true, "template": true,
}

// Block elements that end a line
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true,
}

// PlainText parses note markup and returns its readable text,
// one line per block element. Input that is not markup comes back trimmed.
func PlainText(markup string) string {
	if !IsMarkup(markup) {
		return strings.TrimSpace(markup)
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return strings.TrimSpace(markup)
	}

	var sb strings.Builder
	var extract func(*html.Node)

	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}

		if n.Type == html.TextNode {
			text := strings.Join(strings.Fields(n.Data), " ")
			if text != "" {
				if last := lastByte(&sb); last != 0 && last != '\n' && last != ' ' {
					sb.WriteString(" ")
				}
				sb.WriteString(text)
			}
		}

		if n.Type == html.ElementNode && n.Data == "li" {
			sb.WriteString("- ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}

		if n.Type == html.ElementNode && blockTags[n.Data] {
			if last := lastByte(&sb); last != 0 && last != '\n' {
				sb.WriteString("\n")
			}
		}
	}

	extract(doc)

	return strings.TrimSpace(sb.String())
}

func lastByte(sb *strings.Builder) byte {
	if sb.Len() == 0 {
		return 0
	}
	return sb.String()[sb.Len()-1]
}

// Snippet returns the first max runes of the note's plain text on a single line.
func Snippet(markup string, max int) string {
	s := strings.ReplaceAll(PlainText(markup), "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// FromMarkdown renders Markdown into the HTML markup stored as note content.
func FromMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// IsMarkup reports whether s looks like HTML markup rather than plain text.
func IsMarkup(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "<") && strings.Contains(s, ">")
}
