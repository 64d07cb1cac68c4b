package enrich

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pbaille/sagequill/internal/domain"
)

// MaxTags caps the number of tags kept from a summary
const MaxTags = 5

// StripFences removes a Markdown code fence (``` or ```json) wrapping resp.
func StripFences(resp string) string {
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	return strings.TrimSpace(resp)
}

// ParseSummary decodes a provider reply into an enrichment.
//
// When the reply is not a JSON object, it returns Fallback(reply) and
// fellBack=true: the raw text becomes the summary and every other field is
// empty with neutral sentiment. A field of the wrong type is dropped on its
// own; the rest of the object is kept. Callers never see a parse error.
func ParseSummary(raw string) (e domain.Enrichment, fellBack bool) {
	cleaned := StripFences(raw)

	if !strings.HasPrefix(cleaned, "{") {
		return Fallback(cleaned), true
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return Fallback(cleaned), true
	}

	var sentiment string
	decodeField(fields, "summary", &e.Summary)
	decodeField(fields, "dates", &e.Dates)
	decodeField(fields, "actions", &e.Actions)
	decodeField(fields, "tags", &e.Tags)
	decodeField(fields, "sentiment", &sentiment)
	e.Sentiment = domain.Sentiment(sentiment)

	return Normalize(e), false
}

// decodeField fills dst from fields[key], leaving dst unchanged when the
// key is missing or holds a value of another type.
func decodeField[T any](fields map[string]json.RawMessage, key string, dst *T) {
	data, ok := fields[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return
	}
	*dst = v
}

// Fallback is the enrichment used when the provider ignores the JSON format.
func Fallback(text string) domain.Enrichment {
	return domain.Enrichment{
		Summary:   text,
		Dates:     []domain.DateItem{},
		Actions:   []string{},
		Tags:      []string{},
		Sentiment: domain.SentimentNeutral,
	}
}

// Normalize enforces the response shape: non-nil slices, dates in
// YYYY-MM-DD form, at most MaxTags distinct tags, and a known sentiment
// (neutral otherwise).
func Normalize(e domain.Enrichment) domain.Enrichment {
	out := domain.Enrichment{
		Summary:   strings.TrimSpace(e.Summary),
		Dates:     []domain.DateItem{},
		Actions:   []string{},
		Tags:      []string{},
		Sentiment: domain.Sentiment(strings.ToLower(strings.TrimSpace(string(e.Sentiment)))),
	}

	for _, d := range e.Dates {
		date := strings.TrimSpace(d.Date)
		if _, err := time.Parse("2006-01-02", date); err != nil {
			continue
		}
		out.Dates = append(out.Dates, domain.DateItem{Label: strings.TrimSpace(d.Label), Date: date})
	}

	for _, a := range e.Actions {
		if a = strings.TrimSpace(a); a != "" {
			out.Actions = append(out.Actions, a)
		}
	}

	seen := make(map[string]bool)
	for _, tag := range e.Tags {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		out.Tags = append(out.Tags, tag)
		if len(out.Tags) == MaxTags {
			break
		}
	}

	if !out.Sentiment.Valid() {
		out.Sentiment = domain.SentimentNeutral
	}

	return out
}
