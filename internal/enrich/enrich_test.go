package enrich

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pbaille/sagequill/internal/domain"
	"github.com/pbaille/sagequill/internal/prompt"
	"github.com/pbaille/sagequill/internal/provider"
)

// stubProvider replies with a fixed text or error and records prompts.
type stubProvider struct {
	reply   string
	err     error
	prompts []string
}

func (p *stubProvider) Generate(ctx context.Context, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	return p.reply, p.err
}

func (p *stubProvider) Name() string { return "stub" }

type staticPrompts struct{ c *prompt.Catalog }

func (s staticPrompts) Catalog() *prompt.Catalog { return s.c }

func newService(p provider.Provider) *Service {
	return New(p, staticPrompts{prompt.Default()})
}

const meetingJSON = `{
  "summary": "Budget meeting with Bob; invoice due Friday.",
  "dates": [{"label": "Budget meeting", "date": "2024-03-01"}],
  "actions": ["Send invoice by Friday"],
  "tags": ["budget", "meeting"],
  "sentiment": "urgent"
}`

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding space", "  \n```json {\"a\":1} ```  \n", `{"a":1}`},
		{"plain text", "just words", "just words"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestParseSummary_Valid(t *testing.T) {
	e, fellBack := ParseSummary(meetingJSON)
	require.False(t, fellBack)
	require.Equal(t, "Budget meeting with Bob; invoice due Friday.", e.Summary)
	require.Equal(t, []domain.DateItem{{Label: "Budget meeting", Date: "2024-03-01"}}, e.Dates)
	require.Equal(t, []string{"Send invoice by Friday"}, e.Actions)
	require.Equal(t, []string{"budget", "meeting"}, e.Tags)
	require.Equal(t, domain.SentimentUrgent, e.Sentiment)
}

func TestParseSummary_FencedMatchesUnfenced(t *testing.T) {
	plain, fb1 := ParseSummary(meetingJSON)
	fenced, fb2 := ParseSummary("```json\n" + meetingJSON + "\n```")
	require.False(t, fb1)
	require.False(t, fb2)
	require.Equal(t, plain, fenced)
}

func TestParseSummary_Fallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"prose", "This note is about a budget meeting.", "This note is about a budget meeting."},
		{"truncated json", `{"summary": "cut`, `{"summary": "cut`},
		{"json array", `["a","b"]`, `["a","b"]`},
		{"empty reply", "", ""},
		{"fenced prose", "```\nnot json\n```", "not json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, fellBack := ParseSummary(tt.raw)
			require.True(t, fellBack)
			require.Equal(t, Fallback(tt.want), e)
			require.Equal(t, tt.want, e.Summary)
			require.NotNil(t, e.Dates)
			require.NotNil(t, e.Actions)
			require.NotNil(t, e.Tags)
			require.Equal(t, domain.SentimentNeutral, e.Sentiment)
		})
	}
}

func TestParseSummary_MistypedFieldsAreDropped(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.Enrichment
	}{
		{
			name: "bare date strings",
			raw:  "```json\n{\"summary\":\"Budget meeting with Bob.\",\"dates\":[\"2024-03-01\"],\"actions\":[\"Send invoice\"],\"tags\":[\"budget\"],\"sentiment\":\"urgent\"}\n```",
			want: domain.Enrichment{
				Summary:   "Budget meeting with Bob.",
				Dates:     []domain.DateItem{},
				Actions:   []string{"Send invoice"},
				Tags:      []string{"budget"},
				Sentiment: domain.SentimentUrgent,
			},
		},
		{
			name: "tags as a string",
			raw:  `{"summary":"Groceries list.","tags":"food, shopping"}`,
			want: domain.Enrichment{
				Summary:   "Groceries list.",
				Dates:     []domain.DateItem{},
				Actions:   []string{},
				Tags:      []string{},
				Sentiment: domain.SentimentNeutral,
			},
		},
		{
			name: "numeric summary",
			raw:  `{"summary": 3, "actions": ["Call Ann"], "sentiment": "positive"}`,
			want: domain.Enrichment{
				Summary:   "",
				Dates:     []domain.DateItem{},
				Actions:   []string{"Call Ann"},
				Tags:      []string{},
				Sentiment: domain.SentimentPositive,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, fellBack := ParseSummary(tt.raw)
			require.False(t, fellBack)
			require.Equal(t, tt.want, e)
		})
	}
}

func TestParseSummary_MissingCategoriesAreEmpty(t *testing.T) {
	e, fellBack := ParseSummary(`{"summary": "Nothing to do.", "sentiment": "neutral"}`)
	require.False(t, fellBack)
	require.Equal(t, "Nothing to do.", e.Summary)
	require.NotNil(t, e.Dates)
	require.Empty(t, e.Dates)
	require.NotNil(t, e.Actions)
	require.Empty(t, e.Actions)
	require.NotNil(t, e.Tags)
	require.Empty(t, e.Tags)

	e, _ = ParseSummary(`{"summary": "x", "dates": null, "actions": null, "tags": null}`)
	require.NotNil(t, e.Dates)
	require.NotNil(t, e.Actions)
	require.NotNil(t, e.Tags)
}

func TestNormalize(t *testing.T) {
	e := Normalize(domain.Enrichment{
		Summary: "  spaced  ",
		Dates: []domain.DateItem{
			{Label: " ok ", Date: "2024-03-01"},
			{Label: "bad", Date: "March 1st"},
			{Label: "bad month", Date: "2024-13-01"},
		},
		Actions:   []string{" call Bob ", "", "  "},
		Tags:      []string{"a", "B", "b", "c", "d", "e", "f", ""},
		Sentiment: " URGENT ",
	})

	require.Equal(t, "spaced", e.Summary)
	require.Equal(t, []domain.DateItem{{Label: "ok", Date: "2024-03-01"}}, e.Dates)
	require.Equal(t, []string{"call Bob"}, e.Actions)
	require.Equal(t, []string{"a", "B", "c", "d", "e"}, e.Tags)
	require.Equal(t, domain.SentimentUrgent, e.Sentiment)

	require.Equal(t, domain.SentimentNeutral, Normalize(domain.Enrichment{Sentiment: "angry"}).Sentiment)
	require.Equal(t, domain.SentimentNeutral, Normalize(domain.Enrichment{}).Sentiment)
}

func TestSummarize_MeetingScenario(t *testing.T) {
	stub := &stubProvider{reply: "```json\n" + meetingJSON + "\n```"}
	svc := newService(stub)

	content := "Meeting with Bob on 2024-03-01 to finalize the budget. Must send invoice by Friday."
	e, err := svc.Summarize(context.Background(), content)
	require.NoError(t, err)

	require.NotEmpty(t, e.Summary)
	require.Contains(t, e.Dates, domain.DateItem{Label: "Budget meeting", Date: "2024-03-01"})
	require.True(t, strings.Contains(strings.ToLower(e.Actions[0]), "invoice"))
	require.True(t, e.Sentiment.Valid())

	require.Len(t, stub.prompts, 1)
	require.Contains(t, stub.prompts[0], content)
}

func TestSummarize_SendsPlainText(t *testing.T) {
	stub := &stubProvider{reply: meetingJSON}
	_, err := newService(stub).Summarize(context.Background(), "<p>Call <b>Bob</b></p><script>x()</script>")
	require.NoError(t, err)
	require.Contains(t, stub.prompts[0], "Call Bob")
	require.NotContains(t, stub.prompts[0], "<p>")
	require.NotContains(t, stub.prompts[0], "x()")
}

func TestSummarize_NonJSONFallsBack(t *testing.T) {
	stub := &stubProvider{reply: "Sorry, here is a summary in prose."}
	e, err := newService(stub).Summarize(context.Background(), "anything")
	require.NoError(t, err)
	require.Equal(t, Fallback("Sorry, here is a summary in prose."), e)
}

func TestSummarize_ProviderStatusError(t *testing.T) {
	stub := &stubProvider{err: &provider.StatusError{StatusCode: http.StatusServiceUnavailable, Body: "overloaded"}}
	_, err := newService(stub).Summarize(context.Background(), "x")

	var se *provider.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	require.Equal(t, "overloaded", se.Body)
}

func TestSummarize_Idempotent(t *testing.T) {
	svc := newService(&stubProvider{reply: meetingJSON})
	a, err := svc.Summarize(context.Background(), "same")
	require.NoError(t, err)
	b, err := svc.Summarize(context.Background(), "same")
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestAsk(t *testing.T) {
	stub := &stubProvider{reply: "  The deadline is **Friday**.\n"}
	answer, err := newService(stub).Ask(context.Background(), "Invoice due Friday.", "What is the deadline?")
	require.NoError(t, err)
	require.Equal(t, "The deadline is **Friday**.", answer)

	require.Len(t, stub.prompts, 1)
	require.Contains(t, stub.prompts[0], "Invoice due Friday.")
	require.Contains(t, stub.prompts[0], "What is the deadline?")
	require.Contains(t, stub.prompts[0], prompt.NotFound)
}

func TestAsk_EmptyNote(t *testing.T) {
	stub := &stubProvider{reply: "should not be used"}
	answer, err := newService(stub).Ask(context.Background(), "", "What is the deadline?")
	require.NoError(t, err)
	require.Contains(t, answer, "couldn't find the answer in the note")
	require.Empty(t, stub.prompts)

	answer, err = newService(stub).Ask(context.Background(), "<p>  </p>", "What is the deadline?")
	require.NoError(t, err)
	require.Equal(t, prompt.NotFound, answer)
}

func TestAsk_ProviderError(t *testing.T) {
	stub := &stubProvider{err: &provider.StatusError{StatusCode: 400, Body: "bad key"}}
	_, err := newService(stub).Ask(context.Background(), "note", "q")

	var se *provider.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, 400, se.StatusCode)
}
