package richtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"plain text passes through", "  Meeting with Bob\non Friday  ", "Meeting with Bob\non Friday"},
		{"paragraphs become lines", "<p>First</p><p>Second</p>", "First\nSecond"},
		{"inline markup joins words", "<p>Send <strong>invoice</strong> today</p>", "Send invoice today"},
		{"list items", "<ul><li>one</li><li>two</li></ul>", "- one\n- two"},
		{"script dropped", "<p>keep</p><script>alert(1)</script>", "keep"},
		{"headings", "<h1>Budget</h1><p>Finalize by 2024-03-01</p>", "Budget\nFinalize by 2024-03-01"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, PlainText(tt.markup))
		})
	}
}

func TestSnippet(t *testing.T) {
	require.Equal(t, "First Second", Snippet("<p>First</p><p>Second</p>", 40))

	long := "<p>" + strings.Repeat("a", 100) + "</p>"
	got := Snippet(long, 20)
	require.Len(t, []rune(got), 20)
	require.True(t, strings.HasSuffix(got, "..."))
}

func TestFromMarkdown(t *testing.T) {
	got, err := FromMarkdown("# Plan\n\nSend the *invoice*")
	require.NoError(t, err)
	require.Contains(t, got, "<h1>Plan</h1>")
	require.Contains(t, got, "<em>invoice</em>")

	require.Equal(t, "Plan\nSend the invoice", PlainText(got))
}

func TestIsMarkup(t *testing.T) {
	require.True(t, IsMarkup("<p>x</p>"))
	require.True(t, IsMarkup("  <div>x</div>"))
	require.False(t, IsMarkup("a < b > c"))
	require.False(t, IsMarkup("plain"))
}
