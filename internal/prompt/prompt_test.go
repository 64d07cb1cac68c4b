package prompt

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const customCatalog = `
version: 7
summarize: "SUM[{{.Content}}]"
qa: "QA[{{.Content}}|{{.Question}}|{{.NotFound}}]"
`

func TestDefault(t *testing.T) {
	c := Default()
	require.Equal(t, 1, c.Version)

	p, err := c.Summarize("Meeting with Bob on 2024-03-01")
	require.NoError(t, err)
	require.Contains(t, p, "Meeting with Bob on 2024-03-01")
	require.Contains(t, p, `"urgent","neutral","positive"`)
	require.Contains(t, p, "YYYY-MM-DD")

	q, err := c.Question("note body", "What is the deadline?")
	require.NoError(t, err)
	require.Contains(t, q, "note body")
	require.Contains(t, q, "What is the deadline?")
	require.Contains(t, q, NotFound)
}

func TestParse_Custom(t *testing.T) {
	c, err := Parse([]byte(customCatalog))
	require.NoError(t, err)
	require.Equal(t, 7, c.Version)

	p, err := c.Summarize("x")
	require.NoError(t, err)
	require.Equal(t, "SUM[x]", p)

	q, err := c.Question("n", "q")
	require.NoError(t, err)
	require.Equal(t, "QA[n|q|"+NotFound+"]", q)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "summarize: [unterminated"},
		{"missing summarize", "qa: hi"},
		{"missing qa", "summarize: hi"},
		{"bad template", "summarize: '{{.Content'\nqa: hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestRender_UnknownField(t *testing.T) {
	c, err := Parse([]byte("summarize: '{{.Nope}}'\nqa: hi"))
	require.NoError(t, err)

	_, err = c.Summarize("x")
	require.Error(t, err)
}

func TestSource_BuiltIn(t *testing.T) {
	s, err := NewSource("", nil)
	require.NoError(t, err)
	require.Equal(t, 1, s.Catalog().Version)
	require.NoError(t, s.Reload())
	require.NoError(t, s.Watch(context.Background()))
}

func TestSource_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(customCatalog), 0o644))

	s, err := NewSource(path, nil)
	require.NoError(t, err)
	require.Equal(t, 7, s.Catalog().Version)

	// Broken file keeps the previous catalog
	require.NoError(t, os.WriteFile(path, []byte("summarize: ''"), 0o644))
	require.Error(t, s.Reload())
	require.Equal(t, 7, s.Catalog().Version)

	updated := "version: 8\nsummarize: s\nqa: q\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	require.NoError(t, s.Reload())
	require.Equal(t, 8, s.Catalog().Version)
}

func TestSource_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(customCatalog), 0o644))

	s, err := NewSource(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte("version: 9\nsummarize: s\nqa: q\n"), 0o644))

	require.Eventually(t, func() bool {
		return s.Catalog().Version == 9
	}, 5*time.Second, 20*time.Millisecond)
}

func TestNewSource_MissingFile(t *testing.T) {
	_, err := NewSource(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}
