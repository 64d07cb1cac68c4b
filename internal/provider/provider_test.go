package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGemini_Generate(t *testing.T) {
	var gotPath, gotKey string
	var gotReq geminiRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotReq)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  hello there \n"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGemini(Options{APIKey: "k3y", BaseURL: srv.URL})
	out, err := g.Generate(context.Background(), "say hello")
	require.NoError(t, err)
	require.Equal(t, "hello there", out)

	require.Equal(t, "/models/gemini-2.0-flash:generateContent", gotPath)
	require.Equal(t, "k3y", gotKey)
	require.Len(t, gotReq.Contents, 1)
	require.Equal(t, "say hello", gotReq.Contents[0].Parts[0].Text)
}

func TestGemini_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota"}}`))
	}))
	defer srv.Close()

	_, err := NewGemini(Options{BaseURL: srv.URL}).Generate(context.Background(), "x")

	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	require.Equal(t, `{"error":{"code":429,"message":"quota"}}`, se.Body)
}

func TestGemini_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	out, err := NewGemini(Options{BaseURL: srv.URL}).Generate(context.Background(), "x")
	require.NoError(t, err)
	require.Equal(t, "", out)
}

func TestGemini_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewGemini(Options{BaseURL: srv.URL}).Generate(context.Background(), "x")
	require.Error(t, err)

	var se *StatusError
	require.False(t, errors.As(err, &se))
}

func TestGemini_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewGemini(Options{BaseURL: url}).Generate(context.Background(), "x")
	require.Error(t, err)
}

func TestAnthropic_Generate(t *testing.T) {
	var gotReq apiRequest
	var gotKey, gotVersion string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages", r.URL.Path)
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotReq)

		w.Write([]byte(`{"content":[{"type":"text","text":"answer"}]}`))
	}))
	defer srv.Close()

	a := NewAnthropic(Options{APIKey: "sk", BaseURL: srv.URL, Model: "claude-test"})
	out, err := a.Generate(context.Background(), "question")
	require.NoError(t, err)
	require.Equal(t, "answer", out)

	require.Equal(t, "sk", gotKey)
	require.Equal(t, "2023-06-01", gotVersion)
	require.Equal(t, "claude-test", gotReq.Model)
	require.Equal(t, "question", gotReq.Messages[0].Content)
}

func TestAnthropic_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`invalid x-api-key`))
	}))
	defer srv.Close()

	_, err := NewAnthropic(Options{BaseURL: srv.URL}).Generate(context.Background(), "x")

	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusUnauthorized, se.StatusCode)
	require.Equal(t, "invalid x-api-key", se.Body)
}

func TestNew(t *testing.T) {
	p, err := New("gemini", Options{})
	require.NoError(t, err)
	require.Equal(t, "gemini", p.Name())

	p, err = New("anthropic", Options{})
	require.NoError(t, err)
	require.Equal(t, "anthropic", p.Name())

	_, err = New("openai", Options{})
	require.Error(t, err)
}
