package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/generation"
)

func TestGenerate_JSONMode(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"summary\":\"s\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	g := New(srv.URL, "key", "gpt-4o-mini", generation.DefaultOptions(), time.Second)
	out, err := g.Generate(context.Background(), "transcript...", generation.SchemaHint{Required: []string{"summary"}})
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"s"}`, out)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, `"summary"`)
	assert.Equal(t, "transcript...", got.Messages[1].Content)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	assert.Equal(t, 2000, got.MaxTokens)
}

func TestGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", "m", generation.Options{}, time.Second).
		Generate(context.Background(), "p", generation.SchemaHint{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rate limit")
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", "m", generation.Options{}, time.Second).
		Generate(context.Background(), "p", generation.SchemaHint{})
	assert.Error(t, err)
}
