package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req embedRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "hello world", req.Prompt)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embedding":[0.5,-0.25,1]}`))
	}))
	defer srv.Close()

	p := New(srv.URL, "nomic-embed-text", time.Second)
	vec, err := p.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.25, 1}, vec)
}

func TestEmbed_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"x\" not found, try pulling it first"}`))
	}))
	defer srv.Close()

	p := New(srv.URL, "x", time.Second)
	_, err := p.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = p.Embed(context.Background(), "   ")
	assert.Error(t, err)
}

func TestEmbed_EmptyVectorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":[]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "m", time.Second).Embed(context.Background(), "text")
	assert.Error(t, err)
}

func TestHealthPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[{"name":"llama2:latest"},{"name":"nomic-embed-text:latest"}]}`))
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL, "nomic-embed-text", time.Second).HealthPing(context.Background()))
	assert.Error(t, New(srv.URL, "mxbai-embed-large", time.Second).HealthPing(context.Background()))
}
