package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, srvURL string, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api", srvURL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestIngestFromFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Alice: hi", body["text"])
		assert.Equal(t, "standup.txt", body["title"])
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"transcriptId":"t1","text":"Alice: hi","chunkCount":1}`)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "standup.txt")
	require.NoError(t, os.WriteFile(path, []byte("Alice: hi"), 0o600))
	out, err := execute(t, srv.URL, "", "ingest", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"transcriptId": "t1"`)
}

func TestIngestFromStdin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Bob: bye", body["text"])
		assert.Empty(t, body["title"])
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"transcriptId":"t2"}`)
	}))
	defer srv.Close()

	_, err := execute(t, srv.URL, "Bob: bye", "ingest", "-f", "-")
	require.NoError(t, err)
}

func TestSummarizeSurfacesFailedStep(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
		_, _ = io.WriteString(w, `{"error":"Gateway Timeout","code":504,"message":"backend timeout","step":"generate"}`)
	}))
	defer srv.Close()

	_, err := execute(t, srv.URL, "", "summarize", "t1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step generate")
}

func TestHistoryRejectsBadTime(t *testing.T) {
	_, err := execute(t, "http://127.0.0.1:1", "", "history", "--since", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--since must be RFC3339")
}

func TestReportToFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/summaries/s1/report", r.URL.Path)
		_, _ = io.WriteString(w, "MEETING SUMMARY REPORT\n")
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "report.txt")
	out, err := execute(t, srv.URL, "", "report", "s1", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "report written to")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "MEETING SUMMARY REPORT\n", string(data))
}

func TestSearchRequiresQuery(t *testing.T) {
	_, err := execute(t, "http://127.0.0.1:1", "", "search")
	require.Error(t, err)
}

func TestHealthUnhealthyFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"unhealthy","components":{"generator":false},"timestamp":"2026-01-01T00:00:00Z"}`)
	}))
	defer srv.Close()

	out, err := execute(t, srv.URL, "", "health")
	require.Error(t, err)
	assert.Contains(t, out, `"generator": false`)
}
