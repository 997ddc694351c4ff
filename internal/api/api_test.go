package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/chunker"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/embeddings/hashing"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/generation"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/prompts"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/retriever"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/services"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/store/sqlite"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/summarizer"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore/memory"
)

const transcript = `Alice: The billing bug double-charges customers on card retries.

Bob: I will fix the billing bug by Friday.`

type fnGenerator func(ctx context.Context) (string, error)

func (f fnGenerator) Generate(ctx context.Context, _ string, _ generation.SchemaHint) (string, error) {
	return f(ctx)
}

func okGenerator(context.Context) (string, error) {
	return `{"summary":"Billing bug.","action_items":["Bob fixes it by Friday"],"decisions":[],"key_points":[]}`, nil
}

type fakeHealth struct{ ok bool }

func (f fakeHealth) IsHealthy() bool { return f.ok }
func (f fakeHealth) Components() map[string]bool {
	return map[string]bool{"history": f.ok, "embedder": true}
}

type audioTranscriber struct{}

func (audioTranscriber) Transcribe(_ context.Context, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	return "Speaker A: " + string(b), err
}

func newServer(t *testing.T, gen fnGenerator) http.Handler {
	t.Helper()
	st, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ch, err := chunker.New(60, 10)
	require.NoError(t, err)
	set, err := prompts.Default()
	require.NoError(t, err)
	asm, err := prompts.NewAssembler(set, 0)
	require.NoError(t, err)

	emb := hashing.New(64)
	vectors := vectorstore.NewLocked(memory.New(vectorstore.Options{}))
	r := retriever.New(emb, vectors, time.Second, zerolog.Nop())
	orch := summarizer.New(r, asm, gen, st.Summaries(), summarizer.Config{TopK: 3, GenerateTimeout: 100 * time.Millisecond}, zerolog.Nop())
	svc := services.NewMeetingService(services.Deps{
		Store: st, Vectors: vectors, Embedder: emb, Chunker: ch, Retriever: r, Summarizer: orch,
		Transcriber: audioTranscriber{}, EmbedTimeout: time.Second, TopK: 3, MaxAudioBytes: 1 << 10, Log: zerolog.Nop(),
	})
	return NewRouter(svc, fakeHealth{ok: true}, 1<<10, zerolog.Nop())
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func ingest(t *testing.T, h http.Handler) model.Transcript {
	rr := do(t, h, http.MethodPost, "/api/transcripts", map[string]string{"text": transcript, "title": "billing"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[model.Transcript](t, rr)
}

func TestTranscriptLifecycle(t *testing.T) {
	h := newServer(t, okGenerator)
	tr := ingest(t, h)
	assert.NotEmpty(t, tr.ID)
	assert.Greater(t, tr.ChunkCount, 0)

	rr := do(t, h, http.MethodGet, "/api/transcripts/"+tr.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, transcript, decode[model.Transcript](t, rr).Text)

	rr = do(t, h, http.MethodGet, "/api/transcripts?limit=10", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[struct {
		Count int `json:"count"`
	}](t, rr)
	assert.Equal(t, 1, list.Count)

	rr = do(t, h, http.MethodDelete, "/api/transcripts/"+tr.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(t, h, http.MethodGet, "/api/transcripts/"+tr.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateTranscript_BadInput(t *testing.T) {
	h := newServer(t, okGenerator)

	req := httptest.NewRequest(http.MethodPost, "/api/transcripts", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/transcripts", map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/transcripts?limit=-2", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSummarizeAndHistory(t *testing.T) {
	h := newServer(t, okGenerator)
	tr := ingest(t, h)

	rr := do(t, h, http.MethodPost, "/api/transcripts/"+tr.ID+"/summaries", map[string]string{"query": "What did Bob commit to?"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	sum := decode[model.Summary](t, rr)
	assert.Equal(t, []string{"Bob fixes it by Friday"}, sum.ActionItems)

	// empty body uses the default query
	req := httptest.NewRequest(http.MethodPost, "/api/transcripts/"+tr.ID+"/summaries", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/api/summaries?transcriptId="+tr.ID+"&limit=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	hist := decode[struct {
		Summaries []model.Summary `json:"summaries"`
		Count     int             `json:"count"`
	}](t, rr)
	assert.Equal(t, 1, hist.Count)

	rr = do(t, h, http.MethodGet, "/api/summaries/"+sum.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, sum.ID, decode[model.Summary](t, rr).ID)

	rr = do(t, h, http.MethodGet, "/api/summaries/"+sum.ID+"/report", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rr.Body.String(), "MEETING SUMMARY REPORT")

	rr = do(t, h, http.MethodGet, "/api/summaries?since=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, h, http.MethodGet, "/api/summaries/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSummarize_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		gen  fnGenerator
		code int
		step string
	}{
		{"malformed", func(context.Context) (string, error) { return "no json here", nil }, http.StatusBadGateway, "parse"},
		{"timeout", func(ctx context.Context) (string, error) { <-ctx.Done(); return "", ctx.Err() }, http.StatusGatewayTimeout, "generate"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newServer(t, c.gen)
			tr := ingest(t, h)
			rr := do(t, h, http.MethodPost, "/api/transcripts/"+tr.ID+"/summaries", map[string]string{})
			require.Equal(t, c.code, rr.Code, rr.Body.String())
			assert.Contains(t, rr.Body.String(), `"step":"`+c.step+`"`)
		})
	}

	h := newServer(t, okGenerator)
	rr := do(t, h, http.MethodPost, "/api/transcripts/missing/summaries", map[string]string{})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSearch(t *testing.T) {
	h := newServer(t, okGenerator)
	tr := ingest(t, h)

	rr := do(t, h, http.MethodPost, "/api/search", map[string]interface{}{"query": "billing bug", "topK": 2, "transcriptId": tr.ID})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[struct {
		Results []model.RetrievalRecord `json:"results"`
		Count   int                     `json:"count"`
	}](t, rr)
	assert.Equal(t, len(res.Results), res.Count)
	assert.LessOrEqual(t, res.Count, 2)
	assert.Greater(t, res.Count, 0)

	rr = do(t, h, http.MethodPost, "/api/search", map[string]interface{}{"query": "  "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, h, http.MethodPost, "/api/search", map[string]interface{}{"query": "x", "topK": 500})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("title", "Weekly sync"))
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadAudio(t *testing.T) {
	h := newServer(t, okGenerator)

	body, ct := multipartBody(t, "sync.wav", []byte("hello from the recording"))
	req := httptest.NewRequest(http.MethodPost, "/api/transcripts/audio", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	tr := decode[model.Transcript](t, rr)
	assert.Equal(t, "Weekly sync", tr.Title)
	assert.Equal(t, "sync.wav", tr.SourceAudio)
	assert.Equal(t, "Speaker A: hello from the recording", tr.Text)

	body, ct = multipartBody(t, "notes.pdf", []byte("x"))
	req = httptest.NewRequest(http.MethodPost, "/api/transcripts/audio", body)
	req.Header.Set("Content-Type", ct)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/transcripts/audio", strings.NewReader(""))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newServer(t, okGenerator)

	rr := do(t, h, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[map[string]interface{}](t, rr)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, map[string]interface{}{"history": true, "embedder": true}, body["components"])

	rr = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "meeting_summary_")
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(fakeHealth{}).CheckHealth(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"unhealthy"`)
}
