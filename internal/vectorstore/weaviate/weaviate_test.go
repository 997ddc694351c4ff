package weaviate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore"
)

// mock weaviate server answering each request with the next body in turn
func newMockServer(calls *atomic.Int32, bodies ...string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(bodies) {
			n = len(bodies) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(bodies[n]))
	}))
}

func newTestStore(t *testing.T, srv *httptest.Server) *Store {
	t.Helper()
	s, err := New(strings.TrimPrefix(srv.URL, "http://"), "", vectorstore.Options{Dimension: 2}, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func TestQuery_NilClassReturnsEmpty(t *testing.T) {
	var calls atomic.Int32
	srv := newMockServer(&calls, `{"data":{"Get":{"TranscriptChunk":null}}}`)
	defer srv.Close()

	recs, err := newTestStore(t, srv).Query(context.Background(), []float32{1, 0}, 5, &vectorstore.Filter{TranscriptID: "t1"})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestQuery_GraphQLErrorSurfaces(t *testing.T) {
	var calls atomic.Int32
	srv := newMockServer(&calls, `{"data":{"Get":{"TranscriptChunk":null}},"errors":[{"message":"class not found"}]}`)
	defer srv.Close()

	_, err := newTestStore(t, srv).Query(context.Background(), []float32{1, 0}, 5, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class not found")
}

func TestQuery_WidensFetchOnTieAtCutoff(t *testing.T) {
	// First page: three hits all at the same distance, so the k-th best ties
	// with the weakest fetched one. Second page exposes an earlier-inserted tie.
	first := `{"data":{"Get":{"TranscriptChunk":[
		{"chunkId":"c2","transcriptId":"t1","chunkIndex":2,"text":"two","seq":30,"_additional":{"distance":0.2}},
		{"chunkId":"c3","transcriptId":"t1","chunkIndex":3,"text":"three","seq":40,"_additional":{"distance":0.2}},
		{"chunkId":"c1","transcriptId":"t1","chunkIndex":1,"text":"one","seq":20,"_additional":{"distance":0.2}}
	]}}}`
	second := `{"data":{"Get":{"TranscriptChunk":[
		{"chunkId":"c2","transcriptId":"t1","chunkIndex":2,"text":"two","seq":30,"_additional":{"distance":0.2}},
		{"chunkId":"c3","transcriptId":"t1","chunkIndex":3,"text":"three","seq":40,"_additional":{"distance":0.2}},
		{"chunkId":"c1","transcriptId":"t1","chunkIndex":1,"text":"one","seq":20,"_additional":{"distance":0.2}},
		{"chunkId":"c0","transcriptId":"t1","chunkIndex":0,"text":"zero","seq":10,"_additional":{"distance":0.2}},
		{"chunkId":"c9","transcriptId":"t1","chunkIndex":9,"text":"far","seq":5,"_additional":{"distance":0.9}}
	]}}}`
	var calls atomic.Int32
	srv := newMockServer(&calls, first, second)
	defer srv.Close()

	recs, err := newTestStore(t, srv).Query(context.Background(), []float32{1, 0}, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, recs, 2)
	assert.Equal(t, "c0", recs[0].Chunk.ID)
	assert.Equal(t, "c1", recs[1].Chunk.ID)
	assert.InDelta(t, 0.8, recs[0].Score, 1e-9)
}

func TestQuery_DimensionCheckedLocally(t *testing.T) {
	var calls atomic.Int32
	srv := newMockServer(&calls, `{}`)
	defer srv.Close()

	_, err := newTestStore(t, srv).Query(context.Background(), []float32{1, 0, 0}, 3, nil)
	require.Error(t, err)
	assert.Equal(t, int32(0), calls.Load())
}

func TestScoreFromDistance(t *testing.T) {
	cos := &Store{metric: vectorstore.Cosine}
	dot := &Store{metric: vectorstore.Dot}
	assert.InDelta(t, 0.75, cos.scoreFromDistance(0.25), 1e-12)
	assert.InDelta(t, 3.5, dot.scoreFromDistance(-3.5), 1e-12)
}

func TestObjectIDStable(t *testing.T) {
	assert.Equal(t, objectID("t1_chunk_0"), objectID("t1_chunk_0"))
	assert.NotEqual(t, objectID("t1_chunk_0"), objectID("t1_chunk_1"))
}

func TestNextSeqMonotonic(t *testing.T) {
	s := &Store{}
	prev := s.nextSeq()
	for i := 0; i < 1000; i++ {
		n := s.nextSeq()
		require.Greater(t, n, prev)
		prev = n
	}
}
