// Package vectorstoretest holds the compliance suite every vectorstore.Store backend must pass.
package vectorstoretest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore"
)

// Factory returns a clean, isolated store configured with opts.
type Factory func(t *testing.T, opts vectorstore.Options) vectorstore.Store

// Run exercises the vectorstore.Store contract against makeStore.
func Run(t *testing.T, makeStore Factory) {
	t.Helper()
	for _, metric := range []vectorstore.Metric{vectorstore.Cosine, vectorstore.Dot} {
		metric := metric
		t.Run(string(metric), func(t *testing.T) {
			t.Run("DimensionMismatch", func(t *testing.T) { testDimension(t, makeStore, metric) })
			t.Run("OrderingAndTopK", func(t *testing.T) { testOrdering(t, makeStore, metric) })
			t.Run("StableTies", func(t *testing.T) { testTies(t, makeStore, metric) })
			t.Run("Filter", func(t *testing.T) { testFilter(t, makeStore, metric) })
			t.Run("DeleteCascade", func(t *testing.T) { testDelete(t, makeStore, metric) })
			t.Run("Reupsert", func(t *testing.T) { testReupsert(t, makeStore, metric) })
		})
	}
}

func chunk(transcriptID string, i int, text string) model.Chunk {
	return model.Chunk{
		ID:           fmt.Sprintf("%s_chunk_%d", transcriptID, i),
		TranscriptID: transcriptID,
		Index:        i,
		Start:        i * 10,
		End:          i*10 + len(text),
		Text:         text,
		Metadata:     map[string]string{model.MetaChunkType: model.ChunkTypeTranscript},
	}
}

func newID() string { return "t-" + uuid.NewString() }

func testDimension(t *testing.T, makeStore Factory, metric vectorstore.Metric) {
	ctx := context.Background()

	s := makeStore(t, vectorstore.Options{Dimension: 0, Metric: metric})
	tid := newID()
	if err := s.Upsert(ctx, chunk(tid, 0, "a"), []float32{1, 0, 0}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if got := s.Dimension(); got != 3 {
		t.Fatalf("Dimension after first upsert = %d, want 3", got)
	}
	err := s.Upsert(ctx, chunk(tid, 1, "b"), []float32{1, 0, 0, 0})
	if !errors.Is(err, model.ErrDimensionMismatch) {
		t.Fatalf("upsert with 4 dims: want ErrDimensionMismatch, got %v", err)
	}
	if _, err := s.Query(ctx, []float32{1, 0}, 3, nil); !errors.Is(err, model.ErrDimensionMismatch) {
		t.Fatalf("query with 2 dims: want ErrDimensionMismatch, got %v", err)
	}

	fixed := makeStore(t, vectorstore.Options{Dimension: 2, Metric: metric})
	if err := fixed.Upsert(ctx, chunk(newID(), 0, "a"), []float32{1, 0, 0}); !errors.Is(err, model.ErrDimensionMismatch) {
		t.Fatalf("configured dimension 2: want ErrDimensionMismatch, got %v", err)
	}
	if err := fixed.Upsert(ctx, chunk(newID(), 0, "a"), nil); !errors.Is(err, model.ErrDimensionMismatch) {
		t.Fatalf("empty embedding: want ErrDimensionMismatch, got %v", err)
	}
}

func testOrdering(t *testing.T, makeStore Factory, metric vectorstore.Metric) {
	ctx := context.Background()
	s := makeStore(t, vectorstore.Options{Dimension: 3, Metric: metric})
	tid := newID()

	vecs := [][]float32{
		{0.1, 0.9, 0},
		{0.9, 0.1, 0},
		{0.5, 0.5, 0.1},
		{0, 0, 1},
		{0.7, 0.2, 0.1},
	}
	for i, v := range vecs {
		if err := s.Upsert(ctx, chunk(tid, i, fmt.Sprintf("c%d", i)), v); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	q := []float32{1, 0, 0}
	for _, k := range []int{1, 3, 5, 10} {
		recs, err := s.Query(ctx, q, k, &vectorstore.Filter{TranscriptID: tid})
		if err != nil {
			t.Fatalf("query k=%d: %v", k, err)
		}
		want := k
		if want > len(vecs) {
			want = len(vecs)
		}
		if len(recs) != want {
			t.Fatalf("query k=%d returned %d records, want %d", k, len(recs), want)
		}
		for i := 1; i < len(recs); i++ {
			if recs[i].Score > recs[i-1].Score {
				t.Fatalf("k=%d not sorted at %d: %v > %v", k, i, recs[i].Score, recs[i-1].Score)
			}
		}
		if recs[0].Chunk.ID != chunk(tid, 1, "").ID {
			t.Fatalf("k=%d best match = %s, want chunk 1", k, recs[0].Chunk.ID)
		}
	}

	recs, err := s.Query(ctx, q, 0, nil)
	if err != nil || len(recs) != 0 {
		t.Fatalf("topK=0: got %d records, err=%v", len(recs), err)
	}

	full, err := s.Query(ctx, q, 1, &vectorstore.Filter{TranscriptID: tid})
	if err != nil || len(full) != 1 {
		t.Fatalf("query: n=%d err=%v", len(full), err)
	}
	got := full[0].Chunk
	if got.Text != "c1" || got.TranscriptID != tid || got.Index != 1 || got.Start != 10 {
		t.Fatalf("chunk round trip mismatch: %+v", got)
	}
	if got.Metadata[model.MetaChunkType] != model.ChunkTypeTranscript {
		t.Fatalf("metadata lost: %+v", got.Metadata)
	}
}

func testTies(t *testing.T, makeStore Factory, metric vectorstore.Metric) {
	ctx := context.Background()
	s := makeStore(t, vectorstore.Options{Dimension: 2, Metric: metric})
	tid := newID()

	// Insert out of index order; ties must come back in insertion order.
	order := []int{3, 0, 2, 1}
	for _, i := range order {
		if err := s.Upsert(ctx, chunk(tid, i, fmt.Sprintf("same-%d", i)), []float32{0.6, 0.8}); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}
	if err := s.Upsert(ctx, chunk(tid, 9, "other"), []float32{-0.6, 0.8}); err != nil {
		t.Fatalf("upsert other: %v", err)
	}

	for _, k := range []int{2, 4} {
		recs, err := s.Query(ctx, []float32{0.6, 0.8}, k, &vectorstore.Filter{TranscriptID: tid})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(recs) != k {
			t.Fatalf("k=%d returned %d", k, len(recs))
		}
		for i := range recs {
			if want := chunk(tid, order[i], "").ID; recs[i].Chunk.ID != want {
				t.Fatalf("k=%d position %d = %s, want %s", k, i, recs[i].Chunk.ID, want)
			}
		}
	}
}

func testFilter(t *testing.T, makeStore Factory, metric vectorstore.Metric) {
	ctx := context.Background()
	s := makeStore(t, vectorstore.Options{Dimension: 2, Metric: metric})
	a, b := newID(), newID()
	for i := 0; i < 3; i++ {
		if err := s.Upsert(ctx, chunk(a, i, "a"), []float32{1, float32(i) / 10}); err != nil {
			t.Fatalf("upsert a: %v", err)
		}
		if err := s.Upsert(ctx, chunk(b, i, "b"), []float32{1, float32(i) / 10}); err != nil {
			t.Fatalf("upsert b: %v", err)
		}
	}
	recs, err := s.Query(ctx, []float32{1, 0}, 10, &vectorstore.Filter{TranscriptID: b})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("filtered query returned %d, want 3", len(recs))
	}
	for _, r := range recs {
		if r.Chunk.TranscriptID != b {
			t.Fatalf("filter leaked chunk of %s", r.Chunk.TranscriptID)
		}
	}
}

func testDelete(t *testing.T, makeStore Factory, metric vectorstore.Metric) {
	ctx := context.Background()
	s := makeStore(t, vectorstore.Options{Dimension: 2, Metric: metric})
	gone, kept := newID(), newID()
	for i := 0; i < 4; i++ {
		if err := s.Upsert(ctx, chunk(gone, i, "gone"), []float32{1, 0}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if err := s.Upsert(ctx, chunk(kept, 0, "kept"), []float32{0.5, 0.5}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := s.DeleteTranscript(ctx, gone); err != nil {
		t.Fatalf("DeleteTranscript: %v", err)
	}
	recs, err := s.Query(ctx, []float32{1, 0}, 10, &vectorstore.Filter{TranscriptID: gone})
	if err != nil || len(recs) != 0 {
		t.Fatalf("deleted transcript still returns %d records (err=%v)", len(recs), err)
	}
	recs, err = s.Query(ctx, []float32{1, 0}, 10, &vectorstore.Filter{TranscriptID: kept})
	if err != nil || len(recs) != 1 {
		t.Fatalf("other transcript affected: n=%d err=%v", len(recs), err)
	}
	if err := s.DeleteTranscript(ctx, newID()); err != nil {
		t.Fatalf("deleting unknown transcript should be a no-op: %v", err)
	}
}

func testReupsert(t *testing.T, makeStore Factory, metric vectorstore.Metric) {
	ctx := context.Background()
	s := makeStore(t, vectorstore.Options{Dimension: 2, Metric: metric})
	tid := newID()
	if err := s.Upsert(ctx, chunk(tid, 0, "first"), []float32{1, 0}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Upsert(ctx, chunk(tid, 0, "second"), []float32{0, 1}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	recs, err := s.Query(ctx, []float32{0, 1}, 10, &vectorstore.Filter{TranscriptID: tid})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 || recs[0].Chunk.Text != "second" {
		t.Fatalf("re-upsert should replace: %+v", recs)
	}
}
