package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore/vectorstoretest"
)

func TestSQLiteStoreCompliance(t *testing.T) {
	vectorstoretest.Run(t, func(t *testing.T, opts vectorstore.Options) vectorstore.Store {
		s, err := Open(context.Background(), filepath.Join(t.TempDir(), "vectors.db"), opts)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vectors.db")

	s, err := Open(ctx, path, vectorstore.Options{Metric: vectorstore.Cosine})
	require.NoError(t, err)
	c := model.Chunk{ID: "t1_chunk_0", TranscriptID: "t1", Text: "hello", End: 5}
	require.NoError(t, s.Upsert(ctx, c, []float32{0.25, -1.5, 3}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, vectorstore.Options{Metric: vectorstore.Cosine})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	assert.Equal(t, 3, s.Dimension())

	recs, err := s.Query(ctx, []float32{0.25, -1.5, 3}, 1, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "hello", recs[0].Chunk.Text)
	assert.InDelta(t, 1.0, recs[0].Score, 1e-6)

	_, err = Open(ctx, path, vectorstore.Options{Dimension: 8})
	assert.True(t, errors.Is(err, model.ErrDimensionMismatch), "reopen with another dimension: %v", err)
}

func TestEncodeDecode(t *testing.T) {
	v := []float32{0, 1.5, -2.25, 3e-7}
	got, err := decode(encode(v))
	require.NoError(t, err)
	assert.Equal(t, v, got)
	_, err = decode([]byte{1, 2, 3})
	assert.Error(t, err)
}
