package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestEmbed_DeterministicAndNormalized(t *testing.T) {
	e := New(64)
	a, err := e.Embed(context.Background(), "Alice will send the budget report on Friday")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "Alice will send the budget report on Friday")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.InDelta(t, 1.0, cosine(a, a), 1e-6)
}

func TestEmbed_SharedVocabularyScoresHigher(t *testing.T) {
	e := New(DefaultDimension)
	ctx := context.Background()
	q, _ := e.Embed(ctx, "budget report deadline")
	near, _ := e.Embed(ctx, "Bob asked about the budget report and its deadline")
	far, _ := e.Embed(ctx, "Lunch options near the office were discussed")
	assert.Greater(t, cosine(q, near), cosine(q, far))
}

func TestEmbed_StopwordsOnlyIsZeroVector(t *testing.T) {
	vec, err := New(8).Embed(context.Background(), "the and of")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestEmbed_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(8).Embed(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}
